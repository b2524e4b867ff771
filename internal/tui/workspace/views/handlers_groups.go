package views

import (
	"context"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

// loadCommonTab loads whatever the active shared-group tab shows.
func loadCommonTab(s *workspace.Session) tea.Cmd {
	if s.State().CommonTab == workspace.TabFinance {
		return workspace.LoadGroupFinance(s)
	}
	return workspace.LoadGroupTasks(s)
}

func requireGroup(s *workspace.Session, msg string) (int64, error) {
	id := s.State().SelectedGroupID
	if id == 0 {
		return 0, output.ErrValidation(msg)
	}
	return id, nil
}

func selectGroup(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	st := s.State()
	if !slices.ContainsFunc(st.SharedGroups(), func(g models.Group) bool { return g.ID == id }) {
		return nil, output.ErrValidation(fmt.Sprintf("Группа #%d недоступна", id))
	}
	if id != st.SelectedGroupID {
		st.SelectGroup(id)
	}
	st.Modal = workspace.ModalNone
	if err := s.Store().SetSelectedGroupID(id); err != nil {
		s.Log().Warn().Err(err).Msg("persist selected group")
	}
	return loadCommonTab(s), nil
}

func setCommonTab(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	st := s.State()
	st.CommonTab = workspace.TabTasks
	if value(inv, "tab") == string(workspace.TabFinance) {
		st.CommonTab = workspace.TabFinance
	}
	if st.SelectedGroupID == 0 {
		return nil, nil
	}
	return loadCommonTab(s), nil
}

func setGroupFilter(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	mode, ok := dateutil.ParseFilterMode(value(inv, "filter"))
	if !ok {
		return nil, output.ErrValidation("Неизвестный фильтр: " + value(inv, "filter"))
	}
	st := s.State()
	st.GroupFilter = mode
	st.GroupTasksPage = 1
	return workspace.LoadGroupTasks(s), nil
}

func openCreateGroup(s *workspace.Session, _ workspace.Invocation) (tea.Cmd, error) {
	s.State().Modal = workspace.ModalCreateGroup
	return nil, nil
}

func createGroup(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	name := value(inv, "name")
	if name == "" {
		return nil, output.ErrValidation("Введите название группы")
	}
	return workspace.Async(s, string(workspace.ActionGroupsCreate), func(ctx context.Context) (workspace.Continuation, error) {
		if _, err := s.API().CreateGroup(ctx, name); err != nil {
			return nil, failed("Не удалось создать группу: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			s.State().Modal = workspace.ModalNone
			return tea.Batch(
				workspace.LoadGroups(s),
				workspace.Alert("Группа создана ✅\nТеперь нажмите “Пригласить” после того как добавите участника."),
			), nil
		}, nil
	}), nil
}

func openInvite(s *workspace.Session, _ workspace.Invocation) (tea.Cmd, error) {
	if _, err := requireGroup(s, "Сначала выберите группу"); err != nil {
		return nil, err
	}
	s.State().Modal = workspace.ModalInvite
	return nil, nil
}

func sendInvite(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	groupID, err := requireGroup(s, "Сначала выберите группу")
	if err != nil {
		return nil, err
	}
	username := value(inv, "username")
	if username == "" {
		return nil, output.ErrValidation("Введите @username")
	}
	return workspace.Async(s, string(workspace.ActionGroupsSendInviteByUsername), func(ctx context.Context) (workspace.Continuation, error) {
		if err := s.API().InviteByUsername(ctx, groupID, username); err != nil {
			return nil, failed("Не удалось пригласить: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			st := s.State()
			st.Modal = workspace.ModalNone
			if st.SelectedGroupID == groupID {
				st.LastInvite = username
			}
			return workspace.Alert("Приглашение создано ✅\nПользователь должен принять его в боте."), nil
		}, nil
	}), nil
}

// inviteText is what copyInvite puts on the clipboard.
func inviteText(s *workspace.Session) string {
	st := s.State()
	group := fmt.Sprintf("#%d", st.SelectedGroupID)
	if g, ok := st.SelectedGroup(); ok {
		group = g.Label()
	}
	return fmt.Sprintf("Приглашение в группу «%s» для %s. Примите его в боте tasknest.", group, st.LastInvite)
}

func copyInvite(s *workspace.Session, _ workspace.Invocation) (tea.Cmd, error) {
	if _, err := requireGroup(s, "Сначала выберите группу"); err != nil {
		return nil, err
	}
	if s.State().LastInvite == "" {
		return nil, output.ErrValidation("Сначала пригласите участника")
	}
	if err := s.CopyToClipboard(inviteText(s)); err != nil {
		return nil, failed("Не удалось скопировать: ", err)
	}
	return workspace.SetStatus("Скопировано ✅", false), nil
}

func acceptInvite(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	token := value(inv, "token")
	if token == "" {
		return nil, output.ErrValidation("Пустой токен приглашения")
	}
	return workspace.Async(s, string(workspace.ActionGroupsAcceptInvite), func(ctx context.Context) (workspace.Continuation, error) {
		groupID, err := s.API().AcceptInvite(ctx, token)
		if err != nil {
			return nil, failed("Не удалось принять приглашение: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			if groupID != 0 {
				if err := s.Store().SetSelectedGroupID(groupID); err != nil {
					s.Log().Warn().Err(err).Msg("persist selected group")
				}
			}
			return workspace.LoadGroupsThen(s, func(*workspace.Session) tea.Cmd {
				return tea.Batch(workspace.Refresh(), workspace.SetStatus("Вы вступили в группу ✅", false))
			}), nil
		}, nil
	}), nil
}
