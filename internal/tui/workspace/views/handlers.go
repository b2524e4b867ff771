package views

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasknest/tasknest-cli/internal/auth"
	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

// RegisterHandlers binds every action to its handler.
func RegisterHandlers(r *workspace.Registry) {
	handlers := map[workspace.ActionID]workspace.Handler{
		workspace.ActionAuthLoginTelegram: loginTelegram,
		workspace.ActionAuthLoginEmail:    loginEmail,
		workspace.ActionAuthLoginToken:    loginToken,

		workspace.ActionNavSwitch: navSwitch,
		workspace.ActionNavBack:   navBack,

		workspace.ActionDatePrev:          shiftDay(-1),
		workspace.ActionDateNext:          shiftDay(1),
		workspace.ActionDateToday:         dateToday,
		workspace.ActionDateOpenCalendar:  openCalendar,
		workspace.ActionDateCloseCalendar: closeCalendar,
		workspace.ActionDateSetFilter:     setTopFilter,
		workspace.ActionDatePick:          pickDate,
		workspace.ActionDatePrevMonth:     shiftMonth(-1),
		workspace.ActionDateNextMonth:     shiftMonth(1),

		workspace.ActionHomeSetFilter: setHomeFilter,
		workspace.ActionPagePrev:      turnPage(-1),
		workspace.ActionPageNext:      turnPage(1),

		workspace.ActionGroupsSelect:               selectGroup,
		workspace.ActionGroupsSetTab:               setCommonTab,
		workspace.ActionGroupsSetFilter:            setGroupFilter,
		workspace.ActionGroupsOpenCreate:           openCreateGroup,
		workspace.ActionGroupsCreate:               createGroup,
		workspace.ActionGroupsOpenInvite:           openInvite,
		workspace.ActionGroupsSendInviteByUsername: sendInvite,
		workspace.ActionGroupsCopyInvite:           copyInvite,
		workspace.ActionGroupsAcceptInvite:         acceptInvite,

		workspace.ActionTasksOpen:        openTask,
		workspace.ActionTasksMarkDone:    markDone,
		workspace.ActionTasksSaveDetails: saveTaskDetails,

		workspace.ActionAddOpen:       openAdd,
		workspace.ActionAddChangeType: changeAddType,
		workspace.ActionAddSave:       saveAdd,
		workspace.ActionAddCancel:     cancelAdd,

		workspace.ActionManageOpen:   openManage,
		workspace.ActionManageAdd:    manageAdd,
		workspace.ActionManageDelete: manageDelete,

		workspace.ActionSettingsSaveNotifications: saveNotifications,

		workspace.ActionModalOpen:  openModal,
		workspace.ActionModalClose: closeModal,
	}
	for id, h := range handlers {
		r.Register(id, h)
	}
}

// failed prefixes the user-facing message of err, keeping its code.
func failed(prefix string, err error) error {
	e := *output.AsError(err)
	e.Message = prefix + e.Message
	e.Hint = ""
	e.Cause = err
	return &e
}

// value returns the named data attribute, falling back to the control value.
func value(inv workspace.Invocation, name string) string {
	if v := inv.Get(name); v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(inv.Value)
}

// -- Auth

func loginTelegram(s *workspace.Session, _ workspace.Invocation) (tea.Cmd, error) {
	creds := auth.Credentials{InitData: s.InitData(), LaunchToken: s.ConsumeLaunchToken()}
	return login(s, string(workspace.ActionAuthLoginTelegram), creds, false), nil
}

func loginEmail(*workspace.Session, workspace.Invocation) (tea.Cmd, error) {
	return workspace.Alert("Вход по почте не реализован. Используй Telegram."), nil
}

func loginToken(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	token := value(inv, "token")
	if token == "" {
		return nil, output.ErrValidation("Вставьте токен доступа")
	}
	return login(s, string(workspace.ActionAuthLoginToken), auth.Credentials{LaunchToken: token}, true), nil
}

// login starts a fresh session epoch and runs the login strategies. When
// loud is set a failure is reported; the automatic login stays silent and
// leaves the auth screen up.
func login(s *workspace.Session, label string, creds auth.Credentials, loud bool) tea.Cmd {
	s.ResetContext()
	return workspace.Async(s, label, func(ctx context.Context) (workspace.Continuation, error) {
		res, err := auth.Login(ctx, s.API(), s.Store(), creds, *s.Log())
		if errors.Is(err, auth.ErrNoSession) {
			return func(*workspace.Session) (tea.Cmd, error) {
				out := func() tea.Msg { return workspace.LoggedOutMsg{} }
				if loud {
					return tea.Batch(out, workspace.Alert("Не удалось войти: токен не принят")), nil
				}
				return out, nil
			}, nil
		}
		if err != nil {
			return nil, failed("Не удалось войти: ", err)
		}
		return func(*workspace.Session) (tea.Cmd, error) {
			return func() tea.Msg { return workspace.LoggedInMsg{Result: res} }, nil
		}, nil
	})
}

// -- Navigation

func navSwitch(_ *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	id, ok := workspace.ParseScreen(value(inv, "screen"))
	if !ok || id == workspace.ScreenAuth {
		return nil, output.ErrValidation("Неизвестный экран: " + value(inv, "screen"))
	}
	return workspace.Navigate(id, true), nil
}

func navBack(*workspace.Session, workspace.Invocation) (tea.Cmd, error) {
	return workspace.NavigateBack(), nil
}

// -- Date bar

// dayReload refetches what the source screen shows for a day.
func dayReload(s *workspace.Session, source workspace.ScreenID) tea.Cmd {
	switch source {
	case workspace.ScreenTasks:
		return workspace.LoadPersonalTasks(s)
	case workspace.ScreenFinance:
		return workspace.LoadFinance(s)
	}
	return nil
}

func shiftDay(delta int) workspace.Handler {
	return func(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
		st := s.State()
		st.SelectDate(dateutil.AddDays(st.SelectedDate, delta))
		return dayReload(s, inv.Source), nil
	}
}

func dateToday(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	s.State().SelectDate(s.Today())
	return dayReload(s, inv.Source), nil
}

func openCalendar(s *workspace.Session, _ workspace.Invocation) (tea.Cmd, error) {
	st := s.State()
	if t, ok := dateutil.ParseISODate(st.SelectedDate); ok {
		st.CalendarYear, st.CalendarMonth = t.Year(), t.Month()
	}
	st.Modal = workspace.ModalCalendar
	return nil, nil
}

func closeCalendar(s *workspace.Session, _ workspace.Invocation) (tea.Cmd, error) {
	if s.State().Modal == workspace.ModalCalendar {
		s.State().Modal = workspace.ModalNone
	}
	return nil, nil
}

func setTopFilter(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	f := workspace.TopFilter(value(inv, "filter"))
	switch f {
	case workspace.TopTasks, workspace.TopFinance, workspace.TopAll:
		s.State().TopFilter = f
		return nil, nil
	}
	return nil, output.ErrValidation("Неизвестный фильтр: " + string(f))
}

func pickDate(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	iso := value(inv, "date")
	if _, ok := dateutil.ParseISODate(iso); !ok {
		return nil, output.ErrValidation("Некорректная дата: " + iso)
	}
	st := s.State()
	st.SelectDate(iso)
	st.Modal = workspace.ModalNone
	return dayReload(s, inv.Source), nil
}

func shiftMonth(delta int) workspace.Handler {
	return func(s *workspace.Session, _ workspace.Invocation) (tea.Cmd, error) {
		st := s.State()
		st.CalendarYear, st.CalendarMonth = dateutil.ShiftMonth(st.CalendarYear, st.CalendarMonth, delta)
		return nil, nil
	}
}

// -- Lists

func setHomeFilter(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	mode, ok := dateutil.ParseFilterMode(value(inv, "filter"))
	if !ok {
		return nil, output.ErrValidation("Неизвестный фильтр: " + value(inv, "filter"))
	}
	st := s.State()
	st.HomeFilter = mode
	st.HomePage = 1
	return nil, nil
}

func turnPage(delta int) workspace.Handler {
	return func(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
		page := workspace.PageKey(inv.Get("list"))
		tasks, ok := pagedTasks(s, page)
		if !ok {
			return nil, output.ErrValidation("Неизвестный список: " + string(page))
		}
		st := s.State()
		st.SetPage(page, st.Page(page)+delta)
		st.ClampPage(page, len(tasks))
		return nil, nil
	}
}

// -- Modals

func openModal(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	switch id := workspace.ModalID(value(inv, "modal")); id {
	case workspace.ModalCalendar:
		return openCalendar(s, inv)
	case workspace.ModalCreateGroup:
		return openCreateGroup(s, inv)
	case workspace.ModalInvite:
		return openInvite(s, inv)
	case workspace.ModalManageInput:
		if s.State().SelectedGroupID == 0 {
			return nil, output.ErrValidation("Сначала выберите общую группу")
		}
		s.State().Modal = id
		return nil, nil
	case "add":
		return openAdd(s, inv)
	default:
		return nil, output.ErrValidation("Неизвестное окно: " + string(id))
	}
}

func closeModal(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	st := s.State()
	if id := workspace.ModalID(value(inv, "modal")); id != workspace.ModalNone && id != st.Modal {
		return nil, nil
	}
	st.Modal = workspace.ModalNone
	return nil, nil
}
