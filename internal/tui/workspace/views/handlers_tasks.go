package views

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

// -- Task detail

func openTask(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	st := s.State()
	if st.CurrentTaskID != id {
		st.CurrentTask = nil
	}
	st.CurrentTaskID = id
	return workspace.Navigate(workspace.ScreenTask, true), nil
}

func markDone(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	return workspace.Async(s, string(workspace.ActionTasksMarkDone), func(ctx context.Context) (workspace.Continuation, error) {
		if err := s.API().MarkTaskDone(ctx, id); err != nil {
			return nil, failed("Не удалось отметить: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			cmds := []tea.Cmd{workspace.ReloadAll(s), workspace.SetStatus("Готово ✅", false)}
			if s.State().CurrentTaskID == id {
				cmds = append(cmds, workspace.LoadTask(s, id))
			}
			return tea.Batch(cmds...), nil
		}, nil
	}), nil
}

// deadlineOf parses the deadline field. Empty input means no deadline.
func deadlineOf(s *workspace.Session, inv workspace.Invocation) (*string, error) {
	raw := strings.TrimSpace(inv.Get("deadline"))
	if raw == "" {
		return nil, nil
	}
	iso, ok := dateutil.ParseDeadline(raw, s.Now())
	if !ok {
		return nil, output.ErrValidation("Не удалось распознать срок: " + raw)
	}
	return &iso, nil
}

// parseIDs reads a comma separated id list, dropping duplicates and
// keeping order.
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, output.ErrValidation("Некорректный исполнитель: " + part)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func saveTaskDetails(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	id := s.State().CurrentTaskID
	if inv.Get("id") != "" {
		var err error
		if id, err = inv.ID("id"); err != nil {
			return nil, err
		}
	}
	if id == 0 {
		return nil, output.ErrValidation("Задача не выбрана")
	}
	title := strings.TrimSpace(inv.Get("title"))
	if title == "" {
		return nil, output.ErrValidation("Введите название")
	}
	deadline, err := deadlineOf(s, inv)
	if err != nil {
		return nil, err
	}
	assignees, err := parseIDs(inv.Get("assignees"))
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(inv.Get("status"))
	if status == "" {
		status = models.TaskStatusNew
	}
	done := inv.Get("done") == "true"
	update := api.TaskUpdate{
		Title:       title,
		Description: strings.TrimSpace(inv.Get("description")),
		Status:      status,
		Deadline:    deadline,
		Done:        done || status == models.TaskStatusDone,
		AssigneeIDs: assignees,
	}

	return workspace.Async(s, string(workspace.ActionTasksSaveDetails), func(ctx context.Context) (workspace.Continuation, error) {
		if err := s.API().UpdateTask(ctx, id, update); err != nil {
			return nil, failed("Ошибка сохранения: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			s.State().CurrentTask = nil
			return tea.Batch(
				workspace.NavigateBack(),
				workspace.ReloadAll(s),
				workspace.SetStatus("Сохранено", false),
			), nil
		}, nil
	}), nil
}

// -- Add

func openAdd(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	st := s.State()
	inGroup := inv.Source == workspace.ScreenGroupTasks
	if inGroup && st.SelectedGroupID == 0 {
		return nil, output.ErrValidation("Сначала выберите общую группу (или создайте и пригласите участника).")
	}
	st.AddInGroup = inGroup
	st.AddType = workspace.AddTask
	switch {
	case inGroup && st.CommonTab == workspace.TabFinance:
		st.AddType = workspace.AddExpense
	case inv.Source == workspace.ScreenFinance:
		st.AddType = workspace.AddExpense
	}
	if t := workspace.AddType(inv.Get("type")); t != "" {
		if err := setAddType(s, t); err != nil {
			return nil, err
		}
	}
	return workspace.Navigate(workspace.ScreenAdd, true), nil
}

func setAddType(s *workspace.Session, t workspace.AddType) error {
	switch t {
	case workspace.AddTask, workspace.AddExpense, workspace.AddIncome:
		s.State().AddType = t
		return nil
	}
	return output.ErrValidation("Неизвестный тип: " + string(t))
}

func changeAddType(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	return nil, setAddType(s, workspace.AddType(value(inv, "type")))
}

func cancelAdd(*workspace.Session, workspace.Invocation) (tea.Cmd, error) {
	return workspace.NavigateBack(), nil
}

// contextGroupID is the group new tasks go to: the selected shared group
// when adding from the group screen, otherwise the personal group.
func contextGroupID(s *workspace.Session) int64 {
	if s.State().AddInGroup {
		return s.State().SelectedGroupID
	}
	return s.Store().DefaultGroupID()
}

// parseAmount reads a whole amount, tolerating spaces and a decimal comma.
// The fractional part is dropped.
func parseAmount(raw string) (int64, bool) {
	raw = strings.Join(strings.Fields(raw), "")
	raw = strings.ReplaceAll(raw, ",", ".")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

func optionalID(inv workspace.Invocation, name string) (*int64, error) {
	if inv.Get(name) == "" {
		return nil, nil
	}
	id, err := inv.ID(name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func saveAdd(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	st := s.State()
	switch {
	case st.AddType == workspace.AddTask:
		return saveNewTask(s, inv)
	case st.AddInGroup && st.CommonTab == workspace.TabFinance:
		return saveGroupFinance(s, inv)
	default:
		return savePersonalFinance(s, inv)
	}
}

// added finishes a successful add: reload and leave the form.
func added(reload tea.Cmd) workspace.Continuation {
	return func(s *workspace.Session) (tea.Cmd, error) {
		return tea.Batch(reload, workspace.NavigateBack(), workspace.SetStatus("Сохранено", false)), nil
	}
}

func saveNewTask(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	title := strings.TrimSpace(inv.Get("title"))
	if title == "" {
		return nil, output.ErrValidation("Введите название")
	}
	groupID := contextGroupID(s)
	if groupID == 0 {
		return nil, output.ErrValidation("Группа не найдена. Войдите заново.")
	}
	assignees, err := parseIDs(inv.Get("assignees"))
	if err != nil {
		return nil, err
	}
	if len(assignees) == 0 {
		return nil, output.ErrValidation("Выберите хотя бы одного исполнителя")
	}
	deadline, err := deadlineOf(s, inv)
	if err != nil {
		return nil, err
	}
	task := api.NewTask{
		Title:         title,
		Description:   strings.TrimSpace(inv.Get("description")),
		Deadline:      deadline,
		ResponsibleID: assignees[0],
		AssigneeIDs:   assignees,
	}
	inGroup := s.State().AddInGroup
	return workspace.Async(s, string(workspace.ActionAddSave), func(ctx context.Context) (workspace.Continuation, error) {
		if _, err := s.API().CreateTask(ctx, groupID, task); err != nil {
			return nil, failed("Ошибка сохранения: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			reload := workspace.LoadPersonalTasks(s)
			if inGroup {
				reload = workspace.LoadGroupTasks(s)
			}
			return added(reload)(s)
		}, nil
	}), nil
}

func saveGroupFinance(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	groupID := s.State().SelectedGroupID
	if groupID == 0 {
		return nil, output.ErrValidation("Сначала выберите общую группу")
	}
	amount, ok := parseAmount(inv.Get("amount"))
	if !ok || amount <= 0 {
		return nil, output.ErrValidation("Введите корректную сумму")
	}
	category, err := optionalID(inv, "category")
	if err != nil {
		return nil, err
	}
	method, err := optionalID(inv, "method")
	if err != nil {
		return nil, err
	}
	kind := models.KindExpense
	if s.State().AddType == workspace.AddIncome {
		kind = models.KindIncome
	}
	entry := api.NewGroupFinance{
		Kind:        kind,
		Amount:      amount,
		Description: strings.TrimSpace(inv.Get("description")),
		CategoryID:  category,
		MethodID:    method,
	}
	return workspace.Async(s, string(workspace.ActionAddSave), func(ctx context.Context) (workspace.Continuation, error) {
		if err := s.API().CreateGroupFinance(ctx, groupID, entry); err != nil {
			return nil, failed("Ошибка сохранения: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			return added(workspace.LoadGroupFinance(s))(s)
		}, nil
	}), nil
}

func savePersonalFinance(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	amount, ok := parseAmount(inv.Get("amount"))
	if !ok || amount <= 0 {
		return nil, output.ErrValidation("Введите корректную сумму")
	}
	if s.State().AddType == workspace.AddExpense {
		amount = -amount
	}
	title := strings.TrimSpace(inv.Get("title"))
	if title == "" {
		title = "Операция"
	}
	entry := api.NewFinance{Title: title, Amount: amount}
	return workspace.Async(s, string(workspace.ActionAddSave), func(ctx context.Context) (workspace.Continuation, error) {
		if _, err := s.API().CreateFinance(ctx, entry); err != nil {
			return nil, failed("Ошибка сохранения: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			return added(tea.Batch(workspace.LoadFinance(s), workspace.LoadBalance(s)))(s)
		}, nil
	}), nil
}

// -- Manage

func openManage(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	groupID, err := requireGroup(s, "Сначала выберите общую группу")
	if err != nil {
		return nil, err
	}
	mode := workspace.ManageCategories
	if value(inv, "mode") == string(workspace.ManageMethods) {
		mode = workspace.ManageMethods
	}
	s.State().ManageMode = mode
	return tea.Batch(
		workspace.LoadFinanceMeta(s, groupID),
		workspace.Navigate(workspace.ScreenManage, true),
	), nil
}

// metaMutated drops the group's cached metadata and reloads what shows it.
func metaMutated(s *workspace.Session, groupID int64) tea.Cmd {
	s.State().FinanceMeta.Invalidate(groupID)
	return tea.Batch(workspace.LoadFinanceMeta(s, groupID), workspace.LoadGroupFinance(s))
}

func manageAdd(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	groupID, err := requireGroup(s, "Сначала выберите общую группу")
	if err != nil {
		return nil, err
	}
	name := value(inv, "name")
	if name == "" {
		return nil, nil
	}
	kind := s.State().ManageMode.Kind()
	return workspace.Async(s, string(workspace.ActionManageAdd), func(ctx context.Context) (workspace.Continuation, error) {
		if err := s.API().CreateMetaItem(ctx, groupID, kind, name); err != nil {
			return nil, failed("Не удалось добавить: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			s.State().Modal = workspace.ModalNone
			return metaMutated(s, groupID), nil
		}, nil
	}), nil
}

func manageDelete(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	groupID, err := requireGroup(s, "Сначала выберите общую группу")
	if err != nil {
		return nil, err
	}
	id, err := inv.ID("id")
	if err != nil {
		return nil, err
	}
	kind := s.State().ManageMode.Kind()
	return workspace.Async(s, string(workspace.ActionManageDelete), func(ctx context.Context) (workspace.Continuation, error) {
		if err := s.API().DeleteMetaItem(ctx, groupID, kind, id); err != nil {
			return nil, failed("Не удалось удалить: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			return metaMutated(s, groupID), nil
		}, nil
	}), nil
}

// -- Settings

func saveNotifications(s *workspace.Session, inv workspace.Invocation) (tea.Cmd, error) {
	settings := models.NotificationSettings{
		NotifyNewTask:     inv.Get("new_task") == "true",
		NotifyTaskUpdates: inv.Get("task_updates") == "true",
	}
	return workspace.Async(s, string(workspace.ActionSettingsSaveNotifications), func(ctx context.Context) (workspace.Continuation, error) {
		if err := s.API().UpdateNotificationSettings(ctx, settings); err != nil {
			return nil, failed("Не удалось сохранить: ", err)
		}
		return func(s *workspace.Session) (tea.Cmd, error) {
			s.State().Notifications = &settings
			return workspace.Alert("Сохранено"), nil
		}, nil
	}), nil
}
