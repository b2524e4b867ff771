package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

type taskField int

const (
	taskTitle taskField = iota
	taskDescription
	taskStatus
	taskDeadline
	taskDone
	taskAssignees
	taskFieldCount
)

var taskFieldLabels = [taskFieldCount]string{
	"Название", "Описание", "Статус", "Срок", "Выполнено", "Соисполнители",
}

// Task is the task detail screen: an edit form next to a rendered preview
// of the description.
type Task struct {
	session *workspace.Session
	styles  *tui.Styles

	split   *widget.SplitPane
	preview *widget.Preview

	title       textinput.Model
	description textarea.Model
	deadline    textinput.Model
	status      string
	done        bool
	picked      map[int64]bool
	pickCursor  int

	focus    taskField
	loadedID int64

	width, height int
}

// NewTask creates the task detail view.
func NewTask(session *workspace.Session) *Task {
	styles := session.Styles()

	title := textinput.New()
	title.Prompt = ""
	title.CharLimit = 256

	desc := textarea.New()
	desc.ShowLineNumbers = false
	desc.Placeholder = "Markdown поддерживается"
	desc.SetHeight(5)

	deadline := textinput.New()
	deadline.Prompt = ""
	deadline.Placeholder = "YYYY-MM-DD, завтра, +3 (пусто: без срока)"

	return &Task{
		session:     session,
		styles:      styles,
		split:       widget.NewSplitPane(styles, 0.55),
		preview:     widget.NewPreview(styles),
		title:       title,
		description: desc,
		deadline:    deadline,
		picked:      make(map[int64]bool),
	}
}

// Title implements View.
func (v *Task) Title() string { return "Задача" }

// ShortHelp implements View.
func (v *Task) ShortHelp() []key.Binding {
	return []key.Binding{
		binding("tab", "next field"),
		binding("ctrl+s", "save"),
		binding("ctrl+d", "mark done"),
		binding("esc", "back"),
	}
}

// FullHelp implements View.
func (v *Task) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{binding("tab", "next field"), binding("shift+tab", "previous field")},
		{bindingKeys("←/→", "status / assignee", "left", "right"), binding("space", "toggle")},
		{binding("ctrl+s", "save"), binding("ctrl+d", "mark done"), binding("esc", "back")},
	}
}

// InputActive implements workspace.InputCapturer.
func (v *Task) InputActive() bool { return true }

// IsModal implements workspace.ModalActive.
func (v *Task) IsModal() bool { return true }

// SetSize implements View.
func (v *Task) SetSize(w, h int) {
	v.width, v.height = w, h
	v.split.SetSize(w, h)
	formW := v.split.LeftWidth() - 4
	if v.split.IsCollapsed() {
		formW = w - 4
	}
	v.title.Width = max(formW, 10)
	v.deadline.Width = max(formW, 10)
	v.description.SetWidth(max(formW, 10))
	v.preview.SetSize(v.split.RightWidth()-1, h)
}

// Load implements View.
func (v *Task) Load() tea.Cmd {
	st := v.session.State()
	if st.CurrentTaskID == 0 {
		return nil
	}
	if st.CurrentTask == nil || st.CurrentTask.ID != st.CurrentTaskID {
		v.loadedID = 0
	}
	groupID := int64(0)
	if st.CurrentTask != nil {
		groupID = st.CurrentTask.GroupID
	}
	return tea.Batch(
		workspace.LoadTask(v.session, st.CurrentTaskID),
		workspace.LoadUsers(v.session, groupID),
	)
}

// Init implements tea.Model.
func (v *Task) Init() tea.Cmd { return nil }

// sync fills the form the first time a task arrives.
func (v *Task) sync() {
	t := v.session.State().CurrentTask
	if t == nil || t.ID == v.loadedID {
		return
	}
	v.loadedID = t.ID
	v.title.SetValue(t.Title)
	v.description.SetValue(t.Description)
	v.deadline.SetValue(t.DeadlineISO())
	v.status = t.Status
	if v.status == "" {
		v.status = models.TaskStatusNew
	}
	v.done = t.Done
	v.picked = make(map[int64]bool)
	for _, u := range t.AdditionalAssignees {
		v.picked[u.ID] = true
	}
	v.pickCursor = 0
	v.focus = taskTitle
	v.refocus()
}

func (v *Task) refocus() {
	v.title.Blur()
	v.deadline.Blur()
	v.description.Blur()
	switch v.focus {
	case taskTitle:
		v.title.Focus()
	case taskDeadline:
		v.deadline.Focus()
	case taskDescription:
		v.description.Focus()
	}
}

// candidates are the users who can be added as co-assignees.
func (v *Task) candidates() []models.User {
	t := v.session.State().CurrentTask
	if t == nil {
		return nil
	}
	var out []models.User
	for _, u := range workspace.Assignees(v.session, t.GroupID) {
		if t.Responsible != nil && u.ID == t.Responsible.ID {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Update implements tea.Model.
func (v *Task) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	v.sync()
	st := v.session.State()

	switch keyMsg.String() {
	case "esc":
		return v, dispatch(workspace.ActionNavBack)
	case "ctrl+s":
		if st.CurrentTask == nil {
			return v, nil
		}
		return v, v.save()
	case "ctrl+d":
		if st.CurrentTaskID == 0 {
			return v, nil
		}
		return v, dispatch(workspace.ActionTasksMarkDone, "id", strconv.FormatInt(st.CurrentTaskID, 10))
	case "tab":
		v.focus = (v.focus + 1) % taskFieldCount
		v.refocus()
		return v, nil
	case "shift+tab":
		v.focus = (v.focus - 1 + taskFieldCount) % taskFieldCount
		v.refocus()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focus {
	case taskTitle:
		v.title, cmd = v.title.Update(keyMsg)
	case taskDescription:
		v.description, cmd = v.description.Update(keyMsg)
	case taskDeadline:
		v.deadline, cmd = v.deadline.Update(keyMsg)
	case taskStatus:
		switch keyMsg.String() {
		case "left", "h":
			v.status = prevOf(models.TaskStatuses, v.status)
		case "right", "l", " ":
			v.status = nextOf(models.TaskStatuses, v.status)
		}
	case taskDone:
		if s := keyMsg.String(); s == " " || s == "enter" || s == "x" {
			v.done = !v.done
		}
	case taskAssignees:
		users := v.candidates()
		if len(users) == 0 {
			return v, nil
		}
		switch keyMsg.String() {
		case "left", "h":
			v.pickCursor = max(v.pickCursor-1, 0)
		case "right", "l":
			v.pickCursor = min(v.pickCursor+1, len(users)-1)
		case " ", "x":
			id := users[min(v.pickCursor, len(users)-1)].ID
			v.picked[id] = !v.picked[id]
		}
	}
	return v, cmd
}

// prevOf returns the element before cur in order, wrapping around.
func prevOf[T comparable](order []T, cur T) T {
	for i, x := range order {
		if x == cur {
			return order[(i-1+len(order))%len(order)]
		}
	}
	return order[0]
}

func (v *Task) save() tea.Cmd {
	var ids []string
	for _, u := range v.candidates() {
		if v.picked[u.ID] {
			ids = append(ids, strconv.FormatInt(u.ID, 10))
		}
	}
	return dispatch(workspace.ActionTasksSaveDetails,
		"id", strconv.FormatInt(v.loadedID, 10),
		"title", v.title.Value(),
		"description", v.description.Value(),
		"status", v.status,
		"deadline", v.deadline.Value(),
		"done", strconv.FormatBool(v.done),
		"assignees", strings.Join(ids, ","),
	)
}

// View implements tea.Model.
func (v *Task) View() string {
	v.sync()
	st := v.session.State()
	t := st.CurrentTask
	if t == nil {
		return lipgloss.NewStyle().Padding(1, 2).Foreground(v.styles.Theme().Muted).Render("Загрузка…")
	}

	v.preview.SetTitle(format.TaskTitle(*t))
	fields := []widget.PreviewField{
		{Key: "Статус", Value: format.Status(*t)},
		{Key: "Срок", Value: format.Deadline(*t, st.Locale)},
	}
	if who := format.Assignees(*t); who != "" {
		fields = append(fields, widget.PreviewField{Key: "Исполнители", Value: who})
	}
	if t.AssignedBy != nil {
		fields = append(fields, widget.PreviewField{Key: "Поставил", Value: t.AssignedBy.DisplayName()})
	}
	v.preview.SetFields(fields)
	v.preview.SetBody(v.description.Value())

	v.split.SetContent(v.formView(), v.preview.View())
	return v.split.View()
}

func (v *Task) formView() string {
	var lines []string
	for f := taskField(0); f < taskFieldCount; f++ {
		label := v.styles.Muted
		if f == v.focus {
			label = v.styles.Focused
		}
		lines = append(lines, label.Render(taskFieldLabels[f]), v.fieldView(f), "")
	}
	lines = append(lines, v.styles.Muted.Render("ctrl+s сохранить · ctrl+d выполнено · esc назад"))
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (v *Task) fieldView(f taskField) string {
	switch f {
	case taskTitle:
		return "  " + v.title.View()
	case taskDescription:
		return v.description.View()
	case taskDeadline:
		return "  " + v.deadline.View()
	case taskStatus:
		label := format.Status(models.Task{Status: v.status})
		if f == v.focus {
			return "  " + v.styles.Selected.Render("‹ "+label+" ›")
		}
		return "  " + label
	case taskDone:
		return "  " + v.styles.RenderCheckbox(v.done, "")
	case taskAssignees:
		users := v.candidates()
		if len(users) == 0 {
			return v.styles.Muted.Render("  " + format.Placeholder)
		}
		var parts []string
		for i, u := range users {
			item := v.styles.RenderCheckbox(v.picked[u.ID], u.DisplayName())
			if f == v.focus && i == v.pickCursor {
				item = v.styles.Selected.Render(item)
			}
			parts = append(parts, item)
		}
		return "  " + strings.Join(parts, "  ")
	}
	return ""
}
