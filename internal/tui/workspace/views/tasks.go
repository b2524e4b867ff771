package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/tui/empty"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

// Tasks lists the undone personal tasks due on the selected date.
type Tasks struct {
	session  *workspace.Session
	list     *widget.List
	calendar *calendarOverlay

	width, height int
}

// NewTasks creates the per-day task view.
func NewTasks(session *workspace.Session) *Tasks {
	list := widget.NewList(session.Styles())
	list.SetEmptyMessage(empty.NoTasksForDay())
	list.SetFocused(true)
	return &Tasks{session: session, list: list, calendar: newCalendarOverlay(session)}
}

// Title implements View.
func (v *Tasks) Title() string { return "Задачи" }

// ShortHelp implements View.
func (v *Tasks) ShortHelp() []key.Binding {
	if v.calendar.open() {
		return calendarHints()
	}
	return append([]key.Binding{binding("enter", "open"), binding("x", "done"), binding("a", "add")}, dateHints()...)
}

// FullHelp implements View.
func (v *Tasks) FullHelp() [][]key.Binding {
	lk := workspace.DefaultListKeyMap()
	return [][]key.Binding{
		{lk.Up, lk.Open, binding("x", "mark done"), binding("a", "add")},
		append(dateHints(), pagerHints()...),
	}
}

// IsModal implements workspace.ModalActive.
func (v *Tasks) IsModal() bool { return v.calendar.open() }

// SetSize implements View.
func (v *Tasks) SetSize(w, h int) {
	v.width, v.height = w, h
	v.list.SetSize(w, max(h-3, 3))
}

// Load implements View.
func (v *Tasks) Load() tea.Cmd {
	if len(v.session.State().TasksCache) > 0 {
		return nil
	}
	return workspace.LoadPersonalTasks(v.session)
}

// Init implements tea.Model.
func (v *Tasks) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (v *Tasks) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	if v.calendar.open() {
		return v, v.calendar.update(keyMsg)
	}
	v.sync()

	switch keyMsg.String() {
	case "enter":
		if id, ok := selectedID(v.list); ok {
			return v, dispatch(workspace.ActionTasksOpen, "id", id)
		}
		return v, nil
	case "x":
		if id, ok := selectedID(v.list); ok {
			return v, dispatch(workspace.ActionTasksMarkDone, "id", id)
		}
		return v, nil
	case "a":
		return v, dispatch(workspace.ActionAddOpen)
	}
	if cmd, ok := pageKey(keyMsg, workspace.PageTasks); ok {
		return v, cmd
	}
	if cmd, ok := dateKey(keyMsg); ok {
		return v, cmd
	}
	return v, v.list.Update(keyMsg)
}

func (v *Tasks) sync() {
	tasks, footer := pageOf(v.session, workspace.PageTasks, dayTasks(v.session))
	v.list.SetItems(taskItems(v.session, tasks))
	v.list.SetFooter(footer)
}

// View implements tea.Model.
func (v *Tasks) View() string {
	v.sync()
	body := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join([]string{
		dateBar(v.session),
		"",
		v.list.View(),
	}, "\n"))
	if v.calendar.open() {
		return overlay(body, v.calendar.view())
	}
	return body
}
