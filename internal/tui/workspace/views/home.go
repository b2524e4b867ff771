package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/empty"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

// Home is the dashboard: date bar, balance, day summary and the personal
// task list.
type Home struct {
	session  *workspace.Session
	styles   *tui.Styles
	list     *widget.List
	calendar *calendarOverlay

	width, height int
}

// NewHome creates the dashboard view.
func NewHome(session *workspace.Session) *Home {
	list := widget.NewList(session.Styles())
	list.SetFocused(true)
	return &Home{
		session:  session,
		styles:   session.Styles(),
		list:     list,
		calendar: newCalendarOverlay(session),
	}
}

// Title implements View.
func (v *Home) Title() string { return "Главная" }

// ShortHelp implements View.
func (v *Home) ShortHelp() []key.Binding {
	if v.calendar.open() {
		return calendarHints()
	}
	return []key.Binding{
		binding("enter", "open"),
		binding("x", "done"),
		binding("f", "filter"),
		binding("a", "add"),
		workspace.DefaultDateKeyMap().Calendar,
	}
}

// FullHelp implements View.
func (v *Home) FullHelp() [][]key.Binding {
	lk := workspace.DefaultListKeyMap()
	return [][]key.Binding{
		{lk.Up, lk.Open, binding("x", "mark done"), binding("a", "add")},
		{binding("f", "task filter"), binding("v", "summary filter")},
		append(dateHints(), pagerHints()...),
	}
}

// IsModal implements workspace.ModalActive.
func (v *Home) IsModal() bool { return v.calendar.open() }

// SetSize implements View.
func (v *Home) SetSize(w, h int) {
	v.width, v.height = w, h
	v.list.SetSize(w, max(h-8, 3))
}

// Load implements View.
func (v *Home) Load() tea.Cmd {
	return tea.Batch(
		workspace.LoadPersonalTasks(v.session),
		workspace.LoadFinance(v.session),
		workspace.LoadBalance(v.session),
	)
}

// Init implements tea.Model.
func (v *Home) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (v *Home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	if v.calendar.open() {
		return v, v.calendar.update(keyMsg)
	}
	v.sync()

	st := v.session.State()
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
	case "f":
		return v, dispatch(workspace.ActionHomeSetFilter, "filter", string(nextOf(dateutil.FilterModes, st.HomeFilter)))
	case "v":
		return v, dispatch(workspace.ActionDateSetFilter, "filter", string(nextOf(workspace.TopFilters, st.TopFilter)))
	case "a":
		return v, dispatch(workspace.ActionAddOpen)
	}
	if cmd, ok := pageKey(keyMsg, workspace.PageHome); ok {
		return v, cmd
	}
	if cmd, ok := dateKey(keyMsg); ok {
		return v, cmd
	}
	return v, v.list.Update(keyMsg)
}

func (v *Home) sync() {
	st := v.session.State()
	tasks, footer := pageOf(v.session, workspace.PageHome, homeTasks(v.session))
	v.list.SetItems(taskItems(v.session, tasks))
	v.list.SetFooter(footer)
	v.list.SetEmptyMessage(empty.NoTasksForFilter(string(st.HomeFilter)))
}

// View implements tea.Model.
func (v *Home) View() string {
	v.sync()
	st := v.session.State()

	urgent := st.UrgentCount(st.TasksCache, v.session.Now())
	stats := v.styles.RenderKeyValue("Баланс", format.Balance(st.Balance, st.Locale))
	if urgent > 0 {
		stats += "   " + v.styles.Urgent.Render("❗ "+countLabel(urgent, "срочных"))
	}

	sections := []string{
		dateBar(v.session),
		topChips(v.styles, st.TopFilter),
		stats,
		v.daySummary(),
		"",
		filterChips(v.styles, st.HomeFilter),
		v.list.View(),
	}
	body := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(sections, "\n"))
	if v.calendar.open() {
		return overlay(body, v.calendar.view())
	}
	return body
}

// daySummary describes the selected day according to the top filter.
func (v *Home) daySummary() string {
	st := v.session.State()
	var parts []string
	if st.TopFilter.ShowsTasks() {
		parts = append(parts, countLabel(len(st.TasksOn(st.SelectedDate)), "задач на день"))
	}
	if st.TopFilter.ShowsFinance() {
		var total int64
		entries := st.FinanceOn(st.SelectedDate)
		for _, f := range entries {
			total += f.Amount
		}
		money := format.Placeholder
		if len(entries) > 0 {
			money = format.Signed(total, st.Locale)
		}
		parts = append(parts, "операции: "+money)
	}
	return v.styles.Muted.Render(strings.Join(parts, " · "))
}
