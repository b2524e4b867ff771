package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/tui/empty"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

// Finance lists the personal ledger entries of the selected date.
type Finance struct {
	session  *workspace.Session
	list     *widget.List
	calendar *calendarOverlay

	width, height int
}

// NewFinance creates the personal finance view.
func NewFinance(session *workspace.Session) *Finance {
	list := widget.NewList(session.Styles())
	list.SetEmptyMessage(empty.NoFinanceForDay())
	list.SetFocused(true)
	return &Finance{session: session, list: list, calendar: newCalendarOverlay(session)}
}

// Title implements View.
func (v *Finance) Title() string { return "Финансы" }

// ShortHelp implements View.
func (v *Finance) ShortHelp() []key.Binding {
	if v.calendar.open() {
		return calendarHints()
	}
	return append([]key.Binding{binding("a", "add")}, dateHints()...)
}

// FullHelp implements View.
func (v *Finance) FullHelp() [][]key.Binding {
	lk := workspace.DefaultListKeyMap()
	return [][]key.Binding{{lk.Up, binding("a", "add entry")}, dateHints()}
}

// IsModal implements workspace.ModalActive.
func (v *Finance) IsModal() bool { return v.calendar.open() }

// SetSize implements View.
func (v *Finance) SetSize(w, h int) {
	v.width, v.height = w, h
	v.list.SetSize(w, max(h-4, 3))
}

// Load implements View.
func (v *Finance) Load() tea.Cmd {
	return tea.Batch(workspace.LoadFinance(v.session), workspace.LoadBalance(v.session))
}

// Init implements tea.Model.
func (v *Finance) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (v *Finance) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	if v.calendar.open() {
		return v, v.calendar.update(keyMsg)
	}
	v.sync()

	if keyMsg.String() == "a" {
		return v, dispatch(workspace.ActionAddOpen)
	}
	if cmd, ok := dateKey(keyMsg); ok {
		return v, cmd
	}
	return v, v.list.Update(keyMsg)
}

func (v *Finance) sync() {
	st := v.session.State()
	v.list.SetItems(financeItems(v.session, st.FinanceOn(st.SelectedDate)))
}

// View implements tea.Model.
func (v *Finance) View() string {
	v.sync()
	st := v.session.State()
	styles := v.session.Styles()
	body := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join([]string{
		dateBar(v.session),
		styles.RenderKeyValue("Баланс", format.Balance(st.Balance, st.Locale)),
		"",
		v.list.View(),
	}, "\n"))
	if v.calendar.open() {
		return overlay(body, v.calendar.view())
	}
	return body
}
