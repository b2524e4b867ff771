package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

var filterLabels = map[dateutil.FilterMode]string{
	dateutil.FilterToday:    "Сегодня",
	dateutil.FilterTomorrow: "Завтра",
	dateutil.FilterFivePlus: "5+ дней",
	dateutil.FilterAll:      "Все",
}

var topFilterLabels = map[workspace.TopFilter]string{
	workspace.TopTasks:   "Задачи",
	workspace.TopFinance: "Финансы",
	workspace.TopAll:     "Всё",
}

// nextOf returns the element after cur in order, wrapping around.
func nextOf[T comparable](order []T, cur T) T {
	for i, v := range order {
		if v == cur {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}

// filterChips renders the day-bucket filter row with mode highlighted.
func filterChips(styles *tui.Styles, mode dateutil.FilterMode) string {
	chips := make([]string, 0, len(dateutil.FilterModes))
	for _, m := range dateutil.FilterModes {
		chips = append(chips, styles.RenderChip(filterLabels[m], m == mode))
	}
	return strings.Join(chips, " ")
}

// topChips renders the home top filter row.
func topChips(styles *tui.Styles, f workspace.TopFilter) string {
	chips := make([]string, 0, len(workspace.TopFilters))
	for _, t := range workspace.TopFilters {
		chips = append(chips, styles.RenderChip(topFilterLabels[t], t == f))
	}
	return strings.Join(chips, " ")
}

// dateBar renders "‹ Сегодня · Пт, 17 мая ›" for the selected date.
func dateBar(s *workspace.Session) string {
	st := s.State()
	styles := s.Styles()
	rel := dateutil.RelativeLabel(st.SelectedDate, s.Now(), st.Locale)
	pretty := dateutil.PrettyLabel(st.SelectedDate, st.Locale)
	return styles.Muted.Render("‹ ") + styles.Heading.Render(rel) +
		styles.Muted.Render(" · "+pretty+" ›")
}

// dateKey maps the date bar keys onto actions.
func dateKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	keys := workspace.DefaultDateKeyMap()
	var id workspace.ActionID
	switch {
	case key.Matches(msg, keys.Prev):
		id = workspace.ActionDatePrev
	case key.Matches(msg, keys.Next):
		id = workspace.ActionDateNext
	case key.Matches(msg, keys.Today):
		id = workspace.ActionDateToday
	case key.Matches(msg, keys.Calendar):
		id = workspace.ActionDateOpenCalendar
	default:
		return nil, false
	}
	return workspace.Dispatch(workspace.Invoke(id)), true
}

func dateHints() []key.Binding {
	keys := workspace.DefaultDateKeyMap()
	return []key.Binding{keys.Prev, keys.Today, keys.Calendar}
}

// pageKey maps the pager keys onto page actions for list.
func pageKey(msg tea.KeyMsg, list workspace.PageKey) (tea.Cmd, bool) {
	keys := workspace.DefaultListKeyMap()
	switch {
	case key.Matches(msg, keys.PrevPage):
		return workspace.Dispatch(workspace.Invoke(workspace.ActionPagePrev, "list", string(list))), true
	case key.Matches(msg, keys.NextPage):
		return workspace.Dispatch(workspace.Invoke(workspace.ActionPageNext, "list", string(list))), true
	}
	return nil, false
}

// dispatch is shorthand for dispatching an activate invocation.
func dispatch(id workspace.ActionID, kv ...string) tea.Cmd {
	return workspace.Dispatch(workspace.Invoke(id, kv...))
}

// -- Calendar overlay

// calendarOverlay is the month picker shown while the calendar modal is
// open. Its month follows State; the day cursor is local.
type calendarOverlay struct {
	session *workspace.Session
	cal     *widget.Calendar
}

func newCalendarOverlay(s *workspace.Session) *calendarOverlay {
	return &calendarOverlay{session: s, cal: widget.NewCalendar(s.Styles(), s.Today())}
}

func (c *calendarOverlay) open() bool {
	return c.session.State().Modal == workspace.ModalCalendar
}

func (c *calendarOverlay) sync() {
	st := c.session.State()
	c.cal.SetLocale(st.Locale)
	c.cal.SetToday(c.session.Today())
	c.cal.SetMarkers(st.CalendarMarkers())
	if y, m := c.cal.Month(); y != st.CalendarYear || m != st.CalendarMonth {
		c.cal.SetMonth(st.CalendarYear, st.CalendarMonth)
	}
	c.cal.SetSelected(st.SelectedDate)
}

func (c *calendarOverlay) update(msg tea.KeyMsg) tea.Cmd {
	c.sync()
	switch msg.String() {
	case "left", "h":
		c.cal.MoveCursor(-1)
	case "right", "l":
		c.cal.MoveCursor(1)
	case "up", "k":
		c.cal.MoveCursor(-7)
	case "down", "j":
		c.cal.MoveCursor(7)
	case "<", "pgup":
		return dispatch(workspace.ActionDatePrevMonth)
	case ">", "pgdown":
		return dispatch(workspace.ActionDateNextMonth)
	case "enter":
		return dispatch(workspace.ActionDatePick, "date", c.cal.CursorDate())
	case "esc":
		return dispatch(workspace.ActionDateCloseCalendar)
	}
	return nil
}

func (c *calendarOverlay) view() string {
	c.sync()
	styles := c.session.Styles()
	hint := styles.Muted.Render("←/→ день · ↑/↓ неделя · </> месяц · enter выбрать · esc закрыть")
	return styles.Box.Render(c.cal.View() + "\n\n" + hint)
}

func calendarHints() []key.Binding {
	return []key.Binding{
		bindingKeys("←/→", "day", "left", "right"),
		bindingKeys("</>", "month", "<", ">"),
		binding("enter", "pick"),
		binding("esc", "close"),
	}
}

// -- Inline prompt

// prompt is a one-line text input shown while one of its modals is open.
// Enter dispatches the submit action with the typed value under field.
type prompt struct {
	session *workspace.Session
	input   textinput.Model

	modal  workspace.ModalID
	title  string
	submit workspace.ActionID
	field  string
}

func newPrompt(s *workspace.Session) *prompt {
	in := textinput.New()
	in.CharLimit = 128
	in.Prompt = "› "
	return &prompt{session: s, input: in}
}

// configure prepares the prompt for modal. The input is cleared when the
// modal changes.
func (p *prompt) configure(modal workspace.ModalID, title, placeholder string, submit workspace.ActionID, field string) {
	if p.modal != modal {
		p.input.SetValue("")
	}
	p.modal, p.title, p.submit, p.field = modal, title, submit, field
	p.input.Placeholder = placeholder
	p.input.Focus()
}

func (p *prompt) active() bool {
	return p.modal != workspace.ModalNone && p.session.State().Modal == p.modal
}

func (p *prompt) reset() {
	p.modal = workspace.ModalNone
	p.input.SetValue("")
	p.input.Blur()
}

func (p *prompt) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return dispatch(p.submit, p.field, strings.TrimSpace(p.input.Value()))
	case "esc":
		modal := p.modal
		p.reset()
		return dispatch(workspace.ActionModalClose, "modal", string(modal))
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *prompt) view(width int) string {
	styles := p.session.Styles()
	p.input.Width = max(width-8, 10)
	body := styles.Heading.Render(p.title) + "\n\n" + p.input.View() + "\n\n" +
		styles.Muted.Render("enter сохранить · esc отмена")
	return styles.Box.Render(body)
}

func promptHints() []key.Binding {
	return []key.Binding{binding("enter", "submit"), binding("esc", "cancel")}
}

// overlay places box below the base content, separated by a blank line.
func overlay(base, box string) string {
	if box == "" {
		return base
	}
	return lipgloss.JoinVertical(lipgloss.Left, base, "", box)
}

// countLabel renders "N задач" style counters.
func countLabel(n int, label string) string {
	return fmt.Sprintf("%d %s", n, label)
}
