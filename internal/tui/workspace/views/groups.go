package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/empty"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

// Groups is the shared group screen: the group list on the left, the
// selected group's tasks or ledger on the right.
type Groups struct {
	session *workspace.Session
	styles  *tui.Styles

	split  *widget.SplitPane
	groups *widget.List
	tasks  *widget.List
	ledger *widget.List
	prompt *prompt

	width, height int
}

// NewGroups creates the shared group view.
func NewGroups(session *workspace.Session) *Groups {
	styles := session.Styles()

	groups := widget.NewList(styles)
	groups.SetEmptyMessage(empty.NoSharedGroups())

	tasks := widget.NewList(styles)
	tasks.SetFocused(true)

	ledger := widget.NewList(styles)
	ledger.SetEmptyMessage(empty.NoGroupFinance())
	ledger.SetFocused(true)

	return &Groups{
		session: session,
		styles:  styles,
		split:   widget.NewSplitPane(styles, 0.3),
		groups:  groups,
		tasks:   tasks,
		ledger:  ledger,
		prompt:  newPrompt(session),
	}
}

// Title implements View.
func (v *Groups) Title() string { return "Группы" }

// ShortHelp implements View.
func (v *Groups) ShortHelp() []key.Binding {
	if v.prompt.active() {
		return promptHints()
	}
	return []key.Binding{
		bindingKeys("J/K", "group", "J", "K"),
		binding("t", "tab"),
		binding("a", "add"),
		binding("i", "invite"),
		binding("n", "new group"),
	}
}

// FullHelp implements View.
func (v *Groups) FullHelp() [][]key.Binding {
	lk := workspace.DefaultListKeyMap()
	return [][]key.Binding{
		{bindingKeys("J/K", "switch group", "J", "K"), binding("t", "tasks/finance"), binding("f", "filter")},
		{lk.Up, lk.Open, binding("x", "mark done"), binding("a", "add")},
		{binding("n", "new group"), binding("i", "invite"), binding("y", "copy invite")},
		{binding("m", "categories"), binding("p", "payment methods")},
		pagerHints(),
	}
}

// InputActive implements workspace.InputCapturer.
func (v *Groups) InputActive() bool {
	v.syncPrompt()
	return v.prompt.active()
}

// IsModal implements workspace.ModalActive.
func (v *Groups) IsModal() bool { return v.InputActive() }

// SetSize implements View.
func (v *Groups) SetSize(w, h int) {
	v.width, v.height = w, h
	v.split.SetSize(w, h)
	v.groups.SetSize(v.split.LeftWidth()-1, h)
	v.tasks.SetSize(v.split.RightWidth()-2, max(h-4, 3))
	v.ledger.SetSize(v.split.RightWidth()-2, max(h-4, 3))
}

// Load implements View.
func (v *Groups) Load() tea.Cmd {
	return workspace.LoadGroupsThen(v.session, loadCommonTab)
}

// Init implements tea.Model.
func (v *Groups) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (v *Groups) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	v.syncPrompt()
	if v.prompt.active() {
		return v, v.prompt.update(keyMsg)
	}
	v.sync()

	st := v.session.State()
	switch keyMsg.String() {
	case "J":
		return v, v.stepGroup(1)
	case "K":
		return v, v.stepGroup(-1)
	case "t":
		tab := workspace.TabFinance
		if st.CommonTab == workspace.TabFinance {
			tab = workspace.TabTasks
		}
		return v, dispatch(workspace.ActionGroupsSetTab, "tab", string(tab))
	case "f":
		return v, dispatch(workspace.ActionGroupsSetFilter, "filter", string(nextOf(dateutil.FilterModes, st.GroupFilter)))
	case "n":
		return v, dispatch(workspace.ActionGroupsOpenCreate)
	case "i":
		return v, dispatch(workspace.ActionGroupsOpenInvite)
	case "y":
		return v, dispatch(workspace.ActionGroupsCopyInvite)
	case "m":
		return v, dispatch(workspace.ActionManageOpen, "mode", string(workspace.ManageCategories))
	case "p":
		return v, dispatch(workspace.ActionManageOpen, "mode", string(workspace.ManageMethods))
	case "a":
		return v, dispatch(workspace.ActionAddOpen)
	}

	if st.CommonTab == workspace.TabFinance {
		return v, v.ledger.Update(keyMsg)
	}
	switch keyMsg.String() {
	case "enter":
		if id, ok := selectedID(v.tasks); ok {
			return v, dispatch(workspace.ActionTasksOpen, "id", id)
		}
		return v, nil
	case "x":
		if id, ok := selectedID(v.tasks); ok {
			return v, dispatch(workspace.ActionTasksMarkDone, "id", id)
		}
		return v, nil
	}
	if cmd, ok := pageKey(keyMsg, workspace.PageGroup); ok {
		return v, cmd
	}
	return v, v.tasks.Update(keyMsg)
}

// stepGroup selects the shared group delta positions away, wrapping.
func (v *Groups) stepGroup(delta int) tea.Cmd {
	shared := v.session.State().SharedGroups()
	if len(shared) == 0 {
		return nil
	}
	idx := 0
	for i, g := range shared {
		if g.ID == v.session.State().SelectedGroupID {
			idx = i
		}
	}
	idx = (idx + delta + len(shared)) % len(shared)
	return dispatch(workspace.ActionGroupsSelect, "id", strconv.FormatInt(shared[idx].ID, 10))
}

func (v *Groups) syncPrompt() {
	switch v.session.State().Modal {
	case workspace.ModalCreateGroup:
		v.prompt.configure(workspace.ModalCreateGroup, "Новая группа", "название", workspace.ActionGroupsCreate, "name")
	case workspace.ModalInvite:
		v.prompt.configure(workspace.ModalInvite, "Пригласить участника", "@username", workspace.ActionGroupsSendInviteByUsername, "username")
	default:
		if v.prompt.modal != workspace.ModalNone {
			v.prompt.reset()
		}
	}
}

func (v *Groups) sync() {
	st := v.session.State()

	shared := st.SharedGroups()
	items := make([]widget.ListItem, 0, len(shared))
	cursor := 0
	for i, g := range shared {
		if g.ID == st.SelectedGroupID {
			cursor = i
		}
		items = append(items, widget.ListItem{
			ID:          strconv.FormatInt(g.ID, 10),
			Title:       g.Label(),
			Description: format.Members(g),
		})
	}
	v.groups.SetItems(items)
	v.groups.SetCursor(cursor)
	v.groups.SetFocused(true)

	tasks, footer := pageOf(v.session, workspace.PageGroup, groupTasks(v.session))
	v.tasks.SetItems(taskItems(v.session, tasks))
	v.tasks.SetFooter(footer)
	v.tasks.SetEmptyMessage(empty.NoTasksForFilter(string(st.GroupFilter)))

	if st.GroupFinance != nil {
		v.ledger.SetItems(groupFinanceItems(v.session, st.GroupFinance.Items))
	} else {
		v.ledger.SetItems(nil)
		v.ledger.SetLoading(true)
	}
}

// View implements tea.Model.
func (v *Groups) View() string {
	v.syncPrompt()
	v.sync()

	v.split.SetContent(v.groups.View(), v.rightPanel())
	body := v.split.View()
	if v.prompt.active() {
		return overlay(body, v.prompt.view(v.width))
	}
	return body
}

func (v *Groups) rightPanel() string {
	st := v.session.State()
	group, ok := st.SelectedGroup()
	if !ok {
		msg := empty.NoGroupSelected()
		return v.styles.Heading.Render(msg.Title) + "\n" + v.styles.Muted.Render(msg.Body)
	}

	tabs := v.styles.RenderChip("Задачи", st.CommonTab == workspace.TabTasks) + " " +
		v.styles.RenderChip("Финансы", st.CommonTab == workspace.TabFinance)
	header := v.styles.Heading.Render(group.Label()) + "  " + tabs

	var sections []string
	if st.CommonTab == workspace.TabFinance {
		sections = []string{header, v.financeHeader(group), "", v.ledger.View()}
	} else {
		line := filterChips(v.styles, st.GroupFilter)
		if n := st.UrgentCount(st.GroupTasksCache, v.session.Now()); n > 0 {
			line += "  " + v.styles.Urgent.Render("❗ "+countLabel(n, "срочных"))
		}
		sections = []string{header, line, "", v.tasks.View()}
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(strings.Join(sections, "\n"))
}

func (v *Groups) financeHeader(group models.Group) string {
	st := v.session.State()
	var balance *int64
	if st.GroupFinance != nil {
		balance = &st.GroupFinance.Balance
	}
	line := v.styles.RenderKeyValue("Баланс", format.Balance(balance, st.Locale))
	if meta, ok := st.FinanceMeta.Peek(group.ID); ok {
		line += v.styles.Muted.Render("   " + countLabel(len(meta.Categories), "кат.") + " · " + countLabel(len(meta.Methods), "спос."))
	}
	return line
}
