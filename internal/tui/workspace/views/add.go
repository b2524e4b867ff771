package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/format"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

type addField int

const (
	fieldTitle addField = iota
	fieldDescription
	fieldDeadline
	fieldAssignees
	fieldAmount
	fieldCategory
	fieldMethod
)

var addFieldLabels = map[addField]string{
	fieldTitle:       "Название",
	fieldDescription: "Описание",
	fieldDeadline:    "Срок",
	fieldAssignees:   "Исполнители",
	fieldAmount:      "Сумма",
	fieldCategory:    "Категория",
	fieldMethod:      "Способ оплаты",
}

var addTypeLabels = map[workspace.AddType]string{
	workspace.AddTask:    "Задача",
	workspace.AddExpense: "Расход",
	workspace.AddIncome:  "Доход",
}

// defaultDeadlineDays is how far ahead a new task's deadline starts.
const defaultDeadlineDays = 7

// Add is the create form for tasks and ledger entries. The fields shown
// depend on the add type and on whether a shared group is in context.
type Add struct {
	session *workspace.Session
	styles  *tui.Styles

	inputs map[addField]*textinput.Model
	focus  int

	// Assignee picker
	picked      map[int64]bool
	pickCursor  int
	pickTouched bool

	// Finance metadata pickers; 0 means none.
	category int
	method   int

	width, height int
}

// NewAdd creates the add form.
func NewAdd(session *workspace.Session) *Add {
	v := &Add{
		session: session,
		styles:  session.Styles(),
		inputs:  make(map[addField]*textinput.Model),
	}
	for _, f := range []addField{fieldTitle, fieldDescription, fieldDeadline, fieldAmount} {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		v.inputs[f] = &in
	}
	v.inputs[fieldDeadline].Placeholder = "YYYY-MM-DD, завтра, +3, eow"
	v.inputs[fieldAmount].Placeholder = "0"
	v.reset()
	return v
}

// Title implements View.
func (v *Add) Title() string { return "Добавить" }

// ShortHelp implements View.
func (v *Add) ShortHelp() []key.Binding {
	return []key.Binding{
		binding("tab", "next field"),
		binding("ctrl+t", "type"),
		binding("ctrl+s", "save"),
		binding("esc", "cancel"),
	}
}

// FullHelp implements View.
func (v *Add) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{binding("tab", "next field"), binding("shift+tab", "previous field")},
		{bindingKeys("←/→", "pick", "left", "right"), binding("space", "toggle assignee")},
		{binding("ctrl+t", "change type"), binding("ctrl+s", "save"), binding("esc", "cancel")},
	}
}

// InputActive implements workspace.InputCapturer.
func (v *Add) InputActive() bool { return true }

// IsModal implements workspace.ModalActive.
func (v *Add) IsModal() bool { return true }

// SetSize implements View.
func (v *Add) SetSize(w, h int) {
	v.width, v.height = w, h
	for _, in := range v.inputs {
		in.Width = max(min(w-20, 60), 10)
	}
}

// Load implements View.
func (v *Add) Load() tea.Cmd {
	v.reset()
	st := v.session.State()
	cmds := []tea.Cmd{workspace.LoadUsers(v.session, contextGroupID(v.session))}
	if st.AddInGroup {
		cmds = append(cmds, workspace.LoadFinanceMeta(v.session, st.SelectedGroupID))
	}
	return tea.Batch(cmds...)
}

// Init implements tea.Model.
func (v *Add) Init() tea.Cmd { return nil }

func (v *Add) reset() {
	for _, in := range v.inputs {
		in.SetValue("")
	}
	v.inputs[fieldDeadline].SetValue(dateutil.AddDays(v.session.Today(), defaultDeadlineDays))
	v.picked = make(map[int64]bool)
	v.pickCursor, v.pickTouched = 0, false
	v.category, v.method = 0, 0
	v.focus = 0
	v.refocus()
}

// groupFinance reports whether the form creates a shared ledger entry.
func (v *Add) groupFinance() bool {
	st := v.session.State()
	return st.AddType != workspace.AddTask && st.AddInGroup && st.CommonTab == workspace.TabFinance
}

func (v *Add) fields() []addField {
	switch {
	case v.session.State().AddType == workspace.AddTask:
		return []addField{fieldTitle, fieldDescription, fieldDeadline, fieldAssignees}
	case v.groupFinance():
		return []addField{fieldAmount, fieldDescription, fieldCategory, fieldMethod}
	default:
		return []addField{fieldTitle, fieldAmount}
	}
}

func (v *Add) focused() addField {
	fields := v.fields()
	v.focus = min(v.focus, len(fields)-1)
	return fields[v.focus]
}

func (v *Add) refocus() {
	current := v.focused()
	for f, in := range v.inputs {
		if f == current {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (v *Add) users() []models.User {
	users := workspace.Assignees(v.session, contextGroupID(v.session))
	if !v.pickTouched && len(users) > 0 && len(v.picked) == 0 {
		v.picked[users[0].ID] = true
	}
	return users
}

func (v *Add) meta() models.FinanceMeta {
	meta, _ := v.session.State().FinanceMeta.Peek(v.session.State().SelectedGroupID)
	return meta
}

// Update implements tea.Model.
func (v *Add) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	switch keyMsg.String() {
	case "esc":
		return v, dispatch(workspace.ActionAddCancel)
	case "ctrl+s":
		return v, v.save()
	case "ctrl+t":
		next := nextOf(workspace.AddTypes, v.session.State().AddType)
		v.focus = 0
		return v, dispatch(workspace.ActionAddChangeType, "type", string(next))
	case "tab", "down":
		v.focus = (v.focus + 1) % len(v.fields())
		v.refocus()
		return v, nil
	case "shift+tab", "up":
		n := len(v.fields())
		v.focus = (v.focus - 1 + n) % n
		v.refocus()
		return v, nil
	case "enter":
		if v.focus == len(v.fields())-1 {
			return v, v.save()
		}
		v.focus++
		v.refocus()
		return v, nil
	}

	switch field := v.focused(); field {
	case fieldAssignees:
		v.updatePicker(keyMsg)
		return v, nil
	case fieldCategory:
		v.category = cycle(v.category, len(v.meta().Categories), keyMsg)
		return v, nil
	case fieldMethod:
		v.method = cycle(v.method, len(v.meta().Methods), keyMsg)
		return v, nil
	default:
		v.refocus()
		in := v.inputs[field]
		updated, cmd := in.Update(keyMsg)
		*in = updated
		return v, cmd
	}
}

// cycle moves a 1-based picker index with left/right; 0 is "none".
func cycle(cur, n int, msg tea.KeyMsg) int {
	switch msg.String() {
	case "left", "h":
		return (cur - 1 + n + 1) % (n + 1)
	case "right", "l", " ":
		return (cur + 1) % (n + 1)
	}
	return cur
}

func (v *Add) updatePicker(msg tea.KeyMsg) {
	users := v.users()
	if len(users) == 0 {
		return
	}
	switch msg.String() {
	case "left", "h":
		v.pickCursor = max(v.pickCursor-1, 0)
	case "right", "l":
		v.pickCursor = min(v.pickCursor+1, len(users)-1)
	case " ", "space", "x":
		id := users[min(v.pickCursor, len(users)-1)].ID
		v.picked[id] = !v.picked[id]
		v.pickTouched = true
	}
}

// pickedIDs returns the selected assignees in picker order.
func (v *Add) pickedIDs() []string {
	var ids []string
	for _, u := range v.users() {
		if v.picked[u.ID] {
			ids = append(ids, strconv.FormatInt(u.ID, 10))
		}
	}
	return ids
}

func (v *Add) save() tea.Cmd {
	value := func(f addField) string { return strings.TrimSpace(v.inputs[f].Value()) }
	kv := []string{
		"title", value(fieldTitle),
		"description", value(fieldDescription),
		"amount", value(fieldAmount),
	}
	switch {
	case v.session.State().AddType == workspace.AddTask:
		kv = append(kv, "deadline", value(fieldDeadline), "assignees", strings.Join(v.pickedIDs(), ","))
	case v.groupFinance():
		meta := v.meta()
		if v.category > 0 && v.category <= len(meta.Categories) {
			kv = append(kv, "category", strconv.FormatInt(meta.Categories[v.category-1].ID, 10))
		}
		if v.method > 0 && v.method <= len(meta.Methods) {
			kv = append(kv, "method", strconv.FormatInt(meta.Methods[v.method-1].ID, 10))
		}
	}
	return dispatch(workspace.ActionAddSave, kv...)
}

// View implements tea.Model.
func (v *Add) View() string {
	st := v.session.State()

	var types []string
	for _, t := range workspace.AddTypes {
		types = append(types, v.styles.RenderChip(addTypeLabels[t], t == st.AddType))
	}
	header := strings.Join(types, " ")
	if st.AddInGroup {
		if g, ok := st.SelectedGroup(); ok {
			header += v.styles.Muted.Render("   в группе «" + g.Label() + "»")
		}
	}

	lines := []string{header, ""}
	fields := v.fields()
	current := v.focused()
	for _, f := range fields {
		label := addFieldLabels[f]
		if f == fieldTitle && st.AddType != workspace.AddTask {
			label = "Комментарий"
		}
		labelStyle := v.styles.Muted
		if f == current {
			labelStyle = v.styles.Focused
		}
		lines = append(lines, labelStyle.Render(label), v.fieldView(f, f == current), "")
	}
	lines = append(lines, v.styles.Muted.Render("ctrl+s сохранить · esc отмена"))
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func (v *Add) fieldView(f addField, focused bool) string {
	switch f {
	case fieldAssignees:
		users := v.users()
		if len(users) == 0 {
			return v.styles.Muted.Render("  Загрузка…")
		}
		var parts []string
		for i, u := range users {
			item := v.styles.RenderCheckbox(v.picked[u.ID], u.DisplayName())
			if focused && i == v.pickCursor {
				item = v.styles.Selected.Render(item)
			}
			parts = append(parts, item)
		}
		return "  " + strings.Join(parts, "  ")
	case fieldCategory:
		return "  " + pickerLabel(v.meta().Categories, v.category, focused, v.styles)
	case fieldMethod:
		return "  " + pickerLabel(v.meta().Methods, v.method, focused, v.styles)
	}
	return "  " + v.inputs[f].View()
}

func pickerLabel(items []models.MetaItem, idx int, focused bool, styles *tui.Styles) string {
	label := format.Placeholder
	if idx > 0 && idx <= len(items) {
		label = items[idx-1].Name
	}
	if focused {
		return styles.Selected.Render("‹ " + label + " ›")
	}
	return label
}

