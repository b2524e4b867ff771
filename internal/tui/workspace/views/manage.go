package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/tui/empty"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/widget"
)

var manageTitles = map[workspace.ManageMode]string{
	workspace.ManageCategories: "Категории",
	workspace.ManageMethods:    "Способы оплаты",
}

// Manage lists and edits the selected group's finance categories or
// payment methods.
type Manage struct {
	session *workspace.Session
	list    *widget.List
	prompt  *prompt

	width, height int
}

// NewManage creates the finance metadata editor.
func NewManage(session *workspace.Session) *Manage {
	list := widget.NewList(session.Styles())
	list.SetEmptyMessage(empty.NoMetaItems())
	list.SetFocused(true)
	return &Manage{session: session, list: list, prompt: newPrompt(session)}
}

// Title implements View.
func (v *Manage) Title() string { return manageTitles[v.session.State().ManageMode] }

// ShortHelp implements View.
func (v *Manage) ShortHelp() []key.Binding {
	if v.prompt.active() {
		return promptHints()
	}
	return []key.Binding{binding("a", "add"), binding("d", "delete"), binding("s", "switch list")}
}

// FullHelp implements View.
func (v *Manage) FullHelp() [][]key.Binding {
	lk := workspace.DefaultListKeyMap()
	return [][]key.Binding{{lk.Up, binding("a", "add"), binding("d", "delete"), binding("s", "categories/methods")}}
}

// InputActive implements workspace.InputCapturer.
func (v *Manage) InputActive() bool {
	v.syncPrompt()
	return v.prompt.active()
}

// IsModal implements workspace.ModalActive.
func (v *Manage) IsModal() bool { return v.InputActive() }

// SetSize implements View.
func (v *Manage) SetSize(w, h int) {
	v.width, v.height = w, h
	v.list.SetSize(w-2, max(h-3, 3))
}

// Load implements View.
func (v *Manage) Load() tea.Cmd {
	return workspace.LoadFinanceMeta(v.session, v.session.State().SelectedGroupID)
}

// Init implements tea.Model.
func (v *Manage) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (v *Manage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	v.syncPrompt()
	if v.prompt.active() {
		return v, v.prompt.update(keyMsg)
	}
	v.sync()

	switch keyMsg.String() {
	case "a":
		return v, dispatch(workspace.ActionModalOpen, "modal", string(workspace.ModalManageInput))
	case "d":
		if id, ok := selectedID(v.list); ok {
			return v, dispatch(workspace.ActionManageDelete, "id", id)
		}
		return v, nil
	case "s":
		mode := workspace.ManageMethods
		if v.session.State().ManageMode == workspace.ManageMethods {
			mode = workspace.ManageCategories
		}
		return v, dispatch(workspace.ActionManageOpen, "mode", string(mode))
	}
	return v, v.list.Update(keyMsg)
}

func (v *Manage) items() ([]models.MetaItem, bool) {
	st := v.session.State()
	meta, ok := st.FinanceMeta.Peek(st.SelectedGroupID)
	if st.ManageMode == workspace.ManageMethods {
		return meta.Methods, ok
	}
	return meta.Categories, ok
}

func (v *Manage) syncPrompt() {
	if v.session.State().Modal == workspace.ModalManageInput {
		v.prompt.configure(workspace.ModalManageInput, "Добавить", "название", workspace.ActionManageAdd, "name")
		return
	}
	if v.prompt.modal != workspace.ModalNone {
		v.prompt.reset()
	}
}

func (v *Manage) sync() {
	items, loaded := v.items()
	rows := make([]widget.ListItem, 0, len(items))
	for _, it := range items {
		rows = append(rows, widget.ListItem{ID: strconv.FormatInt(it.ID, 10), Title: it.Name})
	}
	v.list.SetItems(rows)
	v.list.SetLoading(!loaded)
}

// View implements tea.Model.
func (v *Manage) View() string {
	v.syncPrompt()
	v.sync()
	st := v.session.State()
	styles := v.session.Styles()

	header := styles.Heading.Render(manageTitles[st.ManageMode])
	if g, ok := st.SelectedGroup(); ok {
		header += styles.Muted.Render("  · " + g.Label())
	}
	body := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join([]string{header, "", v.list.View()}, "\n"))
	if v.prompt.active() {
		return overlay(body, v.prompt.view(v.width))
	}
	return body
}
