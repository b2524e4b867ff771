package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

// Settings edits the notification toggles. Edits stay local until saved.
type Settings struct {
	session *workspace.Session

	cursor int
	draft  models.NotificationSettings
	dirty  bool

	width, height int
}

// NewSettings creates the settings view.
func NewSettings(session *workspace.Session) *Settings {
	return &Settings{session: session}
}

// Title implements View.
func (v *Settings) Title() string { return "Настройки" }

// ShortHelp implements View.
func (v *Settings) ShortHelp() []key.Binding {
	return []key.Binding{binding("space", "toggle"), binding("enter", "save")}
}

// FullHelp implements View.
func (v *Settings) FullHelp() [][]key.Binding {
	lk := workspace.DefaultListKeyMap()
	return [][]key.Binding{{lk.Up, binding("space", "toggle"), binding("enter", "save")}}
}

// SetSize implements View.
func (v *Settings) SetSize(w, h int) { v.width, v.height = w, h }

// Load implements View.
func (v *Settings) Load() tea.Cmd {
	v.dirty = false
	return workspace.LoadNotifications(v.session)
}

// Init implements tea.Model.
func (v *Settings) Init() tea.Cmd { return nil }

func (v *Settings) toggles() []*bool {
	return []*bool{&v.draft.NotifyNewTask, &v.draft.NotifyTaskUpdates}
}

// sync copies the loaded settings into the draft unless it was edited.
func (v *Settings) sync() {
	if v.dirty {
		return
	}
	if n := v.session.State().Notifications; n != nil {
		v.draft = *n
	}
}

// Update implements tea.Model.
func (v *Settings) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	v.sync()
	toggles := v.toggles()
	switch keyMsg.String() {
	case "up", "k":
		v.cursor = max(v.cursor-1, 0)
	case "down", "j":
		v.cursor = min(v.cursor+1, len(toggles)-1)
	case " ", "space":
		*toggles[v.cursor] = !*toggles[v.cursor]
		v.dirty = true
	case "enter":
		v.dirty = false
		return v, dispatch(workspace.ActionSettingsSaveNotifications,
			"new_task", strconv.FormatBool(v.draft.NotifyNewTask),
			"task_updates", strconv.FormatBool(v.draft.NotifyTaskUpdates))
	}
	return v, nil
}

// View implements tea.Model.
func (v *Settings) View() string {
	v.sync()
	styles := v.session.Styles()
	st := v.session.State()

	lines := []string{styles.Heading.Render("Уведомления")}
	if st.Notifications == nil && !v.dirty {
		lines = append(lines, styles.Muted.Render("Настройки не загружены"))
	}
	labels := []string{"Новые задачи", "Изменения задач"}
	for i, on := range v.toggles() {
		cursor := "  "
		if i == v.cursor {
			cursor = styles.Cursor.Render("> ")
		}
		lines = append(lines, cursor+styles.RenderCheckbox(*on, labels[i]))
	}

	if st.User != nil {
		lines = append(lines, "", styles.Heading.Render("Аккаунт"),
			styles.RenderKeyValue("Пользователь", st.User.DisplayName()))
		if st.User.Username != "" {
			lines = append(lines, styles.RenderKeyValue("Username", "@"+st.User.Username))
		}
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}
