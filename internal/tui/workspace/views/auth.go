package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/tui/empty"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

// Auth is the login screen. It stays up until a login strategy succeeds.
type Auth struct {
	session *workspace.Session
	token   textinput.Model

	width, height int
}

// NewAuth creates the login screen.
func NewAuth(session *workspace.Session) *Auth {
	in := textinput.New()
	in.Placeholder = "токен доступа"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Prompt = "› "
	in.Focus()
	return &Auth{session: session, token: in}
}

// Title implements View.
func (v *Auth) Title() string { return "Вход" }

// ShortHelp implements View.
func (v *Auth) ShortHelp() []key.Binding {
	return []key.Binding{
		binding("enter", "login with token"),
		binding("ctrl+r", "retry telegram"),
		binding("ctrl+e", "email"),
	}
}

// FullHelp implements View.
func (v *Auth) FullHelp() [][]key.Binding {
	return [][]key.Binding{v.ShortHelp()}
}

// InputActive implements workspace.InputCapturer.
func (v *Auth) InputActive() bool { return v.token.Focused() }

// SetSize implements View.
func (v *Auth) SetSize(w, h int) {
	v.width, v.height = w, h
	v.token.Width = max(min(w-8, 60), 10)
}

// Load implements View.
func (v *Auth) Load() tea.Cmd { return nil }

// Init implements tea.Model.
func (v *Auth) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (v *Auth) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.LoggedInMsg:
		v.token.SetValue("")
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return v, dispatch(workspace.ActionAuthLoginToken, "token", strings.TrimSpace(v.token.Value()))
		case "ctrl+r":
			return v, dispatch(workspace.ActionAuthLoginTelegram)
		case "ctrl+e":
			return v, dispatch(workspace.ActionAuthLoginEmail)
		}
		var cmd tea.Cmd
		v.token, cmd = v.token.Update(msg)
		return v, cmd
	}
	return v, nil
}

// View implements tea.Model.
func (v *Auth) View() string {
	styles := v.session.Styles()
	msg := empty.AuthRequired()

	var b strings.Builder
	b.WriteString(styles.Title.Render("tasknest"))
	b.WriteString("\n\n")
	b.WriteString(styles.Heading.Render(msg.Title))
	b.WriteString("\n")
	if msg.Body != "" {
		b.WriteString(styles.Muted.Render(msg.Body))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(v.token.View())
	b.WriteString("\n\n")
	for _, h := range msg.Hints {
		b.WriteString(styles.Muted.Render(h))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(v.width).Padding(1, 2).Render(b.String())
}
