package chrome

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

// AlertCloseMsg is sent when the alert is dismissed.
type AlertCloseMsg struct{}

// Alert is the blocking message box. While it is open it consumes every
// key; enter, esc or space dismiss it.
type Alert struct {
	styles  *tui.Styles
	text    string
	visible bool
	width   int
	height  int
}

// NewAlert creates a hidden alert.
func NewAlert(styles *tui.Styles) Alert {
	return Alert{styles: styles}
}

// Open shows text. A second Open replaces the text.
func (a *Alert) Open(text string) {
	a.text = text
	a.visible = true
}

// Visible reports whether the alert is open.
func (a *Alert) Visible() bool { return a.visible }

// Text returns the current alert text.
func (a *Alert) Text() string { return a.text }

// SetSize sets the area the alert is centered in.
func (a *Alert) SetSize(width, height int) {
	a.width = width
	a.height = height
}

// Update handles keys while the alert is open.
func (a *Alert) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", " ", "q":
		a.visible = false
		a.text = ""
		return func() tea.Msg { return AlertCloseMsg{} }
	}
	return nil
}

// View renders the alert box centered in its area.
func (a Alert) View() string {
	if !a.visible {
		return ""
	}
	theme := a.styles.Theme()
	boxWidth := max(20, min(56, a.width-4))

	body := lipgloss.NewStyle().Foreground(theme.Foreground).Width(boxWidth - 4).Render(a.text)
	hint := lipgloss.NewStyle().Foreground(theme.Muted).Render("enter OK")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Warning).
		Padding(0, 1).
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, "", hint))

	return lipgloss.Place(max(a.width, 1), max(a.height, 1), lipgloss.Center, lipgloss.Center, box)
}
