// Package chrome provides always-visible shell components for the workspace.
package chrome

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

// BackBadge is the label of the back affordance in the status bar.
const BackBadge = "‹ назад"

// StatusBar renders the bottom status bar with key hints and status info.
type StatusBar struct {
	styles      *tui.Styles
	width       int
	userName    string
	status      string
	isError     bool
	showBack    bool
	keyHints    []key.Binding
	globalHints []key.Binding
}

// NewStatusBar creates a new status bar.
func NewStatusBar(styles *tui.Styles) StatusBar {
	return StatusBar{
		styles: styles,
	}
}

// SetUser sets the displayed user name.
func (s *StatusBar) SetUser(name string) {
	s.userName = name
}

// SetStatus sets a temporary status message.
func (s *StatusBar) SetStatus(text string, isError bool) {
	s.status = text
	s.isError = isError
}

// ClearStatus clears the status message.
func (s *StatusBar) ClearStatus() {
	s.status = ""
	s.isError = false
}

// SetBackVisible shows or hides the back badge.
func (s *StatusBar) SetBackVisible(v bool) {
	s.showBack = v
}

// SetKeyHints sets the view's key bindings shown as hints.
func (s *StatusBar) SetKeyHints(hints []key.Binding) {
	s.keyHints = hints
}

// SetGlobalHints sets the always-present hints rendered after the view's.
func (s *StatusBar) SetGlobalHints(hints []key.Binding) {
	s.globalHints = hints
}

// SetWidth sets the available width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// View renders the status bar.
func (s StatusBar) View() string {
	if s.width <= 0 {
		return ""
	}

	theme := s.styles.Theme()

	barStyle := lipgloss.NewStyle().
		Width(s.width).
		MaxWidth(s.width).
		Foreground(theme.Secondary)

	var parts []string
	if s.showBack {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Render(BackBadge))
	}
	for _, k := range append(append([]key.Binding{}, s.keyHints...), s.globalHints...) {
		if !k.Enabled() {
			continue
		}
		help := k.Help()
		parts = append(parts,
			lipgloss.NewStyle().Foreground(theme.Primary).Render(help.Key)+
				lipgloss.NewStyle().Foreground(theme.Muted).Render(" "+help.Desc))
	}
	left := strings.Join(parts, "  ")

	var right string
	if s.status != "" {
		style := lipgloss.NewStyle().Foreground(theme.Success)
		if s.isError {
			style = lipgloss.NewStyle().Foreground(theme.Error)
		}
		right = style.Render(s.status)
	} else if s.userName != "" {
		right = lipgloss.NewStyle().
			Foreground(theme.Muted).
			Render("[" + s.userName + "]")
	}

	// Hints give way to the status when space runs out.
	avail := s.width - lipgloss.Width(right) - 1
	if lipgloss.Width(left) > avail {
		left = truncateStyled(left, avail)
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return barStyle.Render(left + strings.Repeat(" ", gap) + right)
}
