package workspace

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all workspace screens must implement. Views
// are created once per session and kept for its lifetime.
type View interface {
	tea.Model

	// Title returns the tab bar label for this view.
	Title() string

	// ShortHelp returns key bindings shown in the status bar.
	ShortHelp() []key.Binding

	// FullHelp returns all key bindings for the help overlay.
	FullHelp() [][]key.Binding

	// SetSize updates the view's available dimensions.
	SetSize(width, height int)

	// Load fetches what the view renders. It runs every time the view
	// becomes active.
	Load() tea.Cmd
}

// InputCapturer is an optional interface views can implement to signal
// they are in text input mode. When InputActive returns true, the
// workspace skips global single-key bindings and forwards all keys to
// the view.
type InputCapturer interface {
	InputActive() bool
}

// ModalActive is an optional interface views can implement to signal
// they have an active modal state (calendar, inline prompt). When
// IsModal returns true, Esc is forwarded to the view instead of
// triggering back navigation.
type ModalActive interface {
	IsModal() bool
}

// ViewSet is the collection of views for every screen.
type ViewSet map[ScreenID]View
