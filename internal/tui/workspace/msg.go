// Package workspace provides the persistent TUI application for tasknest.
package workspace

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasknest/tasknest-cli/internal/auth"
)

// Navigation messages

// NavigateMsg requests activation of a screen.
type NavigateMsg struct {
	Screen ScreenID
	Push   bool
}

// NavigateBackMsg requests a return to the previous screen.
type NavigateBackMsg struct{}

// HostBackMsg is a press of the host back button.
type HostBackMsg struct{}

// HashChangedMsg reports that the location moved to a fragment outside of
// router navigation (history back/forward).
type HashChangedMsg struct {
	Fragment string
}

// ScreenChangedMsg is broadcast to every view after the active screen changes.
type ScreenChangedMsg struct {
	Transition
}

// Action messages

// DispatchMsg carries an invocation to the registry.
type DispatchMsg struct {
	Invocation Invocation
}

// ContinueMsg carries the result of async action work back onto the loop.
type ContinueMsg struct {
	Label string
	Then  Continuation
	Err   error
}

// Session messages

// LoggedInMsg is sent when a login strategy established a session.
type LoggedInMsg struct {
	Result *auth.Result
}

// LoggedOutMsg is sent when no login strategy succeeded.
type LoggedOutMsg struct{}

// RefreshMsg requests a reload of the active screen.
type RefreshMsg struct{}

// ConfigChangedMsg reports a change to a watched config file or directory.
type ConfigChangedMsg struct {
	Target string
}

// Chrome messages

// AlertMsg opens the blocking alert.
type AlertMsg struct {
	Text string
}

// StatusMsg sets a temporary status message.
type StatusMsg struct {
	Text    string
	IsError bool
}

// Epoch guard

// EpochMsg wraps an async result with the session epoch at Cmd creation time.
// The workspace drops EpochMsgs whose epoch differs from the current session
// epoch, so results started before a re-login never reach the new session.
type EpochMsg struct {
	Epoch uint64
	Inner tea.Msg
}

// Command factories

// Dispatch returns a command that sends a DispatchMsg.
func Dispatch(inv Invocation) tea.Cmd {
	return func() tea.Msg {
		return DispatchMsg{Invocation: inv}
	}
}

// Navigate returns a command that sends a NavigateMsg.
func Navigate(id ScreenID, push bool) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: id, Push: push}
	}
}

// NavigateBack returns a command that sends a NavigateBackMsg.
func NavigateBack() tea.Cmd {
	return func() tea.Msg {
		return NavigateBackMsg{}
	}
}

// Alert returns a command that opens the blocking alert.
func Alert(text string) tea.Cmd {
	return func() tea.Msg {
		return AlertMsg{Text: text}
	}
}

// SetStatus returns a command that sets a status message.
func SetStatus(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text, IsError: isError}
	}
}

// Refresh returns a command that reloads the active screen.
func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}
