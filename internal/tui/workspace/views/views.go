// Package views holds the workspace screens and the action handlers they
// dispatch to.
package views

import (
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

// New creates one view per screen for the session.
func New(session *workspace.Session) workspace.ViewSet {
	return workspace.ViewSet{
		workspace.ScreenAuth:       NewAuth(session),
		workspace.ScreenHome:       NewHome(session),
		workspace.ScreenTasks:      NewTasks(session),
		workspace.ScreenGroupTasks: NewGroups(session),
		workspace.ScreenFinance:    NewFinance(session),
		workspace.ScreenSettings:   NewSettings(session),
		workspace.ScreenAdd:        NewAdd(session),
		workspace.ScreenManage:     NewManage(session),
		workspace.ScreenTask:       NewTask(session),
	}
}

// NewRegistry returns a registry with every action handler registered.
func NewRegistry() *workspace.Registry {
	r := workspace.NewRegistry()
	RegisterHandlers(r)
	return r
}
