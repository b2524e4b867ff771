package workspace

import "slices"

// ScreenID names a top-level screen. The value doubles as the location
// fragment.
type ScreenID string

const (
	ScreenAuth       ScreenID = "auth"
	ScreenHome       ScreenID = "home"
	ScreenTasks      ScreenID = "tasks"
	ScreenGroupTasks ScreenID = "group_tasks"
	ScreenFinance    ScreenID = "finance"
	ScreenSettings   ScreenID = "settings"
	ScreenAdd        ScreenID = "add"
	ScreenManage     ScreenID = "manage"
	ScreenTask       ScreenID = "task"
)

// DefaultScreen is the root of the navigation stack.
const DefaultScreen = ScreenHome

// AllScreens lists every screen.
func AllScreens() []ScreenID {
	return []ScreenID{
		ScreenAuth, ScreenHome, ScreenTasks, ScreenGroupTasks, ScreenFinance,
		ScreenSettings, ScreenAdd, ScreenManage, ScreenTask,
	}
}

// TabScreens are the screens reachable from the tab bar, in order.
var TabScreens = []ScreenID{ScreenHome, ScreenTasks, ScreenGroupTasks, ScreenFinance, ScreenSettings}

// ParseScreen maps a fragment onto a known screen.
func ParseScreen(s string) (ScreenID, bool) {
	for _, id := range AllScreens() {
		if string(id) == s {
			return id, true
		}
	}
	return "", false
}

// Transition describes one change of the active screen.
type Transition struct {
	From ScreenID
	To   ScreenID
}

// Changed reports whether the active screen actually changed.
func (t Transition) Changed() bool { return t.From != t.To }

// Router tracks the active screen and the stack of screens to return to.
// The stack never holds an entry twice, and right after a push it does
// not hold the active screen. Only Back shrinks it.
type Router struct {
	active ScreenID
	stack  []ScreenID
}

// NewRouter creates a router with initial as the active screen.
func NewRouter(initial ScreenID) *Router {
	return &Router{active: initial}
}

// Active returns the active screen.
func (r *Router) Active() ScreenID {
	return r.active
}

// Stack returns a copy of the back stack, oldest first.
func (r *Router) Stack() []ScreenID {
	out := make([]ScreenID, len(r.stack))
	copy(out, r.stack)
	return out
}

// Depth returns the back stack depth.
func (r *Router) Depth() int {
	return len(r.stack)
}

// CanGoBack returns true if there is a screen to return to.
func (r *Router) CanGoBack() bool {
	return len(r.stack) > 0
}

// GoTo activates id. With push, the previously active screen moves to the
// top of the stack and id leaves it. Without push the stack is untouched.
func (r *Router) GoTo(id ScreenID, push bool) Transition {
	t := Transition{From: r.active, To: id}
	if push && r.active != "" && r.active != id {
		r.remove(r.active)
		r.remove(id)
		r.stack = append(r.stack, r.active)
	}
	r.active = id
	return t
}

// Back pops the most recent screen, or activates fallback when the stack
// is empty. Nothing is pushed.
func (r *Router) Back(fallback ScreenID) Transition {
	target := fallback
	if n := len(r.stack); n > 0 {
		target = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
	t := Transition{From: r.active, To: target}
	r.active = target
	return t
}

// Activate sets the active screen without touching the stack. Used when
// the location changes underneath the router.
func (r *Router) Activate(id ScreenID) Transition {
	t := Transition{From: r.active, To: id}
	r.active = id
	return t
}

// Reset clears the stack and activates id.
func (r *Router) Reset(id ScreenID) {
	r.stack = nil
	r.active = id
}

func (r *Router) remove(id ScreenID) {
	r.stack = slices.DeleteFunc(r.stack, func(s ScreenID) bool { return s == id })
}
