package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_GoToPushes(t *testing.T) {
	r := NewRouter(ScreenHome)

	tr := r.GoTo(ScreenTasks, true)
	assert.Equal(t, Transition{From: ScreenHome, To: ScreenTasks}, tr)
	assert.True(t, tr.Changed())
	assert.Equal(t, ScreenTasks, r.Active())
	assert.Equal(t, []ScreenID{ScreenHome}, r.Stack())
}

func TestRouter_GoToWithoutPush(t *testing.T) {
	r := NewRouter(ScreenHome)

	r.GoTo(ScreenTasks, false)
	assert.Equal(t, ScreenTasks, r.Active())
	assert.Zero(t, r.Depth())
	assert.False(t, r.CanGoBack())

	r.GoTo(ScreenFinance, true)
	r.GoTo(ScreenTasks, false)
	assert.Equal(t, []ScreenID{ScreenTasks}, r.Stack(), "a non-push never pops")
}

func TestRouter_GoToSameScreenPushesNothing(t *testing.T) {
	r := NewRouter(ScreenHome)

	tr := r.GoTo(ScreenHome, true)
	assert.False(t, tr.Changed())
	assert.Zero(t, r.Depth())
}

func TestRouter_StackNeverDuplicates(t *testing.T) {
	r := NewRouter(ScreenHome)

	r.GoTo(ScreenTasks, true)
	r.GoTo(ScreenHome, true)
	r.GoTo(ScreenTasks, true)
	assert.Equal(t, []ScreenID{ScreenHome}, r.Stack())

	r.GoTo(ScreenTask, true)
	r.GoTo(ScreenTasks, true)
	assert.Equal(t, []ScreenID{ScreenHome, ScreenTask}, r.Stack())
	assert.NotContains(t, r.Stack(), r.Active())

	tr := r.Back(DefaultScreen)
	assert.Equal(t, Transition{From: ScreenTasks, To: ScreenTask}, tr)
}

func TestRouter_BackSequence(t *testing.T) {
	r := NewRouter(ScreenHome)

	r.GoTo(ScreenTasks, true)
	r.GoTo(ScreenFinance, true)
	require.Equal(t, []ScreenID{ScreenHome, ScreenTasks}, r.Stack())

	tr := r.Back(DefaultScreen)
	assert.Equal(t, Transition{From: ScreenFinance, To: ScreenTasks}, tr)

	tr = r.Back(DefaultScreen)
	assert.Equal(t, Transition{From: ScreenTasks, To: ScreenHome}, tr)
	assert.False(t, r.CanGoBack())
}

func TestRouter_BackOnEmptyStackUsesFallback(t *testing.T) {
	r := NewRouter(ScreenSettings)

	tr := r.Back(ScreenHome)
	assert.Equal(t, ScreenHome, tr.To)
	assert.Equal(t, ScreenHome, r.Active())
	assert.Zero(t, r.Depth())
}

func TestRouter_StackIsACopy(t *testing.T) {
	r := NewRouter(ScreenHome)
	r.GoTo(ScreenTasks, true)

	stack := r.Stack()
	stack[0] = ScreenSettings
	assert.Equal(t, []ScreenID{ScreenHome}, r.Stack())
}

func TestRouter_ActivateKeepsStack(t *testing.T) {
	r := NewRouter(ScreenHome)
	r.GoTo(ScreenTasks, true)

	r.Activate(ScreenFinance)
	assert.Equal(t, ScreenFinance, r.Active())
	assert.Equal(t, []ScreenID{ScreenHome}, r.Stack())

	r.Activate(ScreenHome)
	assert.Equal(t, ScreenHome, r.Active())
	assert.Equal(t, []ScreenID{ScreenHome}, r.Stack(), "activation neither pushes nor pops")
}

func TestRouter_Reset(t *testing.T) {
	r := NewRouter(ScreenAuth)
	r.GoTo(ScreenHome, true)

	r.Reset(ScreenHome)
	assert.Equal(t, ScreenHome, r.Active())
	assert.Zero(t, r.Depth())
}

func TestParseScreen(t *testing.T) {
	for _, id := range AllScreens() {
		got, ok := ParseScreen(string(id))
		assert.True(t, ok)
		assert.Equal(t, id, got)
	}
	_, ok := ParseScreen("projects")
	assert.False(t, ok)
}

func TestInitialScreen(t *testing.T) {
	tests := []struct {
		fragment string
		want     ScreenID
	}{
		{"", ScreenHome},
		{"finance", ScreenFinance},
		{"group_tasks", ScreenGroupTasks},
		{"auth", ScreenHome},
		{"nowhere", ScreenHome},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InitialScreen(tt.fragment), "fragment %q", tt.fragment)
	}
}

func TestLocation_History(t *testing.T) {
	l := NewLocation("home")
	l.Set("tasks")
	l.Set("tasks")
	l.Set("finance")
	assert.Equal(t, 3, l.Len())

	frag, ok := l.Back()
	require.True(t, ok)
	assert.Equal(t, "tasks", frag)

	frag, ok = l.Forward()
	require.True(t, ok)
	assert.Equal(t, "finance", frag)

	_, ok = l.Forward()
	assert.False(t, ok)
}

func TestLocation_SetDropsForwardEntries(t *testing.T) {
	l := NewLocation("home")
	l.Set("tasks")
	l.Set("finance")
	l.Back()
	l.Back()

	l.Set("settings")
	assert.Equal(t, "settings", l.Fragment())
	assert.Equal(t, 2, l.Len())
	_, ok := l.Forward()
	assert.False(t, ok)

	_, ok = l.Back()
	assert.True(t, ok)
	_, ok = l.Back()
	assert.False(t, ok)
}

func TestBackBridge(t *testing.T) {
	r := NewRouter(ScreenHome)
	host := NewTerminalBridge("")
	b := NewBackBridge(r, host, ScreenHome)

	b.Sync()
	assert.False(t, b.Visible(), "hidden at the root")

	r.GoTo(ScreenTasks, true)
	b.Sync()
	assert.True(t, b.Visible())
	assert.True(t, host.BackButton().Visible())

	tr := b.Click()
	assert.Equal(t, ScreenHome, tr.To)
	assert.False(t, b.Visible())
}

func TestBackBridge_HiddenWithoutHistory(t *testing.T) {
	r := NewRouter(ScreenSettings)
	b := NewBackBridge(r, NewTerminalBridge(""), ScreenHome)

	b.Sync()
	assert.False(t, b.Visible(), "no stack means nothing to go back to")

	tr := b.Click()
	assert.Equal(t, ScreenHome, tr.To)
}

func TestBackBridge_NilHost(t *testing.T) {
	r := NewRouter(ScreenHome)
	b := NewBackBridge(r, nil, ScreenHome)
	r.GoTo(ScreenTasks, true)

	b.Sync()
	assert.False(t, b.Visible())
}

func TestTerminalBridge(t *testing.T) {
	b := NewTerminalBridge("query_id=1")
	assert.Equal(t, "query_id=1", b.InitData())
	assert.False(t, b.IsReady())
	b.Ready()
	b.Expand()
	assert.True(t, b.IsReady())
}
