package workspace

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/auth"
	"github.com/tasknest/tasknest-cli/internal/models"
)

// testView satisfies View, InputCapturer, and ModalActive for workspace tests.
type testView struct {
	title       string
	msgs        []tea.Msg
	loads       int
	inputActive bool
	modalActive bool
}

func (v *testView) Init() tea.Cmd { return nil }
func (v *testView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	v.msgs = append(v.msgs, msg)
	return v, nil
}
func (v *testView) View() string              { return v.title }
func (v *testView) Title() string             { return v.title }
func (v *testView) ShortHelp() []key.Binding  { return nil }
func (v *testView) FullHelp() [][]key.Binding { return nil }
func (v *testView) SetSize(int, int)          {}
func (v *testView) Load() tea.Cmd             { v.loads++; return nil }
func (v *testView) InputActive() bool         { return v.inputActive }
func (v *testView) IsModal() bool             { return v.modalActive }

func (v *testView) keys() []string {
	var out []string
	for _, m := range v.msgs {
		if k, ok := m.(tea.KeyMsg); ok {
			out = append(out, k.String())
		}
	}
	return out
}

// testWorkspace builds a Workspace with a testView for every screen.
func testWorkspace(t *testing.T) (*Workspace, map[ScreenID]*testView) {
	t.Helper()
	return testWorkspaceWithRegistry(t, NewRegistry())
}

func testWorkspaceWithRegistry(t *testing.T, registry *Registry) (*Workspace, map[ScreenID]*testView) {
	t.Helper()
	views := make(ViewSet)
	byID := make(map[ScreenID]*testView)
	for _, id := range AllScreens() {
		v := &testView{title: string(id)}
		views[id] = v
		byID[id] = v
	}
	w := New(newTestSession(t), registry, views)
	w.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return w, byID
}

// login moves the workspace past the auth screen without running the
// group loader it schedules.
func login(w *Workspace) {
	w.Update(LoggedInMsg{Result: &auth.Result{User: &models.User{ID: 1, FirstName: "Аня"}}})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestWorkspace_StartsOnAuth(t *testing.T) {
	w, views := testWorkspace(t)

	w.Init()

	assert.Equal(t, ScreenAuth, w.Router().Active())
	assert.Equal(t, "auth", w.Location().Fragment())
	assert.Equal(t, 1, views[ScreenAuth].loads)
	assert.True(t, w.session.Host().(*TerminalBridge).IsReady())
}

func TestWorkspace_QuitKey(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)

	_, cmd := w.Update(keyMsg("q"))
	assert.True(t, isQuit(cmd))
	assert.Empty(t, w.View())
}

func TestWorkspace_CtrlCAlwaysQuits(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)
	views[ScreenHome].inputActive = true

	_, cmd := w.Update(keyMsg("ctrl+c"))
	assert.True(t, isQuit(cmd), "ctrl+c quits even during input capture")
}

func TestWorkspace_InputCaptureSkipsGlobals(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)
	home := views[ScreenHome]
	home.inputActive = true

	_, cmd := w.Update(keyMsg("q"))
	assert.False(t, isQuit(cmd))
	_, cmd = w.Update(keyMsg("2"))
	assert.Nil(t, cmd, "tab keys are typed, not switched")

	assert.Equal(t, []string{"q", "2"}, home.keys())
	assert.Equal(t, ScreenHome, w.Router().Active())
}

func TestWorkspace_PaletteOpensDuringInputCapture(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)
	views[ScreenHome].inputActive = true

	w.Update(keyMsg("ctrl+p"))
	assert.True(t, w.showPalette)
	assert.Empty(t, views[ScreenHome].keys())
}

func TestWorkspace_PaletteNeedsLogin(t *testing.T) {
	w, _ := testWorkspace(t)

	w.Update(keyMsg("ctrl+p"))
	assert.False(t, w.showPalette)
}

func TestWorkspace_ModalEscGoesToView(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)
	w.Update(NavigateMsg{Screen: ScreenTasks, Push: true})
	tasks := views[ScreenTasks]
	tasks.modalActive = true

	_, cmd := w.Update(keyMsg("esc"))
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"esc"}, tasks.keys())
	assert.Equal(t, ScreenTasks, w.Router().Active())
}

func TestWorkspace_EscNavigatesBack(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)

	_, cmd := w.Update(keyMsg("esc"))
	assert.Nil(t, cmd, "nothing to go back to at the root")

	w.Update(NavigateMsg{Screen: ScreenTasks, Push: true})
	_, cmd = w.Update(keyMsg("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateBackMsg{}, cmd())
}

func TestWorkspace_NavigateIgnoredBeforeLogin(t *testing.T) {
	w, views := testWorkspace(t)

	w.Update(NavigateMsg{Screen: ScreenTasks, Push: true})
	w.Update(HashChangedMsg{Fragment: "finance"})

	assert.Equal(t, ScreenAuth, w.Router().Active())
	assert.Zero(t, views[ScreenTasks].loads)
}

func TestWorkspace_LoggedInActivatesLaunchScreen(t *testing.T) {
	w, views := testWorkspace(t)
	w.session.SetLaunch(LaunchParams{Screen: "finance"})

	_, cmd := w.Update(LoggedInMsg{Result: &auth.Result{User: &models.User{ID: 1}}})

	require.NotNil(t, cmd)
	assert.Equal(t, ScreenFinance, w.Router().Active())
	assert.Zero(t, w.Router().Depth())
	assert.Equal(t, int64(1), w.session.State().User.ID)
	assert.Zero(t, views[ScreenFinance].loads, "the view loads after groups arrive")
	assert.Contains(t, views[ScreenFinance].msgs, ScreenChangedMsg{Transition: Transition{From: ScreenAuth, To: ScreenFinance}})
}

func TestWorkspace_NavigationSequence(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)

	w.Update(NavigateMsg{Screen: ScreenTasks, Push: true})
	w.Update(NavigateMsg{Screen: ScreenFinance, Push: true})
	assert.Equal(t, ScreenFinance, w.Router().Active())
	assert.Equal(t, 1, views[ScreenFinance].loads)

	w.Update(NavigateBackMsg{})
	assert.Equal(t, ScreenTasks, w.Router().Active())
	assert.Equal(t, 2, views[ScreenTasks].loads, "views reload on every activation")

	w.Update(NavigateBackMsg{})
	assert.Equal(t, ScreenHome, w.Router().Active())
	assert.False(t, w.Router().CanGoBack())
	assert.Equal(t, "home", w.Location().Fragment())
}

func TestWorkspace_HashChanged(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)

	w.Update(HashChangedMsg{Fragment: "settings"})
	assert.Equal(t, ScreenSettings, w.Router().Active())

	w.Update(HashChangedMsg{Fragment: "projects"})
	assert.Equal(t, ScreenHome, w.Router().Active(), "unknown fragments fall back to home")
}

func TestWorkspace_HistoryKeys(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)
	w.Update(NavigateMsg{Screen: ScreenTasks, Push: true})

	_, cmd := w.Update(keyMsg("["))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, HashChangedMsg{Fragment: "home"}, msg)
	w.Update(msg)
	assert.Equal(t, ScreenHome, w.Router().Active())

	_, cmd = w.Update(keyMsg("]"))
	require.NotNil(t, cmd)
	assert.Equal(t, HashChangedMsg{Fragment: "tasks"}, cmd())
}

func TestWorkspace_HostBack(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)

	w.Update(HostBackMsg{})
	assert.Equal(t, ScreenHome, w.Router().Active(), "hidden button does nothing")

	w.Update(NavigateMsg{Screen: ScreenSettings, Push: true})
	assert.True(t, w.back.Visible())

	w.Update(HostBackMsg{})
	assert.Equal(t, ScreenHome, w.Router().Active())
	assert.False(t, w.back.Visible())
}

func TestWorkspace_TabKeysDispatchNavSwitch(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)

	tests := map[string]ScreenID{
		"1": ScreenHome,
		"2": ScreenTasks,
		"3": ScreenGroupTasks,
		"4": ScreenFinance,
		"5": ScreenSettings,
	}
	for k, want := range tests {
		_, cmd := w.Update(keyMsg(k))
		require.NotNil(t, cmd, k)
		msg, ok := cmd().(DispatchMsg)
		require.True(t, ok, k)
		assert.Equal(t, ActionNavSwitch, msg.Invocation.Action)
		assert.Equal(t, string(want), msg.Invocation.Get("screen"))
	}
}

func TestWorkspace_TabKeysForwardedBeforeLogin(t *testing.T) {
	w, views := testWorkspace(t)

	_, cmd := w.Update(keyMsg("2"))
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"2"}, views[ScreenAuth].keys())
}

func TestWorkspace_DispatchFillsSource(t *testing.T) {
	registry := NewRegistry()
	var got Invocation
	registry.Register(ActionTasksMarkDone, func(_ *Session, inv Invocation) (tea.Cmd, error) {
		got = inv
		return nil, nil
	})
	w, _ := testWorkspaceWithRegistry(t, registry)
	login(w)
	w.Update(NavigateMsg{Screen: ScreenTasks, Push: true})

	w.Update(DispatchMsg{Invocation: Invoke(ActionTasksMarkDone, "id", "3")})
	assert.Equal(t, ScreenTasks, got.Source)

	w.Update(DispatchMsg{Invocation: Invocation{Action: ActionTasksMarkDone, Source: ScreenHome}})
	assert.Equal(t, ScreenHome, got.Source, "an explicit source is kept")
}

func TestWorkspace_StaleEpochDropped(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)
	stale := w.session.Epoch()
	w.session.ResetContext()

	w.Update(EpochMsg{Epoch: stale, Inner: AlertMsg{Text: "старый ответ"}})
	assert.False(t, w.alert.Visible())

	w.Update(EpochMsg{Epoch: w.session.Epoch(), Inner: AlertMsg{Text: "свежий ответ"}})
	assert.True(t, w.alert.Visible())
	assert.Equal(t, "свежий ответ", w.alert.Text())
}

func TestWorkspace_StampCmd(t *testing.T) {
	w, _ := testWorkspace(t)

	assert.Nil(t, w.stampCmd(nil))
	cmd := w.stampCmd(Refresh())
	assert.Equal(t, EpochMsg{Epoch: w.session.Epoch(), Inner: RefreshMsg{}}, cmd())
}

func TestWorkspace_AlertBlocksKeys(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)

	w.Update(AlertMsg{Text: "Ошибка"})
	_, cmd := w.Update(keyMsg("q"))
	assert.False(t, w.alert.Visible(), "q closes the alert")
	assert.False(t, isQuit(cmd))
	assert.Empty(t, views[ScreenHome].keys())
	assert.Contains(t, w.View(), "home")
}

func TestWorkspace_LoggedOutResets(t *testing.T) {
	w, _ := testWorkspace(t)
	login(w)
	w.Update(NavigateMsg{Screen: ScreenTasks, Push: true})
	w.session.State().SelectGroup(7)

	w.Update(LoggedOutMsg{})

	assert.Equal(t, ScreenAuth, w.Router().Active())
	assert.Zero(t, w.Router().Depth())
	assert.Nil(t, w.session.State().User)
	assert.Zero(t, w.session.State().SelectedGroupID)

	w.Update(NavigateMsg{Screen: ScreenHome, Push: true})
	assert.Equal(t, ScreenAuth, w.Router().Active())
}

func TestWorkspace_RefreshReloadsActiveView(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)

	w.Update(RefreshMsg{})
	assert.Equal(t, 1, views[ScreenHome].loads)
	assert.Zero(t, views[ScreenTasks].loads)
}

func TestWorkspace_StatusShowsToast(t *testing.T) {
	w, _ := testWorkspace(t)

	_, cmd := w.Update(StatusMsg{Text: "Сохранено"})
	assert.NotNil(t, cmd)
	assert.True(t, w.toast.Visible())
}

func TestWorkspace_BroadcastsOtherMessages(t *testing.T) {
	w, views := testWorkspace(t)
	type loaded struct{}

	w.Update(loaded{})
	for id, v := range views {
		assert.Contains(t, v.msgs, loaded{}, id)
	}
}

func TestWorkspace_HelpToggle(t *testing.T) {
	w, views := testWorkspace(t)
	login(w)

	w.Update(keyMsg("?"))
	assert.True(t, w.showHelp)
	w.Update(keyMsg("?"))
	assert.False(t, w.showHelp)
	assert.Empty(t, views[ScreenHome].keys())
}

func TestWorkspace_MetricsToggle(t *testing.T) {
	w, _ := testWorkspace(t)
	before := w.viewHeight()

	w.Update(keyMsg("`"))
	assert.True(t, w.showMetrics)
	assert.Less(t, w.viewHeight(), before)
}
