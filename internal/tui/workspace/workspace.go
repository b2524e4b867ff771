package workspace

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/chrome"
)

// chromeHeight is the vertical space reserved for tab bar, divider, toast
// and status bar.
const chromeHeight = 4

// Workspace is the root tea.Model for the persistent TUI application.
type Workspace struct {
	session  *Session
	registry *Registry
	views    ViewSet
	router   *Router
	location *Location
	back     *BackBridge
	styles   *tui.Styles
	keys     GlobalKeyMap

	// Chrome
	tabBar    chrome.TabBar
	statusBar chrome.StatusBar
	toast     chrome.Toast
	help      chrome.Help
	palette   chrome.Palette
	metrics   chrome.MetricsPanel
	alert     chrome.Alert

	configChanges <-chan config.Change

	// State
	authed      bool
	showHelp    bool
	showPalette bool
	showMetrics bool
	quitting    bool

	width, height int
}

// New creates the workspace over a complete registry and view set. The
// auth screen is active until a login strategy succeeds.
func New(session *Session, registry *Registry, views ViewSet) *Workspace {
	styles := session.Styles()
	router := NewRouter(ScreenAuth)

	tabs := make([]chrome.Tab, 0, len(TabScreens))
	for _, id := range TabScreens {
		label := string(id)
		if v, ok := views[id]; ok {
			label = v.Title()
		}
		tabs = append(tabs, chrome.Tab{ID: string(id), Label: label})
	}

	return &Workspace{
		session:   session,
		registry:  registry,
		views:     views,
		router:    router,
		location:  NewLocation(string(ScreenAuth)),
		back:      NewBackBridge(router, session.Host(), DefaultScreen),
		styles:    styles,
		keys:      DefaultGlobalKeyMap(),
		tabBar:    chrome.NewTabBar(styles, tabs),
		statusBar: chrome.NewStatusBar(styles),
		toast:     chrome.NewToast(styles),
		help:      chrome.NewHelp(styles),
		palette:   chrome.NewPalette(styles),
		metrics:   chrome.NewMetricsPanel(styles, session.Metrics),
		alert:     chrome.NewAlert(styles),
	}
}

// SetKeys replaces the global key map, e.g. after applying user overrides.
func (w *Workspace) SetKeys(km GlobalKeyMap) {
	w.keys = km
}

// WatchConfig feeds config file changes into the loop.
func (w *Workspace) WatchConfig(changes <-chan config.Change) {
	w.configChanges = changes
}

// Router exposes the router for inspection.
func (w *Workspace) Router() *Router { return w.router }

// Location exposes the fragment history for inspection.
func (w *Workspace) Location() *Location { return w.location }

// Init implements tea.Model.
func (w *Workspace) Init() tea.Cmd {
	if host := w.session.Host(); host != nil {
		host.Ready()
		host.Expand()
	}
	return tea.Batch(
		w.activate(Transition{To: ScreenAuth}),
		Dispatch(Invoke(ActionAuthLoginTelegram)),
		w.waitForConfig(),
	)
}

// Update implements tea.Model.
func (w *Workspace) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.relayout()
		return w, nil

	case tea.KeyMsg:
		return w, w.handleKey(msg)

	case EpochMsg:
		if msg.Epoch != w.session.Epoch() {
			return w, nil
		}
		return w.Update(msg.Inner)

	case ContinueMsg:
		cmd := msg.Resume(w.session)
		w.syncChrome()
		return w, w.stampCmd(cmd)

	case DispatchMsg:
		inv := msg.Invocation
		if inv.Source == "" {
			inv.Source = w.router.Active()
		}
		cmd := w.registry.Dispatch(w.session, inv)
		w.syncChrome()
		return w, w.stampCmd(cmd)

	case NavigateMsg:
		if !w.authed && msg.Screen != ScreenAuth {
			return w, nil
		}
		return w, w.activate(w.router.GoTo(msg.Screen, msg.Push))

	case NavigateBackMsg:
		return w, w.activate(w.router.Back(DefaultScreen))

	case HostBackMsg:
		if !w.back.Visible() {
			return w, nil
		}
		return w, w.activate(w.back.Click())

	case HashChangedMsg:
		id, ok := ParseScreen(msg.Fragment)
		if !ok {
			id = DefaultScreen
		}
		if !w.authed && id != ScreenAuth {
			return w, nil
		}
		return w, w.activate(w.router.Activate(id))

	case LoggedInMsg:
		return w, w.loggedIn(msg)

	case LoggedOutMsg:
		w.authed = false
		w.session.State().Logout()
		w.statusBar.SetUser("")
		w.router.Reset(ScreenAuth)
		return w, w.activate(Transition{To: ScreenAuth})

	case RefreshMsg:
		if view := w.activeView(); view != nil {
			return w, w.stampCmd(view.Load())
		}
		return w, nil

	case ConfigChangedMsg:
		w.reloadConfig(msg.Target)
		return w, w.waitForConfig()

	case AlertMsg:
		w.alert.Open(msg.Text)
		return w, nil

	case StatusMsg:
		return w, w.toast.Show(msg.Text, msg.IsError)

	case chrome.AlertCloseMsg:
		return w, nil

	case chrome.PaletteCloseMsg:
		w.showPalette = false
		w.palette.Blur()
		return w, nil

	case chrome.PaletteExecMsg:
		return w, w.stampCmd(msg.Cmd)
	}

	if w.toast.Update(msg) {
		return w, nil
	}

	return w, w.broadcast(msg)
}

func (w *Workspace) loggedIn(msg LoggedInMsg) tea.Cmd {
	w.authed = true
	st := w.session.State()
	if msg.Result != nil && msg.Result.User != nil {
		st.User = msg.Result.User
		w.statusBar.SetUser(msg.Result.User.DisplayName())
	}

	target := w.session.LaunchScreen()
	w.router.Reset(target)
	w.location = NewLocation(string(target))
	activate := w.activateNoLoad(Transition{From: ScreenAuth, To: target})

	invite := w.session.ConsumeInvite()
	after := func(s *Session) tea.Cmd {
		if invite != "" {
			return Dispatch(Invoke(ActionGroupsAcceptInvite, "token", invite))
		}
		return Refresh()
	}
	return tea.Batch(activate, w.stampCmd(LoadGroupsThen(w.session, after)))
}

func (w *Workspace) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		w.quitting = true
		return tea.Quit
	}

	if w.alert.Visible() {
		return w.alert.Update(msg)
	}

	if w.showHelp {
		if w.help.Update(msg) {
			w.showHelp = false
		}
		return nil
	}

	if w.showPalette {
		return w.stampCmd(w.palette.Update(msg))
	}

	view := w.activeView()

	// While a view captures text, only chord globals apply.
	if ic, ok := view.(InputCapturer); ok && ic.InputActive() {
		if key.Matches(msg, w.keys.Palette) {
			return w.openPalette()
		}
		return w.forwardKey(view, msg)
	}

	switch {
	case key.Matches(msg, w.keys.Quit):
		w.quitting = true
		return tea.Quit

	case key.Matches(msg, w.keys.Help):
		w.showHelp = true
		w.help.ResetScroll()
		return nil

	case key.Matches(msg, w.keys.Back):
		if ma, ok := view.(ModalActive); ok && ma.IsModal() {
			return w.forwardKey(view, msg)
		}
		if w.router.CanGoBack() {
			return NavigateBack()
		}
		return nil

	case key.Matches(msg, w.keys.HostBack):
		return func() tea.Msg { return HostBackMsg{} }

	case key.Matches(msg, w.keys.HistoryBack):
		if frag, ok := w.location.Back(); ok {
			return func() tea.Msg { return HashChangedMsg{Fragment: frag} }
		}
		return nil

	case key.Matches(msg, w.keys.HistoryForward):
		if frag, ok := w.location.Forward(); ok {
			return func() tea.Msg { return HashChangedMsg{Fragment: frag} }
		}
		return nil

	case key.Matches(msg, w.keys.Refresh):
		return Refresh()

	case key.Matches(msg, w.keys.Palette):
		return w.openPalette()

	case key.Matches(msg, w.keys.Metrics):
		w.showMetrics = !w.showMetrics
		w.relayout()
		return nil
	}

	if id, ok := w.keys.TabFor(msg); ok && w.authed {
		return Dispatch(Invoke(ActionNavSwitch, "screen", string(id)))
	}

	return w.forwardKey(view, msg)
}

func (w *Workspace) forwardKey(view View, msg tea.KeyMsg) tea.Cmd {
	if view == nil {
		return nil
	}
	updated, cmd := view.Update(msg)
	w.replaceView(w.router.Active(), updated)
	w.syncChrome()
	return w.stampCmd(cmd)
}

// broadcast hands a non-key message to every view. Views keep their own
// state for off-screen data, so all of them see loader results.
func (w *Workspace) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range AllScreens() {
		view, ok := w.views[id]
		if !ok {
			continue
		}
		updated, cmd := view.Update(msg)
		w.replaceView(id, updated)
		if cmd != nil {
			cmds = append(cmds, w.stampCmd(cmd))
		}
	}
	return tea.Batch(cmds...)
}

// activate runs the activation sequence for t: chrome, location, host
// back button, ScreenChangedMsg broadcast, then the view's loader.
func (w *Workspace) activate(t Transition) tea.Cmd {
	cmd := w.activateNoLoad(t)
	view := w.activeView()
	if view == nil {
		return cmd
	}
	return tea.Batch(cmd, w.stampCmd(view.Load()))
}

func (w *Workspace) activateNoLoad(t Transition) tea.Cmd {
	w.location.Set(string(t.To))
	w.back.Sync()
	w.statusBar.ClearStatus()
	w.syncChrome()

	title := ""
	if view := w.activeView(); view != nil {
		view.SetSize(w.width, w.viewHeight())
		title = view.Title()
	} else {
		w.session.Log().Warn().Str("screen", string(t.To)).Msg("no view for screen")
	}
	w.session.Log().Debug().Str("from", string(t.From)).Str("to", string(t.To)).Msg("navigate")

	return tea.Batch(
		w.broadcast(ScreenChangedMsg{Transition: t}),
		chrome.SetTerminalTitle(title),
	)
}

func (w *Workspace) activeView() View {
	return w.views[w.router.Active()]
}

func (w *Workspace) replaceView(id ScreenID, updated tea.Model) {
	if v, ok := updated.(View); ok {
		w.views[id] = v
	}
}

func (w *Workspace) openPalette() tea.Cmd {
	if !w.authed {
		return nil
	}
	w.showPalette = true
	entries := PaletteEntries()
	items := make([]chrome.PaletteItem, len(entries))
	for i, e := range entries {
		inv := e.Invocation
		items[i] = chrome.PaletteItem{
			Name:        e.Name,
			Description: e.Description,
			Category:    e.Category,
			Execute:     func() tea.Cmd { return Dispatch(inv) },
		}
	}
	w.palette.SetItems(items)
	w.palette.SetSize(w.width, w.viewHeight())
	return w.palette.Focus()
}

func (w *Workspace) waitForConfig() tea.Cmd {
	ch := w.configChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return ConfigChangedMsg{Target: change.Target}
	}
}

func (w *Workspace) reloadConfig(target string) {
	log := w.session.Log()
	if target == KeybindingsPath() {
		overrides, err := LoadKeyOverrides(target)
		if err != nil {
			log.Warn().Err(err).Msg("reload key bindings")
			w.statusBar.SetStatus("keybindings.json: "+err.Error(), true)
			return
		}
		km := DefaultGlobalKeyMap()
		ApplyOverrides(&km, overrides)
		w.keys = km
		w.syncChrome()
		return
	}
	if err := w.session.ReloadConfig(); err != nil {
		log.Warn().Err(err).Msg("reload config")
		w.statusBar.SetStatus("config: "+err.Error(), true)
		return
	}
	log.Info().Str("file", target).Msg("config reloaded")
}

// stampCmd wraps a Cmd with the current session epoch so that results
// arriving after a re-login are dropped.
func (w *Workspace) stampCmd(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return stampWithEpoch(w.session.Epoch(), cmd)
}

// stampWithEpoch wraps a tea.Cmd so its result carries an epoch tag.
// Batch members are stamped individually.
func stampWithEpoch(epoch uint64, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		msg := cmd()
		switch m := msg.(type) {
		case nil:
			return nil
		case EpochMsg:
			return m
		case tea.BatchMsg:
			stamped := make(tea.BatchMsg, len(m))
			for i, c := range m {
				stamped[i] = stampWithEpoch(epoch, c)
			}
			return stamped
		}
		return EpochMsg{Epoch: epoch, Inner: msg}
	}
}

func (w *Workspace) syncChrome() {
	active := w.router.Active()
	title := ""
	if view := w.activeView(); view != nil {
		title = view.Title()
		w.statusBar.SetKeyHints(view.ShortHelp())
		w.help.SetViewTitle(title)
		w.help.SetViewKeys(view.FullHelp())
	}
	w.tabBar.SetActive(string(active), title)
	w.help.SetGlobalKeys(w.keys.FullHelp())
	w.statusBar.SetGlobalHints(w.keys.ShortHelp())
	w.statusBar.SetBackVisible(w.back.Visible())
}

func (w *Workspace) relayout() {
	w.tabBar.SetWidth(w.width)
	w.statusBar.SetWidth(w.width)
	w.toast.SetWidth(w.width)
	w.metrics.SetWidth(w.width)
	w.help.SetSize(w.width, w.viewHeight())
	w.palette.SetSize(w.width, w.viewHeight())
	w.alert.SetSize(w.width, w.viewHeight())
	if view := w.activeView(); view != nil {
		view.SetSize(w.width, w.viewHeight())
	}
}

func (w *Workspace) viewHeight() int {
	h := w.height - chromeHeight
	if w.showMetrics {
		h -= chrome.MetricsPanelHeight
	}
	return max(h, 1)
}

// View implements tea.Model.
func (w *Workspace) View() string {
	if w.quitting {
		return ""
	}

	theme := w.styles.Theme()
	sections := []string{
		w.tabBar.View(),
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(w.width, 0))),
	}

	if w.showMetrics {
		sections = append(sections, w.metrics.View())
	}

	switch {
	case w.alert.Visible():
		sections = append(sections, w.alert.View())
	case w.showPalette:
		sections = append(sections, w.palette.View())
	case w.showHelp:
		sections = append(sections, w.help.View())
	default:
		if view := w.activeView(); view != nil {
			sections = append(sections, lipgloss.NewStyle().Height(w.viewHeight()).MaxHeight(w.viewHeight()).Render(view.View()))
		}
	}

	if w.toast.Visible() {
		sections = append(sections, w.toast.View())
	}
	sections = append(sections, w.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
