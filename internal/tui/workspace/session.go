package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/auth"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/observability"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/data"
)

// LaunchParams are the one-shot inputs of a launch link.
type LaunchParams struct {
	Token  string
	Invite string
	Screen string
}

// Session holds the active workspace state: app services, the state
// container, styles and the host bridge.
type Session struct {
	app    *appctx.App
	state  *State
	styles *tui.Styles
	host   HostBridge
	now    func() time.Time
	copy   func(string) error

	launch LaunchParams

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	epoch  uint64
}

// NewSession creates a session from the fully-initialized App.
func NewSession(app *appctx.App, host HostBridge, launch LaunchParams) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		app:    app,
		styles: tui.NewStylesWithTheme(tui.ResolveTheme(app.Config.Theme)),
		host:   host,
		now:    time.Now,
		copy:   clipboard.WriteAll,
		launch: launch,
		ctx:    ctx,
		cancel: cancel,
	}
	s.state = NewState(s.now(), cacheFetchers(app.API))
	s.applyConfig(app.Config)
	return s
}

func cacheFetchers(client *api.Client) CacheFetchers {
	return CacheFetchers{
		Members: client.GroupMembers,
		FinanceMeta: func(ctx context.Context, groupID int64) (models.FinanceMeta, error) {
			kinds := []models.MetaKind{models.MetaCategories, models.MetaMethods}
			lists, err := data.FanOut(ctx, kinds, func(ctx context.Context, kind models.MetaKind) ([]models.MetaItem, error) {
				return client.MetaItems(ctx, groupID, kind)
			})
			if err != nil {
				return models.FinanceMeta{}, err
			}
			return models.FinanceMeta{Categories: lists[0], Methods: lists[1]}, nil
		},
	}
}

func (s *Session) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.state.Locale = dateutil.ParseLocale(cfg.Locale)
	if cfg.UrgentDays > 0 {
		s.state.UrgentDays = cfg.UrgentDays
	}
	if cfg.PageSize > 0 {
		s.state.PageSize = cfg.PageSize
	}
}

// App returns the underlying appctx.App.
func (s *Session) App() *appctx.App {
	return s.app
}

// API returns the REST client.
func (s *Session) API() *api.Client {
	return s.app.API
}

// Store returns the persisted session store.
func (s *Session) Store() *auth.Store {
	return s.app.Session
}

// State returns the application state. Only touch it on the event loop.
func (s *Session) State() *State {
	return s.state
}

// Styles returns the current TUI styles.
func (s *Session) Styles() *tui.Styles {
	return s.styles
}

// Host returns the host bridge (may be nil).
func (s *Session) Host() HostBridge {
	return s.host
}

// Log returns the session logger.
func (s *Session) Log() *zerolog.Logger {
	return &s.app.Log
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.now()
}

// Today returns the current local date as YYYY-MM-DD.
func (s *Session) Today() string {
	return dateutil.Today(s.now())
}

// CopyToClipboard writes text to the system clipboard.
func (s *Session) CopyToClipboard(text string) error {
	return s.copy(text)
}

// ConsumeLaunchToken returns the launch token once.
func (s *Session) ConsumeLaunchToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.launch.Token
	s.launch.Token = ""
	return t
}

// ConsumeInvite returns the launch invite token once.
func (s *Session) ConsumeInvite() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.launch.Invite
	s.launch.Invite = ""
	return t
}

// LaunchScreen returns the screen requested by the launch link.
func (s *Session) LaunchScreen() ScreenID {
	return InitialScreen(s.launch.Screen)
}

// InitData returns the host-signed launch payload, preferring the host
// bridge over configuration.
func (s *Session) InitData() string {
	if s.host != nil {
		if d := s.host.InitData(); d != "" {
			return d
		}
	}
	if s.app.Config != nil {
		return s.app.Config.InitData
	}
	return ""
}

// Context returns the session's cancellable context for API calls.
// Canceled on re-login or shutdown, aborting in-flight requests.
// Thread-safe: may be called from Cmd goroutines concurrently with ResetContext.
func (s *Session) Context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Epoch returns the session's monotonic epoch counter.
// Thread-safe: may be called from Cmd goroutines.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// ResetContext cancels the current context (aborting in-flight operations),
// creates a fresh one, and advances the epoch counter.
func (s *Session) ResetContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.epoch++
}

// ReloadConfig re-reads configuration and applies the theme and locale.
func (s *Session) ReloadConfig() error {
	cfg, err := config.Load(s.app.Flags.Overrides())
	if err != nil {
		return err
	}
	s.app.Config.Theme = cfg.Theme
	s.app.Config.Locale = cfg.Locale
	s.styles.UpdateTheme(tui.ResolveTheme(cfg.Theme))
	s.state.Locale = dateutil.ParseLocale(cfg.Locale)
	return nil
}

// Metrics returns the session's request and action counters.
func (s *Session) Metrics() observability.SessionMetrics {
	if s.app.Collector == nil {
		return observability.SessionMetrics{}
	}
	return s.app.Collector.Summary()
}

func (s *Session) recordAction(m observability.ActionMetrics) {
	if s.app.Collector != nil {
		s.app.Collector.RecordAction(m)
	}
}

// Shutdown cancels the session context. Called on program exit.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
}

// NewTestSession returns a Session over client with an in-memory session
// store, a fixed clock and a recording clipboard, for use in tests.
func NewTestSession(baseURL string, now time.Time) *Session {
	store := auth.NewStore(auth.NewMemoryKV())
	cfg := config.Default()
	cfg.BaseURL = baseURL
	client := api.NewClient(baseURL, store, api.WithMaxRetries(1))
	app := &appctx.App{
		Config:    cfg,
		Session:   store,
		API:       client,
		Log:       zerolog.Nop(),
		Collector: observability.NewSessionCollector(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		app:    app,
		styles: tui.NewStyles(),
		host:   NewTerminalBridge(""),
		now:    func() time.Time { return now },
		copy:   func(string) error { return nil },
		ctx:    ctx,
		cancel: cancel,
	}
	s.state = NewState(now, cacheFetchers(client))
	return s
}

// SetClipboard replaces the clipboard writer.
func (s *Session) SetClipboard(fn func(string) error) {
	s.copy = fn
}

// SetLaunch replaces the launch parameters.
func (s *Session) SetLaunch(p LaunchParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launch = p
}
