// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasknest/tasknest-cli/internal/api"
	"github.com/tasknest/tasknest-cli/internal/auth"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/observability"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/resilience"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config  *config.Config
	Session *auth.Store
	API     *api.Client
	Output  *output.Writer
	Log     zerolog.Logger

	// SessionDir is where the on-disk session lives; empty for ephemeral sessions.
	SessionDir string

	// Gate is the shared circuit breaker and rate limiter; nil when ephemeral.
	Gate *resilience.Gate

	// Observability
	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks
	Trace     *observability.TraceWriter

	// Flags holds the global flag values
	Flags GlobalFlags

	logCloser io.Closer
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON   bool
	Quiet  bool
	Styled bool

	// Context flags
	BaseURL  string
	StateDir string
	Locale   string
	InitData string

	// Behavior flags
	Verbose   int // 0=off, 1=retries and failures, 2=every request (-v -v or -vv)
	Stats     bool
	Ephemeral bool // keep the session in memory only
}

// Overrides returns the config layer contributed by flags.
func (f GlobalFlags) Overrides() config.FlagOverrides {
	return config.FlagOverrides{
		BaseURL:  f.BaseURL,
		StateDir: f.StateDir,
		Locale:   f.Locale,
		InitData: f.InitData,
	}
}

// NewApp wires the session store, API client, logger and output writer.
func NewApp(cfg *config.Config, flags GlobalFlags) (*App, error) {
	level := observability.VerbosityLevel(verbosity(flags.Verbose), cfg.LogLevel)
	logger, closer, err := observability.NewLogger(cfg.LogFile, level)
	if err != nil {
		// Logging must never stop the CLI; fall back to silence.
		logger, closer = zerolog.Nop(), nil
		fmt.Fprintf(os.Stderr, "warning: cannot open log file %s: %v\n", cfg.LogFile, err)
	}

	var (
		kv         auth.KV
		sessionDir string
		gate       *resilience.Gate
	)
	if flags.Ephemeral {
		kv = auth.NewMemoryKV()
	} else {
		disk, err := auth.NewDiskKV(cfg.StateDir)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		sessionDir = disk.SessionPath()
		kv = auth.NewKeyringKV(disk, cfg.BaseURL, cfg.NoKeyring)
		gate = resilience.NewGate(
			resilience.NewStore(filepath.Join(cfg.StateDir, resilience.DirName)),
			resilience.DefaultConfig(),
			logger.With().Str("component", "resilience").Logger(),
		)
	}
	session := auth.NewStore(kv)

	collector := observability.NewSessionCollector()
	trace := observability.NewTraceWriter()
	hooks := observability.NewCLIHooks(verbosity(flags.Verbose), collector, trace)

	opts := []api.Option{
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(logger.With().Str("component", "api").Logger()),
		api.WithHooks(hooks),
	}
	if gate != nil {
		opts = append(opts, api.WithGate(gate))
	}
	client := api.NewClient(cfg.BaseURL, session, opts...)

	app := &App{
		Config:     cfg,
		Session:    session,
		API:        client,
		Log:        logger,
		SessionDir: sessionDir,
		Gate:       gate,
		Collector:  collector,
		Hooks:      hooks,
		Trace:      trace,
		Flags:      flags,
		logCloser:  closer,
	}
	app.Output = output.New(output.Options{Format: app.format(), Writer: os.Stdout})
	return app, nil
}

// verbosity combines -v with TASKNEST_DEBUG ("1", "2" or "true").
func verbosity(flag int) int {
	level := flag
	if debugEnv := os.Getenv("TASKNEST_DEBUG"); debugEnv != "" {
		if n, err := strconv.Atoi(debugEnv); err == nil {
			if n > level {
				level = n
			}
		} else if debugEnv == "true" {
			level = 2
		}
	}
	return level
}

func (a *App) format() output.Format {
	switch {
	case a.Flags.Quiet:
		return output.FormatQuiet
	case a.Flags.JSON:
		return output.FormatJSON
	case a.Flags.Styled:
		return output.FormatStyled
	}
	return output.FormatAuto
}

// Close flushes and releases the log file.
func (a *App) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}

// OK outputs a success response, printing stats to stderr if --stats is set.
func (a *App) OK(data any, summary string) error {
	if err := a.Output.OK(data, summary); err != nil {
		return err
	}
	a.maybeStats()
	return nil
}

// Err outputs an error response, printing stats to stderr if --stats is set.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}
	a.maybeStats()
	return nil
}

func (a *App) maybeStats() {
	if !a.Flags.Stats || a.Collector == nil || a.Flags.Quiet {
		return
	}
	stats := a.Collector.Summary()
	fmt.Fprint(os.Stderr, FormatStats(&stats))
}

// FormatStats renders a compact stats line.
func FormatStats(stats *observability.SessionMetrics) string {
	if stats == nil {
		return ""
	}

	var parts []string

	duration := stats.EndTime.Sub(stats.StartTime)
	if duration < time.Second {
		parts = append(parts, fmt.Sprintf("%dms", duration.Milliseconds()))
	} else {
		parts = append(parts, fmt.Sprintf("%.1fs", duration.Seconds()))
	}

	if stats.TotalRequests == 1 {
		parts = append(parts, "1 request")
	} else if stats.TotalRequests > 1 {
		parts = append(parts, fmt.Sprintf("%d requests", stats.TotalRequests))
	}
	if stats.FailedReqs > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", stats.FailedReqs))
	}
	if stats.TotalRetries == 1 {
		parts = append(parts, "1 retry")
	} else if stats.TotalRetries > 1 {
		parts = append(parts, fmt.Sprintf("%d retries", stats.TotalRetries))
	}
	if stats.TotalActions > 0 {
		parts = append(parts, fmt.Sprintf("%d actions", stats.TotalActions))
	}

	return fmt.Sprintf("\nStats: %s\n", strings.Join(parts, " | "))
}

// IsInteractive returns true if the terminal supports interactive TUI.
func (a *App) IsInteractive() bool {
	if a.Flags.JSON || a.Flags.Quiet {
		return false
	}

	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}

	return (fi.Mode() & os.ModeCharDevice) != 0
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
