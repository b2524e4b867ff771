package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/completion"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/resilience"
	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/version"
)

// doctorTimeout bounds each network check.
const doctorTimeout = 10 * time.Second

// Check represents a single diagnostic check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "fail", "skip", "warn"
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// DoctorResult holds the complete diagnostic results.
type DoctorResult struct {
	Checks  []Check `json:"checks"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Warned  int     `json:"warned"`
	Skipped int     `json:"skipped"`
}

// Summary returns a human-readable summary of the results.
func (r *DoctorResult) Summary() string {
	if r.Failed == 0 && r.Warned == 0 && r.Passed > 0 {
		if r.Skipped > 0 {
			return fmt.Sprintf("All %d checks passed, %d skipped", r.Passed, r.Skipped)
		}
		return fmt.Sprintf("All %d checks passed", r.Passed)
	}
	parts := []string{}
	if r.Passed > 0 {
		parts = append(parts, fmt.Sprintf("%d passed", r.Passed))
	}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
	}
	if r.Warned > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", r.Warned, pluralize(r.Warned, "warning", "warnings")))
	}
	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", r.Skipped))
	}
	return strings.Join(parts, ", ")
}

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	var (
		verbose      bool
		resetCircuit bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check CLI health and diagnose issues",
		Long: `Run diagnostic checks on configuration, session storage and API access.

  tasknest doctor              # Run all diagnostic checks
  tasknest doctor --json       # Output results as JSON
  tasknest doctor --verbose    # Show additional debug information
  tasknest doctor --reset-circuit  # Forget recorded API failures first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if resetCircuit && app.Gate != nil {
				if err := app.Gate.Reset(); err != nil {
					return fmt.Errorf("resetting circuit: %w", err)
				}
			}

			checks := runDoctorChecks(cmd.Context(), app, verbose)
			result := summarizeChecks(checks)

			if app.Flags.Styled || app.IsInteractive() {
				renderDoctorStyled(cmd.OutOrStdout(), result)
				return nil
			}
			return app.OK(result, result.Summary())
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show additional debug information")
	cmd.Flags().BoolVar(&resetCircuit, "reset-circuit", false, "Clear circuit breaker and rate limit state")

	return cmd
}

// runDoctorChecks executes all diagnostic checks.
func runDoctorChecks(ctx context.Context, app *appctx.App, verbose bool) []Check {
	checks := []Check{checkVersion(verbose)}

	checks = append(checks, checkConfigFiles(app, verbose)...)
	checks = append(checks, checkStateDir(app))
	checks = append(checks, checkKeyring(app))
	if app.Gate != nil {
		checks = append(checks, checkCircuit(app.Gate))
	}

	reach := checkAPIReachable(ctx, app)
	checks = append(checks, reach)

	switch {
	case app.Session.Token() == "":
		checks = append(checks, Check{
			Name:    "Session",
			Status:  "skip",
			Message: "Skipped (no token stored)",
			Hint:    "Run: tasknest auth login",
		})
	case reach.Status == "fail":
		checks = append(checks, Check{
			Name:    "Session",
			Status:  "skip",
			Message: "Skipped (API not reachable)",
		})
	default:
		checks = append(checks, checkSession(ctx, app, verbose))
	}

	checks = append(checks, checkCompletionCache(app))
	return checks
}

func checkVersion(verbose bool) Check {
	msg := version.Version
	if verbose {
		msg = fmt.Sprintf("%s (%s, %s, %s/%s)", version.Version, version.Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
	return Check{Name: "Version", Status: "pass", Message: msg}
}

func checkConfigFiles(app *appctx.App, verbose bool) []Check {
	global := config.GlobalConfigPath()
	if _, err := os.Stat(global); err != nil {
		if os.IsNotExist(err) {
			return []Check{{
				Name:    "Global config",
				Status:  "pass",
				Message: fmt.Sprintf("%s (not present, using defaults)", global),
			}}
		}
		return []Check{{Name: "Global config", Status: "warn", Message: err.Error()}}
	}

	checks := []Check{validateConfigFile(global, "Global config", verbose)}
	if verbose {
		checks = append(checks, Check{
			Name:    "Base URL",
			Status:  "pass",
			Message: fmt.Sprintf("%s (from %s)", app.Config.BaseURL, app.Config.SourceOf("base_url")),
		})
	}
	return checks
}

func validateConfigFile(path, name string, verbose bool) Check {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return Check{
			Name:    name,
			Status:  "fail",
			Message: fmt.Sprintf("Cannot read: %s", path),
			Hint:    fmt.Sprintf("Check file permissions: %v", err),
		}
	}

	var cfg map[string]any
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Check{
			Name:    name,
			Status:  "fail",
			Message: fmt.Sprintf("Invalid YAML: %s", path),
			Hint:    fmt.Sprintf("YAML error: %v", err),
		}
	}

	for key, v := range cfg {
		if err := config.Validate(key, fmt.Sprint(v)); err != nil {
			return Check{
				Name:    name,
				Status:  "warn",
				Message: fmt.Sprintf("%s: %s ignored", path, key),
				Hint:    err.Error(),
			}
		}
	}

	msg := path
	if verbose {
		msg = fmt.Sprintf("%s (%d keys)", path, len(cfg))
	}
	return Check{Name: name, Status: "pass", Message: msg}
}

func checkStateDir(app *appctx.App) Check {
	check := Check{Name: "State directory"}
	dir := app.Config.StateDir

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		check.Status = "pass"
		check.Message = fmt.Sprintf("%s (will be created on first use)", dir)
	case err != nil:
		check.Status = "fail"
		check.Message = fmt.Sprintf("Cannot access: %s", dir)
		check.Hint = err.Error()
	case !info.IsDir():
		check.Status = "fail"
		check.Message = fmt.Sprintf("%s exists but is not a directory", dir)
	default:
		check.Status = "pass"
		check.Message = dir
		if app.SessionDir == "" {
			check.Message += " (ephemeral session)"
		}
	}
	return check
}

// checkKeyring tests the system keyring the same way the session store
// does before trusting it with the token.
func checkKeyring(app *appctx.App) Check {
	check := Check{Name: "Keyring"}
	if app.Config.NoKeyring {
		check.Status = "pass"
		check.Message = "Disabled (token kept in the state directory)"
		return check
	}

	const service, user = "tasknest", "tasknest::doctor-check"
	if err := keyring.Set(service, user, "check"); err != nil {
		check.Status = "warn"
		check.Message = "Unavailable, token kept in the state directory"
		check.Hint = err.Error()
		return check
	}
	_ = keyring.Delete(service, user)

	check.Status = "pass"
	check.Message = "System keyring available"
	return check
}

// checkCircuit reports the state shared by every tasknest process. An open
// circuit also makes the API check below fail fast.
func checkCircuit(gate *resilience.Gate) Check {
	check := Check{Name: "Circuit"}
	st, err := gate.Status()
	if err != nil {
		check.Status = "warn"
		check.Message = "State unreadable, requests are not limited"
		check.Hint = err.Error()
		return check
	}

	switch st.Circuit {
	case resilience.CircuitOpen:
		check.Status = "fail"
		check.Message = fmt.Sprintf("Open after %d failures, retrying in %s", st.Failures, st.CircuitRetry.Round(time.Second))
		check.Hint = "Run: tasknest doctor --reset-circuit"
	case resilience.CircuitHalfOpen:
		check.Status = "warn"
		check.Message = "Half-open, probing the API"
	default:
		check.Status = "pass"
		check.Message = "Closed"
	}
	if st.BlockedFor > 0 && check.Status == "pass" {
		check.Status = "warn"
		check.Message = fmt.Sprintf("Rate limited for %s", st.BlockedFor.Round(time.Second))
	}
	return check
}

func checkAPIReachable(ctx context.Context, app *appctx.App) Check {
	check := Check{Name: "API"}
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	start := time.Now()
	_, err := app.API.Me(ctx)
	latency := time.Since(start).Round(time.Millisecond)

	// Any HTTP answer, including 401, proves the server is up.
	if err != nil && output.IsCode(err, output.CodeNetwork) {
		check.Status = "fail"
		check.Message = fmt.Sprintf("Cannot reach %s", app.Config.BaseURL)
		check.Hint = err.Error()
		return check
	}
	check.Status = "pass"
	check.Message = fmt.Sprintf("%s (%s)", app.Config.BaseURL, latency)
	return check
}

func checkSession(ctx context.Context, app *appctx.App, verbose bool) Check {
	check := Check{Name: "Session"}
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	sess, err := app.API.Me(ctx)
	if err != nil {
		check.Status = "fail"
		check.Message = "Stored token was rejected"
		check.Hint = "Run: tasknest auth login"
		return check
	}

	check.Status = "pass"
	check.Message = "Valid"
	if sess.User != nil {
		check.Message = "Logged in as " + sess.User.DisplayName()
	}
	if verbose {
		check.Message += fmt.Sprintf(" (default group #%d)", app.Session.DefaultGroupID())
	}
	return check
}

func checkCompletionCache(app *appctx.App) Check {
	store := completion.NewStore(app.Config.StateDir)
	cache, err := store.Load()
	if err != nil || cache.GroupsUpdatedAt.IsZero() {
		return Check{
			Name:    "Completion cache",
			Status:  "warn",
			Message: "Empty",
			Hint:    "Run: tasknest completion refresh",
		}
	}
	if store.IsStale(completion.DefaultMaxAge) {
		return Check{
			Name:    "Completion cache",
			Status:  "warn",
			Message: fmt.Sprintf("%d groups, stale", len(cache.Groups)),
			Hint:    "Run: tasknest groups",
		}
	}
	return Check{
		Name:    "Completion cache",
		Status:  "pass",
		Message: fmt.Sprintf("%d groups", len(cache.Groups)),
	}
}

func summarizeChecks(checks []Check) *DoctorResult {
	result := &DoctorResult{Checks: checks}
	for _, c := range checks {
		switch c.Status {
		case "pass":
			result.Passed++
		case "fail":
			result.Failed++
		case "warn":
			result.Warned++
		case "skip":
			result.Skipped++
		}
	}
	return result
}

// pluralize returns singular or plural form based on count.
func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// renderDoctorStyled outputs a human-friendly styled format for TTY.
func renderDoctorStyled(w io.Writer, result *DoctorResult) {
	theme := tui.ResolveTheme("")
	statusStyle := map[string]lipgloss.Style{
		"pass": lipgloss.NewStyle().Foreground(theme.Success),
		"fail": lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
		"warn": lipgloss.NewStyle().Foreground(theme.Warning),
		"skip": lipgloss.NewStyle().Foreground(theme.Muted),
	}
	icons := map[string]string{"pass": "✓", "fail": "✗", "warn": "!", "skip": "○"}
	nameStyle := lipgloss.NewStyle().Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(theme.Muted).Italic(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("tasknest doctor"))
	fmt.Fprintln(w)

	for _, check := range result.Checks {
		style := statusStyle[check.Status]
		fmt.Fprintf(w, "  %s %s %s\n",
			style.Render(icons[check.Status]),
			nameStyle.Render(check.Name),
			style.Render(check.Message),
		)
		if check.Hint != "" && (check.Status == "fail" || check.Status == "warn") {
			fmt.Fprintf(w, "      %s\n", hintStyle.Render("↳ "+check.Hint))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", result.Summary())
	fmt.Fprintln(w)
}
