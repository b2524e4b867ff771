package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/completion"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace/views"
	"github.com/tasknest/tasknest-cli/internal/urlarg"
)

// configDebounce coalesces editor save bursts into one reload.
const configDebounce = 200 * time.Millisecond

// LaunchFlags are the one-shot launch parameters accepted by the TUI.
type LaunchFlags struct {
	Token  string
	Invite string
	Screen string
}

// NewTUICmd creates the tui command for the persistent workspace.
func NewTUICmd() *cobra.Command {
	var flags LaunchFlags

	cmd := &cobra.Command{
		Use:   "tui [url]",
		Short: "Launch the tasknest workspace",
		Long: `Launch the full-screen terminal workspace.

A launch link from the bot may be passed as the argument:

  tasknest tui 'tasknest://open?token=T#finance'

--token, --invite and --screen override the link's values.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTUI(cmd, args, flags)
		},
	}

	AddLaunchFlags(cmd, &flags)

	return cmd
}

// AddLaunchFlags registers --token, --invite and --screen on cmd. The root
// command shares them so `tasknest --screen finance` works.
func AddLaunchFlags(cmd *cobra.Command, flags *LaunchFlags) {
	cmd.Flags().StringVar(&flags.Token, "token", "", "One-time access token")
	cmd.Flags().StringVar(&flags.Invite, "invite", "", "Group invite token to accept after login")
	cmd.Flags().StringVar(&flags.Screen, "screen", "", "Screen to open after login")

	screens := make([]string, 0, len(workspace.AllScreens()))
	for _, id := range workspace.AllScreens() {
		if id != workspace.ScreenAuth {
			screens = append(screens, string(id))
		}
	}
	_ = cmd.RegisterFlagCompletionFunc("screen", completion.StaticCompletion(screens...))
}

// RunTUI runs the workspace until the user quits.
func RunTUI(cmd *cobra.Command, args []string, flags LaunchFlags) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	launch, err := resolveLaunch(args, flags)
	if err != nil {
		return err
	}

	registry := views.NewRegistry()
	if err := registry.Validate(); err != nil {
		return err
	}

	session := workspace.NewSession(app, workspace.NewTerminalBridge(app.Config.InitData), launch)
	defer session.Shutdown()

	model := workspace.New(session, registry, views.New(session))
	model.SetKeys(loadKeyMap(app))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	changes, err := config.Watch(ctx, configDebounce, config.GlobalConfigPath(), workspace.KeybindingsPath())
	if err != nil {
		app.Log.Warn().Err(err).Msg("config watch disabled")
	} else {
		model.WatchConfig(changes)
	}

	app.Log.Info().
		Str("base_url", app.Config.BaseURL).
		Str("screen", launch.Screen).
		Bool("token", launch.Token != "").
		Bool("invite", launch.Invite != "").
		Msg("workspace starting")

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	return err
}

// resolveLaunch merges a launch link with explicit flags. Flags win.
func resolveLaunch(args []string, flags LaunchFlags) (workspace.LaunchParams, error) {
	var params workspace.LaunchParams

	if len(args) > 0 {
		parsed := urlarg.Parse(args[0])
		if parsed == nil {
			return params, output.ErrUsageHint(
				fmt.Sprintf("Not a launch link: %s", urlarg.Strip(args[0])),
				"Expected tasknest://open?token=...#screen",
			)
		}
		params = workspace.LaunchParams{Token: parsed.Token, Invite: parsed.Invite, Screen: parsed.Screen}
	}

	if v := strings.TrimSpace(flags.Token); v != "" {
		params.Token = v
	}
	if v := strings.TrimSpace(flags.Invite); v != "" {
		params.Invite = v
	}
	if v := strings.TrimSpace(flags.Screen); v != "" {
		params.Screen = v
	}

	if params.Screen != "" {
		id, ok := workspace.ParseScreen(params.Screen)
		if !ok || id == workspace.ScreenAuth {
			return params, output.ErrUsageHint(
				fmt.Sprintf("Unknown screen %q", params.Screen),
				"Use one of: home, tasks, group_tasks, finance, settings, add, manage",
			)
		}
	}
	return params, nil
}

func loadKeyMap(app *appctx.App) workspace.GlobalKeyMap {
	km := workspace.DefaultGlobalKeyMap()
	overrides, err := workspace.LoadKeyOverrides(workspace.KeybindingsPath())
	if err != nil {
		app.Log.Warn().Err(err).Msg("ignoring keybindings.json")
		return km
	}
	workspace.ApplyOverrides(&km, overrides)
	return km
}
