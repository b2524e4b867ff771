// Package cli assembles the tasknest root command.
package cli

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/commands"
	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/version"
)

// NewRootCmd creates the root cobra command. Subcommands are added by
// Execute so tests can assemble their own tree.
func NewRootCmd() *cobra.Command {
	var (
		flags  appctx.GlobalFlags
		launch commands.LaunchFlags
	)

	cmd := &cobra.Command{
		Use:   "tasknest [url]",
		Short: "Tasks and finances for you and your groups",
		Long: `tasknest is a terminal client for shared tasks and finances.

Run it without a command to open the full-screen workspace, or pass a
launch link from the bot. Every screen of the workspace also has a
scriptable command below.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunTUI(cmd, args, launch)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipSetup(cmd) {
				return nil
			}

			cfg, err := config.Load(flags.Overrides())
			if err != nil {
				return err
			}

			app, err := appctx.NewApp(cfg, flags)
			if err != nil {
				return err
			}
			app.Log.Debug().
				Str("command", cmd.CommandPath()).
				Str("base_url", cfg.BaseURL).
				Str("state_dir", cfg.StateDir).
				Msg("starting")

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)
	cmd.SetGlobalNormalizationFunc(normalizeFlagName)

	// Output format flags
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")

	// Context flags
	cmd.PersistentFlags().StringVar(&flags.BaseURL, "base-url", "", "API base URL (e.g. https://tasknest.example.com)")
	cmd.PersistentFlags().StringVar(&flags.StateDir, "state-dir", "", "Directory for the session, logs and caches")
	cmd.PersistentFlags().StringVar(&flags.Locale, "locale", "", "Date and number locale (ru, en)")
	cmd.PersistentFlags().StringVar(&flags.InitData, "init-data", "", "Host-signed init data to log in with")
	_ = cmd.PersistentFlags().MarkHidden("init-data")

	// Behavior flags
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for retries, -vv for requests)")
	cmd.PersistentFlags().BoolVar(&flags.Stats, "stats", false, "Show session statistics")
	cmd.PersistentFlags().BoolVar(&flags.Ephemeral, "ephemeral", false, "Keep the session in memory only")

	_ = cmd.RegisterFlagCompletionFunc("locale", func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return []cobra.Completion{"ru", "en"}, cobra.ShellCompDirectiveNoFileComp
	})

	commands.AddLaunchFlags(cmd, &launch)

	return cmd
}

// normalizeFlagName accepts config key spellings on the command line, so
// --base_url works like --base-url.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// skipSetup reports whether cmd runs without an app: help output and
// shell completion requests must not touch the session store.
func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

// Execute runs the root command and exits with the error's exit code.
func Execute() {
	cmd := NewRootCmd()
	cmd.AddCommand(commands.All()...)

	executedCmd, err := cmd.ExecuteC()

	var app *appctx.App
	if executedCmd != nil {
		app = appctx.FromContext(executedCmd.Context())
	}
	if app != nil {
		defer app.Close()
	}

	if err == nil {
		return
	}

	err = transformCobraError(err)
	exitCode := output.AsError(err).ExitCode()

	if app != nil {
		_ = app.Err(err)
		_ = app.Close()
		os.Exit(exitCode)
	}

	// No app yet (setup failed or cobra rejected the arguments).
	pf := cmd.PersistentFlags()
	format := output.FormatAuto
	quiet, _ := pf.GetBool("quiet")
	jsonFlag, _ := pf.GetBool("json")
	styled, _ := pf.GetBool("styled")
	switch {
	case quiet:
		format = output.FormatQuiet
	case jsonFlag:
		format = output.FormatJSON
	case styled:
		format = output.FormatStyled
	}

	writer := output.New(output.Options{
		Format: format,
		Writer: os.Stdout,
	})
	_ = writer.Err(err)

	os.Exit(exitCode)
}

var shorthandFlagRe = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)

// transformCobraError turns cobra's argument errors into usage errors so
// they exit with the usage code and read like the rest of the CLI.
func transformCobraError(err error) error {
	msg := err.Error()

	switch {
	case strings.HasPrefix(msg, "flag needs an argument: "):
		flag := strings.TrimPrefix(msg, "flag needs an argument: ")
		return output.ErrUsage(flag + " requires a value")

	case strings.HasPrefix(msg, "unknown flag: "):
		return output.ErrUsage("Unknown option: " + strings.TrimPrefix(msg, "unknown flag: "))

	case strings.HasPrefix(msg, "unknown shorthand flag: "):
		if m := shorthandFlagRe.FindStringSubmatch(msg); len(m) > 1 {
			return output.ErrUsage("Unknown option: " + m[1])
		}
		return output.ErrUsage(msg)

	case strings.HasPrefix(msg, "unknown command "):
		return output.ErrUsageHint(msg, "Run: tasknest commands")

	case strings.Contains(msg, "invalid argument"),
		strings.Contains(msg, "arg(s), received"),
		strings.HasPrefix(msg, "required flag(s) "):
		return output.ErrUsage(msg)
	}

	return err
}
