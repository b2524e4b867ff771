package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/completion"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// NewCompletionCmd creates the completion command group.
func NewCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [shell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tasknest.

Bash:
  $ source <(tasknest completion bash)

Zsh:
  $ tasknest completion zsh > "${fpath[1]}/_tasknest"

Fish:
  $ tasknest completion fish | source

PowerShell:
  PS> tasknest completion powershell | Out-String | Invoke-Expression

Group names complete from a local cache. It is refreshed by
'tasknest groups' and 'tasknest completion refresh'.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(cmd.Root(), cmd.OutOrStdout(), args[0])
		},
	}

	for _, shell := range completionShells {
		cmd.AddCommand(&cobra.Command{
			Use:                   shell,
			Short:                 fmt.Sprintf("Generate %s completion script", shell),
			DisableFlagsInUseLine: true,
			Args:                  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCompletion(cmd.Root(), cmd.OutOrStdout(), shell)
			},
		})
	}

	cmd.AddCommand(newCompletionRefreshCmd())
	cmd.AddCommand(newCompletionStatusCmd())

	return cmd
}

func runCompletion(rootCmd *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unknown shell: %s", shell)
	}
}

func newCompletionRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the completion cache",
		Long:  "Fetch your groups and store them for tab completion.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			if err := requireLogin(app); err != nil {
				return err
			}

			store := completion.NewStore(app.Config.StateDir)
			refresher := completion.NewRefresher(store, app.API, app.Session.DefaultGroupID())
			if err := refresher.RefreshGroups(cmd.Context()); err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}

			count := len(store.Groups())
			return app.OK(map[string]any{
				"groups":     count,
				"cache_path": store.Path(),
			}, fmt.Sprintf("Cached %d groups", count))
		},
	}
}

func newCompletionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show completion cache status",
		Long: `Show the number of cached groups, their age and the cache location.

Note: completions do not read config files. If you set state_dir in a
config file, also export TASKNEST_STATE_DIR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			store := completion.NewStore(app.Config.StateDir)
			cache, err := store.Load()
			if err != nil {
				return err
			}

			stale := store.IsStale(completion.DefaultMaxAge)
			age, status := "never", "empty"
			if !cache.GroupsUpdatedAt.IsZero() {
				age = time.Since(cache.GroupsUpdatedAt).Round(time.Second).String()
				status = "fresh"
				if stale {
					status = "stale"
				}
			}

			return app.OK(map[string]any{
				"groups":            len(cache.Groups),
				"groups_updated_at": cache.GroupsUpdatedAt,
				"age":               age,
				"status":            status,
				"stale":             stale,
				"cache_path":        store.Path(),
			}, fmt.Sprintf("%d groups (%s)", len(cache.Groups), status))
		},
	}
}
