package completion

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/config"
)

// StateDirFunc returns the directory holding the completion cache.
type StateDirFunc func(cmd *cobra.Command) string

// DefaultStateDirFunc returns the state directory by checking, in order:
// the --state-dir flag, the app config (set by PersistentPreRunE),
// TASKNEST_STATE_DIR and the default.
//
// During __complete, PersistentPreRunE does not run, so state_dir from
// config files is not honored. Loading them would slow every keystroke.
func DefaultStateDirFunc(cmd *cobra.Command) string {
	if root := cmd.Root(); root != nil {
		if flag := root.PersistentFlags().Lookup("state-dir"); flag != nil && flag.Changed {
			return flag.Value.String()
		}
	}
	if ctx := cmd.Context(); ctx != nil {
		if app := appctx.FromContext(ctx); app != nil {
			return app.Config.StateDir
		}
	}
	if v := os.Getenv(config.EnvName("state_dir")); v != "" {
		return v
	}
	return config.Default().StateDir
}

// Completer provides tab completion functions. It reads from the file
// cache and never touches the API.
type Completer struct {
	stateDir StateDirFunc
}

// NewCompleter creates a Completer. A nil stateDir uses DefaultStateDirFunc.
func NewCompleter(stateDir StateDirFunc) *Completer {
	if stateDir == nil {
		stateDir = DefaultStateDirFunc
	}
	return &Completer{stateDir: stateDir}
}

func (c *Completer) store(cmd *cobra.Command) *Store {
	return NewStore(c.stateDir(cmd))
}

// GroupCompletion completes group names. The personal group comes first,
// then the rest alphabetically.
func (c *Completer) GroupCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		groups := rankGroups(c.store(cmd).Groups())
		prefix := strings.ToLower(toComplete)

		var completions []cobra.Completion
		for _, g := range groups {
			if !strings.Contains(strings.ToLower(g.Name), prefix) {
				continue
			}
			completions = append(completions, cobra.CompletionWithDesc(g.Name, "#"+strconv.FormatInt(g.ID, 10)))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// StaticCompletion completes from a fixed list of values.
func StaticCompletion(values ...string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		var completions []cobra.Completion
		for _, v := range values {
			if strings.HasPrefix(v, toComplete) {
				completions = append(completions, cobra.Completion(v))
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

func rankGroups(groups []CachedGroup) []CachedGroup {
	ranked := make([]CachedGroup, len(groups))
	copy(ranked, groups)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Personal != ranked[j].Personal {
			return ranked[i].Personal
		}
		return strings.ToLower(ranked[i].Name) < strings.ToLower(ranked[j].Name)
	})
	return ranked
}
