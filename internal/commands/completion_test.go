package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/completion"
	"github.com/tasknest/tasknest-cli/internal/output"
)

func TestCompletionCmd_Structure(t *testing.T) {
	cmd := NewCompletionCmd()
	assert.Equal(t, "completion [shell]", cmd.Use)
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, cmd.ValidArgs)

	for _, name := range []string{"bash", "zsh", "fish", "powershell", "refresh", "status"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Use)
		assert.NotEmpty(t, sub.Short, name)
	}
}

func TestCompletionScripts(t *testing.T) {
	tests := []struct {
		shell   string
		markers []string
	}{
		{"bash", []string{"bash completion", "__tasknest_", "complete -o"}},
		{"zsh", []string{"#compdef tasknest", "_tasknest"}},
		{"fish", []string{"fish completion", "__tasknest_"}},
		{"powershell", []string{"powershell completion", "__tasknest"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			root := &cobra.Command{Use: "tasknest"}
			root.AddCommand(NewCompletionCmd())

			buf := &bytes.Buffer{}
			require.NoError(t, runCompletion(root, buf, tt.shell))
			for _, m := range tt.markers {
				assert.Contains(t, buf.String(), m)
			}
		})
	}

	assert.Error(t, runCompletion(&cobra.Command{Use: "tasknest"}, &bytes.Buffer{}, "tcsh"))
}

func TestCompletionCmd_Args(t *testing.T) {
	run := func(args ...string) error {
		root := &cobra.Command{Use: "tasknest"}
		root.AddCommand(NewCompletionCmd())
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)
		return root.Execute()
	}

	err := run("completion", "invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")

	err = run("completion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")

	assert.NoError(t, run("completion", "zsh"))
}

func TestCompletionRefresh(t *testing.T) {
	app, buf, _ := setupTestApp(t, "tok", map[string]string{
		"GET /api/groups": `{"items":[{"id":1,"name":"Личная"},{"id":7,"name":"Семья"}]}`,
	})

	require.NoError(t, executeCommand(NewCompletionCmd(), app, "refresh"))

	data, summary := decodeData(t, buf)
	assert.Equal(t, "Cached 2 groups", summary)
	assert.Equal(t, completion.NewStore(app.Config.StateDir).Path(), data.(map[string]any)["cache_path"])
}

func TestCompletionRefresh_RequiresLogin(t *testing.T) {
	app, _, backend := setupTestApp(t, "", nil)

	err := executeCommand(NewCompletionCmd(), app, "refresh")
	assert.True(t, output.IsCode(err, output.CodeAuth))
	assert.Empty(t, backend.requests)
}

func TestCompletionStatus(t *testing.T) {
	app, buf, _ := setupTestApp(t, "", nil)

	require.NoError(t, executeCommand(NewCompletionCmd(), app, "status"))
	data, summary := decodeData(t, buf)
	assert.Equal(t, "0 groups (empty)", summary)
	assert.Equal(t, "never", data.(map[string]any)["age"])

	store := completion.NewStore(app.Config.StateDir)
	require.NoError(t, store.UpdateGroups([]completion.CachedGroup{{ID: 1, Name: "Личная", Personal: true}}))

	buf.Reset()
	require.NoError(t, executeCommand(NewCompletionCmd(), app, "status"))
	data, summary = decodeData(t, buf)
	assert.Equal(t, "1 groups (fresh)", summary)
	assert.Equal(t, false, data.(map[string]any)["stale"])
}

func TestCompletionStatus_Stale(t *testing.T) {
	app, buf, _ := setupTestApp(t, "", nil)

	store := completion.NewStore(app.Config.StateDir)
	require.NoError(t, store.UpdateGroups([]completion.CachedGroup{{ID: 7, Name: "Семья"}}))
	old := time.Now().Add(-2 * completion.DefaultMaxAge)
	require.NoError(t, touchCache(store, old))

	require.NoError(t, executeCommand(NewCompletionCmd(), app, "status"))
	_, summary := decodeData(t, buf)
	assert.Equal(t, "1 groups (stale)", summary)
}

// touchCache rewrites the cache stamp so staleness can be tested without
// waiting.
func touchCache(store *completion.Store, at time.Time) error {
	cache, err := store.Load()
	if err != nil {
		return err
	}
	cache.GroupsUpdatedAt = at
	data, err := json.Marshal(cache)
	if err != nil {
		return err
	}
	return os.WriteFile(store.Path(), data, 0o600)
}
