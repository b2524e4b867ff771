package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/appctx"
	"github.com/tasknest/tasknest-cli/internal/output"
)

func TestTransformCobraError(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		isUsage bool
	}{
		{"flag needs an argument: --group", "--group requires a value", true},
		{"unknown flag: --colour", "Unknown option: --colour", true},
		{"unknown shorthand flag: 'x' in -x", "Unknown option: -x", true},
		{`invalid argument "tcsh" for "tasknest completion"`, `invalid argument "tcsh" for "tasknest completion"`, true},
		{"accepts 1 arg(s), received 0", "accepts 1 arg(s), received 0", true},
		{"something else", "something else", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := transformCobraError(errors.New(tt.in))
			assert.Equal(t, tt.isUsage, output.IsCode(err, output.CodeUsage))
			assert.Equal(t, tt.want, output.AsError(err).Message)
		})
	}
}

func TestRootFlags(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"json", "quiet", "styled", "base-url", "state-dir", "locale", "init-data", "verbose", "stats", "ephemeral"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	for _, name := range []string{"token", "invite", "screen"} {
		assert.NotNil(t, root.Flags().Lookup(name), name)
	}
	assert.True(t, root.PersistentFlags().Lookup("init-data").Hidden)
	assert.NotNil(t, root.PersistentFlags().Lookup("base_url"), "underscores normalize to dashes")
}

func TestPersistentPreRun_BuildsApp(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TASKNEST_NO_KEYRING", "true")
	stateDir := t.TempDir()

	var got *appctx.App
	root := NewRootCmd()
	root.AddCommand(&cobra.Command{
		Use: "ping",
		RunE: func(cmd *cobra.Command, args []string) error {
			got = appctx.FromContext(cmd.Context())
			return nil
		},
	})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"ping", "--json", "--state-dir", stateDir, "--base-url", "https://tasks.example.com/", "--ephemeral"})

	require.NoError(t, root.Execute())
	require.NotNil(t, got)
	t.Cleanup(func() { _ = got.Close() })

	assert.Equal(t, stateDir, got.Config.StateDir)
	assert.Equal(t, "https://tasks.example.com", got.Config.BaseURL)
	assert.Equal(t, "flag", got.Config.SourceOf("base_url"))
	assert.True(t, got.Flags.JSON)
	assert.Empty(t, got.SessionDir, "ephemeral sessions stay in memory")
}

func TestPersistentPreRun_SkipsHelp(t *testing.T) {
	root := NewRootCmd()
	root.InitDefaultHelpCmd()

	help, _, err := root.Find([]string{"help"})
	require.NoError(t, err)
	assert.True(t, skipSetup(help))

	complete := &cobra.Command{Use: cobra.ShellCompRequestCmd}
	assert.True(t, skipSetup(complete))
	assert.False(t, skipSetup(root))
}
