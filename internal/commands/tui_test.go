package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/output"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

func TestResolveLaunch(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		flags LaunchFlags
		want  workspace.LaunchParams
	}{
		{
			name: "nothing",
		},
		{
			name: "link",
			args: []string{"tasknest://open?token=T1&invite=I2#finance"},
			want: workspace.LaunchParams{Token: "T1", Invite: "I2", Screen: "finance"},
		},
		{
			name:  "flags override link",
			args:  []string{"tasknest://open?token=T1#finance"},
			flags: LaunchFlags{Token: " T9 ", Screen: "settings"},
			want:  workspace.LaunchParams{Token: "T9", Screen: "settings"},
		},
		{
			name:  "flags only",
			flags: LaunchFlags{Invite: "inv"},
			want:  workspace.LaunchParams{Invite: "inv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLaunch(tt.args, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLaunch_Errors(t *testing.T) {
	t.Run("not a link", func(t *testing.T) {
		_, err := resolveLaunch([]string{"finance"}, LaunchFlags{})
		require.Error(t, err)
		assert.True(t, output.IsCode(err, output.CodeUsage))
	})

	t.Run("unknown screen", func(t *testing.T) {
		_, err := resolveLaunch(nil, LaunchFlags{Screen: "calendar"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "calendar")
	})

	t.Run("auth screen is not a destination", func(t *testing.T) {
		_, err := resolveLaunch([]string{"tasknest://open#auth"}, LaunchFlags{})
		require.Error(t, err)
		assert.True(t, output.IsCode(err, output.CodeUsage))
	})

	t.Run("error hides the token", func(t *testing.T) {
		_, err := resolveLaunch([]string{"https://app.example.com/?token=secret#nowhere"}, LaunchFlags{})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "secret")
	})
}

func TestAddLaunchFlags(t *testing.T) {
	cmd := NewTUICmd()
	for _, name := range []string{"token", "invite", "screen"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
