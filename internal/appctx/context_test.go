package appctx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/config"
	"github.com/tasknest/tasknest-cli/internal/observability"
	"github.com/tasknest/tasknest-cli/internal/output"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	cfg.LogFile = filepath.Join(cfg.StateDir, "test.log")
	cfg.NoKeyring = true
	return cfg
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(cfg, GlobalFlags{})
	require.NoError(t, err)
	defer app.Close()

	assert.Same(t, cfg, app.Config)
	assert.NotNil(t, app.Session)
	assert.NotNil(t, app.API)
	assert.NotNil(t, app.Output)
	assert.Equal(t, filepath.Join(cfg.StateDir, "session"), app.SessionDir)
	assert.Equal(t, cfg.BaseURL, app.API.BaseURL())
	assert.NotNil(t, app.Gate)
}

func TestNewAppEphemeral(t *testing.T) {
	app, err := NewApp(testConfig(t), GlobalFlags{Ephemeral: true})
	require.NoError(t, err)
	defer app.Close()

	assert.Empty(t, app.SessionDir)
	assert.Nil(t, app.Gate)
	require.NoError(t, app.Session.SetToken("tok"))
	assert.Equal(t, "tok", app.Session.Token())
}

func TestSessionPersistsAcrossApps(t *testing.T) {
	cfg := testConfig(t)
	first, err := NewApp(cfg, GlobalFlags{})
	require.NoError(t, err)
	require.NoError(t, first.Session.SetToken("persisted"))
	require.NoError(t, first.Close())

	second, err := NewApp(cfg, GlobalFlags{})
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, "persisted", second.Session.Token())
}

func TestFormatFromFlags(t *testing.T) {
	tests := []struct {
		flags GlobalFlags
		want  output.Format
	}{
		{GlobalFlags{}, output.FormatAuto},
		{GlobalFlags{JSON: true}, output.FormatJSON},
		{GlobalFlags{Quiet: true, JSON: true}, output.FormatQuiet},
		{GlobalFlags{Styled: true}, output.FormatStyled},
	}
	for _, tt := range tests {
		a := &App{Flags: tt.flags}
		assert.Equal(t, tt.want, a.format())
	}
}

func TestVerbosityFromEnv(t *testing.T) {
	t.Setenv("TASKNEST_DEBUG", "true")
	assert.Equal(t, 2, verbosity(0))

	t.Setenv("TASKNEST_DEBUG", "1")
	assert.Equal(t, 2, verbosity(2), "flag wins when higher")
	assert.Equal(t, 1, verbosity(0))
}

func TestOverrides(t *testing.T) {
	o := GlobalFlags{BaseURL: "http://x", Locale: "en"}.Overrides()
	assert.Equal(t, "http://x", o.BaseURL)
	assert.Equal(t, "en", o.Locale)
}

func TestFormatStats(t *testing.T) {
	start := time.Now()
	s := FormatStats(&observability.SessionMetrics{
		StartTime:     start,
		EndTime:       start.Add(250 * time.Millisecond),
		TotalRequests: 3,
		FailedReqs:    1,
		TotalRetries:  1,
	})
	assert.Equal(t, "\nStats: 250ms | 3 requests | 1 failed | 1 retry\n", s)
	assert.Empty(t, FormatStats(nil))
}

func TestWithAppAndFromContext(t *testing.T) {
	app := &App{}
	ctx := WithApp(context.Background(), app)
	assert.Same(t, app, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
