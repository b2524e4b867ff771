package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	cfg := Default()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/state/tasknest", cfg.StateDir)
	assert.Equal(t, 3, cfg.UrgentDays)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "ru", cfg.Locale)
	assert.NotNil(t, cfg.Sources)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
base_url: http://api.example.com/
http_timeout: 45s
state_dir: /tmp/tn
no_keyring: true
log_level: DEBUG
locale: en
urgent_days: 2
page_size: 10
`)

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)

	assert.Equal(t, "http://api.example.com", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/tn", cfg.StateDir)
	assert.True(t, cfg.NoKeyring)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 2, cfg.UrgentDays)
	assert.Equal(t, 10, cfg.PageSize)

	assert.Equal(t, "global", cfg.Sources["base_url"])
	assert.Equal(t, "global", cfg.SourceOf("page_size"))
	assert.Equal(t, "default", cfg.SourceOf("theme"))
}

func TestLoadFromFileSkipsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "base_url: [unterminated")

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoadFromFileSkipsMissingFile(t *testing.T) {
	cfg := Default()
	loadFromFile(cfg, "/nonexistent/path/config.yaml", SourceGlobal)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoadFromFileRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "page_size: 0\nurgent_days: -1\nhttp_timeout: soon\nno_keyring: maybe\n")

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)

	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 3, cfg.UrgentDays)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.NoKeyring)
}

func TestLocalConfigCannotSetBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tasknest.yaml")
	writeFile(t, path, "base_url: http://evil.example.com\nlocale: en\n")

	cfg := Default()
	loadFromFile(cfg, path, SourceLocal)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "en", cfg.Locale, "non-authority keys still apply")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKNEST_BASE_URL", "http://env.example.com/")
	t.Setenv("TASKNEST_PAGE_SIZE", "7")
	t.Setenv("TASKNEST_HTTP_TIMEOUT", "12")
	t.Setenv("TASKNEST_NO_KEYRING", "1")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, "http://env.example.com", cfg.BaseURL)
	assert.Equal(t, 7, cfg.PageSize)
	assert.Equal(t, 12*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.NoKeyring)
	assert.Equal(t, "env", cfg.Sources["base_url"])
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, "TASKNEST_LOCALE=en\nUNRELATED=1\n")

	cfg := Default()
	require.NoError(t, loadDotenv(cfg, path))
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "dotenv", cfg.Sources["locale"])

	_, set := os.LookupEnv("TASKNEST_LOCALE")
	assert.False(t, set, ".env values are not exported")

	require.NoError(t, loadDotenv(cfg, filepath.Join(t.TempDir(), "missing.env")))
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	ApplyOverrides(cfg, FlagOverrides{
		BaseURL:  "http://flag.example.com/",
		StateDir: "/flag/state",
		LogLevel: "warn",
		InitData: "query_id=1",
	})

	assert.Equal(t, "http://flag.example.com", cfg.BaseURL)
	assert.Equal(t, "/flag/state", cfg.StateDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "query_id=1", cfg.InitData)
	assert.Equal(t, "flag", cfg.Sources["base_url"])
	assert.Equal(t, "(set)", cfg.Value("init_data"), "init data is never echoed")
}

func TestApplyOverridesSkipsEmpty(t *testing.T) {
	cfg := Default()
	ApplyOverrides(cfg, FlagOverrides{})
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Empty(t, cfg.Sources)
}

func TestFullLayeringPrecedence(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.yaml")
	local := filepath.Join(dir, "local.yaml")
	writeFile(t, global, "locale: en\npage_size: 6\nurgent_days: 4\n")
	writeFile(t, local, "page_size: 8\nurgent_days: 5\n")
	t.Setenv("TASKNEST_URGENT_DAYS", "9")

	cfg := Default()
	loadFromFile(cfg, global, SourceGlobal)
	loadFromFile(cfg, local, SourceLocal)
	LoadFromEnv(cfg)
	ApplyOverrides(cfg, FlagOverrides{Locale: "ru"})

	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, "flag", cfg.Sources["locale"])
	assert.Equal(t, 8, cfg.PageSize)
	assert.Equal(t, "local", cfg.Sources["page_size"])
	assert.Equal(t, 9, cfg.UrgentDays)
	assert.Equal(t, "env", cfg.Sources["urgent_days"])
}

func TestLoadUsesGlobalFileAndDerivesLogFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	t.Chdir(t.TempDir())
	writeFile(t, filepath.Join(home, "tasknest", "config.yaml"), "theme: ~/colors.toml\n")

	cfg, err := Load(FlagOverrides{StateDir: "/custom"})
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(homeDir, "colors.toml"), cfg.Theme)
	assert.Equal(t, filepath.Join("/custom", "tasknest.log"), cfg.LogFile)
	assert.Equal(t, filepath.Join(home, "tasknest"), GlobalConfigDir())
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://x", NormalizeBaseURL("http://x/"))
	assert.Equal(t, "http://x", NormalizeBaseURL("http://x"))
	assert.Equal(t, "https://tasks.example.com", NormalizeBaseURL("tasks.example.com/"))
	assert.Equal(t, "http://localhost:8080", NormalizeBaseURL("localhost:8080"))
}

func TestWatchReportsFileChanges(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "locale: ru\n")
	session := filepath.Join(dir, "session")
	require.NoError(t, os.MkdirAll(session, 0o700))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := Watch(ctx, 20*time.Millisecond, cfgPath, session)
	require.NoError(t, err)

	writeFile(t, cfgPath, "locale: en\n")
	select {
	case c := <-changes:
		assert.Equal(t, cfgPath, c.Target)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported for config file")
	}

	writeFile(t, filepath.Join(session, "access_token"), "tok")
	select {
	case c := <-changes:
		assert.Equal(t, session, c.Target)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported for session dir")
	}

	cancel()
	for range changes {
	}
}
