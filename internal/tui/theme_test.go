package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadThemeFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors.toml")
	content := `# palette
accent = "#89b4fa"
foreground = "#cdd6f4"
color1 = "#f38ba8"
color8 = "not-a-color"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	theme, err := LoadThemeFromFile(path)
	require.NoError(t, err)

	defaults := DefaultTheme()
	assert.Equal(t, "#89b4fa", theme.Primary.Dark)
	assert.Equal(t, defaults.Primary.Light, theme.Primary.Light)
	assert.Equal(t, "#cdd6f4", theme.Foreground.Dark)
	assert.Equal(t, "#f38ba8", theme.Error.Dark)
	assert.Equal(t, defaults.Muted, theme.Muted, "invalid hex keeps default")
}

func TestLoadThemeFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.toml")
	require.NoError(t, os.WriteFile(path, []byte(`accent = `), 0o600))

	_, err := LoadThemeFromFile(path)
	assert.Error(t, err)
}

func TestResolveTheme_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, NoColorTheme(), ResolveTheme(""))
}

func TestResolveTheme_MissingFileFallsBack(t *testing.T) {
	t.Setenv("TASKNEST_THEME", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	assert.Equal(t, DefaultTheme(), ResolveTheme(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestIsValidHexColor(t *testing.T) {
	assert.True(t, isValidHexColor("#fff"))
	assert.True(t, isValidHexColor("#A1b2C3"))
	assert.False(t, isValidHexColor("fff"))
	assert.False(t, isValidHexColor("#ggg"))
	assert.False(t, isValidHexColor("#12345"))
}
