package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("page_size", "10"))
	assert.NoError(t, Validate("base_url", "http://x"))
	assert.Error(t, Validate("page_size", "0"))
	assert.Error(t, Validate("http_timeout", "soon"))
	assert.Error(t, Validate("base_url", " "))
	assert.Error(t, Validate("colour", "red"))
}

func TestSetFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SetFileValue(path, "locale", "en"))
	require.NoError(t, SetFileValue(path, "urgent_days", "2"))

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 2, cfg.UrgentDays)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSetFileValue_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := SetFileValue(path, "page_size", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing written")
}

func TestUnsetFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "locale: en\ntheme: dark\n")

	removed, err := UnsetFileValue(path, "locale")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = UnsetFileValue(path, "locale")
	require.NoError(t, err)
	assert.False(t, removed)

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)
	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, "global", cfg.SourceOf("theme"))
}
