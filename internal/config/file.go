package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate reports whether raw is an acceptable value for key.
func Validate(key, raw string) error {
	if key == "base_url" {
		if strings.TrimSpace(raw) == "" {
			return fmt.Errorf("base_url cannot be empty")
		}
		return nil
	}
	return Default().apply(key, raw, SourceDefault)
}

// SetFileValue writes key: value into the YAML config at path, creating
// the file when needed. Other keys are preserved.
func SetFileValue(path, key, value string) error {
	if err := Validate(key, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	values, err := readFileValues(path)
	if err != nil {
		return err
	}
	values[key] = strings.TrimSpace(value)
	return writeFileValues(path, values)
}

// UnsetFileValue removes key from the YAML config at path. It reports
// whether the key was present.
func UnsetFileValue(path, key string) (bool, error) {
	values, err := readFileValues(path)
	if err != nil {
		return false, err
	}
	if _, ok := values[key]; !ok {
		return false, nil
	}
	delete(values, key)
	return true, writeFileValues(path, values)
}

func readFileValues(path string) (map[string]any, error) {
	values := make(map[string]any)
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

// writeFileValues writes through a temp file so a crash never leaves a
// truncated config behind.
func writeFileValues(path string, values map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
