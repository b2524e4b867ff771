// Package config provides layered configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tasknest/tasknest-cli/internal/hostutil"
)

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL     string        `yaml:"base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Session and log files
	StateDir  string `yaml:"state_dir"`
	NoKeyring bool   `yaml:"no_keyring"`
	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`

	// Presentation
	Locale     string `yaml:"locale"`
	Theme      string `yaml:"theme"`
	UrgentDays int    `yaml:"urgent_days"`
	PageSize   int    `yaml:"page_size"`

	// InitData is the host-signed identity payload, when launched from a host.
	InitData string `yaml:"init_data,omitempty"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `yaml:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceDotenv  Source = "dotenv"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL  string
	StateDir string
	LogLevel string
	Locale   string
	InitData string
}

// Defaults for the presentation knobs.
const (
	DefaultBaseURL     = "http://localhost:5000"
	DefaultUrgentDays  = 3
	DefaultPageSize    = 5
	DefaultHTTPTimeout = 30 * time.Second
)

// Default returns the default configuration.
func Default() *Config {
	stateDir := filepath.Join(xdgDir("XDG_STATE_HOME", ".local", "state"), "tasknest")
	return &Config{
		BaseURL:     DefaultBaseURL,
		HTTPTimeout: DefaultHTTPTimeout,
		StateDir:    stateDir,
		LogLevel:    "info",
		Locale:      "ru",
		UrgentDays:  DefaultUrgentDays,
		PageSize:    DefaultPageSize,
		Sources:     make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > .env > local > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, systemConfigPath(), SourceSystem)
	loadFromFile(cfg, GlobalConfigPath(), SourceGlobal)
	if p := localConfigPath(); p != "" {
		loadFromFile(cfg, p, SourceLocal)
	}

	if err := loadDotenv(cfg, ".env"); err != nil {
		return nil, err
	}
	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.StateDir, "tasknest.log")
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	// base_url decides where the token is sent, so a .tasknest.yaml in
	// whatever directory the CLI runs from must not set it.
	if v, ok := fileCfg["base_url"].(string); ok && v != "" {
		if source == SourceLocal {
			fmt.Fprintf(os.Stderr, "warning: ignoring base_url %q from local config at %s (authority keys are not trusted from local config)\n", v, path)
		} else {
			cfg.set("base_url", source, func() { cfg.BaseURL = NormalizeBaseURL(v) })
		}
	}
	for key, v := range fileCfg {
		if key == "base_url" {
			continue
		}
		if err := cfg.apply(key, fmt.Sprint(v), source); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s in %s: %v\n", key, path, err)
		}
	}
}

// loadDotenv applies TASKNEST_* keys of a .env file without exporting them
// into the process environment.
func loadDotenv(cfg *Config, path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	applyEnvMap(cfg, vars, SourceDotenv)
	return nil
}

// LoadFromEnv loads configuration from TASKNEST_* environment variables.
func LoadFromEnv(cfg *Config) {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	applyEnvMap(cfg, vars, SourceEnv)
}

func applyEnvMap(cfg *Config, vars map[string]string, source Source) {
	for _, key := range Keys {
		v, ok := vars[EnvName(key)]
		if !ok || v == "" {
			continue
		}
		if key == "base_url" {
			cfg.set(key, source, func() { cfg.BaseURL = NormalizeBaseURL(v) })
			continue
		}
		_ = cfg.apply(key, v, source)
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.set("base_url", SourceFlag, func() { cfg.BaseURL = NormalizeBaseURL(o.BaseURL) })
	}
	if o.StateDir != "" {
		cfg.set("state_dir", SourceFlag, func() { cfg.StateDir = o.StateDir })
	}
	if o.LogLevel != "" {
		cfg.set("log_level", SourceFlag, func() { cfg.LogLevel = o.LogLevel })
	}
	if o.Locale != "" {
		cfg.set("locale", SourceFlag, func() { cfg.Locale = o.Locale })
	}
	if o.InitData != "" {
		cfg.set("init_data", SourceFlag, func() { cfg.InitData = o.InitData })
	}
}

// Keys lists the recognized configuration keys in display order.
var Keys = []string{
	"base_url", "http_timeout", "state_dir", "no_keyring", "log_file",
	"log_level", "locale", "theme", "urgent_days", "page_size", "init_data",
}

// EnvName returns the environment variable for key, e.g. TASKNEST_BASE_URL.
func EnvName(key string) string {
	return "TASKNEST_" + strings.ToUpper(key)
}

// Value returns the string form of key's current value.
func (cfg *Config) Value(key string) string {
	switch key {
	case "base_url":
		return cfg.BaseURL
	case "http_timeout":
		return cfg.HTTPTimeout.String()
	case "state_dir":
		return cfg.StateDir
	case "no_keyring":
		return strconv.FormatBool(cfg.NoKeyring)
	case "log_file":
		return cfg.LogFile
	case "log_level":
		return cfg.LogLevel
	case "locale":
		return cfg.Locale
	case "theme":
		return cfg.Theme
	case "urgent_days":
		return strconv.Itoa(cfg.UrgentDays)
	case "page_size":
		return strconv.Itoa(cfg.PageSize)
	case "init_data":
		if cfg.InitData != "" {
			return "(set)"
		}
		return ""
	}
	return ""
}

// SourceOf returns where key's value came from.
func (cfg *Config) SourceOf(key string) string {
	if s, ok := cfg.Sources[key]; ok {
		return s
	}
	return string(SourceDefault)
}

func (cfg *Config) set(key string, source Source, assign func()) {
	assign()
	cfg.Sources[key] = string(source)
}

// apply parses raw for key. Invalid values are rejected and leave the
// current value untouched.
func (cfg *Config) apply(key, raw string, source Source) error {
	raw = strings.TrimSpace(raw)
	switch key {
	case "http_timeout":
		d, err := parseDuration(raw)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid duration %q", raw)
		}
		cfg.set(key, source, func() { cfg.HTTPTimeout = d })
	case "state_dir":
		cfg.set(key, source, func() { cfg.StateDir = expandHome(raw) })
	case "no_keyring":
		b, ok := parseEnvBool(raw)
		if !ok {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		cfg.set(key, source, func() { cfg.NoKeyring = b })
	case "log_file":
		cfg.set(key, source, func() { cfg.LogFile = expandHome(raw) })
	case "log_level":
		cfg.set(key, source, func() { cfg.LogLevel = strings.ToLower(raw) })
	case "locale":
		cfg.set(key, source, func() { cfg.Locale = raw })
	case "theme":
		cfg.set(key, source, func() { cfg.Theme = expandHome(raw) })
	case "urgent_days":
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid day count %q", raw)
		}
		cfg.set(key, source, func() { cfg.UrgentDays = n })
	case "page_size":
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid page size %q", raw)
		}
		cfg.set(key, source, func() { cfg.PageSize = n })
	case "init_data":
		cfg.set(key, source, func() { cfg.InitData = raw })
	default:
		return fmt.Errorf("unknown key")
	}
	return nil
}

// parseDuration accepts Go durations ("45s") and bare seconds ("45").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// parseEnvBool parses a boolean value strictly.
// Returns (value, true) for recognized values, (false, false) for unrecognized.
func parseEnvBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// Path helpers

func systemConfigPath() string {
	return "/etc/tasknest/config.yaml"
}

// GlobalConfigPath returns the per-user config file path.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.yaml")
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "tasknest")
}

// localConfigPath returns .tasknest.yaml in the working directory, if any.
// Parent directories are not searched.
func localConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, ".tasknest.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append([]string{home}, fallback...)...)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// NormalizeBaseURL ensures consistent URL format: a scheme and no
// trailing slash.
func NormalizeBaseURL(url string) string {
	return hostutil.Normalize(url)
}
