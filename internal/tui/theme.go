package tui

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// ResolveTheme loads a theme with the following precedence:
//  1. NO_COLOR env var set → NoColorTheme
//  2. explicit path (TASKNEST_THEME env or the config "theme" key)
//  3. user theme from ~/.config/tasknest/theme/colors.toml
//  4. DefaultTheme
func ResolveTheme(path string) Theme {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NoColorTheme()
	}

	if env := os.Getenv("TASKNEST_THEME"); env != "" {
		path = env
	}
	if path != "" {
		if theme, err := LoadThemeFromFile(path); err == nil {
			return theme
		}
	}

	if theme, err := LoadUserTheme(); err == nil {
		return theme
	}

	return DefaultTheme()
}

// NoColorTheme returns a theme with empty colors (honors NO_COLOR).
func NoColorTheme() Theme {
	empty := lipgloss.AdaptiveColor{}
	return Theme{
		Primary:    empty,
		Secondary:  empty,
		Success:    empty,
		Warning:    empty,
		Error:      empty,
		Muted:      empty,
		Background: empty,
		Foreground: empty,
		Border:     empty,
	}
}

// UserThemePath returns the default location of the user's colors.toml.
func UserThemePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasknest", "theme", "colors.toml"), nil
}

// LoadUserTheme attempts to load the user's theme file.
// The theme directory can be a symlink to another theme system.
func LoadUserTheme() (Theme, error) {
	path, err := UserThemePath()
	if err != nil {
		return Theme{}, err
	}
	return LoadThemeFromFile(path)
}

// LoadThemeFromFile parses a colors.toml file and returns a Theme.
// Unknown keys are ignored; missing keys keep the default palette.
func LoadThemeFromFile(path string) (Theme, error) {
	colors := map[string]string{}
	if _, err := toml.DecodeFile(path, &colors); err != nil {
		return Theme{}, err
	}
	return mapColorsToTheme(colors), nil
}

// mapColorsToTheme maps terminal palette keys onto theme slots:
//
//	accent / color4 → Primary
//	color7          → Secondary
//	color2          → Success
//	color3          → Warning
//	color1          → Error
//	color8 / color0 → Muted, Border
func mapColorsToTheme(colors map[string]string) Theme {
	defaults := DefaultTheme()

	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := colors[k]; ok && isValidHexColor(v) {
				return v
			}
		}
		return ""
	}
	dark := func(fallback lipgloss.AdaptiveColor, keys ...string) lipgloss.AdaptiveColor {
		v := get(keys...)
		if v == "" {
			return fallback
		}
		return lipgloss.AdaptiveColor{Light: fallback.Light, Dark: v}
	}

	return Theme{
		Primary:    dark(defaults.Primary, "accent", "color4"),
		Secondary:  dark(defaults.Secondary, "color7"),
		Success:    dark(defaults.Success, "color2"),
		Warning:    dark(defaults.Warning, "color3"),
		Error:      dark(defaults.Error, "color1"),
		Muted:      dark(defaults.Muted, "color8", "color0"),
		Background: dark(defaults.Background, "background"),
		Foreground: dark(defaults.Foreground, "foreground"),
		Border:     dark(defaults.Border, "color8", "color0"),
	}
}

func isValidHexColor(s string) bool {
	if len(s) != 7 && len(s) != 4 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
