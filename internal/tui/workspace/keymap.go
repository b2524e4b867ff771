package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/charmbracelet/bubbles/key"

	"github.com/tasknest/tasknest-cli/internal/config"
)

// GlobalKeyMap defines keybindings that work in every context.
type GlobalKeyMap struct {
	Quit           key.Binding
	Help           key.Binding
	Back           key.Binding
	HostBack       key.Binding
	HistoryBack    key.Binding
	HistoryForward key.Binding
	Refresh        key.Binding
	Palette        key.Binding
	Metrics        key.Binding
	Home           key.Binding
	Tasks          key.Binding
	Groups         key.Binding
	Finance        key.Binding
	Settings       key.Binding
}

// DefaultGlobalKeyMap returns the default global keybindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		HostBack: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "host back"),
		),
		HistoryBack: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "history back"),
		),
		HistoryForward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "history forward"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "command palette"),
		),
		Metrics: key.NewBinding(
			key.WithKeys("`"),
			key.WithHelp("`", "session stats"),
		),
		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "tasks"),
		),
		Groups: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "groups"),
		),
		Finance: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "finance"),
		),
		Settings: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "settings"),
		),
	}
}

// TabFor returns the screen a tab binding switches to.
func (k GlobalKeyMap) TabFor(msg interface{ String() string }) (ScreenID, bool) {
	tabs := []struct {
		binding key.Binding
		screen  ScreenID
	}{
		{k.Home, ScreenHome},
		{k.Tasks, ScreenTasks},
		{k.Groups, ScreenGroupTasks},
		{k.Finance, ScreenFinance},
		{k.Settings, ScreenSettings},
	}
	for _, t := range tabs {
		for _, s := range t.binding.Keys() {
			if s == msg.String() && t.binding.Enabled() {
				return t.screen, true
			}
		}
	}
	return "", false
}

// ListKeyMap defines keybindings for list navigation.
type ListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
}

// DefaultListKeyMap returns the default list navigation keybindings.
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("j/k", "navigate"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/k", "navigate"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("<", "pgup"),
			key.WithHelp("<", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys(">", "pgdown"),
			key.WithHelp(">", "next page"),
		),
	}
}

// DateKeyMap defines keybindings for the date bar.
type DateKeyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Today    key.Binding
	Calendar key.Binding
}

// DefaultDateKeyMap returns the default date bar keybindings.
func DefaultDateKeyMap() DateKeyMap {
	return DateKeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("h/l", "day"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("h/l", "day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Calendar: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "calendar"),
		),
	}
}

// ShortHelp returns the global key bindings for the status bar.
func (k GlobalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Back, k.Palette, k.Quit}
}

// FullHelp returns all global key bindings for the help overlay.
func (k GlobalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Back, k.HostBack, k.Quit},
		{k.HistoryBack, k.HistoryForward},
		{k.Home, k.Tasks, k.Groups, k.Finance, k.Settings},
		{k.Help, k.Refresh, k.Palette, k.Metrics},
	}
}

// actionFieldMap maps action names (from keybindings.json) to GlobalKeyMap field names.
var actionFieldMap = map[string]string{
	"quit":            "Quit",
	"help":            "Help",
	"back":            "Back",
	"host_back":       "HostBack",
	"history_back":    "HistoryBack",
	"history_forward": "HistoryForward",
	"refresh":         "Refresh",
	"palette":         "Palette",
	"metrics":         "Metrics",
	"home":            "Home",
	"tasks":           "Tasks",
	"groups":          "Groups",
	"finance":         "Finance",
	"settings":        "Settings",
}

// KeybindingsPath returns the user's keybindings.json location.
func KeybindingsPath() string {
	return filepath.Join(config.GlobalConfigDir(), "keybindings.json")
}

// LoadKeyOverrides reads keybinding overrides from a JSON file.
// Returns an empty map (not an error) if the file doesn't exist.
func LoadKeyOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// ApplyOverrides remaps keybindings in km according to the overrides map.
// Keys are action names (e.g. "palette"), values are key strings (e.g. "ctrl+k").
// Unknown actions are silently ignored.
func ApplyOverrides(km *GlobalKeyMap, overrides map[string]string) {
	v := reflect.ValueOf(km).Elem()
	for action, keyStr := range overrides {
		fieldName, ok := actionFieldMap[action]
		if !ok {
			continue
		}
		field := v.FieldByName(fieldName)
		if !field.IsValid() {
			continue
		}
		binding := field.Interface().(key.Binding)
		helpInfo := binding.Help()
		field.Set(reflect.ValueOf(key.NewBinding(
			key.WithKeys(keyStr),
			key.WithHelp(keyStr, helpInfo.Desc),
		)))
	}
}
