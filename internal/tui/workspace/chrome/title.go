package chrome

import tea "github.com/charmbracelet/bubbletea"

// AppName prefixes the terminal title.
const AppName = "tasknest"

// SetTerminalTitle sets the terminal tab title to the app name and, when
// given, the active screen title.
func SetTerminalTitle(screen string) tea.Cmd {
	if screen == "" {
		return tea.SetWindowTitle(AppName)
	}
	return tea.SetWindowTitle(AppName + " · " + screen)
}
