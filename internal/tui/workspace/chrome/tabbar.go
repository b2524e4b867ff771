package chrome

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

// Tab is one entry of the tab bar.
type Tab struct {
	ID    string
	Label string
}

// TabBar renders the numbered screen tabs with the active one highlighted,
// followed by the title of the active screen when it is not a tab.
type TabBar struct {
	styles *tui.Styles
	tabs   []Tab
	active string
	title  string
	width  int
}

// NewTabBar creates a tab bar over tabs.
func NewTabBar(styles *tui.Styles, tabs []Tab) TabBar {
	return TabBar{styles: styles, tabs: tabs}
}

// SetActive highlights the tab with id and records the screen title.
func (b *TabBar) SetActive(id, title string) {
	b.active = id
	b.title = title
}

// Active returns the highlighted tab id.
func (b *TabBar) Active() string { return b.active }

// Title returns the active screen title.
func (b *TabBar) Title() string { return b.title }

// SetWidth sets the available width.
func (b *TabBar) SetWidth(w int) {
	b.width = w
}

// View renders the tab bar.
func (b TabBar) View() string {
	if b.width <= 0 || len(b.tabs) == 0 {
		return ""
	}

	theme := b.styles.Theme()
	onTab := false
	parts := make([]string, 0, len(b.tabs)+1)
	for i, tab := range b.tabs {
		num := lipgloss.NewStyle().Foreground(theme.Muted).Render(fmt.Sprintf("%d:", i+1))
		if tab.ID == b.active {
			onTab = true
			parts = append(parts, num+b.styles.ChipActive.Render(tab.Label))
			continue
		}
		parts = append(parts, num+b.styles.Chip.Render(tab.Label))
	}
	line := strings.Join(parts, " ")

	if !onTab && b.title != "" {
		sep := lipgloss.NewStyle().Foreground(theme.Border).Render(" > ")
		line += sep + lipgloss.NewStyle().Foreground(theme.Foreground).Bold(true).Render(b.title)
	}

	if lipgloss.Width(line) > b.width {
		line = truncateStyled(line, b.width)
	}
	return lipgloss.NewStyle().Width(b.width).Render(line)
}

// truncateStyled shortens a styled string to width cells, appending "…".
func truncateStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
