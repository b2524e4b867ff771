// Package widget provides reusable composable sub-models for workspace views.
package widget

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/tui"
	"github.com/tasknest/tasknest-cli/internal/tui/empty"
	"github.com/tasknest/tasknest-cli/internal/tui/workspace"
)

// ListItem represents a single row of a list.
type ListItem struct {
	ID          string
	Title       string
	Description string
	Extra       string // right-aligned detail (amount, date, etc.)
	Marked      bool   // urgent marker
	Muted       bool   // dimmed row, e.g. a finished task
	Header      bool   // section header (non-selectable, rendered differently)
}

// List is one page of rows with a cursor. Paging itself is owned by the
// caller: it hands the list the rows of the current page and a footer.
type List struct {
	items   []ListItem
	cursor  int
	width   int
	height  int
	focused bool
	loading bool
	footer  string

	styles *tui.Styles
	keys   workspace.ListKeyMap

	emptyText string
	emptyMsg  *empty.Message
}

// NewList creates a new list widget.
func NewList(styles *tui.Styles) *List {
	return &List{
		styles:    styles,
		keys:      workspace.DefaultListKeyMap(),
		emptyText: "Пусто",
	}
}

// SetItems replaces the rows. The cursor keeps its position when it is
// still in range.
func (l *List) SetItems(items []ListItem) {
	l.items = items
	l.loading = false

	if l.cursor >= len(l.items) {
		l.cursor = max(0, len(l.items)-1)
	}
	l.skipHeaders(1)
}

// SetLoading puts the list in loading state.
func (l *List) SetLoading(loading bool) {
	l.loading = loading
}

// SetEmptyText sets the message shown when no items exist.
func (l *List) SetEmptyText(text string) {
	l.emptyText = text
}

// SetEmptyMessage sets a structured empty state with title, body, and hints.
func (l *List) SetEmptyMessage(msg empty.Message) {
	l.emptyMsg = &msg
}

// SetFooter sets the line rendered under the rows, usually the page counter.
func (l *List) SetFooter(footer string) {
	l.footer = footer
}

// SetSize updates dimensions.
func (l *List) SetSize(w, h int) {
	l.width = w
	l.height = h
}

// SetFocused sets focus state.
func (l *List) SetFocused(focused bool) {
	l.focused = focused
}

// Focused reports whether the list draws its cursor.
func (l *List) Focused() bool {
	return l.focused
}

// Selected returns the currently highlighted item, or nil.
func (l *List) Selected() *ListItem {
	if l.cursor < 0 || l.cursor >= len(l.items) || l.items[l.cursor].Header {
		return nil
	}
	item := l.items[l.cursor]
	return &item
}

// SelectedIndex returns the cursor position.
func (l *List) SelectedIndex() int {
	return l.cursor
}

// SetCursor moves the cursor to idx, clamped to the rows.
func (l *List) SetCursor(idx int) {
	l.cursor = min(max(0, idx), max(0, len(l.items)-1))
	l.skipHeaders(1)
}

// Items returns the current rows.
func (l *List) Items() []ListItem {
	return l.items
}

// Len returns the number of rows.
func (l *List) Len() int {
	return len(l.items)
}

// Update handles cursor keys. Other keys are ignored.
func (l *List) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !l.focused || l.loading {
		return nil
	}
	switch {
	case key.Matches(km, l.keys.Up):
		l.moveCursor(-1)
	case key.Matches(km, l.keys.Down):
		l.moveCursor(1)
	}
	return nil
}

func (l *List) moveCursor(delta int) {
	if len(l.items) == 0 {
		return
	}
	next := l.cursor + delta
	for next >= 0 && next < len(l.items) && l.items[next].Header {
		next += delta
	}
	if next < 0 || next >= len(l.items) {
		return
	}
	l.cursor = next
}

// skipHeaders moves the cursor off a header row in direction dir, falling
// back to the other direction at the edge.
func (l *List) skipHeaders(dir int) {
	if len(l.items) == 0 {
		l.cursor = 0
		return
	}
	for i := l.cursor; i >= 0 && i < len(l.items); i += dir {
		if !l.items[i].Header {
			l.cursor = i
			return
		}
	}
	for i := l.cursor; i >= 0 && i < len(l.items); i -= dir {
		if !l.items[i].Header {
			l.cursor = i
			return
		}
	}
}

// View renders the rows, the empty state, or the loading line.
func (l *List) View() string {
	if l.width <= 0 {
		return ""
	}
	theme := l.styles.Theme()

	if l.loading && len(l.items) == 0 {
		return lipgloss.NewStyle().
			Width(l.width).
			Foreground(theme.Muted).
			Render("Загрузка…")
	}

	if len(l.items) == 0 {
		if l.emptyMsg != nil {
			return l.renderEmptyMessage(theme)
		}
		return lipgloss.NewStyle().
			Width(l.width).
			Foreground(theme.Muted).
			Render(l.emptyText)
	}

	lines := make([]string, 0, len(l.items)+1)
	for i, item := range l.items {
		lines = append(lines, l.renderItem(item, i == l.cursor && l.focused, theme))
	}
	if l.footer != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Muted).Render(" "+l.footer))
	}
	return strings.Join(lines, "\n")
}

func (l *List) renderEmptyMessage(theme tui.Theme) string {
	var lines []string
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Foreground)
	bodyStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	hintStyle := lipgloss.NewStyle().Foreground(theme.Secondary)

	lines = append(lines, titleStyle.Render(l.emptyMsg.Title))
	if l.emptyMsg.Body != "" {
		lines = append(lines, bodyStyle.Render(l.emptyMsg.Body))
	}
	if len(l.emptyMsg.Hints) > 0 {
		lines = append(lines, "")
		for _, hint := range l.emptyMsg.Hints {
			lines = append(lines, hintStyle.Render("  "+hint))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (l *List) renderItem(item ListItem, selected bool, theme tui.Theme) string {
	if item.Header {
		headerStyle := lipgloss.NewStyle().Foreground(theme.Muted).Bold(true).MaxWidth(l.width)
		return headerStyle.Render("── " + item.Title + " ──")
	}

	cursor := "  "
	titleStyle := lipgloss.NewStyle().Foreground(theme.Foreground)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	if item.Muted {
		titleStyle = titleStyle.Foreground(theme.Muted).Strikethrough(true)
	}
	if selected {
		cursor = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("> ")
		titleStyle = titleStyle.Bold(true).Foreground(theme.Primary)
	}

	const marker = "❗ "
	maxTitleWidth := l.width - lipgloss.Width(cursor)
	if item.Marked {
		maxTitleWidth -= lipgloss.Width(marker)
	}
	if item.Extra != "" {
		maxTitleWidth -= lipgloss.Width(item.Extra) + 2
	}
	title := item.Title
	if maxTitleWidth > 0 {
		title = Truncate(title, maxTitleWidth)
	}

	line := cursor
	if item.Marked {
		line += lipgloss.NewStyle().Foreground(theme.Error).Render(marker)
	}
	line += titleStyle.Render(title)

	extraWidth := 0
	if item.Extra != "" {
		extraWidth = lipgloss.Width(item.Extra) + 2
	}
	if item.Description != "" {
		avail := l.width - lipgloss.Width(line) - extraWidth - 1
		if avail > 3 {
			line += descStyle.Render(" " + Truncate(item.Description, avail))
		}
	}
	if item.Extra != "" {
		gap := l.width - lipgloss.Width(line) - lipgloss.Width(item.Extra)
		if gap > 0 {
			line += strings.Repeat(" ", gap) + descStyle.Render(item.Extra)
		}
	}
	return line
}
