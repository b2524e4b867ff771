package chrome

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

// PaletteItem is one command offered by the palette. The workspace builds
// these from its action list so chrome never imports the registry.
type PaletteItem struct {
	Name        string
	Description string
	Category    string
	Execute     func() tea.Cmd
}

// PaletteCloseMsg is sent when the palette wants to close itself.
type PaletteCloseMsg struct{}

// PaletteExecMsg carries the command returned by the selected item.
type PaletteExecMsg struct {
	Cmd tea.Cmd
}

// Palette is the command palette overlay: a text input over a filtered
// list of commands.
type Palette struct {
	styles *tui.Styles

	input    textinput.Model
	items    []PaletteItem
	filtered []PaletteItem
	cursor   int

	width, height int
}

// NewPalette creates a new command palette component.
func NewPalette(styles *tui.Styles) Palette {
	ti := textinput.New()
	ti.Placeholder = "Команда..."
	ti.CharLimit = 64
	ti.Prompt = ": "

	return Palette{
		styles: styles,
		input:  ti,
	}
}

// SetItems replaces the command list.
func (p *Palette) SetItems(items []PaletteItem) {
	p.items = items
	p.refilter()
}

// Focus resets the query and activates the text input.
func (p *Palette) Focus() tea.Cmd {
	p.input.SetValue("")
	p.cursor = 0
	p.refilter()
	return p.input.Focus()
}

// Blur deactivates the text input.
func (p *Palette) Blur() {
	p.input.Blur()
}

// SetSize sets the available dimensions for the overlay.
func (p *Palette) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(0, width-8)
}

// Update handles key messages while the palette is active.
func (p *Palette) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch km.String() {
	case "esc", "ctrl+p":
		return closePalette

	case "enter":
		if p.cursor >= len(p.filtered) {
			return nil
		}
		cmd := p.filtered[p.cursor].Execute()
		return tea.Batch(closePalette, func() tea.Msg { return PaletteExecMsg{Cmd: cmd} })

	case "up", "ctrl+k":
		p.cursor = max(0, p.cursor-1)
		return nil

	case "down", "ctrl+j":
		p.cursor = min(len(p.filtered)-1, p.cursor+1)
		p.cursor = max(0, p.cursor)
		return nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(km)
	p.refilter()
	return cmd
}

func closePalette() tea.Msg { return PaletteCloseMsg{} }

func (p *Palette) refilter() {
	q := strings.ToLower(strings.TrimSpace(p.input.Value()))
	p.filtered = p.filtered[:0]
	for _, it := range p.items {
		if q == "" ||
			strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Description), q) ||
			strings.Contains(strings.ToLower(it.Category), q) {
			p.filtered = append(p.filtered, it)
		}
	}
	p.cursor = max(0, min(p.cursor, len(p.filtered)-1))
}

// maxVisibleItems is the maximum number of rows shown in the palette.
const maxVisibleItems = 12

// View renders the command palette overlay.
func (p Palette) View() string {
	theme := p.styles.Theme()

	boxWidth := max(20, min(60, p.width-8))
	inner := boxWidth - 4

	sep := lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("─", inner))

	start := 0
	if p.cursor >= maxVisibleItems {
		start = p.cursor - maxVisibleItems + 1
	}
	end := min(start+maxVisibleItems, len(p.filtered))

	nameStyle := lipgloss.NewStyle().Foreground(theme.Primary)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	rows := []string{p.input.View(), sep}
	for i := start; i < end; i++ {
		it := p.filtered[i]
		line := truncateStyled(nameStyle.Render(it.Name)+descStyle.Render("  "+it.Description), inner)
		if i == p.cursor {
			line = lipgloss.NewStyle().Background(theme.Border).Width(inner).Render(line)
		}
		rows = append(rows, line)
	}
	if len(p.filtered) == 0 {
		rows = append(rows, descStyle.Render("Ничего не найдено"))
	}
	rows = append(rows, sep, descStyle.Render(fmt.Sprintf("%d/%d", len(p.filtered), len(p.items))))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1).
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return lipgloss.NewStyle().
		Width(p.width).
		MaxWidth(max(p.width, 1)).
		Align(lipgloss.Center).
		Render(box)
}
