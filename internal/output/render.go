package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/term"

	"github.com/tasknest/tasknest-cli/internal/tui"
)

// preferredColumns are shown first, in order, when present in a row set.
var preferredColumns = []string{"id", "title", "name", "description", "deadline", "done", "amount", "kind", "created_at"}

// Renderer handles styled terminal output.
type Renderer struct {
	w     io.Writer
	width int

	Summary lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
}

// NewRenderer creates a renderer using the resolved theme.
func NewRenderer(w io.Writer) *Renderer {
	theme := tui.ResolveTheme("")
	return &Renderer{
		w:       w,
		width:   terminalWidth(w),
		Summary: lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Error:   lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
		Hint:    lipgloss.NewStyle().Foreground(theme.Muted).Italic(true),
		Header:  lipgloss.NewStyle().Foreground(theme.Foreground).Bold(true).Padding(0, 1),
		Cell:    lipgloss.NewStyle().Foreground(theme.Foreground).Padding(0, 1),
	}
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width >= 40 {
			return width
		}
	}
	return 80
}

// RenderResponse renders a success response.
func (r *Renderer) RenderResponse(resp *Response) error {
	var b strings.Builder
	if resp.Summary != "" {
		b.WriteString(r.Summary.Render(resp.Summary))
		b.WriteString("\n")
	}
	r.renderData(&b, normalizeData(resp.Data))
	_, err := io.WriteString(r.w, b.String())
	return err
}

// RenderError renders an error response.
func (r *Renderer) RenderError(resp *ErrorResponse) error {
	var b strings.Builder
	b.WriteString(r.Error.Render("Error: " + resp.Error))
	b.WriteString("\n")
	if resp.Hint != "" {
		b.WriteString(r.Hint.Render(resp.Hint))
		b.WriteString("\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) renderData(b *strings.Builder, data any) {
	switch d := data.(type) {
	case nil:
	case []map[string]any:
		r.renderTable(b, d)
	case []any:
		rows := make([]map[string]any, 0, len(d))
		for _, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				for _, item := range d {
					fmt.Fprintf(b, "• %s\n", formatCell(item))
				}
				return
			}
			rows = append(rows, m)
		}
		r.renderTable(b, rows)
	case map[string]any:
		keys := sortedKeys(d)
		for _, k := range keys {
			b.WriteString(r.Muted.Render(k+": ") + formatCell(d[k]) + "\n")
		}
	default:
		b.WriteString(formatCell(d))
		b.WriteString("\n")
	}
}

func (r *Renderer) renderTable(b *strings.Builder, rows []map[string]any) {
	if len(rows) == 0 {
		b.WriteString(r.Muted.Render("(no results)"))
		b.WriteString("\n")
		return
	}
	cols := columnsFor(rows)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.Muted).
		Width(r.width).
		Headers(cols...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Header
			}
			return r.Cell
		})
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = formatCell(row[c])
		}
		t.Row(cells...)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
}

// columnsFor picks preferred scalar columns first, then any remaining scalars.
func columnsFor(rows []map[string]any) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for k, v := range row {
			switch v.(type) {
			case map[string]any, []any:
				continue
			}
			seen[k] = true
		}
	}
	var cols []string
	for _, c := range preferredColumns {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "—"
	case string:
		return val
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	case map[string]any:
		if name, ok := val["name"].(string); ok {
			return name
		}
		if title, ok := val["title"].(string); ok {
			return title
		}
		return fmt.Sprintf("%v", val["id"])
	default:
		return fmt.Sprintf("%v", val)
	}
}
