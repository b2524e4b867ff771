package chrome

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/observability"
	"github.com/tasknest/tasknest-cli/internal/tui"
)

// MetricsPanelHeight is the vertical space consumed by the metrics panel.
const MetricsPanelHeight = 5

// MetricsPanel renders the session's request and action counters.
type MetricsPanel struct {
	styles    *tui.Styles
	width     int
	summaryFn func() observability.SessionMetrics
}

// NewMetricsPanel creates a metrics panel that reads live counters.
func NewMetricsPanel(styles *tui.Styles, summaryFn func() observability.SessionMetrics) MetricsPanel {
	return MetricsPanel{
		styles:    styles,
		summaryFn: summaryFn,
	}
}

// SetWidth sets the available width.
func (m *MetricsPanel) SetWidth(w int) {
	m.width = w
}

// View renders the metrics panel.
func (m MetricsPanel) View() string {
	if m.width <= 0 || m.summaryFn == nil {
		return ""
	}

	theme := m.styles.Theme()
	headerStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	cellStyle := lipgloss.NewStyle().Foreground(theme.Secondary)
	errorStyle := lipgloss.NewStyle().Foreground(theme.Error)

	s := m.summaryFn()
	avg := time.Duration(0)
	if s.TotalRequests > 0 {
		avg = s.TotalLatency / time.Duration(s.TotalRequests)
	}
	uptime := time.Duration(0)
	if !s.StartTime.IsZero() {
		uptime = time.Since(s.StartTime)
	}

	failed := func(n int) string {
		if n > 0 {
			return errorStyle.Render(fmt.Sprintf("%d", n))
		}
		return cellStyle.Render("0")
	}

	lines := []string{
		headerStyle.Render("Сессия") + "  " + mutedStyle.Render("uptime ") + cellStyle.Render(formatDuration(uptime)),
		mutedStyle.Render("  запросы  ") + cellStyle.Render(fmt.Sprintf("%-6d", s.TotalRequests)) +
			mutedStyle.Render("ошибки ") + failed(s.FailedReqs) +
			mutedStyle.Render("  повторы ") + cellStyle.Render(fmt.Sprintf("%d", s.TotalRetries)) +
			mutedStyle.Render("  avg ") + cellStyle.Render(formatDuration(avg)),
		mutedStyle.Render("  действия ") + cellStyle.Render(fmt.Sprintf("%-6d", s.TotalActions)) +
			mutedStyle.Render("ошибки ") + failed(s.FailedActions),
	}
	for i, l := range lines {
		lines[i] = truncateStyled(l, m.width)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", m.width)))

	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
