package widget

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
	"github.com/tasknest/tasknest-cli/internal/tui"
)

// Calendar renders a Monday-first month grid with a day cursor. Days with
// data carry a marker; the selected date and today are highlighted.
type Calendar struct {
	styles *tui.Styles
	locale dateutil.Locale

	year     int
	month    time.Month
	cursor   int // day of month
	selected string
	today    string
	markers  map[string]bool
}

// NewCalendar creates a calendar showing the month of today.
func NewCalendar(styles *tui.Styles, today string) *Calendar {
	c := &Calendar{styles: styles, locale: dateutil.LocaleRU, today: today, cursor: 1}
	if t, ok := dateutil.ParseISODate(today); ok {
		c.year, c.month, c.cursor = t.Year(), t.Month(), t.Day()
	}
	return c
}

// SetLocale sets the language of the month and weekday labels.
func (c *Calendar) SetLocale(l dateutil.Locale) { c.locale = l }

// SetToday sets the date highlighted as today.
func (c *Calendar) SetToday(iso string) { c.today = iso }

// SetMarkers sets the days that carry data.
func (c *Calendar) SetMarkers(m map[string]bool) { c.markers = m }

// SetSelected sets the selected date. When it falls in the displayed month
// the cursor moves onto it.
func (c *Calendar) SetSelected(iso string) {
	c.selected = iso
	if t, ok := dateutil.ParseISODate(iso); ok && t.Year() == c.year && t.Month() == c.month {
		c.cursor = t.Day()
	}
}

// SetMonth displays (year, month) and keeps the cursor inside it.
func (c *Calendar) SetMonth(year int, month time.Month) {
	c.year, c.month = year, month
	c.cursor = min(max(1, c.cursor), dateutil.DaysIn(year, month))
	c.SetSelected(c.selected)
}

// Month returns the displayed month.
func (c *Calendar) Month() (int, time.Month) { return c.year, c.month }

// MoveCursor moves the cursor by delta days, clamped to the month.
func (c *Calendar) MoveCursor(delta int) {
	c.cursor = min(max(1, c.cursor+delta), dateutil.DaysIn(c.year, c.month))
}

// CursorDate returns the date under the cursor.
func (c *Calendar) CursorDate() string {
	return dateutil.DateOf(c.year, c.month, c.cursor)
}

// View renders the month header, weekday row and day cells.
func (c *Calendar) View() string {
	theme := c.styles.Theme()
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).
		Render("‹ " + dateutil.MonthLabel(c.year, c.month, c.locale) + " ›")

	cell := lipgloss.NewStyle().Width(4).Align(lipgloss.Center)
	var weekdays []string
	for _, w := range dateutil.WeekdayLabels(c.locale) {
		weekdays = append(weekdays, cell.Foreground(theme.Muted).Render(w))
	}

	rows := []string{header, strings.Join(weekdays, "")}
	for _, week := range dateutil.MonthGrid(c.year, c.month) {
		var cells []string
		for _, day := range week {
			cells = append(cells, c.renderDay(cell, day, theme))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return strings.Join(rows, "\n")
}

func (c *Calendar) renderDay(cell lipgloss.Style, day int, theme tui.Theme) string {
	if day == 0 {
		return cell.Render("")
	}
	iso := dateutil.DateOf(c.year, c.month, day)
	label := fmt.Sprintf("%d", day)
	if c.markers[iso] {
		label += "•"
	}

	style := cell.Foreground(theme.Foreground)
	switch {
	case day == c.cursor:
		style = style.Background(theme.Primary).Foreground(lipgloss.Color("#ffffff")).Bold(true)
	case iso == c.selected:
		style = style.Foreground(theme.Primary).Bold(true).Underline(true)
	case iso == c.today:
		style = style.Foreground(theme.Secondary).Bold(true)
	case c.markers[iso]:
		style = style.Foreground(theme.Primary)
	}
	return style.Render(label)
}
