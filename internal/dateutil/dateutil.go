// Package dateutil provides the calendar arithmetic and task filtering used
// by the day views. All dates are local-time calendar days; functions that
// depend on "today" take it as an explicit argument.
package dateutil

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the YYYY-MM-DD layout used by the backend.
const ISOLayout = "2006-01-02"

// FilterMode is a day-bucket filter for task lists.
type FilterMode string

const (
	FilterToday    FilterMode = "today"
	FilterTomorrow FilterMode = "tomorrow"
	FilterFivePlus FilterMode = "5plus"
	FilterAll      FilterMode = "all"
)

// FilterModes lists the modes in display order.
var FilterModes = []FilterMode{FilterToday, FilterTomorrow, FilterFivePlus, FilterAll}

// Deadliner is anything carrying an optional ISO deadline.
type Deadliner interface {
	DeadlineISO() string
}

// ParseISODate parses a YYYY-MM-DD string into local midnight. Each of the
// first three dash-separated parts must be a non-zero integer; out-of-range
// values roll over the way time.Date normalizes them.
func ParseISODate(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}
	parts := strings.Split(iso, "-")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	var ymd [3]int
	for i := range ymd {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n == 0 {
			return time.Time{}, false
		}
		ymd[i] = n
	}
	return time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.Local), true
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysDiff returns the number of calendar days from a to b. Each side is
// read as a date in its own location, and the result is rounded so days of
// 23 or 25 hours still count as one.
func DaysDiff(a, b time.Time) int {
	hours := civil(b).Sub(civil(a)).Hours()
	return int(math.Round(hours / 24))
}

// civil maps t's calendar date onto UTC midnight.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ISODate formats t as YYYY-MM-DD in t's location.
func ISODate(t time.Time) string {
	return t.Format(ISOLayout)
}

// Today returns now's date as YYYY-MM-DD.
func Today(now time.Time) string {
	return ISODate(now)
}

// AddDays shifts an ISO date by n days. Malformed input is returned as is.
func AddDays(iso string, n int) string {
	t, ok := ParseISODate(iso)
	if !ok {
		return iso
	}
	return ISODate(t.AddDate(0, 0, n))
}

// DayKey returns the calendar-day prefix of an ISO date or timestamp.
func DayKey(ts string) string {
	if len(ts) < len(ISOLayout) {
		return ts
	}
	return ts[:len(ISOLayout)]
}

// IsUrgentByDeadline reports whether the deadline parses and lies at most
// threshold days after now. Past deadlines are urgent.
func IsUrgentByDeadline(iso string, threshold int, now time.Time) bool {
	dl, ok := ParseISODate(iso)
	if !ok {
		return false
	}
	return DaysDiff(now, dl) <= threshold
}

// FilterTasksByMode keeps the items whose deadline falls in mode's bucket,
// preserving order. Items without a parseable deadline pass only FilterAll;
// an unknown mode keeps every dated item.
func FilterTasksByMode[T Deadliner](items []T, mode FilterMode, now time.Time) []T {
	today := civil(now)
	tomorrow := today.AddDate(0, 0, 1)
	plus5 := today.AddDate(0, 0, 5)

	out := make([]T, 0, len(items))
	for _, it := range items {
		dl, ok := ParseISODate(it.DeadlineISO())
		if !ok {
			if mode == FilterAll {
				out = append(out, it)
			}
			continue
		}
		day := civil(dl)

		var keep bool
		switch mode {
		case FilterToday:
			keep = day.Equal(today)
		case FilterTomorrow:
			keep = day.Equal(tomorrow)
		case FilterFivePlus:
			keep = !day.Before(plus5)
		default:
			keep = true
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

// ParseFilterMode returns the mode named s, or FilterAll and false.
func ParseFilterMode(s string) (FilterMode, bool) {
	m := FilterMode(strings.ToLower(strings.TrimSpace(s)))
	if knownMode(m) {
		return m, true
	}
	return FilterAll, false
}

func knownMode(m FilterMode) bool {
	for _, k := range FilterModes {
		if k == m {
			return true
		}
	}
	return false
}
