package dateutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseDeadline turns a deadline typed into a form into YYYY-MM-DD.
// Supported inputs, in English and Russian:
//   - today, tomorrow, yesterday (сегодня, завтра, вчера)
//   - monday..sunday and mon..sun (понедельник..воскресенье, пн..вс):
//     the next occurrence, same day meaning next week
//   - next monday, next week, next month
//   - eow (Friday of this week), eom (last day of the month)
//   - +N, in N days, in N weeks (через N дней)
//   - YYYY-MM-DD
//
// The boolean is false when the input is not recognized.
func ParseDeadline(input string, now time.Time) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", false
	}

	switch input {
	case "today", "сегодня":
		return ISODate(now), true
	case "tomorrow", "завтра":
		return ISODate(now.AddDate(0, 0, 1)), true
	case "yesterday", "вчера":
		return ISODate(now.AddDate(0, 0, -1)), true
	case "next week", "nextweek", "через неделю":
		return ISODate(now.AddDate(0, 0, 7)), true
	case "next month", "nextmonth", "через месяц":
		return ISODate(now.AddDate(0, 1, 0)), true
	case "end of week", "eow":
		return ISODate(nextWeekday(now, time.Friday, false)), true
	case "end of month", "eom":
		return ISODate(endOfMonth(now)), true
	}

	if day, ok := parseWeekday(input); ok {
		next := strings.HasPrefix(input, "next ")
		return ISODate(nextWeekday(now, day, next)), true
	}

	if strings.HasPrefix(input, "+") {
		if days, err := strconv.Atoi(input[1:]); err == nil && inRange(days) {
			return ISODate(now.AddDate(0, 0, days)), true
		}
	}

	if days, ok := matchCount(inDaysPattern, input); ok && inRange(days) {
		return ISODate(now.AddDate(0, 0, days)), true
	}
	if weeks, ok := matchCount(inWeeksPattern, input); ok && inRange(weeks) && inRange(weeks*7) {
		return ISODate(now.AddDate(0, 0, weeks*7)), true
	}

	if datePattern.MatchString(input) {
		if t, ok := ParseISODate(input); ok && ISODate(t) == input {
			return input, true
		}
	}
	return "", false
}

// maxOffsetDays keeps relative deadlines within four-digit years.
const maxOffsetDays = 365 * 100

func inRange(days int) bool {
	return days >= -maxOffsetDays && days <= maxOffsetDays
}

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inDaysPattern  = regexp.MustCompile(`^(?:in (\d+) days?|через (\d+) (?:день|дня|дней))$`)
	inWeeksPattern = regexp.MustCompile(`^(?:in (\d+) weeks?|через (\d+) (?:неделю|недели|недель))$`)
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "воскресенье": time.Sunday, "вс": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "понедельник": time.Monday, "пн": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "вторник": time.Tuesday, "вт": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "среда": time.Wednesday, "ср": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "четверг": time.Thursday, "чт": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "пятница": time.Friday, "пт": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "суббота": time.Saturday, "сб": time.Saturday,
}

// matchCount returns the number captured by whichever alternative matched.
func matchCount(re *regexp.Regexp, input string) (int, bool) {
	m := re.FindStringSubmatch(input)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		return n, err == nil
	}
	return 0, false
}

func parseWeekday(input string) (time.Weekday, bool) {
	day, ok := weekdayNames[strings.TrimPrefix(input, "next ")]
	return day, ok
}

// nextWeekday returns the next occurrence of target. With forceNext
// ("next monday") it skips this week's occurrence, except when today is the
// target, where both forms mean seven days out.
func nextWeekday(now time.Time, target time.Weekday, forceNext bool) time.Time {
	daysUntil := int(target - now.Weekday())
	sameDay := daysUntil == 0
	if daysUntil <= 0 {
		daysUntil += 7
	}
	if forceNext && !sameDay {
		daysUntil += 7
	}
	return now.AddDate(0, 0, daysUntil)
}

func endOfMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month+1, 0, 0, 0, 0, 0, now.Location())
}
