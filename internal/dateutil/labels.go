package dateutil

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locale selects the label language. Russian is the default.
type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
)

// ParseLocale maps a config value such as "en_US.UTF-8" or "ru" to a Locale.
func ParseLocale(s string) Locale {
	tag, err := language.Parse(strings.SplitN(strings.TrimSpace(s), ".", 2)[0])
	if err != nil {
		return LocaleRU
	}
	if base, _ := tag.Base(); base.String() == "en" {
		return LocaleEN
	}
	return LocaleRU
}

func (l Locale) tag() language.Tag {
	if l == LocaleEN {
		return language.English
	}
	return language.Russian
}

type names struct {
	relative    [3]string // yesterday, today, tomorrow
	weekdays    [7]string // short, indexed by time.Weekday
	months      [12]string
	monthsOf    [12]string // genitive, for "17 мая"
	mondayFirst [7]string
}

var localeNames = map[Locale]names{
	LocaleRU: {
		relative: [3]string{"вчера", "сегодня", "завтра"},
		weekdays: [7]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"},
		months: [12]string{"январь", "февраль", "март", "апрель", "май", "июнь",
			"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь"},
		monthsOf: [12]string{"января", "февраля", "марта", "апреля", "мая", "июня",
			"июля", "августа", "сентября", "октября", "ноября", "декабря"},
		mondayFirst: [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"},
	},
	LocaleEN: {
		relative: [3]string{"yesterday", "today", "tomorrow"},
		weekdays: [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"},
		months: [12]string{"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december"},
		monthsOf: [12]string{"jan", "feb", "mar", "apr", "may", "jun",
			"jul", "aug", "sep", "oct", "nov", "dec"},
		mondayFirst: [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"},
	},
}

func namesFor(l Locale) names {
	if n, ok := localeNames[l]; ok {
		return n
	}
	return localeNames[LocaleRU]
}

// Capitalize upper-cases the first character using the locale's rules.
func Capitalize(s string, l Locale) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(l.tag()).String(string(r)) + s[size:]
}

// RelativeLabel names iso relative to now: yesterday, today and tomorrow by
// word, any other day by its short weekday. Malformed input is returned as is.
func RelativeLabel(iso string, now time.Time, l Locale) string {
	t, ok := ParseISODate(iso)
	if !ok {
		return iso
	}
	n := namesFor(l)
	if diff := DaysDiff(now, t); diff >= -1 && diff <= 1 {
		return Capitalize(n.relative[diff+1], l)
	}
	return Capitalize(n.weekdays[t.Weekday()], l)
}

// PrettyLabel renders iso as weekday, day and month, e.g. "Пт, 17 мая".
func PrettyLabel(iso string, l Locale) string {
	t, ok := ParseISODate(iso)
	if !ok {
		return iso
	}
	n := namesFor(l)
	wd := n.weekdays[t.Weekday()]
	if l == LocaleEN {
		return Capitalize(fmt.Sprintf("%s, %s %d", wd, Capitalize(n.monthsOf[t.Month()-1], l), t.Day()), l)
	}
	return Capitalize(fmt.Sprintf("%s, %d %s", wd, t.Day(), n.monthsOf[t.Month()-1]), l)
}

// MonthLabel renders a calendar heading such as "Октябрь 2026".
func MonthLabel(year int, month time.Month, l Locale) string {
	return Capitalize(fmt.Sprintf("%s %d", namesFor(l).months[month-1], year), l)
}

// WeekdayLabels returns Monday-first column headings.
func WeekdayLabels(l Locale) []string {
	n := namesFor(l).mondayFirst
	return n[:]
}
