package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelativeLabel(t *testing.T) {
	tests := []struct {
		iso    string
		locale Locale
		want   string
	}{
		{"2024-01-16", LocaleRU, "Вчера"},
		{"2024-01-17", LocaleRU, "Сегодня"},
		{"2024-01-18", LocaleRU, "Завтра"},
		{"2024-01-20", LocaleRU, "Сб"},
		{"2024-01-17", LocaleEN, "Today"},
		{"2024-01-22", LocaleEN, "Mon"},
		{"junk", LocaleEN, "junk"},
	}
	for _, tt := range tests {
		t.Run(string(tt.locale)+"/"+tt.iso, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeLabel(tt.iso, ref, tt.locale))
		})
	}
}

func TestPrettyLabel(t *testing.T) {
	assert.Equal(t, "Пт, 17 мая", PrettyLabel("2024-05-17", LocaleRU))
	assert.Equal(t, "Fri, May 17", PrettyLabel("2024-05-17", LocaleEN))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Октябрь 2026", MonthLabel(2026, time.October, LocaleRU))
	assert.Equal(t, "October 2026", MonthLabel(2026, time.October, LocaleEN))
}

func TestWeekdayLabels(t *testing.T) {
	assert.Equal(t, []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}, WeekdayLabels(LocaleRU))
	assert.Len(t, WeekdayLabels(LocaleEN), 7)
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, LocaleEN, ParseLocale("en_US.UTF-8"))
	assert.Equal(t, LocaleEN, ParseLocale("en"))
	assert.Equal(t, LocaleRU, ParseLocale("ru_RU"))
	assert.Equal(t, LocaleRU, ParseLocale(""))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ёлка", Capitalize("ёлка", LocaleRU))
	assert.Equal(t, "", Capitalize("", LocaleRU))
}
