// Package format provides formatting helpers for TUI components and CLI
// tables.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tasknest/tasknest-cli/internal/dateutil"
)

// Placeholder is shown for values that could not be loaded.
const Placeholder = "—"

const currency = "₽"

func printer(l dateutil.Locale) *message.Printer {
	if l == dateutil.LocaleEN {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(language.Russian)
}

// Money renders amount with locale digit grouping and the currency sign.
func Money(amount int64, l dateutil.Locale) string {
	return printer(l).Sprintf("%d", amount) + " " + currency
}

// Signed renders amount with an explicit sign, e.g. "+500 ₽".
func Signed(amount int64, l dateutil.Locale) string {
	if amount < 0 {
		return "-" + Money(-amount, l)
	}
	return "+" + Money(amount, l)
}

// Balance renders an optional balance, or the placeholder when unknown.
func Balance(balance *int64, l dateutil.Locale) string {
	if balance == nil {
		return Placeholder
	}
	return Money(*balance, l)
}

// KindSigned renders an unsigned group ledger amount signed by its kind.
func KindSigned(kind string, amount int64, l dateutil.Locale) string {
	if kind == "expense" {
		return Signed(-amount, l)
	}
	return Signed(amount, l)
}
