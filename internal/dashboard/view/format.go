package view

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"RUB": "₽",
	"USD": "$",
	"CNY": "¥",
}

var currencyNames = map[string]string{
	"RUB": "rub.",
	"USD": "USD",
	"CNY": "CNY",
}

// FormatOptions control the currency formatter. The zero value matches the
// common dashboard case: currency symbol shown, two-decimal precision.
type FormatOptions struct {
	// NoSymbol omits the currency symbol.
	NoSymbol bool
	// WholeNumber rounds to an integer with thousands grouping instead
	// of two-decimal precision.
	WholeNumber bool
	// ShowFull appends the currency name instead of the symbol.
	ShowFull bool
}

// FormatCurrency renders a monetary amount for display. With two-decimal
// precision an exact ".00" tail is trimmed, so 100.00 renders as "100" while
// 100.50 stays "100.50".
func FormatCurrency(amount decimal.Decimal, code string, opts FormatOptions) string {
	var formatted string
	if opts.WholeNumber {
		formatted = groupThousands(amount.Round(0).String())
	} else {
		formatted = strings.TrimSuffix(amount.StringFixed(2), ".00")
	}

	if opts.ShowFull {
		name, ok := currencyNames[code]
		if !ok {
			name = code
		}
		return formatted + " " + name
	}

	if symbol, ok := currencySymbols[code]; ok && !opts.NoSymbol {
		return formatted + " " + symbol
	}

	return formatted
}

// groupThousands inserts comma separators into a decimal integer string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	if len(digits) <= 3 {
		return s
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}

	return b.String()
}
