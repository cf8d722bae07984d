package docgen

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RoundAmount quantizes a monetary amount to the given number of
// decimal places with half-up rounding.
func RoundAmount(amount decimal.Decimal, places int32) decimal.Decimal {
	return amount.Round(places)
}

// FormatAmount renders a monetary amount in English style with the
// currency symbol prefixed, e.g. "€1,234.56". The same style is used
// for every value within a document.
func FormatAmount(amount decimal.Decimal, symbol string, places int32) string {
	rounded := amount.Round(places)

	fixed := rounded.StringFixed(places)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	b.WriteString(groupThousands(intPart))
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// groupThousands inserts comma separators into a digit string
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	first := n % 3
	if first > 0 {
		b.WriteString(digits[:first])
	}
	for i := first; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
