package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a price with two decimal digits and space
// thousands grouping, e.g. 1234.5 -> "1 234.50".
func FormatPrice(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(' ')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(' ')
		}
	}
	b.WriteString(fracPart)
	return b.String()
}

// FormatFloat formats a float price, treating NaN and infinities as
// zero instead of failing.
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return FormatPrice(decimal.NewFromFloat(v))
}
