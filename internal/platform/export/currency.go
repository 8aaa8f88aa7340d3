package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RupeeSymbol prefixes every displayed amount.
const RupeeSymbol = "₹"

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount rounded to paise with Indian digit grouping,
// e.g. ₹7,300.00 or -₹1,250.50.
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + RupeeSymbol + inrPrinter.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(2)))
}

// ParseAmount reads back a value produced by FormatINR. It also accepts the
// "Rs." prefix used in renditions without the rupee glyph.
func ParseAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	neg := strings.HasPrefix(v, "-")
	v = strings.TrimPrefix(v, "-")
	v = strings.TrimPrefix(v, RupeeSymbol)
	v = strings.TrimPrefix(v, "Rs.")
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// asciiAmount swaps the rupee glyph for "Rs. " in outputs whose fonts lack it.
func asciiAmount(s string) string {
	return strings.ReplaceAll(s, RupeeSymbol, "Rs. ")
}
