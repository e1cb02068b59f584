package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is the Kenyan shilling symbol used by en-KE formatting.
const CurrencySymbol = "Ksh"

// ICU separates an alphabetic currency symbol from the digits with U+00A0.
const nbsp = "\u00a0"

// FormatCurrency renders amount as Kenyan shillings with no fractional digits,
// e.g. "Ksh 8,350". Halves round away from zero. Digits come from the exact
// decimal, so amounts beyond the int64 range keep their value.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + CurrencySymbol + nbsp + GroupDigits(rounded.Abs().StringFixed(0))
}

// GroupDigits inserts en-KE thousands separators into a string of decimal
// digits. en-KE groups in threes with a comma; grouping the string directly
// avoids converting through a fixed-width integer.
func GroupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
