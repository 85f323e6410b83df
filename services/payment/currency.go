package payment

import (
	"strconv"
	"strings"
)

// FormatCurrency renders whole units with thousands separators, e.g.
// "TZS 250,000".
func FormatCurrency(amount int64, currency string) string {
	if currency == "" {
		currency = "TZS"
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return strings.ToUpper(currency) + " " + sign + b.String()
}
