package utils

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds a value to 2 decimal places. All price aggregation steps in
// the breakdown round through this helper.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatPrice renders an amount with thousands separators and the currency
// code, e.g. "ETB 100,600.00".
func FormatPrice(amount float64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s %s%s.%s", strings.ToUpper(currency), sign, b.String(), parts[1])
}
