// Package format renders schedule values for people: currency with
// thousands separators, shares as percentages and signed day counts.
package format

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns an amount with thousands separators and the currency
// suffix (e.g., "-1,234.56 TL").
func Currency(amount decimal.Decimal) string {
	return NumericCurrency(amount) + " " + constants.CurrencySuffix
}

// NumericCurrency returns a currency string without a currency suffix but with separators (e.g., "-1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() && !amount.Round(constants.DecimalPlaces).IsZero() {
		sign = "-"
	}
	return sign + formatPositiveCurrency(amount.Abs())
}

// Percent renders a share as a whole percentage (0.25 -> "25%").
func Percent(share decimal.Decimal) string {
	return share.Mul(decimal.NewFromInt(constants.PercentageMultiplier)).StringFixed(0) + "%"
}

// SignedDays renders a day count with an explicit sign ("+3", "-2", "+0").
func SignedDays(days int) string {
	return fmt.Sprintf("%+d", days)
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.DecimalPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
