// Package mathutil provides currency arithmetic and locale-aware number
// parsing on top of decimal values.
package mathutil

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DecimalPlaces)
}

// SplitEvenly divides total into count equal installments rounded to the
// cent, and returns the unrounded share each installment represents. The
// rounded installments may not add back up to total.
func SplitEvenly(total decimal.Decimal, count int) (amount, share decimal.Decimal, err error) {
	if count < 1 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("cannot split into %d installments", count)
	}
	n := decimal.NewFromInt(int64(count))
	return Round(total.Div(n)), decimal.NewFromInt(1).Div(n), nil
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// RoundingTolerance is the largest drift count rounded installments may
// accumulate against the unrounded total.
func RoundingTolerance(count int) decimal.Decimal {
	return decimal.RequireFromString(constants.RoundingTolerancePerInstallment).Mul(decimal.NewFromInt(int64(count)))
}

// Sum adds up the given values.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// MeanInt returns the arithmetic mean of values and false when there is
// nothing to average.
func MeanInt(values []int) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values)), true
}

// ParseAmount reads a money value. A "." is the decimal separator; when both
// "." and "," appear the right-most one is taken as the decimal separator
// and the other is dropped as a thousands separator. A lone "," followed by
// exactly three digits is a thousands separator, otherwise a decimal one.
// Currency markers (TL, ₺) and spaces are ignored.
func ParseAmount(value string) (decimal.Decimal, error) {
	s := cleanNumber(value)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	return d, nil
}

// ParseRatio reads a share either as a fraction (0.25) or a percentage (25%).
func ParseRatio(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if strings.HasSuffix(trimmed, "%") {
		d, err := ParseAmount(strings.TrimSuffix(trimmed, "%"))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid percentage %q", value)
		}
		return d.Div(hundred), nil
	}
	return ParseAmount(trimmed)
}

func cleanNumber(value string) string {
	s := strings.TrimSpace(value)
	s = strings.TrimSuffix(s, constants.CurrencySuffix)
	s = strings.ReplaceAll(s, "₺", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space
	return s
}

