package domain

import "github.com/shopspring/decimal"

// Every quantity stored in a bucket is held at two fractional digits.
// Quantize must be applied after each arithmetic step before the value is
// persisted or compared against a threshold.

// Quantize rounds d to two fractional digits, ties rounding up (0.125 -> 0.13).
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MonthlyShare returns the even monthly portion of an annual entitlement.
func MonthlyShare(annualDays int) decimal.Decimal {
	if annualDays <= 0 {
		return decimal.Zero
	}

	return Quantize(decimal.NewFromInt(int64(annualDays)).Div(decimal.NewFromInt(12)))
}
