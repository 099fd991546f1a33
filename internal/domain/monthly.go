package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// MonthlyBuckets holds the vested-but-unconsumed portion of the annual
// entitlement per calendar month, indexed by month number 1..12.
// It serializes as a flat JSON object keyed "01".."12".
type MonthlyBuckets [12]decimal.Decimal

// Get returns the remaining days for month (1..12). Out-of-range months
// report zero.
func (m *MonthlyBuckets) Get(month int) decimal.Decimal {
	if month < 1 || month > 12 {
		return decimal.Zero
	}

	return m[month-1]
}

// Set stores the remaining days for month (1..12).
func (m *MonthlyBuckets) Set(month int, v decimal.Decimal) {
	if month < 1 || month > 12 {
		return
	}

	m[month-1] = v
}

// SumThrough returns the quantized sum of months 1..month inclusive.
func (m *MonthlyBuckets) SumThrough(month int) decimal.Decimal {
	if month > 12 {
		month = 12
	}

	sum := decimal.Zero
	for i := 1; i <= month; i++ {
		sum = sum.Add(m[i-1])
	}

	return Quantize(sum)
}

// MarshalJSON renders the buckets as {"01": "3.75", ..., "12": "0"}.
func (m MonthlyBuckets) MarshalJSON() ([]byte, error) {
	out := make(map[string]decimal.Decimal, 12)
	for i := 0; i < 12; i++ {
		out[fmt.Sprintf("%02d", i+1)] = m[i]
	}

	return json.Marshal(out)
}

// UnmarshalJSON parses a flat month->value object. Unknown keys and negative
// values are rejected; missing months default to zero.
func (m *MonthlyBuckets) UnmarshalJSON(data []byte) error {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var parsed MonthlyBuckets
	for key, v := range raw {
		month, err := strconv.Atoi(key)
		if err != nil || month < 1 || month > 12 {
			return fmt.Errorf("%w: month key %q", ErrInvalidMonthKey, key)
		}

		if v.IsNegative() {
			return fmt.Errorf("%w: month %q holds %s", ErrNegativeBucket, key, v)
		}

		parsed[month-1] = Quantize(v)
	}

	*m = parsed

	return nil
}
