package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultExceptionalDays is the exceptional-leave pool granted each year.
const DefaultExceptionalDays = 6

// BalanceRecord is the leave ledger for one employee and one fiscal year.
// Standard leave lives in three carry-over buckets plus the monthly vesting
// map; exceptional and compensatory leave are independent pools.
//
// Invariant: Total == CarryoverN2 + CarryoverN1 + CurrentYear after every
// mutation. Records are never deleted; rollover advances them in place and
// the (employee, year) unique constraint keeps one row per year.
type BalanceRecord struct {
	ID         string
	EmployeeID string
	Year       int

	// Standard-leave buckets, oldest funds consumed first.
	CarryoverN2 decimal.Decimal
	CarryoverN1 decimal.Decimal
	CurrentYear decimal.Decimal

	InitialEntitlement int
	Monthly            MonthlyBuckets
	// VestedThrough is the last month number (1..12) the accrual calculator
	// has filled. It guards re-runs from overwriting already-debited months.
	VestedThrough int

	ExceptionalDays  int
	CompensatoryDays decimal.Decimal

	Total     decimal.Decimal
	UpdatedAt time.Time
}

// RecomputeTotal re-establishes the aggregate invariant. Called after every
// bucket mutation; Total is never written directly.
func (b *BalanceRecord) RecomputeTotal() {
	b.Total = Quantize(b.CarryoverN2.Add(b.CarryoverN1).Add(b.CurrentYear))
}

// Initialize grants the annual entitlement to the current-year bucket and
// vests the months elapsed through asOf.
func (b *BalanceRecord) Initialize(assignedAt *time.Time, asOf time.Time) {
	b.CurrentYear = Quantize(decimal.NewFromInt(int64(b.InitialEntitlement)))
	if b.InitialEntitlement > 0 {
		b.ApplyVesting(assignedAt, asOf, MonthlyShare(b.InitialEntitlement))
	}

	b.RecomputeTotal()
}

// ApplyVesting fills newly vested months through asOf with the monthly share.
// Months already vested are left untouched so prior debits survive re-runs;
// re-running with the same asOf is a no-op. Returns true when any month was
// filled.
//
// Vesting starts at the assignment month when the employee was assigned
// within this fiscal year, at January when assigned earlier, and never when
// the assignment is unknown or in the future.
func (b *BalanceRecord) ApplyVesting(assignedAt *time.Time, asOf time.Time, share decimal.Decimal) bool {
	if b.Year != asOf.Year() || assignedAt == nil {
		return false
	}

	var start int
	switch {
	case assignedAt.Year() == b.Year:
		start = int(assignedAt.Month())
	case assignedAt.Year() < b.Year:
		start = 1
	default:
		return false
	}

	through := int(asOf.Month())
	if through < start {
		return false
	}

	from := start
	if b.VestedThrough >= from {
		from = b.VestedThrough + 1
	}

	changed := false
	for m := from; m <= through; m++ {
		b.Monthly.Set(m, share)
		changed = true
	}

	if through > b.VestedThrough {
		b.VestedThrough = through
	}

	return changed
}

// AvailableStandard returns the standard-leave days consumable as of the
// given month: both carry-overs plus the vested monthly remainders through
// that month.
func (b *BalanceRecord) AvailableStandard(asOfMonth int) decimal.Decimal {
	return Quantize(b.CarryoverN2.Add(b.CarryoverN1).Add(b.Monthly.SumThrough(asOfMonth)))
}

// Debit consumes amount standard-leave days in strict bucket order:
// carry-over n-2, carry-over n-1, then the vested months 1..asOf.Month
// ascending. Each monthly debit also decrements the current-year bucket so
// the aggregate tracks the sum of monthly remainders. Returns the undebited
// remainder; zero means full success. The caller must treat a non-zero
// remainder as insufficient balance and discard the mutation.
func (b *BalanceRecord) Debit(amount decimal.Decimal, asOf time.Time) decimal.Decimal {
	remaining := Quantize(amount)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	for _, bucket := range []*decimal.Decimal{&b.CarryoverN2, &b.CarryoverN1} {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		available := *bucket
		if available.LessThanOrEqual(decimal.Zero) {
			continue
		}

		debit := decimal.Min(remaining, available)
		*bucket = Quantize(available.Sub(debit))
		remaining = remaining.Sub(debit)
	}

	if remaining.GreaterThan(decimal.Zero) {
		limit := int(asOf.Month())
		for m := 1; m <= limit; m++ {
			if remaining.LessThanOrEqual(decimal.Zero) {
				break
			}

			available := b.Monthly.Get(m)
			if available.LessThanOrEqual(decimal.Zero) {
				continue
			}

			debit := decimal.Min(remaining, available)
			b.Monthly.Set(m, Quantize(available.Sub(debit)))
			b.CurrentYear = Quantize(b.CurrentYear.Sub(debit))
			remaining = remaining.Sub(debit)
		}
	}

	b.RecomputeTotal()

	return remaining
}

// Credit returns previously debited standard days. Bucket provenance is not
// journaled, so refunds land in the newest funds: the as-of month bucket and
// the current-year aggregate.
func (b *BalanceRecord) Credit(amount decimal.Decimal, asOf time.Time) {
	amount = Quantize(amount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}

	month := int(asOf.Month())
	b.Monthly.Set(month, Quantize(b.Monthly.Get(month).Add(amount)))
	b.CurrentYear = Quantize(b.CurrentYear.Add(amount))
	b.RecomputeTotal()
}

// CreditExceptional returns days to the exceptional pool.
func (b *BalanceRecord) CreditExceptional(days int) {
	if days > 0 {
		b.ExceptionalDays += days
	}
}

// CreditCompensatory returns days to the compensatory pool.
func (b *BalanceRecord) CreditCompensatory(amount decimal.Decimal) {
	if amount.GreaterThan(decimal.Zero) {
		b.CompensatoryDays = Quantize(b.CompensatoryDays.Add(amount))
	}
}

// DebitExceptional draws from the exceptional pool only. No fallback into
// the standard buckets.
func (b *BalanceRecord) DebitExceptional(days int) error {
	if days <= 0 {
		return ErrInvalidAmount
	}

	if days > b.ExceptionalDays {
		return &InsufficientBalanceError{
			Category:  CategoryExceptional,
			Available: decimal.NewFromInt(int64(b.ExceptionalDays)),
		}
	}

	b.ExceptionalDays -= days

	return nil
}

// DebitCompensatory draws from the compensatory pool only.
func (b *BalanceRecord) DebitCompensatory(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(b.CompensatoryDays) {
		return &InsufficientBalanceError{
			Category:  CategoryCompensatory,
			Available: b.CompensatoryDays,
		}
	}

	b.CompensatoryDays = Quantize(b.CompensatoryDays.Sub(amount))

	return nil
}

// Rollover shifts bucket ownership one fiscal year forward: n-1 becomes n-2,
// the current year becomes n-1, and the current-year state is reset
// pre-accrual. The caller re-runs Initialize afterwards. Returns false when
// the record already governs newYear or later.
func (b *BalanceRecord) Rollover(newYear int) bool {
	if b.Year >= newYear {
		return false
	}

	b.CarryoverN2 = b.CarryoverN1
	b.CarryoverN1 = b.CurrentYear
	b.Year = newYear
	b.ExceptionalDays = DefaultExceptionalDays
	b.CompensatoryDays = decimal.Zero
	b.CurrentYear = decimal.Zero
	b.Monthly = MonthlyBuckets{}
	b.VestedThrough = 0
	b.RecomputeTotal()

	return true
}
