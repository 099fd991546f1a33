package domain

import (
	"time"
)

// RequestCategory selects which buckets a debit may draw from.
type RequestCategory string

const (
	// CategoryStandard consumes the ordered carry-over and monthly buckets.
	CategoryStandard RequestCategory = "standard"
	// CategoryExceptional draws from the exceptional pool only.
	CategoryExceptional RequestCategory = "exceptional"
	// CategoryCompensatory draws from the compensatory pool only.
	CategoryCompensatory RequestCategory = "compensatory"
)

var validCategories = map[RequestCategory]bool{
	CategoryStandard:     true,
	CategoryExceptional:  true,
	CategoryCompensatory: true,
}

func (c RequestCategory) IsValid() bool {
	return validCategories[c]
}

// RequestStatus is the decision state of a leave request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Period is the inclusive day range a request covers.
type Period struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two inclusive day ranges share at least one day.
func (p Period) Overlaps(other Period) bool {
	return !p.Start.After(other.End) && !other.Start.After(p.End)
}

func (p Period) String() string {
	return p.Start.Format("2006-01-02") + " - " + p.End.Format("2006-01-02")
}

// LeaveRequest is one submission against a single fiscal-year balance record.
type LeaveRequest struct {
	ID         string
	EmployeeID string
	BalanceID  string
	Year       int

	DaysRequested int
	StartDate     time.Time
	Period        Period
	Category      RequestCategory
	Motif         string

	Status      RequestStatus
	SubmittedAt time.Time
	DecidedAt   *time.Time
	Cancelled   bool
	CancelledAt *time.Time
}

// ComputePeriod derives Year and the inclusive period from the start date
// and requested day count. Recomputed on every save.
func (r *LeaveRequest) ComputePeriod() {
	if r.StartDate.IsZero() || r.DaysRequested <= 0 {
		r.Period = Period{}
		return
	}

	r.Year = r.StartDate.Year()
	r.Period = Period{
		Start: r.StartDate,
		End:   r.StartDate.AddDate(0, 0, r.DaysRequested-1),
	}
}

// Validate performs the structural pre-save checks. Balance availability is
// checked separately at approval time.
func (r *LeaveRequest) Validate() error {
	errs := ValidationErrors{}

	if !r.Category.IsValid() {
		errs.Add("category", "category must be standard, exceptional or compensatory")
	}

	if r.DaysRequested < 0 {
		errs.Add("days_requested", "requested days must not be negative")
	}

	if r.DaysRequested > 0 && r.StartDate.IsZero() {
		errs.Add("start_date", "start date is required when days are requested")
	}

	if r.DaysRequested == 0 && !r.StartDate.IsZero() {
		errs.Add("days_requested", "requested days are required when a start date is set")
	}

	return errs.OrNil()
}

// IsLocked reports whether the post-decision grace window has elapsed.
// A locked request can no longer be transitioned by users; the window is a
// business rule, not a concurrency primitive.
func (r *LeaveRequest) IsLocked(now time.Time, window time.Duration) bool {
	if r.DecidedAt == nil {
		return false
	}

	return !now.Before(r.DecidedAt.Add(window))
}

// ConflictsWith reports whether both requests cover at least one common day.
func (r *LeaveRequest) ConflictsWith(other *LeaveRequest) bool {
	if other == nil || other.ID == r.ID {
		return false
	}

	return r.Period.Overlaps(other.Period)
}
