package domain

import (
	"errors"
	"testing"
	"time"
)

func TestLeaveRequest_ComputePeriod(t *testing.T) {
	r := &LeaveRequest{
		DaysRequested: 5,
		StartDate:     time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC),
	}

	r.ComputePeriod()

	if r.Year != 2025 {
		t.Errorf("year = %d, want 2025", r.Year)
	}

	wantEnd := time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)
	if !r.Period.End.Equal(wantEnd) {
		t.Errorf("period end = %s, want %s (start + days - 1)", r.Period.End, wantEnd)
	}

	// Single day request starts and ends the same day.
	r = &LeaveRequest{DaysRequested: 1, StartDate: time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)}
	r.ComputePeriod()
	if !r.Period.End.Equal(r.Period.Start) {
		t.Errorf("single-day period = %s", r.Period)
	}
}

func TestPeriod_Overlaps(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		a, b Period
		want bool
	}{
		{"disjoint", Period{day(1), day(3)}, Period{day(5), day(7)}, false},
		{"touching end and start", Period{day(1), day(5)}, Period{day(5), day(9)}, true},
		{"contained", Period{day(1), day(10)}, Period{day(3), day(4)}, true},
		{"identical", Period{day(2), day(4)}, Period{day(2), day(4)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLeaveRequest_Validate(t *testing.T) {
	start := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		request   LeaveRequest
		wantField string
	}{
		{
			name:    "valid standard request",
			request: LeaveRequest{Category: CategoryStandard, DaysRequested: 3, StartDate: start},
		},
		{
			name:      "days without start date",
			request:   LeaveRequest{Category: CategoryStandard, DaysRequested: 3},
			wantField: "start_date",
		},
		{
			name:      "start date without days",
			request:   LeaveRequest{Category: CategoryStandard, StartDate: start},
			wantField: "days_requested",
		},
		{
			name:      "negative days",
			request:   LeaveRequest{Category: CategoryStandard, DaysRequested: -1, StartDate: start},
			wantField: "days_requested",
		},
		{
			name:      "unknown category",
			request:   LeaveRequest{Category: "sabbatical", DaysRequested: 3, StartDate: start},
			wantField: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if len(verrs[tt.wantField]) == 0 {
				t.Errorf("expected message on %q, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestLeaveRequest_IsLocked(t *testing.T) {
	window := 15 * time.Minute
	decided := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

	r := &LeaveRequest{Status: StatusApproved, DecidedAt: &decided}

	if r.IsLocked(decided.Add(5*time.Minute), window) {
		t.Error("locked inside the grace window")
	}
	if !r.IsLocked(decided.Add(window), window) {
		t.Error("not locked exactly at window expiry")
	}
	if !r.IsLocked(decided.Add(time.Hour), window) {
		t.Error("not locked after the window")
	}

	pending := &LeaveRequest{Status: StatusPending}
	if pending.IsLocked(decided.Add(time.Hour), window) {
		t.Error("undecided request reported locked")
	}
}

func TestLeaveRequest_ConflictsWith(t *testing.T) {
	a := &LeaveRequest{ID: "a", DaysRequested: 5, StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	a.ComputePeriod()

	b := &LeaveRequest{ID: "b", DaysRequested: 3, StartDate: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)}
	b.ComputePeriod()

	if !a.ConflictsWith(b) {
		t.Error("overlapping requests reported as non-conflicting")
	}

	if a.ConflictsWith(a) {
		t.Error("request conflicts with itself")
	}

	c := &LeaveRequest{ID: "c", DaysRequested: 2, StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)}
	c.ComputePeriod()
	if a.ConflictsWith(c) {
		t.Error("disjoint requests reported as conflicting")
	}
}
