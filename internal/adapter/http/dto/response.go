package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// BalanceResponse represents a balance record in API responses.
type BalanceResponse struct {
	ID                 string                `json:"id"`
	EmployeeID         string                `json:"employee_id"`
	Year               int                   `json:"year"`
	CarryoverN2        decimal.Decimal       `json:"carryover_n2"`
	CarryoverN1        decimal.Decimal       `json:"carryover_n1"`
	CurrentYear        decimal.Decimal       `json:"current_year"`
	InitialEntitlement int                   `json:"initial_entitlement"`
	Monthly            domain.MonthlyBuckets `json:"monthly"`
	VestedThrough      int                   `json:"vested_through"`
	ExceptionalDays    int                   `json:"exceptional_days"`
	CompensatoryDays   decimal.Decimal       `json:"compensatory_days"`
	Total              decimal.Decimal       `json:"total"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// BalanceFromDomain converts a domain balance record to a response.
func BalanceFromDomain(b *domain.BalanceRecord) *BalanceResponse {
	return &BalanceResponse{
		ID:                 b.ID,
		EmployeeID:         b.EmployeeID,
		Year:               b.Year,
		CarryoverN2:        b.CarryoverN2,
		CarryoverN1:        b.CarryoverN1,
		CurrentYear:        b.CurrentYear,
		InitialEntitlement: b.InitialEntitlement,
		Monthly:            b.Monthly,
		VestedThrough:      b.VestedThrough,
		ExceptionalDays:    b.ExceptionalDays,
		CompensatoryDays:   b.CompensatoryDays,
		Total:              b.Total,
		UpdatedAt:          b.UpdatedAt,
	}
}

// BalancesFromDomain converts domain balance records to responses.
func BalancesFromDomain(balances []*domain.BalanceRecord) []*BalanceResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceFromDomain(b)
	}
	return result
}

// ListBalancesResponse wraps a balance listing.
type ListBalancesResponse struct {
	Balances []*BalanceResponse `json:"balances"`
	Total    int64              `json:"total"`
}

// LeaveRequestResponse represents a leave request in API responses.
type LeaveRequestResponse struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	BalanceID     string     `json:"balance_id"`
	Year          int        `json:"year"`
	DaysRequested int        `json:"days_requested"`
	StartDate     time.Time  `json:"start_date"`
	PeriodStart   time.Time  `json:"period_start"`
	PeriodEnd     time.Time  `json:"period_end"`
	Category      string     `json:"category"`
	Motif         string     `json:"motif,omitempty"`
	Status        string     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	Cancelled     bool       `json:"cancelled"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

// LeaveRequestFromDomain converts a domain leave request to a response.
func LeaveRequestFromDomain(r *domain.LeaveRequest) *LeaveRequestResponse {
	return &LeaveRequestResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		BalanceID:     r.BalanceID,
		Year:          r.Year,
		DaysRequested: r.DaysRequested,
		StartDate:     r.StartDate,
		PeriodStart:   r.Period.Start,
		PeriodEnd:     r.Period.End,
		Category:      string(r.Category),
		Motif:         r.Motif,
		Status:        string(r.Status),
		SubmittedAt:   r.SubmittedAt,
		DecidedAt:     r.DecidedAt,
		Cancelled:     r.Cancelled,
		CancelledAt:   r.CancelledAt,
	}
}

// LeaveRequestsFromDomain converts domain leave requests to responses.
func LeaveRequestsFromDomain(requests []*domain.LeaveRequest) []*LeaveRequestResponse {
	result := make([]*LeaveRequestResponse, len(requests))
	for i, r := range requests {
		result[i] = LeaveRequestFromDomain(r)
	}
	return result
}

// ListLeaveRequestsResponse wraps a request listing.
type ListLeaveRequestsResponse struct {
	Requests []*LeaveRequestResponse `json:"requests"`
	Total    int64                   `json:"total"`
}

// EmployeeResponse represents an employee in API responses.
type EmployeeResponse struct {
	ID          string     `json:"id"`
	BadgeNumber string     `json:"badge_number"`
	FullName    string     `json:"full_name"`
	Grade       string     `json:"grade,omitempty"`
	Email       string     `json:"email,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EmployeeFromDomain converts a domain employee to a response.
func EmployeeFromDomain(e *domain.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:          e.ID,
		BadgeNumber: e.BadgeNumber,
		FullName:    e.FullName,
		Grade:       e.Grade,
		Email:       e.Email,
		AssignedAt:  e.AssignedAt,
		CreatedAt:   e.CreatedAt,
	}
}

// EmployeesFromDomain converts domain employees to responses.
func EmployeesFromDomain(employees []*domain.Employee) []*EmployeeResponse {
	result := make([]*EmployeeResponse, len(employees))
	for i, e := range employees {
		result[i] = EmployeeFromDomain(e)
	}
	return result
}

// ListEmployeesResponse wraps an employee listing.
type ListEmployeesResponse struct {
	Employees []*EmployeeResponse `json:"employees"`
	Total     int64               `json:"total"`
}

// RuleResponse represents an entitlement rule in API responses.
type RuleResponse struct {
	ID             string    `json:"id"`
	TechnicianDays int       `json:"technician_days"`
	StandardDays   int       `json:"standard_days"`
	UpdatedBy      string    `json:"updated_by,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RuleFromDomain converts a domain rule to a response.
func RuleFromDomain(r *domain.EntitlementRule) *RuleResponse {
	return &RuleResponse{
		ID:             r.ID,
		TechnicianDays: r.TechnicianDays,
		StandardDays:   r.StandardDays,
		UpdatedBy:      r.UpdatedBy,
		UpdatedAt:      r.UpdatedAt,
	}
}

// RulesFromDomain converts domain rules to responses.
func RulesFromDomain(rules []*domain.EntitlementRule) []*RuleResponse {
	result := make([]*RuleResponse, len(rules))
	for i, r := range rules {
		result[i] = RuleFromDomain(r)
	}
	return result
}

// ListRulesResponse wraps a rule listing.
type ListRulesResponse struct {
	Rules []*RuleResponse `json:"rules"`
	Total int64           `json:"total"`
}

// ChangeRuleResponse pairs the published rule with the re-base batch outcome.
type ChangeRuleResponse struct {
	Rule   *RuleResponse     `json:"rule"`
	Rebase usecase.JobResult `json:"rebase"`
}

// JobResponse wraps a batch job outcome.
type JobResponse struct {
	Job    string            `json:"job"`
	Year   int               `json:"year,omitempty"`
	Result usecase.JobResult `json:"result"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
