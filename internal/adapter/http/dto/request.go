package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

// SubmitLeaveRequest represents a request to submit a leave request.
type SubmitLeaveRequest struct {
	EmployeeID    string    `json:"employee_id"`
	Category      string    `json:"category"`
	DaysRequested int       `json:"days_requested"`
	StartDate     time.Time `json:"start_date"`
	Motif         string    `json:"motif,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitLeaveRequest) ToUseCaseInput() usecase.SubmitRequestInput {
	return usecase.SubmitRequestInput{
		EmployeeID:    r.EmployeeID,
		Category:      domain.RequestCategory(r.Category),
		DaysRequested: r.DaysRequested,
		StartDate:     r.StartDate,
		Motif:         r.Motif,
	}
}

// DecideRequestBody carries the optional decider identity. When the caller is
// authenticated the token identity wins.
type DecideRequestBody struct {
	DecidedBy string `json:"decided_by,omitempty"`
}

// CancelRequestBody carries the requester identity for unauthenticated
// deployments. The token identity wins when present.
type CancelRequestBody struct {
	EmployeeID string `json:"employee_id,omitempty"`
}

// InitializeBalanceRequest represents a request to open a fiscal-year balance.
type InitializeBalanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *InitializeBalanceRequest) ToUseCaseInput() usecase.InitializeBalanceInput {
	return usecase.InitializeBalanceInput{
		EmployeeID: r.EmployeeID,
		Year:       r.Year,
	}
}

// AdjustBalanceRequest represents a manual adjustment to the independent
// pools.
type AdjustBalanceRequest struct {
	ExceptionalDelta  int             `json:"exceptional_delta,omitempty"`
	CompensatoryDelta decimal.Decimal `json:"compensatory_delta,omitempty"`
	Reason            string          `json:"reason"`
}

// ToUseCaseInput converts to use case input.
func (r *AdjustBalanceRequest) ToUseCaseInput(balanceID string) usecase.AdjustBalanceInput {
	return usecase.AdjustBalanceInput{
		BalanceID:         balanceID,
		ExceptionalDelta:  r.ExceptionalDelta,
		CompensatoryDelta: r.CompensatoryDelta,
		Reason:            r.Reason,
	}
}

// RecomputeVestingRequest represents a per-balance vesting re-run. A zero
// as-of date means now.
type RecomputeVestingRequest struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// CreateEmployeeRequest represents a request to register an employee.
type CreateEmployeeRequest struct {
	BadgeNumber string     `json:"badge_number"`
	FullName    string     `json:"full_name"`
	Grade       string     `json:"grade,omitempty"`
	Email       string     `json:"email,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEmployeeRequest) ToUseCaseInput() usecase.CreateEmployeeInput {
	return usecase.CreateEmployeeInput{
		BadgeNumber: r.BadgeNumber,
		FullName:    r.FullName,
		Grade:       r.Grade,
		Email:       r.Email,
		AssignedAt:  r.AssignedAt,
	}
}

// ChangeGradeRequest represents a grade change.
type ChangeGradeRequest struct {
	Grade string `json:"grade"`
}

// ToUseCaseInput converts to use case input.
func (r *ChangeGradeRequest) ToUseCaseInput(employeeID string) usecase.ChangeGradeInput {
	return usecase.ChangeGradeInput{
		EmployeeID: employeeID,
		NewGrade:   r.Grade,
	}
}

// ChangeRuleRequest represents a request to publish a new entitlement rule.
type ChangeRuleRequest struct {
	TechnicianDays int    `json:"technician_days"`
	StandardDays   int    `json:"standard_days"`
	UpdatedBy      string `json:"updated_by,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ChangeRuleRequest) ToUseCaseInput() usecase.ChangeRuleInput {
	return usecase.ChangeRuleInput{
		TechnicianDays: r.TechnicianDays,
		StandardDays:   r.StandardDays,
		UpdatedBy:      r.UpdatedBy,
	}
}

// RolloverRequest represents a request to run the annual rollover. A zero
// year targets the current year.
type RolloverRequest struct {
	Year int `json:"year,omitempty"`
}
