package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Balance errors
	ErrBalanceNotFound  = errors.New("balance record not found")
	ErrBalanceExists    = errors.New("balance record already exists for this employee and year")
	ErrInvalidMonthKey  = errors.New("invalid monthly bucket key")
	ErrNegativeBucket   = errors.New("bucket value must not be negative")
	ErrInvalidAmount    = errors.New("requested days must be positive")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrRuleNotFound     = errors.New("no entitlement rule defined")

	// Request lifecycle errors
	ErrRequestNotFound         = errors.New("leave request not found")
	ErrRequestCancelled        = errors.New("request was cancelled by the requester")
	ErrAlreadyDecided          = errors.New("request has already been decided")
	ErrNotPending              = errors.New("only pending requests can be transitioned")
	ErrDecisionWindowExpired   = errors.New("decision window expired, request is immutable")
	ErrNotRequestOwner         = errors.New("only the requester may cancel a pending request")
	ErrApprovalOrderViolation  = errors.New("a later-ending request is already approved for this employee")
	ErrInvalidRequestCategory  = errors.New("invalid request category")
	ErrConcurrentBalanceAccess = errors.New("could not acquire balance lock")
)

// InsufficientBalanceError reports a failed debit along with the figure the
// requester can still consume, for display by the caller.
type InsufficientBalanceError struct {
	Category  RequestCategory
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance: only %s day(s) available", e.Category, e.Available)
}

// OverlapError reports that a submitted period collides with another live
// request for the same employee.
type OverlapError struct {
	ExistingRequestID string
	Period            Period
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("period overlaps existing request %s (%s)", e.ExistingRequestID, e.Period)
}

// ValidationErrors aggregates field-level messages from request validation.
// The list is scoped to a single call, never shared across requests.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) Error() string {
	for field, messages := range v {
		if len(messages) > 0 {
			return fmt.Sprintf("validation failed: %s: %s", field, messages[0])
		}
	}

	return "validation failed"
}

// OrNil returns the collected errors, or nil when validation passed.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}

	return v
}
