package domain

import "time"

// Event types published through the outbox. The surrounding system consumes
// them for notifications (the approved/rejected/submitted mails) and audit.
const (
	EventTypeBalanceInitialized = "balance.initialized"
	EventTypeBalanceAdjusted    = "balance.adjusted"
	EventTypeBalanceRolledOver  = "balance.rolled_over"
	EventTypeRequestSubmitted   = "request.submitted"
	EventTypeRequestApproved    = "request.approved"
	EventTypeRequestRejected    = "request.rejected"
	EventTypeRequestCancelled   = "request.cancelled"
	EventTypeRuleChanged        = "rule.changed"
	EventTypeGradeChanged       = "employee.grade_changed"
)

// Aggregate types
const (
	AggregateTypeBalance = "balance"
	AggregateTypeRequest = "request"
	AggregateTypeRule    = "rule"
)

// OutboxEvent represents an event to be published.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// RequestDecidedEvent payload for request.approved / request.rejected.
type RequestDecidedEvent struct {
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
	Category   string `json:"category"`
	Days       int    `json:"days"`
	Period     string `json:"period"`
	DecidedAt  string `json:"decided_at"`
}

// BalanceRolledOverEvent payload
type BalanceRolledOverEvent struct {
	BalanceID  string `json:"balance_id"`
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
}

// RuleChangedEvent payload
type RuleChangedEvent struct {
	RuleID         string `json:"rule_id"`
	TechnicianDays int    `json:"technician_days"`
	StandardDays   int    `json:"standard_days"`
}
