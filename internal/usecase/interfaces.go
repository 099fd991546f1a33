package usecase

import (
	"context"
	"time"

	"github.com/hrkit/leaveledger/internal/domain"
)

// BalanceRepository defines data access for balance records.
type BalanceRepository interface {
	Create(ctx context.Context, tx Transaction, balance *domain.BalanceRecord) error
	GetByID(ctx context.Context, id string) (*domain.BalanceRecord, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.BalanceRecord, error)
	GetByEmployeeYear(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error)
	Update(ctx context.Context, tx Transaction, balance *domain.BalanceRecord) error
	ListByYear(ctx context.Context, year int) ([]*domain.BalanceRecord, error)
	ListBeforeYear(ctx context.Context, year int) ([]*domain.BalanceRecord, error)
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.BalanceRecord, error)
}

// RequestRepository defines data access for leave requests.
type RequestRepository interface {
	Create(ctx context.Context, tx Transaction, request *domain.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LeaveRequest, error)
	Update(ctx context.Context, tx Transaction, request *domain.LeaveRequest) error
	ListApprovedByEmployee(ctx context.Context, tx Transaction, employeeID string, year int) ([]*domain.LeaveRequest, error)
	ListActiveByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.LeaveRequest, error)
	SumApprovedDays(ctx context.Context, employeeID string, year int) (int, error)
}

// EmployeeRepository defines data access for the employee identities the
// surrounding personnel system owns.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	UpdateGrade(ctx context.Context, tx Transaction, id, grade string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Employee, error)
}

// RuleRepository defines data access for entitlement rules.
type RuleRepository interface {
	Create(ctx context.Context, tx Transaction, rule *domain.EntitlementRule) error
	Latest(ctx context.Context) (*domain.EntitlementRule, error)
	List(ctx context.Context, limit, offset int) ([]*domain.EntitlementRule, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation when it fails with a transient concurrency
// error (deadlock, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore backs the Idempotency-Key middleware. CheckAndSet reserves
// the key on first sight and returns the stored response on replay.
type IdempotencyStore interface {
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
