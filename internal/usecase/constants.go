package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultDecisionLockWindow is the grace period after a decision during
	// which the decider may still flip or revert it.
	DefaultDecisionLockWindow = 15 * time.Minute

	// BalanceCacheTTL is how long balance reads are cached.
	BalanceCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
