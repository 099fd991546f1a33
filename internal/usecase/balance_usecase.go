package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/infrastructure/metrics"
)

// BalanceUseCase handles balance record business logic.
type BalanceUseCase struct {
	txManager    TransactionManager
	balanceRepo  BalanceRepository
	employeeRepo EmployeeRepository
	ruleRepo     RuleRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	cache        Cache
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	employeeRepo EmployeeRepository,
	ruleRepo RuleRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:    txManager,
		balanceRepo:  balanceRepo,
		employeeRepo: employeeRepo,
		ruleRepo:     ruleRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// InitializeBalanceInput represents input for opening a fiscal-year balance.
type InitializeBalanceInput struct {
	EmployeeID string
	Year       int
}

// InitializeBalance opens the balance record for an employee and fiscal year.
// The initial entitlement comes from the active rule and the employee grade;
// months elapsed so far are vested immediately.
func (uc *BalanceUseCase) InitializeBalance(ctx context.Context, input InitializeBalanceInput) (*domain.BalanceRecord, error) {
	employee, err := uc.employeeRepo.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	rule, err := uc.ruleRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()

	year := input.Year
	if year == 0 {
		year = now.Year()
	}

	if existing, err := uc.balanceRepo.GetByEmployeeYear(ctx, employee.ID, year); err == nil && existing != nil {
		return nil, domain.ErrBalanceExists
	}

	balance := &domain.BalanceRecord{
		ID:                 uc.idGen.Generate(),
		EmployeeID:         employee.ID,
		Year:               year,
		InitialEntitlement: rule.DaysForGrade(employee.Grade),
		ExceptionalDays:    domain.DefaultExceptionalDays,
		CompensatoryDays:   decimal.Zero,
		UpdatedAt:          now,
	}
	balance.Initialize(employee.AssignedAt, now)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.balanceRepo.Create(ctx, tx, balance); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   balance.ID,
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeBalanceInitialized,
		Payload: map[string]any{
			"balance_id":  balance.ID,
			"employee_id": balance.EmployeeID,
			"year":        balance.Year,
			"entitlement": balance.InitialEntitlement,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BalancesInitialized.Inc()
	}

	uc.logger.Info().
		Str("balance_id", balance.ID).
		Str("employee_id", balance.EmployeeID).
		Int("year", balance.Year).
		Int("entitlement", balance.InitialEntitlement).
		Msg("balance initialized")

	return balance, nil
}

// GetBalance retrieves a balance record by ID, serving cached copies when
// available. Cache misses and cache failures both fall through to the
// repository.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, id string) (*domain.BalanceRecord, error) {
	key := balanceCacheKey(id)

	if cached, err := uc.cache.Get(ctx, key); err == nil && cached != "" {
		var balance domain.BalanceRecord
		if err := json.Unmarshal([]byte(cached), &balance); err == nil {
			return &balance, nil
		}
	}

	balance, err := uc.balanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(balance); err == nil {
		if err := uc.cache.Set(ctx, key, string(data), BalanceCacheTTL); err != nil {
			uc.logger.Warn().Err(err).Str("balance_id", id).Msg("balance cache write failed")
		}
	}

	return balance, nil
}

// GetEmployeeBalance retrieves the balance record for an employee and year.
func (uc *BalanceUseCase) GetEmployeeBalance(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error) {
	if year == 0 {
		year = uc.now().Year()
	}

	return uc.balanceRepo.GetByEmployeeYear(ctx, employeeID, year)
}

// ListEmployeeBalancesInput represents input for listing an employee's
// balance history.
type ListEmployeeBalancesInput struct {
	EmployeeID string
	Limit      int
	Offset     int
}

// ListEmployeeBalances lists balance records for one employee, newest year
// first.
func (uc *BalanceUseCase) ListEmployeeBalances(ctx context.Context, input ListEmployeeBalancesInput) ([]*domain.BalanceRecord, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.balanceRepo.ListByEmployee(ctx, input.EmployeeID, input.Limit, input.Offset)
}

// AdjustBalanceInput represents a manual correction to the independent pools.
type AdjustBalanceInput struct {
	BalanceID         string
	ExceptionalDelta  int
	CompensatoryDelta decimal.Decimal
	Reason            string
}

// AdjustBalance applies a manual adjustment to the exceptional or
// compensatory pool. Negative results are rejected; the standard buckets are
// never adjusted directly.
func (uc *BalanceUseCase) AdjustBalance(ctx context.Context, input AdjustBalanceInput) (*domain.BalanceRecord, error) {
	if input.Reason == "" {
		errs := domain.ValidationErrors{}
		errs.Add("reason", "a reason is required for manual adjustments")
		return nil, errs
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetByIDForUpdate(ctx, tx, input.BalanceID)
	if err != nil {
		return nil, err
	}

	newExceptional := balance.ExceptionalDays + input.ExceptionalDelta
	if newExceptional < 0 {
		return nil, &domain.InsufficientBalanceError{
			Category:  domain.CategoryExceptional,
			Available: decimal.NewFromInt(int64(balance.ExceptionalDays)),
		}
	}

	newCompensatory := domain.Quantize(balance.CompensatoryDays.Add(input.CompensatoryDelta))
	if newCompensatory.IsNegative() {
		return nil, &domain.InsufficientBalanceError{
			Category:  domain.CategoryCompensatory,
			Available: balance.CompensatoryDays,
		}
	}

	now := uc.now()
	balance.ExceptionalDays = newExceptional
	balance.CompensatoryDays = newCompensatory
	balance.UpdatedAt = now

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   balance.ID,
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeBalanceAdjusted,
		Payload: map[string]any{
			"balance_id":         balance.ID,
			"employee_id":        balance.EmployeeID,
			"exceptional_delta":  input.ExceptionalDelta,
			"compensatory_delta": input.CompensatoryDelta.String(),
			"reason":             input.Reason,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalanceCache(ctx, balance.ID)

	if uc.metrics != nil {
		uc.metrics.BalanceAdjustments.Inc()
	}

	return balance, nil
}

// RecomputeMonthlyVesting re-runs the accrual calculation for one balance
// record, filling the months newly vested through asOf. A zero asOf means
// now. Months already vested keep their remainders, so repeating the call
// with the same asOf changes nothing.
func (uc *BalanceUseCase) RecomputeMonthlyVesting(ctx context.Context, balanceID string, asOf time.Time) (*domain.BalanceRecord, error) {
	if asOf.IsZero() {
		asOf = uc.now()
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetByIDForUpdate(ctx, tx, balanceID)
	if err != nil {
		return nil, err
	}

	employee, err := uc.employeeRepo.GetByID(ctx, balance.EmployeeID)
	if err != nil {
		return nil, err
	}

	share := domain.MonthlyShare(balance.InitialEntitlement)
	if !balance.ApplyVesting(employee.AssignedAt, asOf, share) {
		return balance, nil
	}

	balance.UpdatedAt = uc.now()

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalanceCache(ctx, balance.ID)

	uc.logger.Info().
		Str("balance_id", balance.ID).
		Int("vested_through", balance.VestedThrough).
		Msg("monthly vesting recomputed")

	return balance, nil
}

func (uc *BalanceUseCase) invalidateBalanceCache(ctx context.Context, id string) {
	if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
		uc.logger.Warn().Err(err).Str("balance_id", id).Msg("balance cache invalidation failed")
	}
}

func balanceCacheKey(id string) string {
	return fmt.Sprintf("balance:%s", id)
}
