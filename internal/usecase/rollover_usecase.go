package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/infrastructure/metrics"
)

// RolloverUseCase runs the scheduled ledger jobs: the annual rollover and the
// monthly vesting pass. Both walk every eligible balance record and isolate
// failures per record so one bad row never aborts the batch.
type RolloverUseCase struct {
	txManager    TransactionManager
	balanceRepo  BalanceRepository
	employeeRepo EmployeeRepository
	ruleRepo     RuleRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	cache        Cache
	retrier      Retrier
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// NewRolloverUseCase creates a new RolloverUseCase.
func NewRolloverUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	employeeRepo EmployeeRepository,
	ruleRepo RuleRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *RolloverUseCase {
	return &RolloverUseCase{
		txManager:    txManager,
		balanceRepo:  balanceRepo,
		employeeRepo: employeeRepo,
		ruleRepo:     ruleRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cache:        cache,
		retrier:      retrier,
		metrics:      metrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// JobResult summarises a batch run.
type JobResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// RolloverYear advances every balance record from earlier fiscal years into
// newYear: carry-overs shift one slot, the pools reset, and the new year's
// entitlement is granted under the active rule. Records already at newYear
// or later are skipped.
func (uc *RolloverUseCase) RolloverYear(ctx context.Context, newYear int) (JobResult, error) {
	if newYear == 0 {
		newYear = uc.now().Year()
	}

	rule, err := uc.ruleRepo.Latest(ctx)
	if err != nil {
		return JobResult{}, err
	}

	balances, err := uc.balanceRepo.ListBeforeYear(ctx, newYear)
	if err != nil {
		return JobResult{}, err
	}

	var result JobResult
	for _, stale := range balances {
		err := uc.retrier.Retry(ctx, func() error {
			return uc.rolloverOne(ctx, stale.ID, newYear, rule)
		})

		switch {
		case err == nil:
			result.Processed++
		case err == errRolloverSkipped:
			result.Skipped++
		default:
			result.Failed++
			uc.logger.Error().Err(err).
				Str("balance_id", stale.ID).
				Int("new_year", newYear).
				Msg("rollover failed for balance")
		}
	}

	if uc.metrics != nil {
		uc.metrics.BalancesRolledOver.Add(float64(result.Processed))
	}

	uc.logger.Info().
		Int("new_year", newYear).
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("annual rollover finished")

	return result, nil
}

// errRolloverSkipped marks records that were already rolled over by a
// concurrent run. Never returned to callers.
var errRolloverSkipped = errors.New("balance already rolled over")

func (uc *RolloverUseCase) rolloverOne(ctx context.Context, balanceID string, newYear int, rule *domain.EntitlementRule) error {
	now := uc.now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetByIDForUpdate(ctx, tx, balanceID)
	if err != nil {
		return err
	}

	if !balance.Rollover(newYear) {
		return errRolloverSkipped
	}

	employee, err := uc.employeeRepo.GetByID(ctx, balance.EmployeeID)
	if err != nil {
		return err
	}

	balance.InitialEntitlement = rule.DaysForGrade(employee.Grade)
	balance.Initialize(employee.AssignedAt, now)
	balance.UpdatedAt = now

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   balance.ID,
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeBalanceRolledOver,
		Payload: map[string]any{
			"balance_id":  balance.ID,
			"employee_id": balance.EmployeeID,
			"year":        balance.Year,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.invalidateBalanceCache(ctx, balance.ID)

	return nil
}

// RecomputeVesting runs the monthly vesting pass over every balance record of
// the current fiscal year. Months already vested or debited are untouched, so
// repeated runs within the same month are no-ops.
func (uc *RolloverUseCase) RecomputeVesting(ctx context.Context) (JobResult, error) {
	now := uc.now()

	balances, err := uc.balanceRepo.ListByYear(ctx, now.Year())
	if err != nil {
		return JobResult{}, err
	}

	var result JobResult
	for _, stale := range balances {
		changed, err := uc.vestOne(ctx, stale.ID, now)

		switch {
		case err != nil:
			result.Failed++
			uc.logger.Error().Err(err).
				Str("balance_id", stale.ID).
				Msg("vesting failed for balance")
		case changed:
			result.Processed++
		default:
			result.Skipped++
		}
	}

	if uc.metrics != nil {
		uc.metrics.VestingRuns.Inc()
	}

	uc.logger.Info().
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("monthly vesting finished")

	return result, nil
}

func (uc *RolloverUseCase) vestOne(ctx context.Context, balanceID string, now time.Time) (bool, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	balance, err := uc.balanceRepo.GetByIDForUpdate(ctx, tx, balanceID)
	if err != nil {
		return false, err
	}

	employee, err := uc.employeeRepo.GetByID(ctx, balance.EmployeeID)
	if err != nil {
		return false, err
	}

	share := domain.MonthlyShare(balance.InitialEntitlement)
	if !balance.ApplyVesting(employee.AssignedAt, now, share) {
		return false, nil
	}

	balance.UpdatedAt = now

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}

	uc.invalidateBalanceCache(ctx, balance.ID)

	return true, nil
}

func (uc *RolloverUseCase) invalidateBalanceCache(ctx context.Context, id string) {
	if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
		uc.logger.Warn().Err(err).Str("balance_id", id).Msg("balance cache invalidation failed")
	}
}
