package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
)

// RuleUseCase handles entitlement rule changes and their propagation into
// current-year balances.
type RuleUseCase struct {
	txManager    TransactionManager
	ruleRepo     RuleRepository
	balanceRepo  BalanceRepository
	employeeRepo EmployeeRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	cache        Cache
	retrier      Retrier
	logger       zerolog.Logger
	now          func() time.Time
}

// NewRuleUseCase creates a new RuleUseCase.
func NewRuleUseCase(
	txManager TransactionManager,
	ruleRepo RuleRepository,
	balanceRepo BalanceRepository,
	employeeRepo EmployeeRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
	logger zerolog.Logger,
) *RuleUseCase {
	return &RuleUseCase{
		txManager:    txManager,
		ruleRepo:     ruleRepo,
		balanceRepo:  balanceRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cache:        cache,
		retrier:      retrier,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ChangeRuleInput represents input for publishing a new entitlement rule.
type ChangeRuleInput struct {
	TechnicianDays int
	StandardDays   int
	UpdatedBy      string
}

// ChangeRule publishes a new entitlement rule and re-bases every current-year
// balance: each record's current-year bucket moves by the difference between
// the new and old annual grant for its grade, floored at zero. Vested months
// keep the share they were granted under; future months vest at the new one.
func (uc *RuleUseCase) ChangeRule(ctx context.Context, input ChangeRuleInput) (*domain.EntitlementRule, JobResult, error) {
	errs := domain.ValidationErrors{}
	if input.TechnicianDays <= 0 {
		errs.Add("technician_days", "annual days must be positive")
	}
	if input.StandardDays <= 0 {
		errs.Add("standard_days", "annual days must be positive")
	}
	if err := errs.OrNil(); err != nil {
		return nil, JobResult{}, err
	}

	oldRule, err := uc.ruleRepo.Latest(ctx)
	if err != nil {
		return nil, JobResult{}, err
	}

	now := uc.now()

	rule := &domain.EntitlementRule{
		ID:             uc.idGen.Generate(),
		TechnicianDays: input.TechnicianDays,
		StandardDays:   input.StandardDays,
		UpdatedBy:      input.UpdatedBy,
		UpdatedAt:      now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, JobResult{}, err
	}
	defer tx.Rollback(ctx)

	if err := uc.ruleRepo.Create(ctx, tx, rule); err != nil {
		return nil, JobResult{}, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   rule.ID,
		AggregateType: domain.AggregateTypeRule,
		EventType:     domain.EventTypeRuleChanged,
		Payload: map[string]any{
			"rule_id":         rule.ID,
			"technician_days": rule.TechnicianDays,
			"standard_days":   rule.StandardDays,
			"updated_by":      rule.UpdatedBy,
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, JobResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, JobResult{}, err
	}

	result, err := uc.rebaseBalances(ctx, oldRule, rule)
	if err != nil {
		return rule, result, err
	}

	uc.logger.Info().
		Str("rule_id", rule.ID).
		Int("technician_days", rule.TechnicianDays).
		Int("standard_days", rule.StandardDays).
		Int("rebased", result.Processed).
		Msg("entitlement rule changed")

	return rule, result, nil
}

func (uc *RuleUseCase) rebaseBalances(ctx context.Context, oldRule, newRule *domain.EntitlementRule) (JobResult, error) {
	balances, err := uc.balanceRepo.ListByYear(ctx, uc.now().Year())
	if err != nil {
		return JobResult{}, err
	}

	var result JobResult
	for _, stale := range balances {
		err := uc.retrier.Retry(ctx, func() error {
			return uc.rebaseOne(ctx, stale.ID, oldRule, newRule)
		})
		if err != nil {
			result.Failed++
			uc.logger.Error().Err(err).
				Str("balance_id", stale.ID).
				Msg("rule rebase failed for balance")
			continue
		}

		result.Processed++
	}

	return result, nil
}

func (uc *RuleUseCase) rebaseOne(ctx context.Context, balanceID string, oldRule, newRule *domain.EntitlementRule) error {
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

	employee, err := uc.employeeRepo.GetByID(ctx, balance.EmployeeID)
	if err != nil {
		return err
	}

	oldDays := oldRule.DaysForGrade(employee.Grade)
	newDays := newRule.DaysForGrade(employee.Grade)
	if oldDays == newDays {
		return tx.Commit(ctx)
	}

	delta := decimal.NewFromInt(int64(newDays - oldDays))
	current := domain.Quantize(balance.CurrentYear.Add(delta))
	if current.IsNegative() {
		current = decimal.Zero
	}

	balance.CurrentYear = current
	balance.InitialEntitlement = newDays
	balance.UpdatedAt = now
	balance.RecomputeTotal()

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.invalidateBalanceCache(ctx, balance.ID)

	return nil
}

// GetLatestRule returns the rule currently in force.
func (uc *RuleUseCase) GetLatestRule(ctx context.Context) (*domain.EntitlementRule, error) {
	return uc.ruleRepo.Latest(ctx)
}

// ListRulesInput represents input for listing rule history.
type ListRulesInput struct {
	Limit  int
	Offset int
}

// ListRules lists entitlement rules, newest first.
func (uc *RuleUseCase) ListRules(ctx context.Context, input ListRulesInput) ([]*domain.EntitlementRule, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.ruleRepo.List(ctx, input.Limit, input.Offset)
}

func (uc *RuleUseCase) invalidateBalanceCache(ctx context.Context, id string) {
	if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
		uc.logger.Warn().Err(err).Str("balance_id", id).Msg("balance cache invalidation failed")
	}
}
