package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
)

// EmployeeUseCase handles employee identities and the grade-change handler
// that re-bases the current-year entitlement.
type EmployeeUseCase struct {
	txManager    TransactionManager
	employeeRepo EmployeeRepository
	balanceRepo  BalanceRepository
	requestRepo  RequestRepository
	ruleRepo     RuleRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	cache        Cache
	retrier      Retrier
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEmployeeUseCase creates a new EmployeeUseCase.
func NewEmployeeUseCase(
	txManager TransactionManager,
	employeeRepo EmployeeRepository,
	balanceRepo BalanceRepository,
	requestRepo RequestRepository,
	ruleRepo RuleRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
	logger zerolog.Logger,
) *EmployeeUseCase {
	return &EmployeeUseCase{
		txManager:    txManager,
		employeeRepo: employeeRepo,
		balanceRepo:  balanceRepo,
		requestRepo:  requestRepo,
		ruleRepo:     ruleRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		cache:        cache,
		retrier:      retrier,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateEmployeeInput represents input for registering an employee.
type CreateEmployeeInput struct {
	BadgeNumber string
	FullName    string
	Grade       string
	Email       string
	AssignedAt  *time.Time
}

// CreateEmployee registers an employee identity.
func (uc *EmployeeUseCase) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*domain.Employee, error) {
	errs := domain.ValidationErrors{}
	if input.BadgeNumber == "" {
		errs.Add("badge_number", "badge number is required")
	}
	if input.FullName == "" {
		errs.Add("full_name", "full name is required")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		ID:          uc.idGen.Generate(),
		BadgeNumber: input.BadgeNumber,
		FullName:    input.FullName,
		Grade:       input.Grade,
		Email:       input.Email,
		AssignedAt:  input.AssignedAt,
		CreatedAt:   uc.now(),
	}

	if err := uc.employeeRepo.Create(ctx, employee); err != nil {
		return nil, err
	}

	return employee, nil
}

// GetEmployee retrieves an employee by ID.
func (uc *EmployeeUseCase) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return uc.employeeRepo.GetByID(ctx, id)
}

// ListEmployeesInput represents input for listing employees.
type ListEmployeesInput struct {
	Limit  int
	Offset int
}

// ListEmployees lists employees with pagination.
func (uc *EmployeeUseCase) ListEmployees(ctx context.Context, input ListEmployeesInput) ([]*domain.Employee, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.employeeRepo.List(ctx, input.Limit, input.Offset)
}

// ChangeGradeInput represents input for a grade change.
type ChangeGradeInput struct {
	EmployeeID string
	NewGrade   string
}

// ChangeGrade moves an employee to a new grade and re-bases the current-year
// balance: the current-year bucket becomes the new annual grant minus any
// already-approved days, floored at zero. Carry-overs and the independent
// pools are untouched.
func (uc *EmployeeUseCase) ChangeGrade(ctx context.Context, input ChangeGradeInput) (*domain.Employee, error) {
	employee, err := uc.employeeRepo.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	if employee.Grade == input.NewGrade {
		return employee, nil
	}

	rule, err := uc.ruleRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.applyGradeChange(ctx, employee, input.NewGrade, rule)
	})
	if err != nil {
		return nil, err
	}

	employee.Grade = input.NewGrade

	return employee, nil
}

func (uc *EmployeeUseCase) applyGradeChange(ctx context.Context, employee *domain.Employee, newGrade string, rule *domain.EntitlementRule) error {
	now := uc.now()
	year := now.Year()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.employeeRepo.UpdateGrade(ctx, tx, employee.ID, newGrade); err != nil {
		return err
	}

	current, err := uc.balanceRepo.GetByEmployeeYear(ctx, employee.ID, year)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		// Grade changed before the year's balance was opened; nothing to
		// re-base.
		return tx.Commit(ctx)
	}
	if err != nil {
		return err
	}

	balance, err := uc.balanceRepo.GetByIDForUpdate(ctx, tx, current.ID)
	if err != nil {
		return err
	}

	approvedDays, err := uc.requestRepo.SumApprovedDays(ctx, employee.ID, year)
	if err != nil {
		return err
	}

	newInitial := rule.DaysForGrade(newGrade)

	rebased := decimal.NewFromInt(int64(newInitial - approvedDays))
	if rebased.IsNegative() {
		rebased = decimal.Zero
	}

	balance.CurrentYear = domain.Quantize(rebased)
	balance.InitialEntitlement = newInitial
	balance.UpdatedAt = now
	balance.RecomputeTotal()

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   balance.ID,
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeGradeChanged,
		Payload: map[string]any{
			"employee_id":   employee.ID,
			"balance_id":    balance.ID,
			"old_grade":     employee.Grade,
			"new_grade":     newGrade,
			"approved_days": approvedDays,
			"entitlement":   newInitial,
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

func (uc *EmployeeUseCase) invalidateBalanceCache(ctx context.Context, id string) {
	if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
		uc.logger.Warn().Err(err).Str("balance_id", id).Msg("balance cache invalidation failed")
	}
}
