package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/infrastructure/metrics"
)

// RequestUseCase handles the leave request lifecycle: submission, decisions
// and cancellation. Decisions debit or refund the balance record atomically
// with the status transition.
type RequestUseCase struct {
	txManager   TransactionManager
	requestRepo RequestRepository
	balanceRepo BalanceRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	lockWindow  time.Duration
	now         func() time.Time
}

// NewRequestUseCase creates a new RequestUseCase.
func NewRequestUseCase(
	txManager TransactionManager,
	requestRepo RequestRepository,
	balanceRepo BalanceRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	lockWindow time.Duration,
) *RequestUseCase {
	if lockWindow <= 0 {
		lockWindow = DefaultDecisionLockWindow
	}

	return &RequestUseCase{
		txManager:   txManager,
		requestRepo: requestRepo,
		balanceRepo: balanceRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
		retrier:     retrier,
		metrics:     metrics,
		logger:      logger,
		lockWindow:  lockWindow,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SubmitRequestInput represents input for submitting a leave request.
type SubmitRequestInput struct {
	EmployeeID    string
	Category      domain.RequestCategory
	DaysRequested int
	StartDate     time.Time
	Motif         string
}

// SubmitRequest records a pending request against the employee's balance for
// the year the period starts in. The period must not share a day with any
// live request of the same employee.
func (uc *RequestUseCase) SubmitRequest(ctx context.Context, input SubmitRequestInput) (*domain.LeaveRequest, error) {
	now := uc.now()

	request := &domain.LeaveRequest{
		ID:            uc.idGen.Generate(),
		EmployeeID:    input.EmployeeID,
		DaysRequested: input.DaysRequested,
		StartDate:     input.StartDate,
		Category:      input.Category,
		Motif:         input.Motif,
		Status:        domain.StatusPending,
		SubmittedAt:   now,
	}
	request.ComputePeriod()

	if err := request.Validate(); err != nil {
		return nil, err
	}

	balance, err := uc.balanceRepo.GetByEmployeeYear(ctx, input.EmployeeID, request.Year)
	if err != nil {
		return nil, err
	}
	request.BalanceID = balance.ID

	live, err := uc.requestRepo.ListActiveByEmployee(ctx, input.EmployeeID, request.Year)
	if err != nil {
		return nil, err
	}

	for _, other := range live {
		if request.ConflictsWith(other) {
			return nil, &domain.OverlapError{ExistingRequestID: other.ID, Period: other.Period}
		}
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.requestRepo.Create(ctx, tx, request); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   request.ID,
		AggregateType: domain.AggregateTypeRequest,
		EventType:     domain.EventTypeRequestSubmitted,
		Payload: map[string]any{
			"request_id":  request.ID,
			"employee_id": request.EmployeeID,
			"category":    string(request.Category),
			"days":        request.DaysRequested,
			"period":      request.Period.String(),
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
		uc.metrics.RequestsSubmitted.Inc()
	}

	uc.logger.Info().
		Str("request_id", request.ID).
		Str("employee_id", request.EmployeeID).
		Str("category", string(request.Category)).
		Int("days", request.DaysRequested).
		Msg("leave request submitted")

	return request, nil
}

// DecideRequestInput represents input for approving or rejecting a request.
type DecideRequestInput struct {
	RequestID string
	DeciderID string
}

// ApproveRequest approves a pending request and debits the balance, or flips
// a rejection made within the decision window. The request row and the
// balance row are locked for the duration of the transaction; transient lock
// conflicts are retried.
func (uc *RequestUseCase) ApproveRequest(ctx context.Context, input DecideRequestInput) (*domain.LeaveRequest, error) {
	var request *domain.LeaveRequest

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		request, err = uc.decide(ctx, input, domain.StatusApproved)
		return err
	})
	if err != nil {
		uc.recordDecisionError(err)
		return nil, err
	}

	return request, nil
}

// RejectRequest rejects a pending request, or flips an approval made within
// the decision window and refunds the debited days.
func (uc *RequestUseCase) RejectRequest(ctx context.Context, input DecideRequestInput) (*domain.LeaveRequest, error) {
	var request *domain.LeaveRequest

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		request, err = uc.decide(ctx, input, domain.StatusRejected)
		return err
	})
	if err != nil {
		uc.recordDecisionError(err)
		return nil, err
	}

	return request, nil
}

func (uc *RequestUseCase) decide(ctx context.Context, input DecideRequestInput, target domain.RequestStatus) (*domain.LeaveRequest, error) {
	start := time.Now()
	now := uc.now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	request, err := uc.requestRepo.GetByIDForUpdate(ctx, tx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if request.Cancelled {
		return nil, domain.ErrRequestCancelled
	}

	// Once the grace window has elapsed the decision is final, even for a
	// repeat of the same decision.
	if request.IsLocked(now, uc.lockWindow) {
		return nil, domain.ErrDecisionWindowExpired
	}

	if request.Status == target {
		return nil, domain.ErrAlreadyDecided
	}

	balance, err := uc.balanceRepo.GetByIDForUpdate(ctx, tx, request.BalanceID)
	if err != nil {
		return nil, err
	}

	// The ordering guard runs under the balance row lock and reads through
	// the transaction, so an approval that committed while we waited on the
	// lock is visible here.
	if target == domain.StatusApproved {
		if err := uc.checkApprovalOrder(ctx, tx, request); err != nil {
			return nil, err
		}
	}

	switch target {
	case domain.StatusApproved:
		if err := uc.debitForRequest(balance, request, now); err != nil {
			return nil, err
		}
	case domain.StatusRejected:
		// Flipping an in-window approval returns the debited days.
		if request.Status == domain.StatusApproved {
			uc.refundForRequest(balance, request, now)
		}
	}

	previous := request.Status
	request.Status = target
	request.DecidedAt = &now
	balance.UpdatedAt = now

	if err := uc.requestRepo.Update(ctx, tx, request); err != nil {
		return nil, err
	}

	if err := uc.balanceRepo.Update(ctx, tx, balance); err != nil {
		return nil, err
	}

	eventType := domain.EventTypeRequestApproved
	if target == domain.StatusRejected {
		eventType = domain.EventTypeRequestRejected
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   request.ID,
		AggregateType: domain.AggregateTypeRequest,
		EventType:     eventType,
		Payload: map[string]any{
			"request_id":  request.ID,
			"employee_id": request.EmployeeID,
			"category":    string(request.Category),
			"days":        request.DaysRequested,
			"period":      request.Period.String(),
			"decided_by":  input.DeciderID,
			"decided_at":  now.Format(time.RFC3339),
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
		uc.metrics.DecisionDuration.Observe(time.Since(start).Seconds())
		if target == domain.StatusApproved {
			uc.metrics.RequestsApproved.Inc()
			uc.metrics.DaysDebited.WithLabelValues(string(request.Category)).Add(float64(request.DaysRequested))
		} else {
			uc.metrics.RequestsRejected.Inc()
		}
	}

	uc.logger.Info().
		Str("request_id", request.ID).
		Str("employee_id", request.EmployeeID).
		Str("from", string(previous)).
		Str("to", string(target)).
		Str("decided_by", input.DeciderID).
		Msg("leave request decided")

	return request, nil
}

// recordDecisionError buckets a failed decision for the error counter. The
// insufficient-balance denials also count per category.
func (uc *RequestUseCase) recordDecisionError(err error) {
	if uc.metrics == nil {
		return
	}

	var insufficient *domain.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		uc.metrics.DecisionErrors.WithLabelValues("insufficient_balance").Inc()
		uc.metrics.InsufficientDenials.WithLabelValues(string(insufficient.Category)).Inc()
	case errors.Is(err, domain.ErrDecisionWindowExpired):
		uc.metrics.DecisionErrors.WithLabelValues("window_expired").Inc()
	case errors.Is(err, domain.ErrApprovalOrderViolation):
		uc.metrics.DecisionErrors.WithLabelValues("order_violation").Inc()
	case errors.Is(err, domain.ErrAlreadyDecided), errors.Is(err, domain.ErrRequestCancelled):
		uc.metrics.DecisionErrors.WithLabelValues("invalid_state").Inc()
	default:
		uc.metrics.DecisionErrors.WithLabelValues("other").Inc()
	}
}

// checkApprovalOrder enforces decision ordering: a request cannot be approved
// while another approved request of the same employee and year ends later.
func (uc *RequestUseCase) checkApprovalOrder(ctx context.Context, tx Transaction, request *domain.LeaveRequest) error {
	approved, err := uc.requestRepo.ListApprovedByEmployee(ctx, tx, request.EmployeeID, request.Year)
	if err != nil {
		return err
	}

	for _, other := range approved {
		if other.ID == request.ID || other.Cancelled {
			continue
		}

		if other.Period.End.After(request.Period.End) {
			return domain.ErrApprovalOrderViolation
		}
	}

	return nil
}

// debitAsOf anchors standard-leave consumption to the leave period itself:
// entitlement vests month by month, so a request starting in January cannot
// consume days that only vest later in the year. Requests without a start
// date fall back to the decision time.
func debitAsOf(request *domain.LeaveRequest, now time.Time) time.Time {
	if request.StartDate.IsZero() {
		return now
	}

	return request.StartDate
}

func (uc *RequestUseCase) debitForRequest(balance *domain.BalanceRecord, request *domain.LeaveRequest, now time.Time) error {
	amount := decimal.NewFromInt(int64(request.DaysRequested))

	switch request.Category {
	case domain.CategoryStandard:
		asOf := debitAsOf(request, now)
		available := balance.AvailableStandard(int(asOf.Month()))
		if remainder := balance.Debit(amount, asOf); remainder.GreaterThan(decimal.Zero) {
			return &domain.InsufficientBalanceError{
				Category:  domain.CategoryStandard,
				Available: available,
			}
		}
		return nil
	case domain.CategoryExceptional:
		return balance.DebitExceptional(request.DaysRequested)
	case domain.CategoryCompensatory:
		return balance.DebitCompensatory(amount)
	default:
		return domain.ErrInvalidRequestCategory
	}
}

func (uc *RequestUseCase) refundForRequest(balance *domain.BalanceRecord, request *domain.LeaveRequest, now time.Time) {
	amount := decimal.NewFromInt(int64(request.DaysRequested))

	switch request.Category {
	case domain.CategoryStandard:
		// Refunds land where the debit was anchored.
		balance.Credit(amount, debitAsOf(request, now))
	case domain.CategoryExceptional:
		balance.CreditExceptional(request.DaysRequested)
	case domain.CategoryCompensatory:
		balance.CreditCompensatory(amount)
	}
}

// CancelRequestInput represents input for cancelling a request.
type CancelRequestInput struct {
	RequestID   string
	RequesterID string
}

// CancelRequest withdraws a pending request. Only the requester may cancel,
// and only while no decision has been made.
func (uc *RequestUseCase) CancelRequest(ctx context.Context, input CancelRequestInput) (*domain.LeaveRequest, error) {
	now := uc.now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	request, err := uc.requestRepo.GetByIDForUpdate(ctx, tx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if request.EmployeeID != input.RequesterID {
		return nil, domain.ErrNotRequestOwner
	}

	if request.Cancelled {
		return nil, domain.ErrRequestCancelled
	}

	if request.Status != domain.StatusPending {
		return nil, domain.ErrNotPending
	}

	request.Cancelled = true
	request.CancelledAt = &now

	if err := uc.requestRepo.Update(ctx, tx, request); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   request.ID,
		AggregateType: domain.AggregateTypeRequest,
		EventType:     domain.EventTypeRequestCancelled,
		Payload: map[string]any{
			"request_id":  request.ID,
			"employee_id": request.EmployeeID,
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
		uc.metrics.RequestsCancelled.Inc()
	}

	return request, nil
}

// GetRequest retrieves a leave request by ID.
func (uc *RequestUseCase) GetRequest(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	return uc.requestRepo.GetByID(ctx, id)
}

// ListEmployeeRequestsInput represents input for listing an employee's
// requests.
type ListEmployeeRequestsInput struct {
	EmployeeID string
	Limit      int
	Offset     int
}

// ListEmployeeRequests lists requests for an employee, newest first.
func (uc *RequestUseCase) ListEmployeeRequests(ctx context.Context, input ListEmployeeRequestsInput) ([]*domain.LeaveRequest, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.requestRepo.ListByEmployee(ctx, input.EmployeeID, input.Limit, input.Offset)
}

func (uc *RequestUseCase) invalidateBalanceCache(ctx context.Context, id string) {
	if err := uc.cache.Delete(ctx, balanceCacheKey(id)); err != nil {
		uc.logger.Warn().Err(err).Str("balance_id", id).Msg("balance cache invalidation failed")
	}
}
