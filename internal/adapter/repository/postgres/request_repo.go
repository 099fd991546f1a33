package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

const requestColumns = `id, employee_id, balance_id, year, days_requested, start_date,
	period_start, period_end, category, motif, status, submitted_at, decided_at,
	cancelled, cancelled_at`

// RequestRepository implements usecase.RequestRepository.
type RequestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// Create inserts a leave request within a transaction.
func (r *RequestRepository) Create(ctx context.Context, tx usecase.Transaction, request *domain.LeaveRequest) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO leave_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		request.ID,
		request.EmployeeID,
		request.BalanceID,
		request.Year,
		request.DaysRequested,
		timeToPgTimestamptz(request.StartDate),
		timeToPgTimestamptz(request.Period.Start),
		timeToPgTimestamptz(request.Period.End),
		string(request.Category),
		request.Motif,
		string(request.Status),
		timeToPgTimestamptz(request.SubmittedAt),
		timePtrToPgTimestamptz(request.DecidedAt),
		request.Cancelled,
		timePtrToPgTimestamptz(request.CancelledAt),
	)

	return err
}

// GetByID retrieves a leave request by ID.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = $1`, id)

	return scanRequest(row)
}

// GetByIDForUpdate retrieves a leave request with a FOR UPDATE row lock.
func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LeaveRequest, error) {
	row := tx.(*Tx).PgxTx().QueryRow(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE id = $1 FOR UPDATE`, id)

	return scanRequest(row)
}

// Update persists the mutable columns of a leave request.
func (r *RequestRepository) Update(ctx context.Context, tx usecase.Transaction, request *domain.LeaveRequest) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `
		UPDATE leave_requests
		SET status = $2,
			decided_at = $3,
			cancelled = $4,
			cancelled_at = $5
		WHERE id = $1`,
		request.ID,
		string(request.Status),
		timePtrToPgTimestamptz(request.DecidedAt),
		request.Cancelled,
		timePtrToPgTimestamptz(request.CancelledAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRequestNotFound
	}

	return nil
}

// ListApprovedByEmployee lists the approved, non-cancelled requests of one
// employee and year. It reads through the caller's transaction so approvals
// committed while waiting on a row lock are visible.
func (r *RequestRepository) ListApprovedByEmployee(ctx context.Context, tx usecase.Transaction, employeeID string, year int) ([]*domain.LeaveRequest, error) {
	rows, err := tx.(*Tx).PgxTx().Query(ctx, `
		SELECT `+requestColumns+` FROM leave_requests
		WHERE employee_id = $1 AND year = $2 AND status = 'approved' AND NOT cancelled
		ORDER BY period_end`,
		employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListActiveByEmployee lists the pending and approved non-cancelled requests
// of one employee and year, the set that blocks overlapping submissions.
func (r *RequestRepository) ListActiveByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM leave_requests
		WHERE employee_id = $1 AND year = $2 AND status <> 'rejected' AND NOT cancelled
		ORDER BY period_start`,
		employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListByEmployee lists requests for an employee, newest first.
func (r *RequestRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.LeaveRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM leave_requests
		WHERE employee_id = $1
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3`,
		employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRequests(rows)
}

// SumApprovedDays totals the approved, non-cancelled days of one employee
// and year.
func (r *RequestRepository) SumApprovedDays(ctx context.Context, employeeID string, year int) (int, error) {
	var total int

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(days_requested), 0) FROM leave_requests
		WHERE employee_id = $1 AND year = $2 AND status = 'approved' AND NOT cancelled`,
		employeeID, year).Scan(&total)

	return total, err
}

func scanRequest(row pgx.Row) (*domain.LeaveRequest, error) {
	var (
		r           domain.LeaveRequest
		category    string
		status      string
		startDate   pgtype.Timestamptz
		periodStart pgtype.Timestamptz
		periodEnd   pgtype.Timestamptz
		submittedAt pgtype.Timestamptz
		decidedAt   pgtype.Timestamptz
		cancelledAt pgtype.Timestamptz
	)

	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.BalanceID, &r.Year, &r.DaysRequested, &startDate,
		&periodStart, &periodEnd, &category, &r.Motif, &status, &submittedAt,
		&decidedAt, &r.Cancelled, &cancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}

		return nil, err
	}

	r.Category = domain.RequestCategory(category)
	r.Status = domain.RequestStatus(status)
	r.StartDate = startDate.Time
	r.Period = domain.Period{Start: periodStart.Time, End: periodEnd.Time}
	r.SubmittedAt = submittedAt.Time
	r.DecidedAt = pgTimestamptzToTimePtr(decidedAt)
	r.CancelledAt = pgTimestamptzToTimePtr(cancelledAt)

	return &r, nil
}

func scanRequests(rows pgx.Rows) ([]*domain.LeaveRequest, error) {
	var requests []*domain.LeaveRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}

		requests = append(requests, request)
	}

	return requests, rows.Err()
}
