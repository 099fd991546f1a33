package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hrkit/leaveledger/internal/domain"
	"github.com/hrkit/leaveledger/internal/usecase"
)

const balanceColumns = `id, employee_id, year, carryover_n2, carryover_n1, current_year,
	initial_entitlement, monthly, vested_through, exceptional_days, compensatory_days,
	total, updated_at`

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// Create inserts a balance record within a transaction. The unique
// (employee_id, year) constraint keeps one row per employee and year.
func (r *BalanceRepository) Create(ctx context.Context, tx usecase.Transaction, balance *domain.BalanceRecord) error {
	monthly, err := json.Marshal(balance.Monthly)
	if err != nil {
		return err
	}

	_, err = tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO balances (`+balanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		balance.ID,
		balance.EmployeeID,
		balance.Year,
		decimalToNumeric(balance.CarryoverN2),
		decimalToNumeric(balance.CarryoverN1),
		decimalToNumeric(balance.CurrentYear),
		balance.InitialEntitlement,
		monthly,
		balance.VestedThrough,
		balance.ExceptionalDays,
		decimalToNumeric(balance.CompensatoryDays),
		decimalToNumeric(balance.Total),
		timeToPgTimestamptz(balance.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrBalanceExists
	}

	return err
}

// GetByID retrieves a balance record by ID.
func (r *BalanceRepository) GetByID(ctx context.Context, id string) (*domain.BalanceRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+balanceColumns+` FROM balances WHERE id = $1`, id)

	return scanBalance(row)
}

// GetByIDForUpdate retrieves a balance record with a FOR UPDATE row lock.
func (r *BalanceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BalanceRecord, error) {
	row := tx.(*Tx).PgxTx().QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM balances WHERE id = $1 FOR UPDATE`, id)

	return scanBalance(row)
}

// GetByEmployeeYear retrieves the balance record for an employee and year.
func (r *BalanceRepository) GetByEmployeeYear(ctx context.Context, employeeID string, year int) (*domain.BalanceRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM balances WHERE employee_id = $1 AND year = $2`,
		employeeID, year)

	return scanBalance(row)
}

// Update persists every mutable column of a balance record.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.BalanceRecord) error {
	monthly, err := json.Marshal(balance.Monthly)
	if err != nil {
		return err
	}

	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `
		UPDATE balances
		SET year = $2,
			carryover_n2 = $3,
			carryover_n1 = $4,
			current_year = $5,
			initial_entitlement = $6,
			monthly = $7,
			vested_through = $8,
			exceptional_days = $9,
			compensatory_days = $10,
			total = $11,
			updated_at = $12
		WHERE id = $1`,
		balance.ID,
		balance.Year,
		decimalToNumeric(balance.CarryoverN2),
		decimalToNumeric(balance.CarryoverN1),
		decimalToNumeric(balance.CurrentYear),
		balance.InitialEntitlement,
		monthly,
		balance.VestedThrough,
		balance.ExceptionalDays,
		decimalToNumeric(balance.CompensatoryDays),
		decimalToNumeric(balance.Total),
		timeToPgTimestamptz(balance.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrBalanceNotFound
	}

	return nil
}

// ListByYear lists every balance record of one fiscal year.
func (r *BalanceRepository) ListByYear(ctx context.Context, year int) ([]*domain.BalanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+balanceColumns+` FROM balances WHERE year = $1 ORDER BY employee_id`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBalances(rows)
}

// ListBeforeYear lists balance records still sitting in earlier fiscal years.
func (r *BalanceRepository) ListBeforeYear(ctx context.Context, year int) ([]*domain.BalanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+balanceColumns+` FROM balances WHERE year < $1 ORDER BY year, employee_id`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBalances(rows)
}

// ListByEmployee lists balance records for one employee, newest year first.
func (r *BalanceRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*domain.BalanceRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+balanceColumns+` FROM balances
		WHERE employee_id = $1
		ORDER BY year DESC
		LIMIT $2 OFFSET $3`,
		employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBalances(rows)
}

func scanBalance(row pgx.Row) (*domain.BalanceRecord, error) {
	var (
		b            domain.BalanceRecord
		carryoverN2  pgtype.Numeric
		carryoverN1  pgtype.Numeric
		currentYear  pgtype.Numeric
		monthly      []byte
		compensatory pgtype.Numeric
		total        pgtype.Numeric
		updatedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.Year, &carryoverN2, &carryoverN1, &currentYear,
		&b.InitialEntitlement, &monthly, &b.VestedThrough, &b.ExceptionalDays,
		&compensatory, &total, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, err
	}

	if err := json.Unmarshal(monthly, &b.Monthly); err != nil {
		return nil, err
	}

	b.CarryoverN2 = numericToDecimal(carryoverN2)
	b.CarryoverN1 = numericToDecimal(carryoverN1)
	b.CurrentYear = numericToDecimal(currentYear)
	b.CompensatoryDays = numericToDecimal(compensatory)
	b.Total = numericToDecimal(total)
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func scanBalances(rows pgx.Rows) ([]*domain.BalanceRecord, error) {
	var balances []*domain.BalanceRecord
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}

		balances = append(balances, balance)
	}

	return balances, rows.Err()
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}

	t := ts.Time

	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
