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

const employeeColumns = `id, badge_number, full_name, grade, email, assigned_at, created_at`

// EmployeeRepository implements usecase.EmployeeRepository.
type EmployeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create inserts an employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		employee.ID,
		employee.BadgeNumber,
		employee.FullName,
		employee.Grade,
		employee.Email,
		timePtrToPgTimestamptz(employee.AssignedAt),
		timeToPgTimestamptz(employee.CreatedAt),
	)

	return err
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)

	return scanEmployee(row)
}

// UpdateGrade moves an employee to a new grade within a transaction.
func (r *EmployeeRepository) UpdateGrade(ctx context.Context, tx usecase.Transaction, id, grade string) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx,
		`UPDATE employees SET grade = $2 WHERE id = $1`, id, grade)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}

	return nil
}

// List lists employees with pagination.
func (r *EmployeeRepository) List(ctx context.Context, limit, offset int) ([]*domain.Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+employeeColumns+` FROM employees
		ORDER BY badge_number
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}

		employees = append(employees, employee)
	}

	return employees, rows.Err()
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		e          domain.Employee
		assignedAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
	)

	err := row.Scan(&e.ID, &e.BadgeNumber, &e.FullName, &e.Grade, &e.Email, &assignedAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}

		return nil, err
	}

	e.AssignedAt = pgTimestamptzToTimePtr(assignedAt)
	e.CreatedAt = createdAt.Time

	return &e, nil
}
