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

const ruleColumns = `id, technician_days, standard_days, updated_by, updated_at`

// RuleRepository implements usecase.RuleRepository. Rules are append-only;
// the newest row is the rule in force.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// Create appends a rule within a transaction.
func (r *RuleRepository) Create(ctx context.Context, tx usecase.Transaction, rule *domain.EntitlementRule) error {
	_, err := tx.(*Tx).PgxTx().Exec(ctx, `
		INSERT INTO entitlement_rules (`+ruleColumns+`)
		VALUES ($1, $2, $3, $4, $5)`,
		rule.ID,
		rule.TechnicianDays,
		rule.StandardDays,
		rule.UpdatedBy,
		timeToPgTimestamptz(rule.UpdatedAt),
	)

	return err
}

// Latest returns the rule currently in force.
func (r *RuleRepository) Latest(ctx context.Context) (*domain.EntitlementRule, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM entitlement_rules ORDER BY updated_at DESC, id DESC LIMIT 1`)

	return scanRule(row)
}

// List lists rules, newest first.
func (r *RuleRepository) List(ctx context.Context, limit, offset int) ([]*domain.EntitlementRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ruleColumns+` FROM entitlement_rules
		ORDER BY updated_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.EntitlementRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func scanRule(row pgx.Row) (*domain.EntitlementRule, error) {
	var (
		rule      domain.EntitlementRule
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&rule.ID, &rule.TechnicianDays, &rule.StandardDays, &rule.UpdatedBy, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}

		return nil, err
	}

	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}
