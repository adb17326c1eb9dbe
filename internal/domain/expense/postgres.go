package expense

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expenso-app/expenso/pkg/money"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a new expense repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreateCategory returns the category for (user, name), creating it if
// absent. The upsert is a single statement so concurrent imports racing on the
// same new label converge on one row through the (user_id, name) unique
// constraint.
func (r *PostgresRepository) GetOrCreateCategory(ctx context.Context, userID uuid.UUID, name string) (*Category, error) {
	query := `
		INSERT INTO categories (id, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, user_id, name, created_at`

	c := &Category{}
	err := r.db.QueryRow(ctx, query, uuid.New(), userID, name).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create category: %w", err)
	}
	return c, nil
}

// CreateExpense inserts a canonical expense record. The amount is stored in
// minor units of its currency.
func (r *PostgresRepository) CreateExpense(ctx context.Context, e *Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, category_id, amount_minor, currency_code, spent_on, description, bank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Currency == "" {
		e.Currency = DefaultCurrency
	}

	amountMinor := money.NewFromDecimal(e.Amount, e.Currency).Minor()

	err := r.db.QueryRow(ctx, query,
		e.ID,
		e.UserID,
		e.CategoryID,
		amountMinor,
		e.Currency,
		e.Date,
		e.Description,
		e.Bank,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}
