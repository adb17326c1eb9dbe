package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expenso-app/expenso/internal/domain/expense"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db expense.DB
}

// NewPostgresRepository creates a new insights repository.
func NewPostgresRepository(db expense.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OverallStats returns count, total and the date range of a user's expenses.
func (r *PostgresRepository) OverallStats(ctx context.Context, userID uuid.UUID) (*OverallStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount_minor), 0), MIN(spent_on), MAX(spent_on)
		FROM expenses
		WHERE user_id = $1`

	stats := &OverallStats{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&stats.Count,
		&stats.TotalMinor,
		&stats.FirstDate,
		&stats.LastDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load overall stats: %w", err)
	}
	return stats, nil
}

// CategoryTotals returns per-category spend, highest first.
func (r *PostgresRepository) CategoryTotals(ctx context.Context, userID uuid.UUID) ([]CategoryTotal, error) {
	query := `
		SELECT c.name, COALESCE(SUM(e.amount_minor), 0) AS total
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1
		GROUP BY c.name
		ORDER BY total DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Name, &t.TotalMinor); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// BankTotals returns per-bank spend, highest first.
func (r *PostgresRepository) BankTotals(ctx context.Context, userID uuid.UUID) ([]BankTotal, error) {
	query := `
		SELECT bank, COALESCE(SUM(amount_minor), 0) AS total
		FROM expenses
		WHERE user_id = $1
		GROUP BY bank
		ORDER BY total DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank totals: %w", err)
	}
	defer rows.Close()

	var totals []BankTotal
	for rows.Next() {
		var t BankTotal
		if err := rows.Scan(&t.Bank, &t.TotalMinor); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// DescriptionCounts returns occurrence counts of non-empty descriptions,
// most frequent first.
func (r *PostgresRepository) DescriptionCounts(ctx context.Context, userID uuid.UUID) ([]DescriptionCount, error) {
	query := `
		SELECT description, COUNT(*) AS occurrences
		FROM expenses
		WHERE user_id = $1 AND description <> ''
		GROUP BY description
		ORDER BY occurrences DESC, description`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load description counts: %w", err)
	}
	defer rows.Close()

	var counts []DescriptionCount
	for rows.Next() {
		var c DescriptionCount
		if err := rows.Scan(&c.Description, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TotalBetween sums expenses dated from <= spent_on < to.
func (r *PostgresRepository) TotalBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount_minor), 0)
		FROM expenses
		WHERE user_id = $1 AND spent_on >= $2 AND spent_on < $3`

	var total int64
	if err := r.db.QueryRow(ctx, query, userID, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}
