package expense

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the create/upsert collaborator the ingestion pipeline writes
// through. Implementations must make GetOrCreateCategory atomic: concurrent
// imports introducing the same (user, name) pair must converge on one row.
type Repository interface {
	GetOrCreateCategory(ctx context.Context, userID uuid.UUID, name string) (*Category, error)
	CreateExpense(ctx context.Context, e *Expense) error
}

// DB is the subset of pgxpool.Pool the postgres repository needs. It lets
// tests substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
