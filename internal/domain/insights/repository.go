// Package insights is a pure reader over persisted expense records. It
// produces localized text summaries keyed by lightweight keyword matching on
// a free-text question and imposes no contract on ingestion beyond the
// canonical record fields.
package insights

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OverallStats summarizes a user's whole expense history. Amounts are in
// minor units of the base currency.
type OverallStats struct {
	Count      int
	TotalMinor int64
	FirstDate  *time.Time
	LastDate   *time.Time
}

// CategoryTotal is the spend of one category. Name is nil when the category
// reference of the underlying expenses has degraded to absent.
type CategoryTotal struct {
	Name       *string
	TotalMinor int64
}

// BankTotal is the spend routed through one source bank.
type BankTotal struct {
	Bank       string
	TotalMinor int64
}

// DescriptionCount is the occurrence count of one expense description.
type DescriptionCount struct {
	Description string
	Count       int
}

// Repository provides the aggregates the analyzer needs.
type Repository interface {
	OverallStats(ctx context.Context, userID uuid.UUID) (*OverallStats, error)
	CategoryTotals(ctx context.Context, userID uuid.UUID) ([]CategoryTotal, error)
	BankTotals(ctx context.Context, userID uuid.UUID) ([]BankTotal, error)
	DescriptionCounts(ctx context.Context, userID uuid.UUID) ([]DescriptionCount, error)
	// TotalBetween sums expenses with from <= date < to, in minor units.
	TotalBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
}
