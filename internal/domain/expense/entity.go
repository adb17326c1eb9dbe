// Package expense holds the canonical expense record and category entities
// produced by statement ingestion, plus their persistence layer.
package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency code assigned when a source omits one.
const DefaultCurrency = "RUB"

// UncategorizedName is the category sentinel for rows without a category cell.
const UncategorizedName = "Uncategorized"

// MaxDescriptionLen caps the free-text description of an expense.
const MaxDescriptionLen = 255

// Category is owned by exactly one user and identified by (user, name).
// The name is kept exactly as the source provided it.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Expense is the canonical record of one real-world expense transaction.
// Amount is always the positive magnitude, regardless of the sign convention
// of the source format. Records are immutable once created by ingestion.
type Expense struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  *uuid.UUID // weak reference: degrades to nil if the category goes away
	Amount      decimal.Decimal
	Currency    string
	Date        time.Time // calendar date, no time component
	Description string
	Bank        string
	CreatedAt   time.Time
}

// TruncateDescription enforces the description length cap.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLen {
		return s
	}
	return string(runes[:MaxDescriptionLen])
}
