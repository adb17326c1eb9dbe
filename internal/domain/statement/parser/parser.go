// Package parser converts uploaded bank statement exports into canonical
// expense records. Each supported export format has one StatementParser
// implementation; adding a bank means adding one implementation and
// registering it, never touching dispatch.
package parser

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceType identifies which parser handles an uploaded file.
type SourceType string

const (
	// SourceTBankCSV is the semicolon-delimited T-Bank ledger export.
	SourceTBankCSV SourceType = "tbank-csv"
	// SourceSberXLSX is the Sberbank spreadsheet statement export.
	SourceSberXLSX SourceType = "sber-xlsx"
)

// Record is one canonical expense row ready for persistence. Amount is the
// positive magnitude regardless of the source sign convention.
type Record struct {
	UserID      uuid.UUID
	Category    string
	Amount      decimal.Decimal
	Currency    string
	Date        time.Time
	Description string
	Bank        string
}

// RecordSink resolves the category label and persists one canonical record.
// A sink error is fatal to the whole import, not a per-row skip.
type RecordSink interface {
	Persist(ctx context.Context, rec Record) error
}

// SkipReason records why a row was dropped. Skips never abort the batch; the
// reasons are returned so callers can log or surface them.
type SkipReason struct {
	Row    int
	Reason string
	Value  string
}

// Result summarizes one import call.
type Result struct {
	Created int
	Total   decimal.Decimal
	Skipped []SkipReason
}

func newResult() *Result {
	return &Result{Total: decimal.Zero}
}

func (r *Result) skip(row int, reason, value string) {
	r.Skipped = append(r.Skipped, SkipReason{Row: row, Reason: reason, Value: value})
}

func (r *Result) add(amount decimal.Decimal) {
	r.Created++
	r.Total = r.Total.Add(amount)
}

// StatementParser converts one statement export into persisted records.
type StatementParser interface {
	Source() SourceType
	Parse(ctx context.Context, r io.Reader, userID uuid.UUID) (*Result, error)
}

// Registry holds the closed set of statement parsers keyed by source type.
type Registry struct {
	parsers map[SourceType]StatementParser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[SourceType]StatementParser)}
}

// Register adds a parser. Panics on duplicate source type.
func (r *Registry) Register(p StatementParser) {
	if _, ok := r.parsers[p.Source()]; ok {
		panic("duplicate statement parser: " + string(p.Source()))
	}
	r.parsers[p.Source()] = p
}

// Get returns the parser for the source type, or nil.
func (r *Registry) Get(source SourceType) StatementParser {
	return r.parsers[source]
}

// Sources lists the registered source types.
func (r *Registry) Sources() []SourceType {
	out := make([]SourceType, 0, len(r.parsers))
	for s := range r.parsers {
		out = append(out, s)
	}
	return out
}
