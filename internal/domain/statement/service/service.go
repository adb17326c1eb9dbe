// Package service provides the statement import orchestration logic.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/expenso-app/expenso/internal/domain/expense"
	"github.com/expenso-app/expenso/internal/domain/statement/parser"
)

// ImportService routes an uploaded statement to the parser for its declared
// source type and persists the resulting canonical records. One call per
// uploaded file, rows processed strictly in source order.
type ImportService struct {
	registry *parser.Registry
	logger   *slog.Logger
}

// NewImportService wires the built-in parsers against the expense repository.
func NewImportService(repo expense.Repository, exclusions parser.ExclusionList, logger *slog.Logger) *ImportService {
	sink := &repositorySink{repo: repo}

	registry := parser.NewRegistry()
	registry.Register(parser.NewTBankCSVParser(sink, exclusions, logger))
	registry.Register(parser.NewSberXLSXParser(sink, exclusions, logger))

	return &ImportService{registry: registry, logger: logger}
}

// Supported reports whether a source type has a registered parser. Callers
// validate the declared type here before invoking Import.
func (s *ImportService) Supported(source parser.SourceType) bool {
	return s.registry.Get(source) != nil
}

// Sources lists the supported source types.
func (s *ImportService) Sources() []parser.SourceType {
	return s.registry.Sources()
}

// Import parses the file with the parser matching the declared source type
// and returns its aggregate result unchanged.
func (s *ImportService) Import(ctx context.Context, source parser.SourceType, r io.Reader, userID uuid.UUID) (*parser.Result, error) {
	p := s.registry.Get(source)
	if p == nil {
		return nil, fmt.Errorf("unknown statement source type %q", source)
	}

	result, err := p.Parse(ctx, r, userID)
	if err != nil {
		return nil, fmt.Errorf("importing %s statement: %w", source, err)
	}

	s.logger.Info("statement imported",
		slog.String("source", string(source)),
		slog.String("user_id", userID.String()),
		slog.Int("created", result.Created),
		slog.String("total", result.Total.StringFixed(2)),
		slog.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// repositorySink persists canonical records through the expense repository,
// resolving each category label with an atomic get-or-create.
type repositorySink struct {
	repo expense.Repository
}

func (s *repositorySink) Persist(ctx context.Context, rec parser.Record) error {
	category, err := s.repo.GetOrCreateCategory(ctx, rec.UserID, rec.Category)
	if err != nil {
		return fmt.Errorf("resolving category %q: %w", rec.Category, err)
	}

	e := &expense.Expense{
		UserID:      rec.UserID,
		CategoryID:  &category.ID,
		Amount:      rec.Amount,
		Currency:    rec.Currency,
		Date:        rec.Date,
		Description: rec.Description,
		Bank:        rec.Bank,
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}
	return nil
}
