package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/expenso-app/expenso/internal/domain/expense"
	"github.com/expenso-app/expenso/internal/domain/statement/normalizer"
	"github.com/expenso-app/expenso/pkg/money"
)

// sberBankLabel is the issuing institution name stamped on every record.
const sberBankLabel = "Sberbank"

// sberField is a logical column of the spreadsheet statement.
type sberField int

const (
	sberFieldDate sberField = iota
	sberFieldCategory
	sberFieldConverted // amount converted to the base currency
	sberFieldAmount
	sberFieldCurrency
	sberFieldDescription
)

// sberFieldKeywords binds header cells to logical fields by case-insensitive
// substring. New header spellings are additive entries here, not new logic.
// The converted-amount field is resolved before the plain amount so that
// "Сумма в валюте счёта" never shadows the operation amount column.
var sberFieldKeywords = []struct {
	field    sberField
	keywords []string
}{
	{sberFieldDate, []string{"дата"}},
	{sberFieldCategory, []string{"категор"}},
	{sberFieldConverted, []string{"в валюте сч", "в рублях"}},
	{sberFieldAmount, []string{"сумма"}},
	{sberFieldCurrency, []string{"валюта"}},
	{sberFieldDescription, []string{"описание", "коммент"}},
}

// SberXLSXParser parses the Sberbank spreadsheet statement. Columns are
// located heuristically from the first row; expenses may arrive with either
// sign and are coerced to a positive magnitude.
type SberXLSXParser struct {
	sink       RecordSink
	exclusions ExclusionList
	logger     *slog.Logger
}

// NewSberXLSXParser creates a Sberbank XLSX parser.
func NewSberXLSXParser(sink RecordSink, exclusions ExclusionList, logger *slog.Logger) *SberXLSXParser {
	return &SberXLSXParser{sink: sink, exclusions: exclusions, logger: logger}
}

// Source returns the parser's source type.
func (p *SberXLSXParser) Source() SourceType { return SourceSberXLSX }

// Parse reads the workbook's first sheet and persists one record per
// surviving row. If no date or amount column can be located the whole file is
// rejected with a zero result before any row is processed.
func (p *SberXLSXParser) Parse(ctx context.Context, r io.Reader, userID uuid.UUID) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return newResult(), nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	result := newResult()
	if len(rows) == 0 {
		return result, nil
	}

	cols := mapSberColumns(rows[0])
	_, dateOK := cols[sberFieldDate]
	_, amountOK := cols[sberFieldAmount]
	if !dateOK || !amountOK {
		p.logger.Warn("mandatory columns not found in spreadsheet header",
			slog.Bool("date", dateOK),
			slog.Bool("amount", amountOK),
		)
		return result, nil
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowNum := i + 1

		if rowEmpty(row) {
			continue
		}

		cell := func(field sberField) string {
			idx, ok := cols[field]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		amount := normalizer.Amount(cell(sberFieldAmount))
		if amount.IsZero() {
			p.skipRow(result, rowNum, "zero amount", cell(sberFieldAmount))
			continue
		}
		amount = amount.Abs()

		date, err := normalizer.Date(cell(sberFieldDate))
		if err != nil {
			p.skipRow(result, rowNum, "unparseable date", cell(sberFieldDate))
			continue
		}

		category := cell(sberFieldCategory)
		if category == "" {
			category = expense.UncategorizedName
		}
		if p.exclusions.Excluded(category) {
			p.skipRow(result, rowNum, "excluded category", category)
			continue
		}

		description := cell(sberFieldDescription)
		if description == "" {
			description = category
		}
		description = expense.TruncateDescription(description)

		currency := cell(sberFieldCurrency)
		if currency == "" {
			currency = expense.DefaultCurrency
		}

		// Multi-currency fallback: prefer the amount already converted to
		// the base currency when the statement provides one.
		if currency != money.RUB {
			if converted := normalizer.Amount(cell(sberFieldConverted)); !converted.IsZero() {
				amount = converted.Abs()
				currency = money.RUB
			}
		}

		rec := Record{
			UserID:      userID,
			Category:    category,
			Amount:      amount,
			Currency:    currency,
			Date:        date,
			Description: description,
			Bank:        sberBankLabel,
		}
		if err := p.sink.Persist(ctx, rec); err != nil {
			return nil, fmt.Errorf("persisting row %d: %w", rowNum, err)
		}
		result.add(amount)
	}

	return result, nil
}

func (p *SberXLSXParser) skipRow(result *Result, row int, reason, value string) {
	result.skip(row, reason, value)
	p.logger.Debug("skipping statement row",
		slog.String("source", string(SourceSberXLSX)),
		slog.Int("row", row),
		slog.String("reason", reason),
		slog.String("value", value),
	)
}

// mapSberColumns binds each logical field to the first unclaimed header cell
// containing one of the field's keywords.
func mapSberColumns(headers []string) map[sberField]int {
	cols := make(map[sberField]int, len(sberFieldKeywords))
	claimed := make(map[int]bool, len(headers))

	for _, fk := range sberFieldKeywords {
		for i, header := range headers {
			if claimed[i] {
				continue
			}
			h := strings.ToLower(strings.TrimSpace(header))
			if h == "" {
				continue
			}
			if containsAny(h, fk.keywords) {
				cols[fk.field] = i
				claimed[i] = true
				break
			}
		}
	}
	return cols
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
