package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/expenso-app/expenso/internal/domain/expense"
	"github.com/expenso-app/expenso/internal/domain/statement/normalizer"
)

// tbankBankLabel is the issuing institution name stamped on every record.
const tbankBankLabel = "T-Bank"

// tbankStatusOK is the literal success marker; any other status means the
// operation never settled.
const tbankStatusOK = "OK"

// tbankRow maps the Russian header labels of the export (gocsv matches by
// header name, so column order does not matter).
type tbankRow struct {
	Status          string `csv:"Статус"`
	OperationDate   string `csv:"Дата операции"`
	OperationAmount string `csv:"Сумма операции"`
	PaymentAmount   string `csv:"Сумма платежа"`
	Currency        string `csv:"Валюта операции"`
	Category        string `csv:"Категория"`
	Description     string `csv:"Описание"`
}

// TBankCSVParser parses the semicolon-delimited T-Bank ledger export.
// Only strictly negative operation amounts (outflows) are expenses; the
// absolute value is stored.
type TBankCSVParser struct {
	sink       RecordSink
	exclusions ExclusionList
	logger     *slog.Logger
}

// NewTBankCSVParser creates a T-Bank CSV parser.
func NewTBankCSVParser(sink RecordSink, exclusions ExclusionList, logger *slog.Logger) *TBankCSVParser {
	return &TBankCSVParser{sink: sink, exclusions: exclusions, logger: logger}
}

// Source returns the parser's source type.
func (p *TBankCSVParser) Source() SourceType { return SourceTBankCSV }

// Parse reads the export and persists one record per surviving row. Row
// failures are skips, not errors; only persistence failures abort the import.
func (p *TBankCSVParser) Parse(ctx context.Context, r io.Reader, userID uuid.UUID) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	data = stripUTF8BOM(data)

	// per-call reader: imports may run concurrently
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows []tbankRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("parsing T-Bank CSV: %w", err)
	}

	result := newResult()
	for i, row := range rows {
		rowNum := i + 2 // 1-indexed, after header

		if row.Status != tbankStatusOK {
			p.skipRow(result, rowNum, "status not successful", row.Status)
			continue
		}

		rawAmount := row.OperationAmount
		if rawAmount == "" {
			rawAmount = row.PaymentAmount
		}
		if rawAmount == "" {
			p.skipRow(result, rowNum, "empty amount", "")
			continue
		}

		amount := normalizer.Amount(rawAmount)
		if !amount.IsNegative() {
			// top-ups and refunds arrive with a non-negative sign
			p.skipRow(result, rowNum, "non-negative amount", rawAmount)
			continue
		}
		amount = amount.Neg()

		currency := strings.TrimSpace(row.Currency)
		if currency == "" {
			currency = expense.DefaultCurrency
		}

		dateStr := row.OperationDate
		if fields := strings.Fields(dateStr); len(fields) > 0 {
			dateStr = fields[0]
		}
		date, err := normalizer.Date(dateStr)
		if err != nil {
			p.skipRow(result, rowNum, "unparseable date", row.OperationDate)
			continue
		}

		category := strings.TrimSpace(row.Category)
		if category == "" {
			category = expense.UncategorizedName
		}
		if p.exclusions.Excluded(category) {
			p.skipRow(result, rowNum, "excluded category", category)
			continue
		}

		description := strings.TrimSpace(row.Description)
		if description == "" {
			description = category
		}
		description = expense.TruncateDescription(description)

		rec := Record{
			UserID:      userID,
			Category:    category,
			Amount:      amount,
			Currency:    currency,
			Date:        date,
			Description: description,
			Bank:        tbankBankLabel,
		}
		if err := p.sink.Persist(ctx, rec); err != nil {
			return nil, fmt.Errorf("persisting row %d: %w", rowNum, err)
		}
		result.add(amount)
	}

	return result, nil
}

func (p *TBankCSVParser) skipRow(result *Result, row int, reason, value string) {
	result.skip(row, reason, value)
	p.logger.Debug("skipping statement row",
		slog.String("source", string(SourceTBankCSV)),
		slog.Int("row", row),
		slog.String("reason", reason),
		slog.String("value", value),
	)
}

func stripUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
