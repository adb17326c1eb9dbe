package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenso-app/expenso/internal/domain/expense"
	"github.com/expenso-app/expenso/internal/domain/statement/parser"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepo records category resolutions and created expenses in memory.
type fakeRepo struct {
	categories map[string]*expense.Category
	expenses   []*expense.Expense

	categoryCalls int
	createErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{categories: make(map[string]*expense.Category)}
}

func (r *fakeRepo) GetOrCreateCategory(_ context.Context, userID uuid.UUID, name string) (*expense.Category, error) {
	r.categoryCalls++
	key := userID.String() + "/" + name
	if c, ok := r.categories[key]; ok {
		return c, nil
	}
	c := &expense.Category{ID: uuid.New(), UserID: userID, Name: name}
	r.categories[key] = c
	return c, nil
}

func (r *fakeRepo) CreateExpense(_ context.Context, e *expense.Expense) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.expenses = append(r.expenses, e)
	return nil
}

func tbankCSV(rows ...string) io.Reader {
	header := "Статус;Дата операции;Сумма операции;Сумма платежа;Валюта операции;Категория;Описание\n"
	return strings.NewReader(header + strings.Join(rows, "\n"))
}

func TestImportService_Supported(t *testing.T) {
	svc := NewImportService(newFakeRepo(), parser.DefaultExclusions(), discardLogger())

	assert.True(t, svc.Supported(parser.SourceTBankCSV))
	assert.True(t, svc.Supported(parser.SourceSberXLSX))
	assert.False(t, svc.Supported("qif"))
	assert.ElementsMatch(t,
		[]parser.SourceType{parser.SourceTBankCSV, parser.SourceSberXLSX},
		svc.Sources(),
	)
}

func TestImportService_UnknownSource(t *testing.T) {
	svc := NewImportService(newFakeRepo(), parser.DefaultExclusions(), discardLogger())

	_, err := svc.Import(context.Background(), "qif", strings.NewReader(""), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown statement source type")
}

func TestImportService_ImportPersistsThroughRepository(t *testing.T) {
	repo := newFakeRepo()
	svc := NewImportService(repo, parser.DefaultExclusions(), discardLogger())
	userID := uuid.New()

	result, err := svc.Import(context.Background(), parser.SourceTBankCSV, tbankCSV(
		"OK;05.12.2025;-150,50;-150,50;RUB;Супермаркеты;Магазин",
		"OK;06.12.2025;-49,50;-49,50;RUB;Супермаркеты;Пятёрочка",
		"OK;07.12.2025;-300,00;-300,00;RUB;Рестораны;Кафе",
	), userID)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Created)
	assert.True(t, decimal.RequireFromString("500").Equal(result.Total), "got %s", result.Total)

	require.Len(t, repo.expenses, 3)
	// both Супермаркеты rows resolve to the same category row
	assert.Len(t, repo.categories, 2)
	assert.Equal(t, repo.expenses[0].CategoryID, repo.expenses[1].CategoryID)
	assert.NotEqual(t, repo.expenses[0].CategoryID, repo.expenses[2].CategoryID)

	e := repo.expenses[0]
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, "Магазин", e.Description)
	assert.Equal(t, "T-Bank", e.Bank)
}

func TestImportService_RepositoryErrorAbortsImport(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("deadline exceeded")
	svc := NewImportService(repo, parser.DefaultExclusions(), discardLogger())

	_, err := svc.Import(context.Background(), parser.SourceTBankCSV, tbankCSV(
		"OK;05.12.2025;-150,50;-150,50;RUB;Супермаркеты;Магазин",
	), uuid.New())
	assert.ErrorIs(t, err, repo.createErr)
	assert.Empty(t, repo.expenses)
}

func TestImportService_ExtraExclusionKeywords(t *testing.T) {
	repo := newFakeRepo()
	exclusions := append(parser.DefaultExclusions(), "кэшбэк")
	svc := NewImportService(repo, exclusions, discardLogger())

	result, err := svc.Import(context.Background(), parser.SourceTBankCSV, tbankCSV(
		"OK;05.12.2025;-10,00;-10,00;RUB;Кэшбэк и бонусы;Бонус",
		"OK;05.12.2025;-20,00;-20,00;RUB;Супермаркеты;Магазин",
	), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "excluded category", result.Skipped[0].Reason)
}

func TestImportService_ManyRows(t *testing.T) {
	gofakeit.Seed(11)

	repo := newFakeRepo()
	svc := NewImportService(repo, parser.DefaultExclusions(), discardLogger())

	categories := []string{"Супермаркеты", "Рестораны", "Транспорт", "Аптеки"}
	want := decimal.Zero
	var rows []string
	for i := 0; i < 50; i++ {
		amount := decimal.NewFromFloat(gofakeit.Price(10, 5000)).Round(2)
		want = want.Add(amount)
		rows = append(rows, fmt.Sprintf(
			"OK;%02d.12.2025;-%s;-%s;RUB;%s;%s",
			i%28+1,
			amount.StringFixed(2), amount.StringFixed(2),
			categories[i%len(categories)],
			gofakeit.LetterN(12),
		))
	}

	result, err := svc.Import(context.Background(), parser.SourceTBankCSV, tbankCSV(rows...), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 50, result.Created)
	assert.True(t, want.Equal(result.Total), "want %s, got %s", want, result.Total)
	assert.Len(t, repo.categories, len(categories))
}
