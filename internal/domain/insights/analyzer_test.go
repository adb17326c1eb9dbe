package insights

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRepo struct {
	stats   *OverallStats
	cats    []CategoryTotal
	banks   []BankTotal
	descs   []DescriptionCount
	totalFn func(from, to time.Time) int64
}

func (r *fakeRepo) OverallStats(context.Context, uuid.UUID) (*OverallStats, error) {
	if r.stats == nil {
		return &OverallStats{}, nil
	}
	return r.stats, nil
}

func (r *fakeRepo) CategoryTotals(context.Context, uuid.UUID) ([]CategoryTotal, error) {
	return r.cats, nil
}

func (r *fakeRepo) BankTotals(context.Context, uuid.UUID) ([]BankTotal, error) {
	return r.banks, nil
}

func (r *fakeRepo) DescriptionCounts(context.Context, uuid.UUID) ([]DescriptionCount, error) {
	return r.descs, nil
}

func (r *fakeRepo) TotalBetween(_ context.Context, _ uuid.UUID, from, to time.Time) (int64, error) {
	if r.totalFn == nil {
		return 0, nil
	}
	return r.totalFn(from, to), nil
}

func newTestAnalyzer(repo *fakeRepo, now time.Time) *Analyzer {
	return NewAnalyzer(repo, discardLogger()).WithClock(func() time.Time { return now })
}

func strPtr(s string) *string { return &s }

var fixedNow = time.Date(2025, time.December, 15, 12, 0, 0, 0, time.UTC)

func TestOverallSummary_Empty(t *testing.T) {
	a := newTestAnalyzer(&fakeRepo{}, fixedNow)

	in, err := a.OverallSummary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, in.Main, "нет расходов")
	assert.Empty(t, in.Advice)
}

func TestOverallSummary(t *testing.T) {
	first := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)
	a := newTestAnalyzer(&fakeRepo{
		stats: &OverallStats{Count: 20, TotalMinor: 100_000_00, FirstDate: &first, LastDate: &last},
	}, fixedNow)

	in, err := a.OverallSummary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, in.Main, "20 операций")
	assert.Contains(t, in.Main, "100000.00 RUB")
	// 10 calendar days in range
	assert.Contains(t, in.Main, "10000.00 RUB")
	assert.NotEmpty(t, in.Advice)
}

func TestTopCategories(t *testing.T) {
	a := newTestAnalyzer(&fakeRepo{
		cats: []CategoryTotal{
			{Name: strPtr("Супермаркеты"), TotalMinor: 60_000_00},
			{Name: strPtr("Рестораны"), TotalMinor: 30_000_00},
			{Name: nil, TotalMinor: 10_000_00},
			{Name: strPtr("Транспорт"), TotalMinor: 5_000_00},
		},
	}, fixedNow)

	in, err := a.TopCategories(context.Background(), uuid.New(), 3)
	require.NoError(t, err)

	assert.Contains(t, in.Main, "«Супермаркеты»")
	assert.Contains(t, in.Main, "57.1%")
	assert.Contains(t, in.Main, "Без категории")
	assert.NotContains(t, in.Main, "Транспорт")
	// the top category exceeds half of all spend
	assert.Contains(t, in.Advice, "более половины")
}

func TestTopCategories_Empty(t *testing.T) {
	a := newTestAnalyzer(&fakeRepo{}, fixedNow)

	in, err := a.TopCategories(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.Contains(t, in.Main, "нет данных")
}

func TestMonthCompare_Growth(t *testing.T) {
	thisStart := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	a := newTestAnalyzer(&fakeRepo{
		totalFn: func(from, _ time.Time) int64 {
			if from.Equal(thisStart) {
				return 120_000_00
			}
			return 100_000_00
		},
	}, fixedNow)

	in, err := a.MonthCompare(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, in.Main, "выросли на 20.0%")
	assert.NotEmpty(t, in.Advice)
}

func TestMonthCompare_Decline(t *testing.T) {
	thisStart := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	a := newTestAnalyzer(&fakeRepo{
		totalFn: func(from, _ time.Time) int64 {
			if from.Equal(thisStart) {
				return 80_000_00
			}
			return 100_000_00
		},
	}, fixedNow)

	in, err := a.MonthCompare(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, in.Main, "снизились на 20.0%")
}

func TestMonthCompare_NoData(t *testing.T) {
	a := newTestAnalyzer(&fakeRepo{}, fixedNow)

	in, err := a.MonthCompare(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, in.Main, "нет данных для сравнения")
}

func TestWeeklySpike_BelowThresholdIsSilent(t *testing.T) {
	last7Start := fixedNow.AddDate(0, 0, -6).Truncate(24 * time.Hour)
	a := newTestAnalyzer(&fakeRepo{
		totalFn: func(from, _ time.Time) int64 {
			if from.Equal(last7Start) {
				return 110_00
			}
			return 100_00
		},
	}, fixedNow)

	in, err := a.WeeklySpike(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, in)
}

func TestWeeklySpike_AboveThreshold(t *testing.T) {
	last7Start := fixedNow.AddDate(0, 0, -6).Truncate(24 * time.Hour)
	a := newTestAnalyzer(&fakeRepo{
		totalFn: func(from, _ time.Time) int64 {
			if from.Equal(last7Start) {
				return 150_00
			}
			return 100_00
		},
	}, fixedNow)

	in, err := a.WeeklySpike(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.Contains(t, in.Main, "выше предыдущих на 50.0%")
}

func TestRecurringDescriptions(t *testing.T) {
	a := newTestAnalyzer(&fakeRepo{
		descs: []DescriptionCount{
			{Description: "Яндекс Плюс", Count: 6},
			{Description: "Spotify", Count: 3},
			{Description: "Магазин", Count: 2},
		},
	}, fixedNow)

	in, err := a.RecurringDescriptions(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.Contains(t, in.Main, "Яндекс Плюс")
	assert.Contains(t, in.Main, "Spotify")
	assert.NotContains(t, in.Main, "Магазин")
}

func TestBankBreakdown(t *testing.T) {
	a := newTestAnalyzer(&fakeRepo{
		banks: []BankTotal{
			{Bank: "T-Bank", TotalMinor: 80_000_00},
			{Bank: "Sberbank", TotalMinor: 20_000_00},
		},
	}, fixedNow)

	in, err := a.BankBreakdown(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Contains(t, in.Main, "«T-Bank»")
	assert.Contains(t, in.Main, "80.0%")
	assert.Contains(t, in.Advice, "T-Bank")
}

func TestAnswerQuestion_Routing(t *testing.T) {
	repo := &fakeRepo{
		stats: &OverallStats{Count: 1, TotalMinor: 100_00},
		cats:  []CategoryTotal{{Name: strPtr("Супермаркеты"), TotalMinor: 100_00}},
		banks: []BankTotal{{Bank: "T-Bank", TotalMinor: 100_00}},
		descs: []DescriptionCount{{Description: "Яндекс Плюс", Count: 5}},
	}
	a := newTestAnalyzer(repo, fixedNow)
	userID := uuid.New()

	t.Run("subscription question", func(t *testing.T) {
		insights, err := a.AnswerQuestion(context.Background(), userID, "какие у меня подписки?")
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Main, "Яндекс Плюс")
	})

	t.Run("bank question", func(t *testing.T) {
		insights, err := a.AnswerQuestion(context.Background(), userID, "сколько через сбер?")
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Contains(t, insights[0].Main, "Банк")
	})

	t.Run("unmatched question falls back", func(t *testing.T) {
		insights, err := a.AnswerQuestion(context.Background(), userID, "что-то непонятное")
		require.NoError(t, err)
		require.Len(t, insights, 2)
		assert.Contains(t, insights[0].Main, "операций")
		assert.Contains(t, insights[1].Main, "Категория")
	})

	t.Run("empty question yields full report", func(t *testing.T) {
		insights, err := a.AnswerQuestion(context.Background(), userID, "")
		require.NoError(t, err)
		// overview, categories, recurring and banks always have data here;
		// month and week blocks depend on the zero totals and stay quiet or
		// report missing data without failing
		assert.GreaterOrEqual(t, len(insights), 4)
	})

	t.Run("full report ends with the weekly block", func(t *testing.T) {
		last7Start := fixedNow.AddDate(0, 0, -6).Truncate(24 * time.Hour)
		spiking := &fakeRepo{
			stats: repo.stats,
			cats:  repo.cats,
			banks: repo.banks,
			descs: repo.descs,
			totalFn: func(from, _ time.Time) int64 {
				if from.Equal(last7Start) {
					return 200_00
				}
				return 100_00
			},
		}
		insights, err := newTestAnalyzer(spiking, fixedNow).AnswerQuestion(context.Background(), userID, "")
		require.NoError(t, err)
		require.NotEmpty(t, insights)
		assert.Contains(t, insights[len(insights)-1].Main, "За последние 7 дней")
	})

	t.Run("same block requested twice appears once", func(t *testing.T) {
		insights, err := a.AnswerQuestion(context.Background(), userID, "категории и еще раз категории")
		require.NoError(t, err)
		require.Len(t, insights, 1)
	})
}
