package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expenso-app/expenso/internal/domain/statement/normalizer"
	"github.com/expenso-app/expenso/pkg/money"
)

// Insight is one generated report block: a statement about the data plus an
// optional short piece of advice.
type Insight struct {
	Main   string
	Advice string
}

// Analyzer generates text insights over a user's expense history. Reports are
// rendered in Russian, matching the locale of the supported bank formats.
type Analyzer struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalyzer creates an insights analyzer.
func NewAnalyzer(repo Repository, logger *slog.Logger) *Analyzer {
	return &Analyzer{repo: repo, logger: logger, now: time.Now}
}

// WithClock overrides the time source, for tests of date-window blocks.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

const (
	recurringMinOccurrences = 3
	weeklySpikeThresholdPct = 15.0
)

// question routing keywords per block
var (
	categoryKeys = []string{"category", "categories", "категор"}
	monthKeys    = []string{"month", "месяц", "динамик", "рост", "сравн"}
	weekKeys     = []string{"week", "недел", "7 дней", "последн", "recent"}
	subKeys      = []string{"subscription", "подпис", "регуляр", "every month", "каждый месяц"}
	bankKeys     = []string{"bank", "банк", "сбер", "тинькофф", "tinkoff", "t-bank", "tb"}
)

// AnswerQuestion routes a free-text question to insight blocks by substring
// matching. An empty question produces the full report; a question matching
// nothing falls back to the overview and top categories.
func (a *Analyzer) AnswerQuestion(ctx context.Context, userID uuid.UUID, question string) ([]Insight, error) {
	q := strings.ToLower(strings.TrimSpace(question))

	var insights []Insight
	added := make(map[string]bool)

	addBlock := func(key string, fn func() (*Insight, error)) error {
		if added[key] {
			return nil
		}
		added[key] = true
		in, err := fn()
		if err != nil {
			return err
		}
		if in != nil {
			insights = append(insights, *in)
		}
		return nil
	}

	blocks := []struct {
		key  string
		keys []string
		fn   func() (*Insight, error)
	}{
		{"top_cat", categoryKeys, func() (*Insight, error) { return a.TopCategories(ctx, userID, 3) }},
		{"month", monthKeys, func() (*Insight, error) { return a.MonthCompare(ctx, userID) }},
		{"recurring", subKeys, func() (*Insight, error) { return a.RecurringDescriptions(ctx, userID, recurringMinOccurrences) }},
		{"bank", bankKeys, func() (*Insight, error) { return a.BankBreakdown(ctx, userID) }},
		// the weekly spike closes the full report
		{"week", weekKeys, func() (*Insight, error) { return a.WeeklySpike(ctx, userID) }},
	}

	if q == "" {
		if err := addBlock("overall", func() (*Insight, error) { return a.OverallSummary(ctx, userID) }); err != nil {
			return nil, err
		}
		for _, b := range blocks {
			if err := addBlock(b.key, b.fn); err != nil {
				return nil, err
			}
		}
		return insights, nil
	}

	for _, b := range blocks {
		if containsAnyKeyword(q, b.keys) {
			if err := addBlock(b.key, b.fn); err != nil {
				return nil, err
			}
		}
	}

	if len(insights) == 0 {
		if err := addBlock("overall", func() (*Insight, error) { return a.OverallSummary(ctx, userID) }); err != nil {
			return nil, err
		}
		if err := addBlock("top_cat", func() (*Insight, error) { return a.TopCategories(ctx, userID, 3) }); err != nil {
			return nil, err
		}
	}
	return insights, nil
}

// OverallSummary reports operation count, total spend and daily average over
// the whole recorded date range.
func (a *Analyzer) OverallSummary(ctx context.Context, userID uuid.UUID) (*Insight, error) {
	stats, err := a.repo.OverallStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	if stats.Count == 0 {
		return &Insight{
			Main: "У вас пока нет расходов. Импортируйте выписку или добавьте первую операцию вручную.",
		}, nil
	}

	days := 1
	if stats.FirstDate != nil && stats.LastDate != nil {
		days = int(stats.LastDate.Sub(*stats.FirstDate).Hours()/24) + 1
	}
	if days < 1 {
		days = 1
	}
	avgMinor := stats.TotalMinor / int64(days)

	return &Insight{
		Main: fmt.Sprintf(
			"Всего зафиксировано %d операций на сумму %s. В среднем вы тратите около %s в день.",
			stats.Count, fmtRUB(stats.TotalMinor), fmtRUB(avgMinor),
		),
		Advice: "Подумайте, какой дневной бюджет для вас комфортен, и сравнивайте его с текущим средним расходом.",
	}, nil
}

// TopCategories reports the top n categories with their shares of total spend.
func (a *Analyzer) TopCategories(ctx context.Context, userID uuid.UUID, n int) (*Insight, error) {
	totals, err := a.repo.CategoryTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return &Insight{Main: "По категориям пока нет данных."}, nil
	}

	var grandTotal int64
	for _, t := range totals {
		grandTotal += t.TotalMinor
	}

	var parts []string
	var topName string
	var topShare float64

	for i, t := range totals {
		if i >= n {
			break
		}
		name := "Без категории"
		if t.Name != nil {
			name = *t.Name
		}
		var share float64
		if grandTotal > 0 {
			share = float64(t.TotalMinor) / float64(grandTotal) * 100
		}
		parts = append(parts, fmt.Sprintf(
			"Категория «%s» — %s (%.1f%% от общей суммы расходов).",
			name, fmtRUB(t.TotalMinor), share,
		))
		if i == 0 {
			topName = name
			topShare = share
		}
	}

	advice := ""
	switch {
	case topShare >= 50:
		advice = fmt.Sprintf(
			"Категория «%s» занимает более половины всех расходов. Попробуйте найти 1–2 крупные статьи внутри неё и уменьшить их хотя бы на 10–15%%.",
			topName,
		)
	case topShare >= 30:
		advice = fmt.Sprintf(
			"Категория «%s» заметно выделяется по сумме. Имеет смысл задать для неё месячный лимит и отслеживать его.",
			topName,
		)
	}

	return &Insight{Main: strings.Join(parts, " "), Advice: advice}, nil
}

// MonthCompare reports the current month against the previous one.
func (a *Analyzer) MonthCompare(ctx context.Context, userID uuid.UUID) (*Insight, error) {
	today := a.today()
	startThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	startPrev := startThis.AddDate(0, -1, 0)

	thisTotal, err := a.repo.TotalBetween(ctx, userID, startThis, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	prevTotal, err := a.repo.TotalBetween(ctx, userID, startPrev, startThis)
	if err != nil {
		return nil, err
	}

	if thisTotal == 0 && prevTotal == 0 {
		return &Insight{Main: "За текущий и предыдущий месяц ещё нет данных для сравнения."}, nil
	}
	if prevTotal == 0 {
		return &Insight{
			Main: fmt.Sprintf(
				"В этом месяце вы потратили %s. Данных за предыдущий месяц нет, поэтому сравнение невозможно.",
				fmtRUB(thisTotal),
			),
			Advice: "Сохраните данные за несколько месяцев подряд — так будет проще отследить тренды.",
		}, nil
	}

	diff := thisTotal - prevTotal
	pct := float64(diff) / float64(prevTotal) * 100

	switch {
	case diff > 0:
		return &Insight{
			Main: fmt.Sprintf(
				"Расходы выросли на %.1f%% по сравнению с прошлым месяцем (%s → %s).",
				pct, fmtRUB(prevTotal), fmtRUB(thisTotal),
			),
			Advice: "Посмотрите, какие категории дали основной рост, и попробуйте сократить самые неважные траты в них.",
		}, nil
	case diff < 0:
		return &Insight{
			Main: fmt.Sprintf(
				"Расходы снизились на %.1f%% по сравнению с прошлым месяцем (%s → %s).",
				-pct, fmtRUB(prevTotal), fmtRUB(thisTotal),
			),
			Advice: "Получилось уменьшить траты — можно зафиксировать это как новую норму и не возвращаться к старым уровням.",
		}, nil
	default:
		return &Insight{
			Main:   "Расходы почти не изменились по сравнению с прошлым месяцем.",
			Advice: "Если хотите сэкономить, подумайте, какой целевой уровень расходов вы хотите увидеть в следующем месяце.",
		}, nil
	}
}

// RecurringDescriptions reports repeated descriptions (subscription and
// regular-payment candidates) seen at least minOccurrences times.
func (a *Analyzer) RecurringDescriptions(ctx context.Context, userID uuid.UUID, minOccurrences int) (*Insight, error) {
	counts, err := a.repo.DescriptionCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	var parts []string
	for _, c := range counts {
		if c.Count < minOccurrences {
			continue
		}
		parts = append(parts, fmt.Sprintf(
			"Повторяющийся плательщик «%s» встречается %d раз(а) в истории.",
			c.Description, c.Count,
		))
		if len(parts) == 3 {
			break
		}
	}

	if len(parts) == 0 {
		return &Insight{Main: "Явных регулярных платежей (подписок) по описаниям пока не видно."}, nil
	}
	return &Insight{
		Main:   strings.Join(parts, " "),
		Advice: "Проверьте, действительно ли каждая из этих регулярных оплат вам нужна. Возможно, часть подписок можно отменить или сменить тариф.",
	}, nil
}

// BankBreakdown reports per-bank spend shares.
func (a *Analyzer) BankBreakdown(ctx context.Context, userID uuid.UUID) (*Insight, error) {
	totals, err := a.repo.BankTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return &Insight{Main: "Разбивка по банкам пока недоступна."}, nil
	}

	var grandTotal int64
	for _, t := range totals {
		grandTotal += t.TotalMinor
	}

	var parts []string
	var topBank string
	var topShare float64

	for i, t := range totals {
		bank := t.Bank
		if bank == "" {
			bank = "Неизвестный банк"
		}
		var share float64
		if grandTotal > 0 {
			share = float64(t.TotalMinor) / float64(grandTotal) * 100
		}
		parts = append(parts, fmt.Sprintf(
			"Банк «%s» — %s (%.1f%% от всех расходов).",
			bank, fmtRUB(t.TotalMinor), share,
		))
		if i == 0 {
			topBank = bank
			topShare = share
		}
	}

	advice := ""
	if topShare >= 70 {
		advice = fmt.Sprintf(
			"Большая часть расходов идёт через банк «%s». Проверьте, используете ли вы максимально выгодные тарифы и кэшбэк-программы именно там.",
			topBank,
		)
	}

	return &Insight{Main: strings.Join(parts, " "), Advice: advice}, nil
}

// WeeklySpike compares the last 7 days with the 7 before them. Small changes
// (under the threshold) return nil rather than noise.
func (a *Analyzer) WeeklySpike(ctx context.Context, userID uuid.UUID) (*Insight, error) {
	today := a.today()
	last7Start := today.AddDate(0, 0, -6)
	prev7Start := today.AddDate(0, 0, -13)

	last7, err := a.repo.TotalBetween(ctx, userID, last7Start, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	prev7, err := a.repo.TotalBetween(ctx, userID, prev7Start, last7Start)
	if err != nil {
		return nil, err
	}

	if last7 == 0 && prev7 == 0 {
		return nil, nil
	}
	if prev7 == 0 {
		return &Insight{
			Main: fmt.Sprintf(
				"За последние 7 дней вы потратили %s. До этого недели с данными не было.",
				fmtRUB(last7),
			),
			Advice: "Если такие траты для вас разовые — зафиксируйте это. Если нет, стоит понять, не станет ли это новой привычкой.",
		}, nil
	}

	diff := last7 - prev7
	pct := float64(diff) / float64(prev7) * 100
	if pct > -weeklySpikeThresholdPct && pct < weeklySpikeThresholdPct {
		return nil, nil
	}

	if diff > 0 {
		return &Insight{
			Main: fmt.Sprintf(
				"За последние 7 дней расходы выше предыдущих на %.1f%% (%s → %s).",
				pct, fmtRUB(prev7), fmtRUB(last7),
			),
			Advice: "Подумайте, какие именно покупки появились на этой неделе и можно ли часть из них не повторять в будущем.",
		}, nil
	}
	return &Insight{
		Main: fmt.Sprintf(
			"За последние 7 дней расходы ниже предыдущих на %.1f%% (%s → %s).",
			-pct, fmtRUB(prev7), fmtRUB(last7),
		),
		Advice: "Это хороший знак — вы тратите меньше. Важно понять, что именно помогло сократить расходы, и сохранить эту стратегию.",
	}, nil
}

func (a *Analyzer) today() time.Time {
	return normalizer.DateOnly(a.now().UTC())
}

func fmtRUB(minor int64) string {
	return money.New(minor, money.RUB).Format()
}

func containsAnyKeyword(q string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}
