package copilot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/metrics"
	"github.com/dvloznov/cfo-copilot/internal/planner"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func ledger(month, category, amount string) domain.LedgerRecord {
	return domain.LedgerRecord{Month: month, AccountCategory: category, Currency: "USD", Amount: decimal.RequireFromString(amount)}
}

func testCopilot(t *testing.T, opts ...Option) *Copilot {
	t.Helper()
	ds := &domain.Dataset{
		Actuals: []domain.LedgerRecord{
			ledger("2025-03", "Revenue", "50000"),
			ledger("2025-03", "COGS", "25000"),
			ledger("2025-04", "Revenue", "80000"),
			ledger("2025-04", "COGS", "30000"),
			ledger("2025-04", "Opex:Marketing", "20000"),
			ledger("2025-05", "Revenue", "90000"),
			ledger("2025-05", "COGS", "40000"),
			ledger("2025-05", "Opex:Admin", "60000"),
			ledger("2025-06", "Revenue", "100000"),
			ledger("2025-06", "COGS", "40000"),
			ledger("2025-06", "Opex:Marketing", "50000"),
			ledger("2025-06", "Opex:Admin", "50000"),
		},
		Budget: []domain.LedgerRecord{
			ledger("2025-06", "Revenue", "90000"),
		},
		Cash: []domain.CashRecord{
			{Month: "2025-06", CashUSD: decimal.NewFromInt(450000)},
		},
	}
	engine, err := metrics.NewEngine(ds)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return New(planner.New(), engine, opts...)
}

func ask(t *testing.T, c *Copilot, q string) *Answer {
	t.Helper()
	a, err := c.Ask(context.Background(), q)
	if err != nil {
		t.Fatalf("Ask(%q) error = %v", q, err)
	}
	return a
}

func TestAsk_RevenueVsBudget(t *testing.T) {
	a := ask(t, testCopilot(t), "What was June 2025 revenue vs budget?")

	if a.Intent != planner.IntentRevenueVsBudget || a.Warning != "" {
		t.Fatalf("unexpected answer: %+v", a)
	}
	r, ok := a.Data.(metrics.RevenueVsBudget)
	if !ok {
		t.Fatalf("Data is %T, want metrics.RevenueVsBudget", a.Data)
	}
	if !r.Variance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("variance = %s, want 10000", r.Variance)
	}
	want := "Revenue for 2025-06 was $100,000 against a budget of $90,000, a variance of $10,000 (11.1%)."
	if a.Reply != want {
		t.Errorf("Reply = %q, want %q", a.Reply, want)
	}
	if a.Chart == nil || a.Chart.ChartType != ChartBar || len(a.Chart.Series) != 2 {
		t.Errorf("unexpected chart: %+v", a.Chart)
	}
	if a.Highlights[2].Delta != "11.1%" {
		t.Errorf("variance delta = %q", a.Highlights[2].Delta)
	}
}

func TestAsk_RevenueVsBudgetNeedsMonth(t *testing.T) {
	a := ask(t, testCopilot(t, WithDefaultMonth("2025-06")), "How did we do against budget on revenue?")

	if a.Warning != WarnMonthRequired {
		t.Errorf("Warning = %q, want %q", a.Warning, WarnMonthRequired)
	}
	if a.Data != nil || a.Chart != nil {
		t.Errorf("no metric should be computed without a month: %+v", a)
	}
}

func TestAsk_GrossMarginTrend(t *testing.T) {
	tests := []struct {
		question   string
		opts       []Option
		wantMonths []string
	}{
		{"Show me gross margin trend", nil, []string{"2025-04", "2025-05", "2025-06"}},
		{"gross margin trend for the last 2 months", nil, []string{"2025-05", "2025-06"}},
		{"gross margin trend for the last 12 months", nil, []string{"2025-03", "2025-04", "2025-05", "2025-06"}},
		{"Show me gross margin trend", []Option{WithTrendWindow(1)}, []string{"2025-06"}},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			a := ask(t, testCopilot(t, tt.opts...), tt.question)

			points, ok := a.Data.([]metrics.GrossMarginPoint)
			if !ok {
				t.Fatalf("Data is %T", a.Data)
			}
			var months []string
			for _, p := range points {
				months = append(months, p.Month)
			}
			if diff := cmp.Diff(tt.wantMonths, months); diff != "" {
				t.Errorf("months mismatch (-want +got):\n%s", diff)
			}
			if a.Table == nil || len(a.Table.Rows) != len(tt.wantMonths) {
				t.Errorf("table rows = %v", a.Table)
			}
			if a.Chart == nil || a.Chart.ChartType != ChartLine {
				t.Errorf("unexpected chart: %+v", a.Chart)
			}
		})
	}
}

func TestAsk_GrossMarginAverage(t *testing.T) {
	a := ask(t, testCopilot(t), "gross margin trend for the last 2 months")

	// (55.55.. + 60) / 2
	if a.Highlights[0].Value != "57.8%" {
		t.Errorf("average = %q, want 57.8%%", a.Highlights[0].Value)
	}
}

func TestAsk_OpexDefaultsToLatestMonth(t *testing.T) {
	a := ask(t, testCopilot(t), "Break down Opex by category")

	categories, ok := a.Data.([]metrics.OpexCategory)
	if !ok {
		t.Fatalf("Data is %T", a.Data)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want 2 for 2025-06", len(categories))
	}
	if a.Table.Summary.Values["amount"] != "$100,000" || a.Table.Summary.Values["pct_of_total"] != "100.0%" {
		t.Errorf("summary = %+v", a.Table.Summary)
	}
	if a.Chart.ChartType != ChartPie || len(a.Chart.Colors) != 2 {
		t.Errorf("unexpected chart: %+v", a.Chart)
	}
}

func TestAsk_OpexUsesDefaultMonth(t *testing.T) {
	a := ask(t, testCopilot(t, WithDefaultMonth("2025-05")), "Show me operating expenses breakdown")

	categories := a.Data.([]metrics.OpexCategory)
	if len(categories) != 1 || categories[0].Category != "Admin" {
		t.Errorf("categories = %+v, want only Admin from 2025-05", categories)
	}
}

func TestAsk_EBITDA(t *testing.T) {
	a := ask(t, testCopilot(t), "Show me EBITDA for April 2025")

	e, ok := a.Data.(metrics.EBITDA)
	if !ok {
		t.Fatalf("Data is %T", a.Data)
	}
	if e.Month != "2025-04" || !e.EBITDA.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("EBITDA = %+v", e)
	}

	measures := []string{}
	for _, p := range a.Chart.Series[0].Data {
		measures = append(measures, p.Measure)
	}
	want := []string{MeasureAbsolute, MeasureRelative, MeasureRelative, MeasureTotal}
	if diff := cmp.Diff(want, measures); diff != "" {
		t.Errorf("waterfall measures mismatch (-want +got):\n%s", diff)
	}
	if got := a.Chart.Series[0].Data[1].Value; got != -30000 {
		t.Errorf("COGS step = %v, want -30000", got)
	}
}

func TestAsk_CashRunway(t *testing.T) {
	a := ask(t, testCopilot(t), "What is our cash runway?")

	r, ok := a.Data.(metrics.CashRunway)
	if !ok {
		t.Fatalf("Data is %T", a.Data)
	}
	// Burns: 2025-06 40000, 2025-05 10000, 2025-04 -30000 -> avg 6666.67
	if r.RunwayMonths.Infinite {
		t.Fatal("expected finite runway")
	}
	if !strings.HasPrefix(a.Reply, "Cash runway is 67.5 months") {
		t.Errorf("Reply = %q", a.Reply)
	}
}

type fakeEngine struct {
	MetricsEngine
	runway    metrics.CashRunway
	runwayErr error
}

func (f *fakeEngine) GetCashRunway() (metrics.CashRunway, error) {
	return f.runway, f.runwayErr
}

func (f *fakeEngine) Months() []string            { return nil }
func (f *fakeEngine) LatestMonth() (string, bool) { return "", false }

func TestAsk_CashRunwayInfinite(t *testing.T) {
	engine := &fakeEngine{runway: metrics.CashRunway{
		CurrentCash:  decimal.NewFromInt(1000),
		LatestMonth:  "2025-06",
		RunwayMonths: metrics.InfiniteRunway,
	}}
	a := ask(t, New(planner.New(), engine), "How long will our cash last?")

	if !strings.Contains(a.Reply, "∞ (profitable)") {
		t.Errorf("Reply = %q, want infinity sentinel", a.Reply)
	}
	if a.Highlights[2].Delta != "Positive cash flow" {
		t.Errorf("delta = %q", a.Highlights[2].Delta)
	}
}

func TestAsk_CashRunwayError(t *testing.T) {
	engine := &fakeEngine{runwayErr: metrics.ErrNoCash}
	_, err := New(planner.New(), engine).Ask(context.Background(), "cash runway")
	if !errors.Is(err, metrics.ErrNoCash) {
		t.Errorf("Ask() error = %v, want ErrNoCash", err)
	}
}

func TestAsk_NoActuals(t *testing.T) {
	c := New(planner.New(), &fakeEngine{})
	for _, q := range []string{"gross margin trend", "opex breakdown", "What's our EBITDA?"} {
		a := ask(t, c, q)
		if a.Warning != WarnNoActuals {
			t.Errorf("Ask(%q) warning = %q, want %q", q, a.Warning, WarnNoActuals)
		}
	}
}

func TestAsk_Unknown(t *testing.T) {
	a := ask(t, testCopilot(t), "What's the weather like?")
	if a.Intent != planner.IntentUnknown || !strings.Contains(a.Reply, "Cash runway") {
		t.Errorf("unexpected answer: %+v", a)
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	if _, err := testCopilot(t).Ask(context.Background(), "   "); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("Ask() error = %v, want ErrEmptyQuestion", err)
	}
}

func TestAsk_Observer(t *testing.T) {
	var seen []planner.Intent
	c := testCopilot(t, WithObserver(func(i planner.Intent) { seen = append(seen, i) }))

	ask(t, c, "cash runway")
	ask(t, c, "hello")

	want := []planner.Intent{planner.IntentCashRunway, planner.IntentUnknown}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("observed intents mismatch (-want +got):\n%s", diff)
	}
}

func TestTrendWindow(t *testing.T) {
	months := []string{"2025-01", "2025-02", "2025-03"}
	tests := []struct {
		n          int
		start, end string
	}{
		{1, "2025-03", "2025-03"},
		{3, "2025-01", "2025-03"},
		{10, "2025-01", "2025-03"},
	}
	for _, tt := range tests {
		start, end, ok := trendWindow(months, tt.n)
		if !ok || start != tt.start || end != tt.end {
			t.Errorf("trendWindow(%d) = (%s, %s, %v), want (%s, %s)", tt.n, start, end, ok, tt.start, tt.end)
		}
	}
	if _, _, ok := trendWindow(nil, 3); ok {
		t.Error("expected no window without months")
	}
}
