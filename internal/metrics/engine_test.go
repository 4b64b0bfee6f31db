package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ledger(month, category, currency, amount string) domain.LedgerRecord {
	return domain.LedgerRecord{Month: month, AccountCategory: category, Currency: currency, Amount: d(amount)}
}

// testDataset covers three months of actuals. June mixes USD and EUR revenue
// so conversion is exercised.
func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Actuals: []domain.LedgerRecord{
			ledger("2025-04", "Revenue", "USD", "80000"),
			ledger("2025-04", "COGS", "USD", "30000"),
			ledger("2025-04", "Opex:Marketing", "USD", "20000"),
			ledger("2025-04", "Opex:R&D", "USD", "10000"),

			ledger("2025-05", "Revenue", "USD", "90000"),
			ledger("2025-05", "COGS", "USD", "40000"),
			ledger("2025-05", "Opex:Marketing", "USD", "30000"),
			ledger("2025-05", "Opex:Admin", "USD", "30000"),

			ledger("2025-06", "Revenue", "USD", "78000"),
			ledger("2025-06", "Revenue", "EUR", "20000"),
			ledger("2025-06", "COGS", "USD", "40000"),
			ledger("2025-06", "Opex:Marketing", "USD", "50000"),
			ledger("2025-06", "Opex:R&D", "USD", "25000"),
			ledger("2025-06", "Opex:Admin", "USD", "25000"),
		},
		Budget: []domain.LedgerRecord{
			ledger("2025-06", "Revenue", "USD", "90000"),
			ledger("2025-06", "COGS", "USD", "35000"),
		},
		Cash: []domain.CashRecord{
			{Month: "2025-06", CashUSD: d("450000")},
			{Month: "2025-05", CashUSD: d("500000")},
		},
		FX: []domain.FXRecord{
			{Month: "2025-05", Currency: "EUR", RateToUSD: d("1.08")},
			{Month: "2025-06", Currency: "EUR", RateToUSD: d("1.1")},
		},
	}
}

func newTestEngine(t *testing.T, ds *domain.Dataset, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(ds, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestNewEngine_ConvertsToUSD(t *testing.T) {
	e := newTestEngine(t, testDataset())

	var eur *NormalizedRecord
	for _, r := range e.NormalizedActuals() {
		if r.Currency == "EUR" {
			r := r
			eur = &r
		}
		if !r.HasRate {
			t.Errorf("row %+v has no rate", r.LedgerRecord)
		}
		if r.Currency == "USD" && !r.AmountUSD.Equal(r.Amount) {
			t.Errorf("USD row converted: %s -> %s", r.Amount, r.AmountUSD)
		}
	}
	if eur == nil {
		t.Fatal("EUR row missing from normalized actuals")
	}
	if !eur.AmountUSD.Equal(d("22000")) {
		t.Errorf("EUR amount_usd = %s, want 22000", eur.AmountUSD)
	}
	if len(e.MissingFX()) != 0 {
		t.Errorf("MissingFX() = %v, want none", e.MissingFX())
	}
}

func TestNewEngine_MissingFXSkip(t *testing.T) {
	ds := testDataset()
	ds.Actuals = append(ds.Actuals, ledger("2025-06", "Revenue", "GBP", "1000"))

	var buf bytes.Buffer
	e := newTestEngine(t, ds, WithLogger(zerolog.New(&buf)))

	want := []FXKey{{Month: "2025-06", Currency: "GBP"}}
	if diff := cmp.Diff(want, e.MissingFX()); diff != "" {
		t.Errorf("MissingFX() mismatch (-want +got):\n%s", diff)
	}
	if got := e.GetRevenueVsBudget("2025-06").Actual; !got.Equal(d("100000")) {
		t.Errorf("revenue with skipped GBP row = %s, want 100000", got)
	}
	if !strings.Contains(buf.String(), "without FX rate") {
		t.Errorf("expected data-quality warning in log, got %q", buf.String())
	}
}

func TestNewEngine_MissingFXStrict(t *testing.T) {
	ds := testDataset()
	ds.Budget = append(ds.Budget, ledger("2025-07", "Revenue", "EUR", "1000"))

	_, err := NewEngine(ds, WithMissingFXPolicy(MissingFXStrict))
	if !errors.Is(err, ErrMissingFXRate) {
		t.Fatalf("NewEngine() error = %v, want ErrMissingFXRate", err)
	}
	var fxErr *MissingFXError
	if !errors.As(err, &fxErr) {
		t.Fatalf("expected *MissingFXError, got %T", err)
	}
	if diff := cmp.Diff([]FXKey{{Month: "2025-07", Currency: "EUR"}}, fxErr.Pairs); diff != "" {
		t.Errorf("Pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEngine_USDNeedsNoRate(t *testing.T) {
	ds := &domain.Dataset{
		Actuals: []domain.LedgerRecord{
			ledger("2025-01", "Revenue", "USD", "100"),
			ledger("2025-01", "Revenue", "EUR", "100"),
		},
	}
	e := newTestEngine(t, ds)

	if e.ReportingCurrency() != "USD" {
		t.Errorf("ReportingCurrency() = %q, want USD", e.ReportingCurrency())
	}
	if got := e.GetRevenueVsBudget("2025-01").Actual; !got.Equal(d("100")) {
		t.Errorf("actual = %s, want 100 (EUR row has no rate)", got)
	}
	if diff := cmp.Diff([]FXKey{{Month: "2025-01", Currency: "EUR"}}, e.MissingFX()); diff != "" {
		t.Errorf("MissingFX mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEngine_NilDataset(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, ok := e.LatestMonth(); ok {
		t.Error("expected no latest month for empty dataset")
	}
}

func TestParseMissingFXPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MissingFXPolicy
		wantErr bool
	}{
		{"", MissingFXSkip, false},
		{"skip", MissingFXSkip, false},
		{" STRICT ", MissingFXStrict, false},
		{"ignore", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMissingFXPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMissingFXPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMissingFXPolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthsAndLatestMonth(t *testing.T) {
	e := newTestEngine(t, testDataset())

	if diff := cmp.Diff([]string{"2025-04", "2025-05", "2025-06"}, e.Months()); diff != "" {
		t.Errorf("Months() mismatch (-want +got):\n%s", diff)
	}
	latest, ok := e.LatestMonth()
	if !ok || latest != "2025-06" {
		t.Errorf("LatestMonth() = (%q, %v), want (2025-06, true)", latest, ok)
	}
}

func TestGetRevenueVsBudget(t *testing.T) {
	e := newTestEngine(t, testDataset())

	got := e.GetRevenueVsBudget("2025-06")
	if !got.Actual.Equal(d("100000")) || !got.Budget.Equal(d("90000")) || !got.Variance.Equal(d("10000")) {
		t.Errorf("unexpected result: %+v", got)
	}
	if pct := got.VariancePct.Round(1); !pct.Equal(d("11.1")) {
		t.Errorf("VariancePct = %s, want ~11.1", got.VariancePct)
	}
}

func TestGetRevenueVsBudget_ZeroBudget(t *testing.T) {
	e := newTestEngine(t, testDataset())

	got := e.GetRevenueVsBudget("2025-05")
	if !got.Budget.IsZero() {
		t.Fatalf("Budget = %s, want 0", got.Budget)
	}
	if !got.VariancePct.IsZero() {
		t.Errorf("VariancePct = %s, want 0 with zero budget", got.VariancePct)
	}
	if !got.Variance.Equal(d("90000")) {
		t.Errorf("Variance = %s, want 90000", got.Variance)
	}
}

func TestGetRevenueVsBudget_NegativeBudget(t *testing.T) {
	ds := &domain.Dataset{
		Actuals: []domain.LedgerRecord{ledger("2025-06", "Revenue", "USD", "100000")},
		Budget:  []domain.LedgerRecord{ledger("2025-06", "Revenue", "USD", "-50000")},
	}
	e := newTestEngine(t, ds)

	got := e.GetRevenueVsBudget("2025-06")
	if !got.Variance.Equal(d("150000")) {
		t.Errorf("Variance = %s, want 150000", got.Variance)
	}
	if !got.VariancePct.IsZero() {
		t.Errorf("VariancePct = %s, want 0 with a negative budget", got.VariancePct)
	}
}

func TestGetRevenueVsBudget_UnknownMonth(t *testing.T) {
	e := newTestEngine(t, testDataset())

	got := e.GetRevenueVsBudget("2030-01")
	want := RevenueVsBudget{Month: "2030-01"}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("unknown month mismatch (-want +got):\n%s", diff)
	}
}

func TestGetGrossMarginTrend(t *testing.T) {
	e := newTestEngine(t, testDataset())

	points := e.GetGrossMarginTrend("2025-04", "2025-06")
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}

	wantPct := []string{"62.5", "55.6", "60"}
	for i, p := range points {
		if p.GrossMarginPct == nil {
			t.Fatalf("point %s has nil margin", p.Month)
		}
		if got := p.GrossMarginPct.Round(1); !got.Equal(d(wantPct[i])) {
			t.Errorf("%s margin = %s, want %s", p.Month, got, wantPct[i])
		}
		if i > 0 && points[i-1].Month >= p.Month {
			t.Errorf("points not ascending: %s then %s", points[i-1].Month, p.Month)
		}
	}
}

func TestGetGrossMarginTrend_Range(t *testing.T) {
	e := newTestEngine(t, testDataset())

	points := e.GetGrossMarginTrend("2025-05", "2025-05")
	if len(points) != 1 || points[0].Month != "2025-05" {
		t.Errorf("unexpected points: %+v", points)
	}
	if got := e.GetGrossMarginTrend("2026-01", "2026-12"); len(got) != 0 {
		t.Errorf("expected empty trend, got %+v", got)
	}
}

func TestGetGrossMarginTrend_ZeroRevenue(t *testing.T) {
	ds := &domain.Dataset{
		Actuals: []domain.LedgerRecord{ledger("2025-01", "COGS", "USD", "500")},
	}
	e := newTestEngine(t, ds)

	points := e.GetGrossMarginTrend("2025-01", "2025-01")
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].GrossMarginPct != nil {
		t.Errorf("GrossMarginPct = %s, want nil", points[0].GrossMarginPct)
	}
}

func TestGetOpexBreakdown(t *testing.T) {
	e := newTestEngine(t, testDataset())

	got := e.GetOpexBreakdown("2025-06")
	want := []OpexCategory{
		{Category: "Marketing", Amount: d("50000"), PctOfTotal: d("50")},
		{Category: "Admin", Amount: d("25000"), PctOfTotal: d("25")},
		{Category: "R&D", Amount: d("25000"), PctOfTotal: d("25")},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("GetOpexBreakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestGetOpexBreakdown_PercentagesSumTo100(t *testing.T) {
	ds := &domain.Dataset{
		Actuals: []domain.LedgerRecord{
			ledger("2025-01", "Opex:A", "USD", "1"),
			ledger("2025-01", "Opex:B", "USD", "1"),
			ledger("2025-01", "Opex:C", "USD", "1"),
		},
	}
	e := newTestEngine(t, ds)

	sum := decimal.Zero
	for _, c := range e.GetOpexBreakdown("2025-01") {
		sum = sum.Add(c.PctOfTotal)
	}
	if diff := sum.Sub(hundred).Abs(); diff.GreaterThan(d("0.0001")) {
		t.Errorf("pct_of_total sums to %s, want 100", sum)
	}
}

func TestGetOpexBreakdown_Empty(t *testing.T) {
	e := newTestEngine(t, testDataset())
	if got := e.GetOpexBreakdown("2030-01"); len(got) != 0 {
		t.Errorf("expected no categories, got %+v", got)
	}
}

func TestGetEBITDA(t *testing.T) {
	e := newTestEngine(t, testDataset())

	tests := []struct {
		month      string
		wantEBITDA string
		wantMargin string
	}{
		{"2025-04", "20000", "25"},
		{"2025-05", "-10000", "-11.1"},
		{"2025-06", "-40000", "-40"},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			got := e.GetEBITDA(tt.month)
			if !got.EBITDA.Equal(d(tt.wantEBITDA)) {
				t.Errorf("EBITDA = %s, want %s", got.EBITDA, tt.wantEBITDA)
			}
			if identity := got.Revenue.Sub(got.COGS).Sub(got.Opex); !identity.Equal(got.EBITDA) {
				t.Errorf("EBITDA %s != revenue - cogs - opex %s", got.EBITDA, identity)
			}
			if m := got.EBITDAMarginPct.Round(1); !m.Equal(d(tt.wantMargin)) {
				t.Errorf("EBITDAMarginPct = %s, want %s", m, tt.wantMargin)
			}
		})
	}
}

func TestGetEBITDA_NoRevenue(t *testing.T) {
	ds := &domain.Dataset{
		Actuals: []domain.LedgerRecord{ledger("2025-01", "Opex:Admin", "USD", "100")},
	}
	e := newTestEngine(t, ds)

	got := e.GetEBITDA("2025-01")
	if !got.EBITDA.Equal(d("-100")) || !got.EBITDAMarginPct.IsZero() {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestGetCashRunway(t *testing.T) {
	e := newTestEngine(t, testDataset())

	got, err := e.GetCashRunway()
	if err != nil {
		t.Fatalf("GetCashRunway() error = %v", err)
	}

	want := CashRunway{
		CurrentCash:    d("450000"),
		LatestMonth:    "2025-06",
		AvgMonthlyBurn: d("10000"),
		RunwayMonths:   RunwayOf(d("45")),
		Last3MonthsBurn: []MonthlyBurn{
			{Month: "2025-06", Burn: d("40000")},
			{Month: "2025-05", Burn: d("10000")},
			{Month: "2025-04", Burn: d("-20000")},
		},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("GetCashRunway mismatch (-want +got):\n%s", diff)
	}
}

func TestGetCashRunway_Profitable(t *testing.T) {
	ds := &domain.Dataset{
		Actuals: []domain.LedgerRecord{
			ledger("2025-01", "Revenue", "USD", "1000"),
			ledger("2025-02", "Revenue", "USD", "1000"),
		},
		Cash: []domain.CashRecord{{Month: "2025-02", CashUSD: d("5000")}},
	}
	e := newTestEngine(t, ds)

	got, err := e.GetCashRunway()
	if err != nil {
		t.Fatalf("GetCashRunway() error = %v", err)
	}
	if !got.RunwayMonths.Infinite {
		t.Errorf("RunwayMonths = %v, want infinite", got.RunwayMonths)
	}
	if got.RunwayMonths.String() != "∞" {
		t.Errorf("String() = %q, want ∞", got.RunwayMonths.String())
	}
	if len(got.Last3MonthsBurn) != 2 {
		t.Errorf("expected burn for the 2 available months, got %d", len(got.Last3MonthsBurn))
	}
}

func TestGetCashRunway_Errors(t *testing.T) {
	tests := []struct {
		name string
		ds   *domain.Dataset
		want error
	}{
		{
			name: "no cash",
			ds:   &domain.Dataset{Actuals: []domain.LedgerRecord{ledger("2025-01", "Revenue", "USD", "1")}},
			want: ErrNoCash,
		},
		{
			name: "no actuals",
			ds:   &domain.Dataset{Cash: []domain.CashRecord{{Month: "2025-01", CashUSD: d("1")}}},
			want: ErrNoActuals,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.ds)
			if _, err := e.GetCashRunway(); !errors.Is(err, tt.want) {
				t.Errorf("GetCashRunway() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunwayJSON(t *testing.T) {
	tests := []struct {
		runway Runway
		want   string
	}{
		{InfiniteRunway, `"infinite"`},
		{RunwayOf(d("45")), `45`},
		{RunwayOf(d("12.5")), `12.5`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.runway)
		if err != nil {
			t.Fatalf("Marshal(%v) error = %v", tt.runway, err)
		}
		if string(b) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.runway, b, tt.want)
		}

		var back Runway
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", b, err)
		}
		if back.Infinite != tt.runway.Infinite || !back.Months.Equal(tt.runway.Months) {
			t.Errorf("round trip of %s = %+v", b, back)
		}
	}
}
