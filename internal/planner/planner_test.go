package planner

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifyIntent(t *testing.T) {
	p := New()

	tests := []struct {
		question string
		want     Intent
	}{
		{"What was June 2025 revenue vs budget?", IntentRevenueVsBudget},
		{"How did we do in April 2025 compared to budget?", IntentRevenueVsBudget},
		{"Show me revenue actual vs budget", IntentRevenueVsBudget},
		{"Budget against revenue for May 2025", IntentRevenueVsBudget},
		{"Show me gross margin trend", IntentGrossMarginTrend},
		{"What's the GM trend for last 3 months?", IntentGrossMarginTrend},
		{"gross margin over the last 6 months", IntentGrossMarginTrend},
		{"Break down Opex by category", IntentOpexBreakdown},
		{"Show me operating expenses breakdown", IntentOpexBreakdown},
		{"opex categories for June", IntentOpexBreakdown},
		{"Show me EBITDA for June 2025", IntentEBITDA},
		{"How is our profitability?", IntentEBITDA},
		{"Earnings last month", IntentEBITDA},
		{"What is our cash runway?", IntentCashRunway},
		{"How long will our cash last?", IntentCashRunway},
		{"runway please", IntentCashRunway},
		{"What's the weather like?", IntentUnknown},
		{"", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := p.ClassifyIntent(tt.question); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestClassifyIntent_RevenueAndBudgetAlwaysWin(t *testing.T) {
	p := New()

	// Revenue/budget is declared first, so it wins even when other intents'
	// trigger words are present.
	questions := []string{
		"revenue and budget",
		"BUDGET and REVENUE",
		"ebitda, revenue, budget",
		"cash runway vs revenue budget",
		"Was the gross margin trend on budget for revenue?",
	}

	for _, q := range questions {
		if got := p.ClassifyIntent(q); got != IntentRevenueVsBudget {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", q, got, IntentRevenueVsBudget)
		}
	}
}

func TestClassifyIntent_CustomRuleOrder(t *testing.T) {
	rules := []Rule{
		{Intent: IntentCashRunway, Patterns: []*regexp.Regexp{regexp.MustCompile(`cash`)}},
		{Intent: IntentEBITDA, Patterns: []*regexp.Regexp{regexp.MustCompile(`ebitda`)}},
	}
	p := NewWithRules(rules)

	if got := p.ClassifyIntent("ebitda and cash"); got != IntentCashRunway {
		t.Errorf("expected first declared rule to win, got %q", got)
	}
}

func TestExtractMonth(t *testing.T) {
	p := New()

	tests := []struct {
		question string
		want     string
		wantOK   bool
	}{
		{"What was June 2025 revenue?", "2025-06", true},
		{"Show me April 2025 data", "2025-04", true},
		{"December 2024 performance", "2024-12", true},
		{"ebitda for jun 2025", "2025-06", true},
		{"Sep   2023 numbers", "2023-09", true},
		{"compare March 2025 with January 2025", "2025-03", true},
		{"compare jan 2025 with dec 2024", "2025-01", true},
		{"revenue for 2025-06", "2025-06", true},
		{"June 2025 vs 2025-01", "2025-06", true},
		{"June 20255", "2025-06", true},
		{"no date here", "", false},
		{"How did we do in June?", "", false},
		{"May I see the runway?", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, ok := p.ExtractMonth(tt.question)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractMonth(%q) = (%q, %v), want (%q, %v)", tt.question, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractDateRange(t *testing.T) {
	p := New()

	tests := []struct {
		question string
		want     *DateRange
	}{
		{"Show me last 3 months", &DateRange{Kind: LastNMonths, Count: 3}},
		{"last 6 months", &DateRange{Kind: LastNMonths, Count: 6}},
		{"gross margin for the LAST 1 MONTH", &DateRange{Kind: LastNMonths, Count: 1}},
		{"last  12  months please", &DateRange{Kind: LastNMonths, Count: 12}},
		{"last month", nil},
		{"nothing relative", nil},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, ok := p.ExtractDateRange(tt.question)
			if ok != (tt.want != nil) {
				t.Fatalf("ExtractDateRange(%q) ok = %v, want %v", tt.question, ok, tt.want != nil)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractDateRange(%q) mismatch (-want +got):\n%s", tt.question, diff)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	p := New()

	got := p.ParseQuery("Show me gross margin trend for the last 3 months")
	want := ParsedQuery{
		Intent:           IntentGrossMarginTrend,
		DateRange:        &DateRange{Kind: LastNMonths, Count: 3},
		OriginalQuestion: "Show me gross margin trend for the last 3 months",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseQuery mismatch (-want +got):\n%s", diff)
	}
	if got.HasMonth() {
		t.Error("expected no month")
	}

	got = p.ParseQuery("What was June 2025 revenue vs budget?")
	if got.Intent != IntentRevenueVsBudget || got.Month != "2025-06" || got.DateRange != nil {
		t.Errorf("unexpected parse: %+v", got)
	}
}

func TestParseQuery_Idempotent(t *testing.T) {
	p := New()

	questions := []string{
		"What was June 2025 revenue vs budget?",
		"Show me gross margin trend for the last 3 months",
		"What is our cash runway right now?",
		"gibberish",
	}

	for _, q := range questions {
		first := p.ParseQuery(q)
		second := p.ParseQuery(q)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("ParseQuery(%q) not idempotent (-first +second):\n%s", q, diff)
		}
	}
}

func TestIntents(t *testing.T) {
	want := []Intent{
		IntentRevenueVsBudget,
		IntentGrossMarginTrend,
		IntentOpexBreakdown,
		IntentEBITDA,
		IntentCashRunway,
	}
	if diff := cmp.Diff(want, Intents()); diff != "" {
		t.Errorf("Intents() mismatch (-want +got):\n%s", diff)
	}
}
