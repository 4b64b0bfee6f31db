package planner

import "regexp"

// Intent is the classified purpose of a question.
type Intent string

const (
	IntentRevenueVsBudget  Intent = "revenue_vs_budget"
	IntentGrossMarginTrend Intent = "gross_margin_trend"
	IntentOpexBreakdown    Intent = "opex_breakdown"
	IntentEBITDA           Intent = "ebitda"
	IntentCashRunway       Intent = "cash_runway"
	IntentUnknown          Intent = "unknown"
)

// Intents lists every classifiable intent in evaluation order.
func Intents() []Intent {
	out := make([]Intent, 0, len(defaultRules))
	for _, r := range defaultRules {
		out = append(out, r.Intent)
	}
	return out
}

// Rule maps one intent to its ordered alternatives. A question matches the
// rule when any pattern is found anywhere in its lower-cased text.
type Rule struct {
	Intent   Intent
	Patterns []*regexp.Regexp
}

func rule(intent Intent, patterns ...string) Rule {
	r := Rule{Intent: intent}
	for _, p := range patterns {
		r.Patterns = append(r.Patterns, regexp.MustCompile(p))
	}
	return r
}

// defaultRules is evaluated top to bottom; the first matching rule wins.
var defaultRules = []Rule{
	rule(IntentRevenueVsBudget,
		`revenue.*budget`,
		`budget.*revenue`,
		`revenue.*vs`,
		`actual.*budget`,
		`compared to budget`,
		`vs\.?\s+budget`,
		`how did we do`,
	),
	rule(IntentGrossMarginTrend,
		`gross margin.*trend`,
		`margin.*trend`,
		`gross margin.*months`,
		`gm trend`,
	),
	rule(IntentOpexBreakdown,
		`opex.*breakdown`,
		`operating expense`,
		`break.*down.*opex`,
		`opex.*categor`,
	),
	rule(IntentEBITDA,
		`ebitda`,
		`profitability`,
		`earnings`,
	),
	rule(IntentCashRunway,
		`cash runway`,
		`runway`,
		`how long.*cash`,
		`cash.*last`,
	),
}
