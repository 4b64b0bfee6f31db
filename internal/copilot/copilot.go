// Package copilot answers finance questions: it parses the question, picks
// the metric for the intent, fills in default parameters and shapes the
// result into text, highlight tiles, a chart and a table.
package copilot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/metrics"
	"github.com/dvloznov/cfo-copilot/internal/planner"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is empty")

// Warnings returned in Answer.Warning.
const (
	WarnMonthRequired = "Please specify a month (e.g., 'June 2025')"
	WarnNoActuals     = "No actuals are loaded yet"
)

const helpText = "I don't understand that question. Try asking about:\n" +
	"- Revenue vs budget\n" +
	"- Gross margin trends\n" +
	"- Opex breakdown\n" +
	"- EBITDA\n" +
	"- Cash runway"

// QueryParser turns a question into a structured query.
type QueryParser interface {
	ParseQuery(question string) planner.ParsedQuery
}

// MetricsEngine is the subset of *metrics.Engine the copilot calls.
type MetricsEngine interface {
	GetRevenueVsBudget(month string) metrics.RevenueVsBudget
	GetGrossMarginTrend(start, end string) []metrics.GrossMarginPoint
	GetOpexBreakdown(month string) []metrics.OpexCategory
	GetEBITDA(month string) metrics.EBITDA
	GetCashRunway() (metrics.CashRunway, error)
	Months() []string
	LatestMonth() (string, bool)
}

// Highlight is one headline figure, e.g. "Actual Revenue: $100,000".
type Highlight struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta,omitempty"`
}

// Answer is the structured response to one question.
type Answer struct {
	Question   string              `json:"question"`
	Parsed     planner.ParsedQuery `json:"parsed"`
	Intent     planner.Intent      `json:"intent"`
	Reply      string              `json:"reply"`
	Warning    string              `json:"warning,omitempty"`
	Highlights []Highlight         `json:"highlights,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Chart      *ChartConfig        `json:"chart,omitempty"`
	Table      *TableData          `json:"table,omitempty"`
}

type options struct {
	defaultMonth string
	trendWindow  int
	log          zerolog.Logger
	observe      func(planner.Intent)
}

// Option configures a Copilot.
type Option func(*options)

// WithDefaultMonth sets the month used by opex and EBITDA questions that name
// none. Empty means the latest month of actuals.
func WithDefaultMonth(month string) Option {
	return func(o *options) { o.defaultMonth = month }
}

// WithTrendWindow sets how many months a gross margin trend covers when the
// question gives no "last N months".
func WithTrendWindow(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.trendWindow = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver registers a callback invoked with every classified intent.
func WithObserver(fn func(planner.Intent)) Option {
	return func(o *options) { o.observe = fn }
}

// Copilot routes questions to metrics. It is safe for concurrent use when the
// parser and engine are.
type Copilot struct {
	parser QueryParser
	engine MetricsEngine
	opts   options
}

// New creates a Copilot.
func New(parser QueryParser, engine MetricsEngine, opts ...Option) *Copilot {
	o := options{
		trendWindow: 3,
		log:         zerolog.Nop(),
		observe:     func(planner.Intent) {},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Copilot{parser: parser, engine: engine, opts: o}
}

// Ask answers question. Missing parameters produce an Answer with a Warning;
// errors are reserved for blank input and metric failures.
func (c *Copilot) Ask(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed := c.parser.ParseQuery(question)
	c.opts.observe(parsed.Intent)

	c.opts.log.Debug().
		Str("intent", string(parsed.Intent)).
		Str("month", parsed.Month).
		Msg("Question classified")

	answer := &Answer{
		Question: question,
		Parsed:   parsed,
		Intent:   parsed.Intent,
	}

	var err error
	switch parsed.Intent {
	case planner.IntentRevenueVsBudget:
		c.revenueVsBudget(answer)
	case planner.IntentGrossMarginTrend:
		c.grossMarginTrend(answer)
	case planner.IntentOpexBreakdown:
		c.opexBreakdown(answer)
	case planner.IntentEBITDA:
		c.ebitda(answer)
	case planner.IntentCashRunway:
		err = c.cashRunway(answer)
	default:
		answer.Reply = helpText
	}
	if err != nil {
		return nil, fmt.Errorf("Ask: %s: %w", parsed.Intent, err)
	}
	return answer, nil
}

// resolveMonth picks the explicit month, then the configured default, then the
// latest month of actuals.
func (c *Copilot) resolveMonth(parsed planner.ParsedQuery) (string, bool) {
	if parsed.HasMonth() {
		return parsed.Month, true
	}
	if c.opts.defaultMonth != "" {
		return c.opts.defaultMonth, true
	}
	return c.engine.LatestMonth()
}

func (c *Copilot) revenueVsBudget(a *Answer) {
	if !a.Parsed.HasMonth() {
		a.Warning = WarnMonthRequired
		a.Reply = WarnMonthRequired
		return
	}

	r := c.engine.GetRevenueVsBudget(a.Parsed.Month)
	a.Data = r
	a.Reply = fmt.Sprintf("Revenue for %s was %s against a budget of %s, a variance of %s (%s).",
		r.Month, metrics.FormatUSD(r.Actual), metrics.FormatUSD(r.Budget),
		metrics.FormatUSD(r.Variance), metrics.FormatPercent(r.VariancePct))
	a.Highlights = []Highlight{
		{Label: "Actual Revenue", Value: metrics.FormatUSD(r.Actual)},
		{Label: "Budget", Value: metrics.FormatUSD(r.Budget)},
		{Label: "Variance", Value: metrics.FormatUSD(r.Variance), Delta: metrics.FormatPercent(r.VariancePct)},
	}
	a.Chart = RevenueChart(r)
}

// trendWindow returns the [start, end] months covering the last n months of
// actuals, clamped to the oldest month available.
func trendWindow(months []string, n int) (string, string, bool) {
	if len(months) == 0 {
		return "", "", false
	}
	if n > len(months) {
		n = len(months)
	}
	return months[len(months)-n], months[len(months)-1], true
}

func (c *Copilot) grossMarginTrend(a *Answer) {
	n := c.opts.trendWindow
	if dr := a.Parsed.DateRange; dr != nil && dr.Kind == planner.LastNMonths && dr.Count > 0 {
		n = dr.Count
	}

	start, end, ok := trendWindow(c.engine.Months(), n)
	if !ok {
		a.Warning = WarnNoActuals
		a.Reply = WarnNoActuals
		return
	}

	points := c.engine.GetGrossMarginTrend(start, end)
	a.Data = points

	average := "n/a"
	if avg, ok := averageMargin(points); ok {
		average = metrics.FormatPercent(avg)
	}
	a.Reply = fmt.Sprintf("Average gross margin from %s to %s was %s.", start, end, average)
	a.Highlights = []Highlight{{Label: "Average Gross Margin", Value: average}}
	a.Chart = marginChart(points)
	a.Table = marginTable(points, average)
}

// averageMargin is the mean of the defined monthly margins.
func averageMargin(points []metrics.GrossMarginPoint) (decimal.Decimal, bool) {
	sum := decimal.Zero
	n := 0
	for _, p := range points {
		if p.GrossMarginPct != nil {
			sum = sum.Add(*p.GrossMarginPct)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, false
	}
	return sum.Div(decimal.NewFromInt(int64(n))), true
}

func (c *Copilot) opexBreakdown(a *Answer) {
	month, ok := c.resolveMonth(a.Parsed)
	if !ok {
		a.Warning = WarnNoActuals
		a.Reply = WarnNoActuals
		return
	}

	categories := c.engine.GetOpexBreakdown(month)
	total := decimal.Zero
	for _, cat := range categories {
		total = total.Add(cat.Amount)
	}

	a.Data = categories
	a.Reply = fmt.Sprintf("Total operating expenses for %s were %s across %d categories.",
		month, metrics.FormatUSD(total), len(categories))
	a.Highlights = []Highlight{{Label: "Total Operating Expenses", Value: metrics.FormatUSD(total)}}
	a.Chart = OpexChart(month, categories)
	a.Table = opexTable(month, categories, total)
}

func (c *Copilot) ebitda(a *Answer) {
	month, ok := c.resolveMonth(a.Parsed)
	if !ok {
		a.Warning = WarnNoActuals
		a.Reply = WarnNoActuals
		return
	}

	e := c.engine.GetEBITDA(month)
	a.Data = e
	a.Reply = fmt.Sprintf("EBITDA for %s was %s (margin %s): revenue %s, COGS %s, opex %s.",
		month, metrics.FormatUSD(e.EBITDA), metrics.FormatPercent(e.EBITDAMarginPct),
		metrics.FormatUSD(e.Revenue), metrics.FormatUSD(e.COGS), metrics.FormatUSD(e.Opex))
	a.Highlights = []Highlight{
		{Label: "EBITDA", Value: metrics.FormatUSD(e.EBITDA)},
		{Label: "EBITDA Margin", Value: metrics.FormatPercent(e.EBITDAMarginPct)},
	}
	a.Chart = ebitdaChart(e)
}

func (c *Copilot) cashRunway(a *Answer) error {
	r, err := c.engine.GetCashRunway()
	if err != nil {
		return err
	}

	runway := metrics.FormatMonths(r.RunwayMonths)
	delta := ""
	if r.RunwayMonths.Infinite {
		runway = "∞ (profitable)"
		delta = "Positive cash flow"
	}

	a.Data = r
	a.Reply = fmt.Sprintf("Cash runway is %s, based on cash of %s as of %s and an average monthly burn of %s.",
		runway, metrics.FormatUSD(r.CurrentCash), r.LatestMonth, metrics.FormatUSD(r.AvgMonthlyBurn))
	a.Highlights = []Highlight{
		{Label: "Current Cash", Value: metrics.FormatUSD(r.CurrentCash)},
		{Label: "Avg Monthly Burn", Value: metrics.FormatUSD(r.AvgMonthlyBurn)},
		{Label: "Cash Runway", Value: runway, Delta: delta},
	}
	return nil
}
