// Package report builds the monthly CFO report, renders it to a standalone
// HTML page or a PDF and publishes it to disk or Cloud Storage.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/copilot"
	"github.com/dvloznov/cfo-copilot/internal/metrics"
	"github.com/shopspring/decimal"
)

// Title is the report heading.
const Title = "CFO Financial Report"

// Engine is the subset of *metrics.Engine the report reads.
type Engine interface {
	GetRevenueVsBudget(month string) metrics.RevenueVsBudget
	GetOpexBreakdown(month string) []metrics.OpexCategory
	GetEBITDA(month string) metrics.EBITDA
	GetCashRunway() (metrics.CashRunway, error)
}

// Report is a built report. Runway is nil when RunwayError is set.
type Report struct {
	Month       string                  `json:"month"`
	GeneratedAt time.Time               `json:"generated_at"`
	Revenue     metrics.RevenueVsBudget `json:"revenue"`
	Opex        []metrics.OpexCategory  `json:"opex"`
	EBITDA      metrics.EBITDA          `json:"ebitda"`
	Runway      *metrics.CashRunway     `json:"runway,omitempty"`
	RunwayError string                  `json:"runway_error,omitempty"`
	Markdown    string                  `json:"markdown"`
}

// Builder assembles reports from engine results.
type Builder struct {
	Engine Engine
}

// NewBuilder creates a Builder.
func NewBuilder(engine Engine) *Builder {
	return &Builder{Engine: engine}
}

// Build produces the report for month.
func (b *Builder) Build(month string, generatedAt time.Time) (*Report, error) {
	if month == "" {
		return nil, fmt.Errorf("Build: month is required")
	}

	r := &Report{
		Month:       month,
		GeneratedAt: generatedAt,
		Revenue:     b.Engine.GetRevenueVsBudget(month),
		Opex:        b.Engine.GetOpexBreakdown(month),
		EBITDA:      b.Engine.GetEBITDA(month),
	}

	runway, err := b.Engine.GetCashRunway()
	if err != nil {
		r.RunwayError = err.Error()
	} else {
		r.Runway = &runway
	}

	var md strings.Builder
	md.WriteString(headerMarkdown(r))
	for _, s := range sections(r) {
		md.WriteString(s.markdown())
	}
	r.Markdown = md.String()
	return r, nil
}

// table is a rendered-format-neutral table. Bold rows are emphasized.
type table struct {
	header []string
	rows   [][]string
	bold   map[int]bool
}

// section is one titled part of the report: a table or a note, optionally
// followed by a chart.
type section struct {
	title   string
	note    string
	table   *table
	chart   *copilot.ChartConfig
	newPage bool // starts a fresh PDF page
}

func sections(r *Report) []section {
	return []section{
		revenueSection(r.Revenue),
		opexSection(r.Month, r.Opex),
		ebitdaSection(r.EBITDA),
		runwaySection(r.Runway, r.RunwayError),
	}
}

func headerMarkdown(r *Report) string {
	return fmt.Sprintf("# %s\n\nReport Date: %s  \nReporting Month: %s\n\n",
		Title, r.GeneratedAt.Format("January 02, 2006"), r.Month)
}

func revenueSection(r metrics.RevenueVsBudget) section {
	return section{
		title: "Revenue Performance",
		table: &table{
			header: []string{"Metric", "Amount"},
			rows: [][]string{
				{"Actual Revenue", metrics.FormatUSD(r.Actual)},
				{"Budget", metrics.FormatUSD(r.Budget)},
				{"Variance", metrics.FormatUSD(r.Variance)},
				{"Variance %", metrics.FormatPercent(r.VariancePct)},
			},
		},
		chart: copilot.RevenueChart(r),
	}
}

func opexSection(month string, categories []metrics.OpexCategory) section {
	s := section{title: "Operating Expenses Breakdown", newPage: true}
	if len(categories) == 0 {
		s.note = "No operating expenses recorded for this month."
		return s
	}

	t := &table{header: []string{"Category", "Amount", "% of Total"}}
	total := decimal.Zero
	for _, c := range categories {
		t.rows = append(t.rows, []string{c.Category, metrics.FormatUSD(c.Amount), metrics.FormatPercent(c.PctOfTotal)})
		total = total.Add(c.Amount)
	}
	t.rows = append(t.rows, []string{"Total Opex", metrics.FormatUSD(total), "100.0%"})
	t.bold = map[int]bool{len(t.rows) - 1: true}

	s.table = t
	s.chart = copilot.OpexChart(month, categories)
	return s
}

func ebitdaSection(e metrics.EBITDA) section {
	return section{
		title: "EBITDA Summary",
		table: &table{
			header: []string{"Metric", "Amount"},
			rows: [][]string{
				{"Revenue", metrics.FormatUSD(e.Revenue)},
				{"COGS", metrics.FormatUSD(e.COGS.Neg())},
				{"Opex", metrics.FormatUSD(e.Opex.Neg())},
				{"EBITDA", metrics.FormatUSD(e.EBITDA)},
				{"EBITDA Margin", metrics.FormatPercent(e.EBITDAMarginPct)},
			},
			bold: map[int]bool{3: true},
		},
	}
}

func runwaySection(r *metrics.CashRunway, errMsg string) section {
	s := section{title: "Cash Position & Runway", newPage: true}
	if r == nil {
		s.note = fmt.Sprintf("Cash runway unavailable: %s.", errMsg)
		return s
	}

	runway := r.RunwayMonths.String() + " months"
	if r.RunwayMonths.Infinite {
		runway = "∞ months (Profitable)"
	}
	s.table = &table{
		header: []string{"Metric", "Value"},
		rows: [][]string{
			{"Current Cash", metrics.FormatUSD(r.CurrentCash)},
			{"As of Date", r.LatestMonth},
			{"Avg Monthly Burn", metrics.FormatUSD(r.AvgMonthlyBurn)},
			{"Cash Runway", runway},
		},
	}
	return s
}

func (s section) markdown() string {
	var md strings.Builder
	fmt.Fprintf(&md, "## %s\n\n", s.title)
	if s.note != "" {
		md.WriteString(s.note + "\n\n")
	}
	if s.table != nil {
		md.WriteString(s.table.markdown())
		md.WriteString("\n")
	}
	return md.String()
}

// markdown renders a GFM table with the first column left aligned and the
// rest right aligned.
func (t *table) markdown() string {
	var md strings.Builder
	md.WriteString("| " + strings.Join(t.header, " | ") + " |\n|")
	for i := range t.header {
		if i == 0 {
			md.WriteString(":---|")
		} else {
			md.WriteString("---:|")
		}
	}
	md.WriteString("\n")

	for i, row := range t.rows {
		cells := make([]string, len(row))
		for j, c := range row {
			c = escapeCell(c)
			if t.bold[i] {
				c = "**" + c + "**"
			}
			cells[j] = c
		}
		md.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return md.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
