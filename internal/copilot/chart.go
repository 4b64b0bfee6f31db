package copilot

import (
	"github.com/dvloznov/cfo-copilot/internal/metrics"
	"github.com/shopspring/decimal"
)

// Chart types understood by the frontend.
const (
	ChartBar       = "bar"
	ChartLine      = "line"
	ChartPie       = "pie"
	ChartWaterfall = "waterfall"
)

// Waterfall measures.
const (
	MeasureAbsolute = "absolute"
	MeasureRelative = "relative"
	MeasureTotal    = "total"
)

const (
	colorActual = "#1f77b4"
	colorBudget = "#ff7f0e"
	colorMargin = "#2ca02c"
)

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Measure is only set on
// waterfall charts.
type ChartPoint struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Text    string  `json:"text,omitempty"`
	Measure string  `json:"measure,omitempty"`
}

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "currency", "percent"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

func assignColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// RevenueChart is a grouped bar of actual against budget revenue.
func RevenueChart(r metrics.RevenueVsBudget) *ChartConfig {
	return &ChartConfig{
		ChartType: ChartBar,
		Title:     "Revenue vs Budget - " + r.Month,
		YAxis:     "USD",
		Series: []ChartSeries{
			{Name: "Actual", Color: colorActual, Data: []ChartPoint{{Label: "Revenue", Value: r.Actual.InexactFloat64(), Text: metrics.FormatUSD(r.Actual)}}},
			{Name: "Budget", Color: colorBudget, Data: []ChartPoint{{Label: "Revenue", Value: r.Budget.InexactFloat64(), Text: metrics.FormatUSD(r.Budget)}}},
		},
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// marginChart plots months with a defined margin; months with zero revenue
// are left out of the line.
func marginChart(points []metrics.GrossMarginPoint) *ChartConfig {
	data := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		if p.GrossMarginPct == nil {
			continue
		}
		data = append(data, ChartPoint{
			Label: p.Month,
			Value: p.GrossMarginPct.InexactFloat64(),
			Text:  metrics.FormatPercent(*p.GrossMarginPct),
		})
	}
	return &ChartConfig{
		ChartType:  ChartLine,
		Title:      "Gross Margin % Trend",
		XAxis:      "Month",
		YAxis:      "Gross Margin %",
		Series:     []ChartSeries{{Name: "Gross Margin %", Color: colorMargin, Data: data}},
		ShowLegend: false,
		ShowGrid:   true,
	}
}

func marginTable(points []metrics.GrossMarginPoint, average string) *TableData {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		pct := "n/a"
		if p.GrossMarginPct != nil {
			pct = metrics.FormatPercent(*p.GrossMarginPct)
		}
		rows = append(rows, []string{p.Month, metrics.FormatUSD(p.Revenue), metrics.FormatUSD(p.COGS), pct})
	}
	return &TableData{
		Title: "Gross Margin by Month",
		Columns: []Column{
			{Key: "month", Label: "Month", Type: "text", Align: "left"},
			{Key: "revenue", Label: "Revenue", Type: "currency", Align: "right"},
			{Key: "cogs", Label: "COGS", Type: "currency", Align: "right"},
			{Key: "gross_margin_pct", Label: "Gross Margin %", Type: "percent", Align: "right"},
		},
		Rows:    rows,
		Summary: &Summary{Label: "Average", Values: map[string]string{"gross_margin_pct": average}},
	}
}

// OpexChart is a pie of opex categories for month.
func OpexChart(month string, categories []metrics.OpexCategory) *ChartConfig {
	data := make([]ChartPoint, 0, len(categories))
	for _, c := range categories {
		data = append(data, ChartPoint{
			Label: c.Category,
			Value: c.Amount.InexactFloat64(),
			Text:  metrics.FormatPercent(c.PctOfTotal),
		})
	}
	return &ChartConfig{
		ChartType:  ChartPie,
		Title:      "Opex Breakdown - " + month,
		Series:     []ChartSeries{{Name: "Opex", Data: data}},
		Colors:     assignColors(len(data)),
		ShowLegend: true,
		ShowGrid:   false,
	}
}

func opexTable(month string, categories []metrics.OpexCategory, total decimal.Decimal) *TableData {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Category, metrics.FormatUSD(c.Amount), metrics.FormatPercent(c.PctOfTotal)})
	}
	return &TableData{
		Title: "Operating Expenses - " + month,
		Columns: []Column{
			{Key: "category", Label: "Category", Type: "text", Align: "left"},
			{Key: "amount", Label: "Amount", Type: "currency", Align: "right"},
			{Key: "pct_of_total", Label: "% of Total", Type: "percent", Align: "right"},
		},
		Rows: rows,
		Summary: &Summary{Label: "Total Opex", Values: map[string]string{
			"amount":       metrics.FormatUSD(total),
			"pct_of_total": "100.0%",
		}},
	}
}

func ebitdaChart(e metrics.EBITDA) *ChartConfig {
	point := func(label string, v decimal.Decimal, measure string) ChartPoint {
		return ChartPoint{Label: label, Value: v.InexactFloat64(), Text: metrics.FormatUSD(v), Measure: measure}
	}
	return &ChartConfig{
		ChartType: ChartWaterfall,
		Title:     "EBITDA Calculation - " + e.Month,
		YAxis:     "USD",
		Series: []ChartSeries{{
			Name: "EBITDA",
			Data: []ChartPoint{
				point("Revenue", e.Revenue, MeasureAbsolute),
				point("COGS", e.COGS.Neg(), MeasureRelative),
				point("Opex", e.Opex.Neg(), MeasureRelative),
				point("EBITDA", e.EBITDA, MeasureTotal),
			},
		}},
		ShowLegend: false,
		ShowGrid:   true,
	}
}
