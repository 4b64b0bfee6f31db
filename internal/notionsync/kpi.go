package notionsync

import (
	"github.com/dvloznov/cfo-copilot/internal/metrics"
	"github.com/shopspring/decimal"
)

// KPIEngine is the subset of *metrics.Engine used to build snapshots.
type KPIEngine interface {
	GetRevenueVsBudget(month string) metrics.RevenueVsBudget
	GetGrossMarginTrend(start, end string) []metrics.GrossMarginPoint
	GetEBITDA(month string) metrics.EBITDA
	Months() []string
}

// KPISnapshot is the set of headline figures published for one month.
type KPISnapshot struct {
	Month       string
	Revenue     decimal.Decimal
	Budget      decimal.Decimal
	Variance    decimal.Decimal
	VariancePct decimal.Decimal
	// GrossMarginPct is nil when the month had no revenue.
	GrossMarginPct  *decimal.Decimal
	Opex            decimal.Decimal
	EBITDA          decimal.Decimal
	EBITDAMarginPct decimal.Decimal
}

// BuildSnapshots returns one snapshot per actuals month in [start, end].
// Empty bounds are open.
func BuildSnapshots(engine KPIEngine, start, end string) []KPISnapshot {
	var months []string
	for _, m := range engine.Months() {
		if (start == "" || m >= start) && (end == "" || m <= end) {
			months = append(months, m)
		}
	}
	if len(months) == 0 {
		return nil
	}

	margins := make(map[string]*decimal.Decimal, len(months))
	for _, p := range engine.GetGrossMarginTrend(months[0], months[len(months)-1]) {
		margins[p.Month] = p.GrossMarginPct
	}

	snapshots := make([]KPISnapshot, 0, len(months))
	for _, m := range months {
		rev := engine.GetRevenueVsBudget(m)
		e := engine.GetEBITDA(m)
		snapshots = append(snapshots, KPISnapshot{
			Month:           m,
			Revenue:         rev.Actual,
			Budget:          rev.Budget,
			Variance:        rev.Variance,
			VariancePct:     rev.VariancePct,
			GrossMarginPct:  margins[m],
			Opex:            e.Opex,
			EBITDA:          e.EBITDA,
			EBITDAMarginPct: e.EBITDAMarginPct,
		})
	}
	return snapshots
}
