package metrics

import (
	"github.com/dvloznov/cfo-copilot/internal/domain"
)

// GetGrossMarginTrend returns one point per month of actuals within
// [start, end] inclusive, ascending. Months are compared as "YYYY-MM" strings.
func (e *Engine) GetGrossMarginTrend(start, end string) []GrossMarginPoint {
	var points []GrossMarginPoint
	for _, month := range e.Months() {
		if month < start || month > end {
			continue
		}
		revenue := sumUSD(e.actuals, inMonthWithCategory(month, domain.CategoryRevenue))
		cogs := sumUSD(e.actuals, inMonthWithCategory(month, domain.CategoryCOGS))

		point := GrossMarginPoint{
			Month:   month,
			Revenue: revenue,
			COGS:    cogs,
		}
		if !revenue.IsZero() {
			pct := percentOf(revenue.Sub(cogs), revenue)
			point.GrossMarginPct = &pct
		}
		points = append(points, point)
	}
	return points
}
