package metrics

import (
	"github.com/dvloznov/cfo-copilot/internal/domain"
)

// GetEBITDA computes revenue - COGS - opex for month.
func (e *Engine) GetEBITDA(month string) EBITDA {
	revenue := sumUSD(e.actuals, inMonthWithCategory(month, domain.CategoryRevenue))
	cogs := sumUSD(e.actuals, inMonthWithCategory(month, domain.CategoryCOGS))
	opex := sumUSD(e.actuals, inMonthOpex(month))
	ebitda := revenue.Sub(cogs).Sub(opex)

	result := EBITDA{
		Month:   month,
		Revenue: revenue,
		COGS:    cogs,
		Opex:    opex,
		EBITDA:  ebitda,
	}
	if revenue.IsPositive() {
		result.EBITDAMarginPct = percentOf(ebitda, revenue)
	}
	return result
}
