package metrics

import (
	"github.com/dvloznov/cfo-copilot/internal/domain"
)

// GetRevenueVsBudget compares revenue actuals against budget for month.
// A month with no rows yields zeros rather than an error.
func (e *Engine) GetRevenueVsBudget(month string) RevenueVsBudget {
	actual := sumUSD(e.actuals, inMonthWithCategory(month, domain.CategoryRevenue))
	budget := sumUSD(e.budget, inMonthWithCategory(month, domain.CategoryRevenue))
	variance := actual.Sub(budget)

	result := RevenueVsBudget{
		Month:    month,
		Actual:   actual,
		Budget:   budget,
		Variance: variance,
	}
	if budget.IsPositive() {
		result.VariancePct = percentOf(variance, budget)
	}
	return result
}
