package metrics

import (
	"sort"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/shopspring/decimal"
)

// GetOpexBreakdown groups the month's "Opex:" actuals by category, largest
// first. Equal amounts keep alphabetical category order.
func (e *Engine) GetOpexBreakdown(month string) []OpexCategory {
	totals := make(map[string]decimal.Decimal)
	for _, r := range e.actuals {
		if !r.HasRate || !inMonthOpex(month)(r) {
			continue
		}
		category := strings.TrimPrefix(r.AccountCategory, domain.OpexPrefix)
		totals[category] = totals[category].Add(r.AmountUSD)
	}

	categories := make([]OpexCategory, 0, len(totals))
	total := decimal.Zero
	for name, amount := range totals {
		categories = append(categories, OpexCategory{Category: name, Amount: amount})
		total = total.Add(amount)
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Category < categories[j].Category
	})
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Amount.GreaterThan(categories[j].Amount)
	})

	if !total.IsZero() {
		for i := range categories {
			categories[i].PctOfTotal = percentOf(categories[i].Amount, total)
		}
	}
	return categories
}
