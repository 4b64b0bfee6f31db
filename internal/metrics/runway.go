package metrics

import (
	"sort"

	"github.com/shopspring/decimal"
)

const burnWindow = 3

// GetCashRunway divides the latest cash balance by the average burn of the
// most recent months of actuals (up to three).
func (e *Engine) GetCashRunway() (CashRunway, error) {
	if len(e.cash) == 0 {
		return CashRunway{}, ErrNoCash
	}

	latest := e.cash[0]
	for _, c := range e.cash[1:] {
		if c.Month > latest.Month {
			latest = c
		}
	}

	months := e.Months()
	if len(months) == 0 {
		return CashRunway{}, ErrNoActuals
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	if len(months) > burnWindow {
		months = months[:burnWindow]
	}

	burns := make([]MonthlyBurn, 0, len(months))
	totalBurn := decimal.Zero
	for _, month := range months {
		burn := e.GetEBITDA(month).EBITDA.Neg()
		burns = append(burns, MonthlyBurn{Month: month, Burn: burn})
		totalBurn = totalBurn.Add(burn)
	}
	avg := totalBurn.Div(decimal.NewFromInt(int64(len(burns))))

	runway := InfiniteRunway
	if avg.IsPositive() {
		runway = RunwayOf(latest.CashUSD.Div(avg))
	}

	return CashRunway{
		CurrentCash:     latest.CashUSD,
		LatestMonth:     latest.Month,
		AvgMonthlyBurn:  avg,
		RunwayMonths:    runway,
		Last3MonthsBurn: burns,
	}, nil
}
