package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// RevenueVsBudget compares actual and budgeted revenue for one month.
type RevenueVsBudget struct {
	Month    string          `json:"month"`
	Actual   decimal.Decimal `json:"actual"`
	Budget   decimal.Decimal `json:"budget"`
	Variance decimal.Decimal `json:"variance"`
	// VariancePct is zero when the budget is not positive.
	VariancePct decimal.Decimal `json:"variance_pct"`
}

// GrossMarginPoint is one month of the gross margin trend.
type GrossMarginPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	COGS    decimal.Decimal `json:"cogs"`
	// GrossMarginPct is nil when revenue is zero.
	GrossMarginPct *decimal.Decimal `json:"gross_margin_pct"`
}

// OpexCategory is one line of the operating expense breakdown.
type OpexCategory struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	PctOfTotal decimal.Decimal `json:"pct_of_total"`
}

// EBITDA is the month's earnings proxy: revenue minus COGS minus opex.
type EBITDA struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	COGS    decimal.Decimal `json:"cogs"`
	Opex    decimal.Decimal `json:"opex"`
	EBITDA  decimal.Decimal `json:"ebitda"`
	// EBITDAMarginPct is zero when revenue is not positive.
	EBITDAMarginPct decimal.Decimal `json:"ebitda_margin_pct"`
}

// MonthlyBurn is the cash consumed in one month (negative EBITDA).
type MonthlyBurn struct {
	Month string          `json:"month"`
	Burn  decimal.Decimal `json:"burn"`
}

// CashRunway estimates how long current cash lasts at the recent burn rate.
type CashRunway struct {
	CurrentCash    decimal.Decimal `json:"current_cash"`
	LatestMonth    string          `json:"latest_month"`
	AvgMonthlyBurn decimal.Decimal `json:"avg_monthly_burn"`
	RunwayMonths   Runway          `json:"runway_months"`
	// Last3MonthsBurn holds up to three most recent months, newest first.
	Last3MonthsBurn []MonthlyBurn `json:"last_3_months_burn"`
}

// Runway is a month count or the infinite sentinel used when the company is
// not burning cash.
type Runway struct {
	Months   decimal.Decimal
	Infinite bool
}

// InfiniteRunway is returned when average burn is zero or negative.
var InfiniteRunway = Runway{Infinite: true}

// RunwayOf wraps a finite month count.
func RunwayOf(months decimal.Decimal) Runway {
	return Runway{Months: months}
}

func (r Runway) String() string {
	if r.Infinite {
		return "∞"
	}
	return r.Months.StringFixed(1)
}

// MarshalJSON encodes infinity as the string "infinite" and months as a number.
func (r Runway) MarshalJSON() ([]byte, error) {
	if r.Infinite {
		return []byte(`"infinite"`), nil
	}
	return []byte(r.Months.String()), nil
}

// UnmarshalJSON accepts both forms written by MarshalJSON.
func (r *Runway) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"infinite"`)) {
		*r = InfiniteRunway
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("runway: %w", err)
	}
	*r = RunwayOf(d)
	return nil
}
