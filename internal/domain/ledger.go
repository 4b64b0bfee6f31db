package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Account categories used by the metrics engine. Operating expense lines carry
// the OpexPrefix followed by a subcategory, e.g. "Opex:Marketing".
const (
	CategoryRevenue = "Revenue"
	CategoryCOGS    = "COGS"
	OpexPrefix      = "Opex:"
)

// DefaultReportingCurrency is the currency every amount is normalized into.
const DefaultReportingCurrency = "USD"

// LedgerRecord is one row of the actuals or budget table.
type LedgerRecord struct {
	Month           string          `json:"month"`            // "YYYY-MM"
	AccountCategory string          `json:"account_category"` // "Revenue", "COGS", "Opex:<subcategory>"
	Currency        string          `json:"currency"`         // ISO code
	Amount          decimal.Decimal `json:"amount"`
}

// IsOpex reports whether the record is an operating expense line.
func (r LedgerRecord) IsOpex() bool {
	return strings.HasPrefix(r.AccountCategory, OpexPrefix)
}

// CashRecord is the end-of-month cash balance, already in the reporting currency.
type CashRecord struct {
	Month   string          `json:"month"`
	CashUSD decimal.Decimal `json:"cash_usd"`
}

// FXRecord is the conversion rate for one currency in one month.
type FXRecord struct {
	Month     string          `json:"month"`
	Currency  string          `json:"currency"`
	RateToUSD decimal.Decimal `json:"rate_to_usd"`
}

// Dataset is the immutable snapshot handed over by the data loader.
// Nothing downstream mutates it; reloading means building a new Dataset.
type Dataset struct {
	Actuals []LedgerRecord `json:"actuals"`
	Budget  []LedgerRecord `json:"budget"`
	Cash    []CashRecord   `json:"cash"`
	FX      []FXRecord     `json:"fx"`
}
