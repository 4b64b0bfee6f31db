package bigquery

import (
	"math/big"

	"cloud.google.com/go/civil"
)

// Finance tables. Month columns are DATE values pinned to the first day of
// the month.
const (
	ActualsTable = "actuals"
	BudgetTable  = "budget"
	CashTable    = "cash"
	FXRatesTable = "fx_rates"

	// MigrationsTable records applied schema migrations.
	MigrationsTable = "schema_migrations"
)

// DefaultDatasetID is the dataset holding the finance tables.
const DefaultDatasetID = "finance"

// LedgerRow is one row of finance.actuals or finance.budget.
type LedgerRow struct {
	Month           civil.Date `bigquery:"month"`            // REQUIRED DATE
	AccountCategory string     `bigquery:"account_category"` // REQUIRED STRING
	Currency        string     `bigquery:"currency"`         // REQUIRED STRING
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC
}

// CashRow is one row of finance.cash.
type CashRow struct {
	Month   civil.Date `bigquery:"month"`    // REQUIRED DATE
	CashUSD *big.Rat   `bigquery:"cash_usd"` // REQUIRED NUMERIC
}

// FXRateRow is one row of finance.fx_rates.
type FXRateRow struct {
	Month     civil.Date `bigquery:"month"`       // REQUIRED DATE
	Currency  string     `bigquery:"currency"`    // REQUIRED STRING
	RateToUSD *big.Rat   `bigquery:"rate_to_usd"` // REQUIRED NUMERIC
}
