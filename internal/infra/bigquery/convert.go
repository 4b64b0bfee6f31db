package bigquery

import (
	"fmt"
	"math/big"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/shopspring/decimal"
)

// numericScale is the number of fractional digits BigQuery NUMERIC keeps.
const numericScale = 9

// MonthToDate converts "YYYY-MM" to the first day of that month.
func MonthToDate(month string) (civil.Date, error) {
	m, err := domain.ParseMonth(month)
	if err != nil {
		return civil.Date{}, err
	}
	d, err := civil.ParseDate(m + "-01")
	if err != nil {
		return civil.Date{}, fmt.Errorf("MonthToDate: parsing %q: %w", month, err)
	}
	return d, nil
}

// DateToMonth converts a DATE value to "YYYY-MM".
func DateToMonth(d civil.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(r.FloatString(numericScale))
}

func decimalToRat(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

// ToDomainLedger converts ledger rows into domain records.
func ToDomainLedger(rows []*LedgerRow) ([]domain.LedgerRecord, error) {
	out := make([]domain.LedgerRecord, 0, len(rows))
	for i, r := range rows {
		amount, err := ratToDecimal(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("ToDomainLedger: row %d amount: %w", i, err)
		}
		out = append(out, domain.LedgerRecord{
			Month:           DateToMonth(r.Month),
			AccountCategory: r.AccountCategory,
			Currency:        r.Currency,
			Amount:          amount,
		})
	}
	return out, nil
}

// FromDomainLedger converts domain records into ledger rows.
func FromDomainLedger(records []domain.LedgerRecord) ([]*LedgerRow, error) {
	out := make([]*LedgerRow, 0, len(records))
	for i, r := range records {
		month, err := MonthToDate(r.Month)
		if err != nil {
			return nil, fmt.Errorf("FromDomainLedger: record %d: %w", i, err)
		}
		out = append(out, &LedgerRow{
			Month:           month,
			AccountCategory: r.AccountCategory,
			Currency:        r.Currency,
			Amount:          decimalToRat(r.Amount),
		})
	}
	return out, nil
}

// ToDomainCash converts cash rows into domain records.
func ToDomainCash(rows []*CashRow) ([]domain.CashRecord, error) {
	out := make([]domain.CashRecord, 0, len(rows))
	for i, r := range rows {
		cash, err := ratToDecimal(r.CashUSD)
		if err != nil {
			return nil, fmt.Errorf("ToDomainCash: row %d cash_usd: %w", i, err)
		}
		out = append(out, domain.CashRecord{Month: DateToMonth(r.Month), CashUSD: cash})
	}
	return out, nil
}

// FromDomainCash converts domain records into cash rows.
func FromDomainCash(records []domain.CashRecord) ([]*CashRow, error) {
	out := make([]*CashRow, 0, len(records))
	for i, r := range records {
		month, err := MonthToDate(r.Month)
		if err != nil {
			return nil, fmt.Errorf("FromDomainCash: record %d: %w", i, err)
		}
		out = append(out, &CashRow{Month: month, CashUSD: decimalToRat(r.CashUSD)})
	}
	return out, nil
}

// ToDomainFX converts FX rows into domain records.
func ToDomainFX(rows []*FXRateRow) ([]domain.FXRecord, error) {
	out := make([]domain.FXRecord, 0, len(rows))
	for i, r := range rows {
		rate, err := ratToDecimal(r.RateToUSD)
		if err != nil {
			return nil, fmt.Errorf("ToDomainFX: row %d rate_to_usd: %w", i, err)
		}
		out = append(out, domain.FXRecord{
			Month:     DateToMonth(r.Month),
			Currency:  r.Currency,
			RateToUSD: rate,
		})
	}
	return out, nil
}

// FromDomainFX converts domain records into FX rows.
func FromDomainFX(records []domain.FXRecord) ([]*FXRateRow, error) {
	out := make([]*FXRateRow, 0, len(records))
	for i, r := range records {
		month, err := MonthToDate(r.Month)
		if err != nil {
			return nil, fmt.Errorf("FromDomainFX: record %d: %w", i, err)
		}
		out = append(out, &FXRateRow{
			Month:     month,
			Currency:  r.Currency,
			RateToUSD: decimalToRat(r.RateToUSD),
		})
	}
	return out, nil
}
