package loader

import (
	"github.com/dvloznov/cfo-copilot/internal/domain"
)

// TableSummary describes one loaded table.
type TableSummary struct {
	Name     string   `json:"name"`
	Rows     int      `json:"rows"`
	Columns  []string `json:"columns"`
	MinMonth string   `json:"min_month,omitempty"`
	MaxMonth string   `json:"max_month,omitempty"`
}

// Summarize reports shape and month range per table, in sheet order.
func Summarize(ds *domain.Dataset) []TableSummary {
	ledgerMonths := func(records []domain.LedgerRecord) []string {
		months := make([]string, len(records))
		for i, r := range records {
			months[i] = r.Month
		}
		return months
	}
	cashMonths := make([]string, len(ds.Cash))
	for i, r := range ds.Cash {
		cashMonths[i] = r.Month
	}
	fxMonths := make([]string, len(ds.FX))
	for i, r := range ds.FX {
		fxMonths[i] = r.Month
	}

	return []TableSummary{
		summarize(SheetActuals, ledgerColumns, ledgerMonths(ds.Actuals)),
		summarize(SheetBudget, ledgerColumns, ledgerMonths(ds.Budget)),
		summarize(SheetCash, cashColumns, cashMonths),
		summarize(SheetFX, fxColumns, fxMonths),
	}
}

func summarize(name string, columns, months []string) TableSummary {
	s := TableSummary{
		Name:    name,
		Rows:    len(months),
		Columns: append([]string(nil), columns...),
	}
	for _, m := range months {
		if s.MinMonth == "" || m < s.MinMonth {
			s.MinMonth = m
		}
		if m > s.MaxMonth {
			s.MaxMonth = m
		}
	}
	return s
}
