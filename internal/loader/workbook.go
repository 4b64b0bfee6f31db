package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the finance workbook.
const (
	SheetActuals = "actuals"
	SheetBudget  = "budget"
	SheetCash    = "cash"
	SheetFX      = "fx"
)

var (
	// ErrMissingSheet is returned when one of the four sheets is absent.
	ErrMissingSheet = errors.New("missing sheet")

	// ErrMissingColumn is returned when a sheet lacks a required header.
	ErrMissingColumn = errors.New("missing column")
)

var (
	ledgerColumns = []string{"month", "account_category", "currency", "amount"}
	cashColumns   = []string{"month", "cash_usd"}
	fxColumns     = []string{"month", "currency", "rate_to_usd"}
)

// WorkbookSource reads the finance tables from an .xlsx file.
type WorkbookSource struct {
	Path string

	data []byte
}

// NewWorkbookSourceFromReader buffers r so the workbook can be loaded later.
func NewWorkbookSourceFromReader(r io.Reader) (*WorkbookSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("NewWorkbookSourceFromReader: reading workbook: %w", err)
	}
	return &WorkbookSource{data: data}, nil
}

// Load parses the four sheets.
func (s *WorkbookSource) Load(ctx context.Context) (*domain.Dataset, error) {
	var (
		f   *excelize.File
		err error
	)
	if s.data != nil {
		f, err = excelize.OpenReader(bytes.NewReader(s.data))
	} else {
		f, err = excelize.OpenFile(s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("WorkbookSource.Load: opening workbook %q: %w", s.Path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseWorkbook(f)
}

// ParseWorkbook extracts a Dataset from an open workbook.
func ParseWorkbook(f *excelize.File) (*domain.Dataset, error) {
	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(name))] = name
	}

	read := func(sheet string, columns []string) ([]map[string]string, error) {
		actual, ok := sheets[sheet]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSheet, sheet)
		}
		rows, err := f.GetRows(actual, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		return tabulate(sheet, rows, columns)
	}

	ds := &domain.Dataset{}

	actuals, err := read(SheetActuals, ledgerColumns)
	if err != nil {
		return nil, err
	}
	if ds.Actuals, err = parseLedger(SheetActuals, actuals); err != nil {
		return nil, err
	}

	budget, err := read(SheetBudget, ledgerColumns)
	if err != nil {
		return nil, err
	}
	if ds.Budget, err = parseLedger(SheetBudget, budget); err != nil {
		return nil, err
	}

	cash, err := read(SheetCash, cashColumns)
	if err != nil {
		return nil, err
	}
	if ds.Cash, err = parseCash(cash); err != nil {
		return nil, err
	}

	fx, err := read(SheetFX, fxColumns)
	if err != nil {
		return nil, err
	}
	if ds.FX, err = parseFX(fx); err != nil {
		return nil, err
	}

	return ds, nil
}

// tabulate maps every non-blank data row to its required columns. Header
// names are matched case-insensitively; extra columns are ignored. The "row"
// key carries the 1-based sheet row number for error messages.
func tabulate(sheet string, rows [][]string, columns []string) ([]map[string]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s has no header row", ErrMissingColumn, sheet)
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingColumn, sheet, c)
		}
	}

	var out []map[string]string
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := map[string]string{"row": strconv.Itoa(n + 2)}
		for _, c := range columns {
			if i := index[c]; i < len(row) {
				rec[c] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseLedger(sheet string, rows []map[string]string) ([]domain.LedgerRecord, error) {
	out := make([]domain.LedgerRecord, 0, len(rows))
	for _, r := range rows {
		month, err := parseMonthCell(r["month"])
		if err != nil {
			return nil, fmt.Errorf("%s row %s: %w", sheet, r["row"], err)
		}
		amount, err := parseAmount(r["amount"])
		if err != nil {
			return nil, fmt.Errorf("%s row %s: amount: %w", sheet, r["row"], err)
		}
		out = append(out, domain.LedgerRecord{
			Month:           month,
			AccountCategory: r["account_category"],
			Currency:        strings.ToUpper(r["currency"]),
			Amount:          amount,
		})
	}
	return out, nil
}

func parseCash(rows []map[string]string) ([]domain.CashRecord, error) {
	out := make([]domain.CashRecord, 0, len(rows))
	for _, r := range rows {
		month, err := parseMonthCell(r["month"])
		if err != nil {
			return nil, fmt.Errorf("%s row %s: %w", SheetCash, r["row"], err)
		}
		cash, err := parseAmount(r["cash_usd"])
		if err != nil {
			return nil, fmt.Errorf("%s row %s: cash_usd: %w", SheetCash, r["row"], err)
		}
		out = append(out, domain.CashRecord{Month: month, CashUSD: cash})
	}
	return out, nil
}

func parseFX(rows []map[string]string) ([]domain.FXRecord, error) {
	out := make([]domain.FXRecord, 0, len(rows))
	for _, r := range rows {
		month, err := parseMonthCell(r["month"])
		if err != nil {
			return nil, fmt.Errorf("%s row %s: %w", SheetFX, r["row"], err)
		}
		rate, err := parseAmount(r["rate_to_usd"])
		if err != nil {
			return nil, fmt.Errorf("%s row %s: rate_to_usd: %w", SheetFX, r["row"], err)
		}
		out = append(out, domain.FXRecord{
			Month:     month,
			Currency:  strings.ToUpper(r["currency"]),
			RateToUSD: rate,
		})
	}
	return out, nil
}

// parseMonthCell accepts text months and raw Excel date serials.
func parseMonthCell(v string) (string, error) {
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", fmt.Errorf("%w: %q", domain.ErrInvalidMonth, v)
		}
		return domain.MonthOf(t), nil
	}
	return domain.NormalizeMonth(v)
}

func parseAmount(v string) (decimal.Decimal, error) {
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return decimal.Zero, errors.New("empty value")
	}
	return decimal.NewFromString(v)
}
