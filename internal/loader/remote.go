package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/gcs"
	bq "github.com/dvloznov/cfo-copilot/internal/infra/bigquery"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// GCSSource reads the finance workbook from a gs:// URI.
type GCSSource struct {
	URI     string
	Storage gcs.StorageService
}

// Load downloads the workbook and parses it.
func (s *GCSSource) Load(ctx context.Context) (*domain.Dataset, error) {
	data, err := s.Storage.FetchFromGCS(ctx, s.URI)
	if err != nil {
		return nil, fmt.Errorf("GCSSource.Load: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("GCSSource.Load: opening %s: %w", s.Storage.ExtractFilenameFromGCSURI(s.URI), err)
	}
	defer f.Close()

	return ParseWorkbook(f)
}

// BigQuerySource reads the four finance tables concurrently.
type BigQuerySource struct {
	Repo bq.FinanceRepository
}

// Load queries every table and converts the rows into a Dataset. The first
// failing query cancels the others.
func (s *BigQuerySource) Load(ctx context.Context) (*domain.Dataset, error) {
	var (
		actuals, budget []*bq.LedgerRow
		cash            []*bq.CashRow
		fx              []*bq.FXRateRow
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		actuals, err = s.Repo.ListActuals(ctx)
		return err
	})
	g.Go(func() (err error) {
		budget, err = s.Repo.ListBudget(ctx)
		return err
	})
	g.Go(func() (err error) {
		cash, err = s.Repo.ListCash(ctx)
		return err
	})
	g.Go(func() (err error) {
		fx, err = s.Repo.ListFXRates(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("BigQuerySource.Load: %w", err)
	}

	ds := &domain.Dataset{}
	var err error
	if ds.Actuals, err = bq.ToDomainLedger(actuals); err != nil {
		return nil, fmt.Errorf("BigQuerySource.Load: actuals: %w", err)
	}
	if ds.Budget, err = bq.ToDomainLedger(budget); err != nil {
		return nil, fmt.Errorf("BigQuerySource.Load: budget: %w", err)
	}
	if ds.Cash, err = bq.ToDomainCash(cash); err != nil {
		return nil, fmt.Errorf("BigQuerySource.Load: cash: %w", err)
	}
	if ds.FX, err = bq.ToDomainFX(fx); err != nil {
		return nil, fmt.Errorf("BigQuerySource.Load: fx: %w", err)
	}
	return ds, nil
}
