// Package loader builds the immutable finance Dataset from a workbook on
// disk, a workbook in Cloud Storage, or the BigQuery finance tables.
package loader

import (
	"context"
	"fmt"

	"github.com/dvloznov/cfo-copilot/internal/config"
	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/gcs"
	bq "github.com/dvloznov/cfo-copilot/internal/infra/bigquery"
)

// Source produces a complete Dataset.
type Source interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// Open builds the Source selected by cfg. The returned close function releases
// any cloud clients and is never nil.
func Open(ctx context.Context, cfg config.DataConfig) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case config.SourceWorkbook, "":
		return &WorkbookSource{Path: cfg.WorkbookPath}, noop, nil

	case config.SourceGCS:
		storage, err := gcs.NewGCSStorageService(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("Open: %w", err)
		}
		return &GCSSource{URI: cfg.GCSURI, Storage: storage}, storage.Close, nil

	case config.SourceBigQuery:
		repo, err := bq.NewBigQueryFinanceRepository(ctx, cfg.BQProject, cfg.BQDataset)
		if err != nil {
			return nil, noop, fmt.Errorf("Open: %w", err)
		}
		return &BigQuerySource{Repo: repo}, repo.Close, nil

	default:
		return nil, noop, fmt.Errorf("Open: unknown data source %q", cfg.Source)
	}
}
