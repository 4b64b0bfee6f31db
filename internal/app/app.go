// Package app wires configuration into the loaded dataset, metrics engine
// and copilot shared by the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/config"
	"github.com/dvloznov/cfo-copilot/internal/copilot"
	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/gcs"
	"github.com/dvloznov/cfo-copilot/internal/loader"
	"github.com/dvloznov/cfo-copilot/internal/metrics"
	"github.com/dvloznov/cfo-copilot/internal/planner"
	"github.com/dvloznov/cfo-copilot/internal/report"
	"github.com/rs/zerolog"
)

// App holds the loaded dataset and the components built on it.
type App struct {
	Config  config.Config
	Dataset *domain.Dataset
	Engine  *metrics.Engine
	Copilot *copilot.Copilot
}

// Load reads the configured data source and builds the engine and copilot.
func Load(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...copilot.Option) (*App, error) {
	src, closeSrc, err := loader.Open(ctx, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer closeSrc()

	start := time.Now()
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: loading %s data: %w", cfg.Data.Source, err)
	}
	log.Info().
		Str("source", cfg.Data.Source).
		Int("actuals", len(ds.Actuals)).
		Int("budget", len(ds.Budget)).
		Int("cash", len(ds.Cash)).
		Int("fx", len(ds.FX)).
		Dur("duration", time.Since(start)).
		Msg("Finance data loaded")

	return FromDataset(cfg, ds, log, opts...)
}

// FromDataset builds the engine and copilot over an already loaded dataset.
func FromDataset(cfg config.Config, ds *domain.Dataset, log zerolog.Logger, opts ...copilot.Option) (*App, error) {
	policy, err := metrics.ParseMissingFXPolicy(cfg.Metrics.MissingFX)
	if err != nil {
		return nil, fmt.Errorf("FromDataset: %w", err)
	}

	engine, err := metrics.NewEngine(ds,
		metrics.WithMissingFXPolicy(policy),
		metrics.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("FromDataset: %w", err)
	}

	copilotOpts := []copilot.Option{
		copilot.WithDefaultMonth(cfg.Metrics.DefaultMonth),
		copilot.WithTrendWindow(cfg.Metrics.TrendWindow),
		copilot.WithLogger(log),
	}
	copilotOpts = append(copilotOpts, opts...)

	return &App{
		Config:  cfg,
		Dataset: ds,
		Engine:  engine,
		Copilot: copilot.New(planner.New(), engine, copilotOpts...),
	}, nil
}

// NewPublisher returns the report publisher for cfg: Cloud Storage when a
// bucket is set, otherwise the local directory.
func NewPublisher(ctx context.Context, cfg config.ReportConfig) (report.Publisher, func() error, error) {
	if cfg.Bucket == "" {
		return &report.FilePublisher{Dir: cfg.Dir}, func() error { return nil }, nil
	}

	storage, err := gcs.NewGCSStorageService(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("NewPublisher: %w", err)
	}
	return &report.GCSPublisher{Bucket: cfg.Bucket, Storage: storage}, storage.Close, nil
}

// NewGenerator returns a report generator over the engine, rendering in the
// configured report format.
func (a *App) NewGenerator(publisher report.Publisher, log zerolog.Logger) (*report.Generator, error) {
	format, err := report.ParseFormat(a.Config.Report.Format)
	if err != nil {
		return nil, fmt.Errorf("NewGenerator: %w", err)
	}
	g := report.NewGenerator(a.Engine, publisher, log)
	g.Format = format
	return g, nil
}
