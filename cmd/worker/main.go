package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/app"
	"github.com/dvloznov/cfo-copilot/internal/config"
	"github.com/dvloznov/cfo-copilot/internal/jobs"
	"github.com/dvloznov/cfo-copilot/internal/jobs/inmemory"
	"github.com/dvloznov/cfo-copilot/internal/logger"
)

// The worker backfills monthly reports: one job per actuals month in range,
// processed through the job queue with retries.
func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	start := flag.String("start", "", "First month, YYYY-MM (default: earliest month)")
	end := flag.String("end", "", "Last month, YYYY-MM (default: latest month)")
	workers := flag.Int("workers", 0, "Concurrent report workers (default: server.workers)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewFromConfig(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Load(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load finance data")
	}

	months := monthsInRange(a.Engine.Months(), *start, *end)
	if len(months) == 0 {
		log.Warn().Str("start", *start).Str("end", *end).Msg("No actuals months in range")
		return
	}

	publisher, closePublisher, err := app.NewPublisher(ctx, cfg.Report)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report publisher")
	}
	defer closePublisher()

	if *workers <= 0 {
		*workers = cfg.Server.Workers
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(len(months), jobStore, inmemory.WithWorkers(*workers), inmemory.WithLogger(log))
	generator, err := a.NewGenerator(publisher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report generator")
	}

	if err := jobQueue.Start(ctx, generator.JobHandler()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Int("months", len(months)).Int("workers", *workers).Msg("Starting report backfill")

	ids := make([]string, 0, len(months))
	for _, m := range months {
		job := &jobs.GenerateReportJob{Month: m}
		if err := jobQueue.PublishGenerateReport(ctx, job); err != nil {
			log.Fatal().Err(err).Str("month", m).Msg("Failed to publish report job")
		}
		ids = append(ids, job.JobID)
	}

	finished, waitErr := waitForJobs(ctx, jobStore, ids, 200*time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	if waitErr != nil {
		log.Fatal().Err(waitErr).Msg("Backfill interrupted")
	}

	failed := 0
	for _, job := range finished {
		if job.Status == jobs.JobStatusFailed {
			failed++
			fmt.Printf("%s  FAILED  %s\n", job.Month, job.Error)
			continue
		}
		fmt.Printf("%s  %s\n", job.Month, job.OutputURI)
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Int("total", len(finished)).Msg("Report backfill finished with failures")
		os.Exit(1)
	}
	log.Info().Int("total", len(finished)).Msg("Report backfill completed")
}

// monthsInRange filters sorted months to [start, end]. Empty bounds are open.
func monthsInRange(months []string, start, end string) []string {
	var out []string
	for _, m := range months {
		if (start == "" || m >= start) && (end == "" || m <= end) {
			out = append(out, m)
		}
	}
	return out
}

// waitForJobs polls the store until every job is completed or failed, and
// returns them in ids order.
func waitForJobs(ctx context.Context, store jobs.JobStore, ids []string, interval time.Duration) ([]*jobs.GenerateReportJob, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		finished := make([]*jobs.GenerateReportJob, 0, len(ids))
		for _, id := range ids {
			job, err := store.GetJob(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("waitForJobs: %w", err)
			}
			if job.Status != jobs.JobStatusCompleted && job.Status != jobs.JobStatusFailed {
				break
			}
			finished = append(finished, job)
		}
		if len(finished) == len(ids) {
			return finished, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
