package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/api/handlers"
	"github.com/dvloznov/cfo-copilot/internal/api/middleware"
	"github.com/dvloznov/cfo-copilot/internal/app"
	"github.com/dvloznov/cfo-copilot/internal/config"
	"github.com/dvloznov/cfo-copilot/internal/copilot"
	"github.com/dvloznov/cfo-copilot/internal/jobs/inmemory"
	"github.com/dvloznov/cfo-copilot/internal/logger"
	"github.com/dvloznov/cfo-copilot/internal/planner"
	"github.com/dvloznov/cfo-copilot/internal/telemetry"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewFromConfig(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	// Amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx := logger.WithContext(context.Background(), log)

	loadCtx, cancelLoad := context.WithTimeout(ctx, 2*time.Minute)
	a, err := app.Load(loadCtx, cfg, log, copilot.WithObserver(func(i planner.Intent) {
		telemetry.RecordQuestion(string(i))
	}))
	cancelLoad()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load finance data")
	}

	publisher, closePublisher, err := app.NewPublisher(ctx, cfg.Report)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report publisher")
	}
	defer closePublisher()

	// Report jobs run in the background
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore,
		inmemory.WithWorkers(cfg.Server.Workers),
		inmemory.WithLogger(log),
	)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	generator, err := a.NewGenerator(publisher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report generator")
	}
	if err := jobQueue.Start(workerCtx, generator.JobHandler()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start report worker")
	}

	mux := handlers.NewMux(handlers.Routes{
		Ask:        handlers.NewAskHandler(a.Copilot, log),
		Metrics:    handlers.NewMetricsHandler(a.Engine, log),
		Reports:    handlers.NewReportsHandler(jobQueue, a.Engine, log),
		Jobs:       handlers.NewJobsHandler(jobStore, log),
		AskLimiter: middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
		Prometheus: telemetry.Handler(),
	})

	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.Metrics,
		middleware.RequestID,
		middleware.CORS,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight report jobs finish before the worker context goes away
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
