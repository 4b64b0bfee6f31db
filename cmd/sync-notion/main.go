package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/app"
	"github.com/dvloznov/cfo-copilot/internal/config"
	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/logger"
	"github.com/dvloznov/cfo-copilot/internal/notionsync"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config file")
	startStr := flag.String("start", "", "First month to sync, YYYY-MM (default: months_back before the latest month)")
	endStr := flag.String("end", "", "Last month to sync, YYYY-MM (default: latest month)")
	notionToken := flag.String("notion-token", "", "Notion API token (default: notion.token)")
	notionDBID := flag.String("notion-db-id", "", "Notion KPI database ID (default: notion.kpi_db_id)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewFromConfig(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	token := firstNonEmpty(*notionToken, cfg.Notion.Token)
	dbID := firstNonEmpty(*notionDBID, cfg.Notion.KPIDBID)
	if token == "" {
		log.Fatal().Msg("Error: --notion-token or NOTION_TOKEN is required")
	}
	if dbID == "" {
		log.Fatal().Msg("Error: --notion-db-id or NOTION_KPI_DB_ID is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Load(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load finance data")
	}

	latest, ok := a.Engine.LatestMonth()
	if !ok {
		log.Fatal().Msg("No actuals loaded; nothing to sync")
	}

	start, end, err := syncWindow(*startStr, *endStr, latest, cfg.Notion.MonthsBack)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid sync window")
	}

	log.Info().
		Str("start", start).
		Str("end", end).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	snapshots := notionsync.BuildSnapshots(a.Engine, start, end)
	if len(snapshots) == 0 {
		log.Warn().Str("start", start).Str("end", end).Msg("No actuals months in range")
		return
	}

	result, err := notionsync.SyncKPIs(ctx, snapshots, notionsync.NewNotionClient(token), dbID, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d updated, %d failed.\n", result.Created, result.Updated, result.Failed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// syncWindow resolves the month range. An empty end is the latest month and
// an empty start is monthsBack months before end, inclusive of end.
func syncWindow(start, end, latest string, monthsBack int) (string, string, error) {
	var err error
	if end == "" {
		end = latest
	} else if end, err = domain.ParseMonth(end); err != nil {
		return "", "", fmt.Errorf("end: %w", err)
	}

	if start == "" {
		if monthsBack <= 0 {
			monthsBack = 1
		}
		t, err := time.Parse(domain.MonthLayout, end)
		if err != nil {
			return "", "", fmt.Errorf("end: %w", err)
		}
		start = domain.MonthOf(t.AddDate(0, -(monthsBack - 1), 0))
	} else if start, err = domain.ParseMonth(start); err != nil {
		return "", "", fmt.Errorf("start: %w", err)
	}

	if start > end {
		return "", "", fmt.Errorf("start %s is after end %s", start, end)
	}
	return start, end, nil
}
