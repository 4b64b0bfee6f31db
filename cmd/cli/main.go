package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/app"
	"github.com/dvloznov/cfo-copilot/internal/config"
	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/gcs"
	infraBQ "github.com/dvloznov/cfo-copilot/internal/infra/bigquery"
	"github.com/dvloznov/cfo-copilot/internal/loader"
	"github.com/dvloznov/cfo-copilot/internal/logger"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ask":
		runAsk()
	case "report":
		runReport()
	case "inspect":
		runInspect()
	case "upload":
		runUpload()
	case "import":
		runImport()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("CFO Copilot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  ask       Answer a finance question")
	fmt.Println("  report    Generate the monthly CFO report")
	fmt.Println("  inspect   Summarize the loaded finance tables")
	fmt.Println("  upload    Upload a workbook to GCS")
	fmt.Println("  import    Load a workbook into the BigQuery finance tables")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// setup parses the subcommand flags and loads configuration and a logger.
func setup(fs *flag.FlagSet) (config.Config, zerolog.Logger) {
	configPath := fs.String("config", config.DefaultPath, "Path to the YAML config file")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	// Logs go to stderr so command output stays clean
	return cfg, logger.NewFromConfig(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	question := fs.String("q", "", "Question to answer")
	cfg, log := setup(fs)

	q := *question
	if q == "" {
		q = strings.Join(fs.Args(), " ")
	}
	if strings.TrimSpace(q) == "" {
		log.Fatal().Msg("Usage: cli ask -q \"What was June 2025 revenue vs budget?\"")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Load(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load finance data")
	}

	answer, err := a.Copilot.Ask(ctx, q)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to answer question")
	}

	if answer.Warning != "" {
		fmt.Println("Warning:", answer.Warning)
		return
	}
	fmt.Println(answer.Reply)
	if len(answer.Highlights) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, h := range answer.Highlights {
			fmt.Fprintf(w, "%s\t%s\t%s\n", h.Label, h.Value, h.Delta)
		}
		w.Flush()
	}
}

func runReport() {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	month := fs.String("month", "", "Reporting month YYYY-MM (defaults to the latest month of actuals)")
	cfg, log := setup(fs)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Load(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load finance data")
	}

	m := *month
	if m == "" {
		latest, ok := a.Engine.LatestMonth()
		if !ok {
			log.Fatal().Msg("No actuals loaded; pass -month")
		}
		m = latest
	}
	if _, err := domain.ParseMonth(m); err != nil {
		log.Fatal().Err(err).Msg("Invalid -month")
	}

	publisher, closePublisher, err := app.NewPublisher(ctx, cfg.Report)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report publisher")
	}
	defer closePublisher()

	generator, err := a.NewGenerator(publisher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report generator")
	}
	uri, err := generator.Generate(ctx, m)
	if err != nil {
		log.Fatal().Err(err).Msg("Report generation failed")
	}

	fmt.Printf("Report for %s written to %s\n", m, uri)
}

func runInspect() {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	cfg, log := setup(fs)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Load(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load finance data")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS\tMONTHS\tCOLUMNS")
	for _, s := range loader.Summarize(a.Dataset) {
		span := "-"
		if s.MinMonth != "" {
			span = s.MinMonth + " .. " + s.MaxMonth
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Name, s.Rows, span, strings.Join(s.Columns, ", "))
	}
	w.Flush()

	if missing := a.Engine.MissingFX(); len(missing) > 0 {
		fmt.Printf("\n%d (month, currency) pairs have no FX rate and are excluded:\n", len(missing))
		for _, k := range missing {
			fmt.Printf("  %s %s\n", k.Month, k.Currency)
		}
	}
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to the local workbook")
	_, log := setup(fs)

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}
	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	// Parse before uploading so a broken workbook never reaches the bucket
	if _, err := (&loader.WorkbookSource{Path: *filePath}).Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Workbook is not valid")
	}

	storage, err := gcs.NewGCSStorageService(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer storage.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading workbook to GCS")

	if err := storage.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcs.BuildGCSURI(*bucketName, *objectName))
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	filePath := fs.String("file", "", "Workbook to import (defaults to data.workbook_path)")
	dryRun := fs.Bool("dry-run", false, "Parse and convert only; do not touch BigQuery")
	cfg, log := setup(fs)

	path := *filePath
	if path == "" {
		path = cfg.Data.WorkbookPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	ds, err := (&loader.WorkbookSource{Path: path}).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read workbook")
	}

	actuals, err := infraBQ.FromDomainLedger(ds.Actuals)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert actuals")
	}
	budget, err := infraBQ.FromDomainLedger(ds.Budget)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert budget")
	}
	cash, err := infraBQ.FromDomainCash(ds.Cash)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert cash")
	}
	fx, err := infraBQ.FromDomainFX(ds.FX)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert fx rates")
	}

	if *dryRun {
		log.Info().
			Int("actuals", len(actuals)).
			Int("budget", len(budget)).
			Int("cash", len(cash)).
			Int("fx", len(fx)).
			Msg("[DRY RUN] Would replace BigQuery finance tables")
		return
	}

	if cfg.Data.BQProject == "" {
		log.Fatal().Msg("data.bq_project (or CFO_BQ_PROJECT) is required for import")
	}

	repo, err := infraBQ.NewBigQueryFinanceRepository(ctx, cfg.Data.BQProject, cfg.Data.BQDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	tables := []struct {
		name   string
		insert func(context.Context) error
	}{
		{infraBQ.ActualsTable, func(ctx context.Context) error { return repo.InsertActuals(ctx, actuals) }},
		{infraBQ.BudgetTable, func(ctx context.Context) error { return repo.InsertBudget(ctx, budget) }},
		{infraBQ.CashTable, func(ctx context.Context) error { return repo.InsertCash(ctx, cash) }},
		{infraBQ.FXRatesTable, func(ctx context.Context) error { return repo.InsertFXRates(ctx, fx) }},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tables {
		t := t
		g.Go(func() error {
			if err := repo.Truncate(gctx, t.name); err != nil {
				return err
			}
			if err := t.insert(gctx); err != nil {
				return fmt.Errorf("inserting into %s: %w", t.name, err)
			}
			log.Info().Str("table", t.name).Msg("Table replaced")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Imported %d actuals, %d budget, %d cash and %d fx rows into %s.%s\n",
		len(actuals), len(budget), len(cash), len(fx), cfg.Data.BQProject, cfg.Data.BQDataset)
}
