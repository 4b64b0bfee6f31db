// Package config loads runtime settings from an optional YAML file, an
// optional .env file and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "cfo-copilot.yaml"

// Data sources.
const (
	SourceWorkbook = "workbook"
	SourceGCS      = "gcs"
	SourceBigQuery = "bigquery"
)

// Config is the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Metrics MetricsConfig `yaml:"metrics"`
	Server  ServerConfig  `yaml:"server"`
	Report  ReportConfig  `yaml:"report"`
	Notion  NotionConfig  `yaml:"notion"`
	Log     LogConfig     `yaml:"log"`
}

// DataConfig selects where the four finance tables come from.
type DataConfig struct {
	Source       string `yaml:"source"`
	WorkbookPath string `yaml:"workbook_path"`
	GCSURI       string `yaml:"gcs_uri"`
	BQProject    string `yaml:"bq_project"`
	BQDataset    string `yaml:"bq_dataset"`
}

// MetricsConfig tunes the metrics engine and dispatch defaults.
type MetricsConfig struct {
	ReportingCurrency string `yaml:"reporting_currency"`
	MissingFX         string `yaml:"missing_fx"`
	// DefaultMonth is used when a question needs a month but names none.
	// Empty means the latest month of actuals.
	DefaultMonth string `yaml:"default_month"`
	TrendWindow  int    `yaml:"trend_window"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      string  `yaml:"port"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
	Workers   int     `yaml:"workers"`
}

// ReportConfig selects where rendered reports are published and in which
// format (html or pdf). Bucket wins over Dir.
type ReportConfig struct {
	Bucket string `yaml:"bucket"`
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// NotionConfig holds credentials for the KPI sync.
type NotionConfig struct {
	Token      string `yaml:"token"`
	KPIDBID    string `yaml:"kpi_db_id"`
	MonthsBack int    `yaml:"months_back"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Data: DataConfig{
			Source:       SourceWorkbook,
			WorkbookPath: "fixtures/data.xlsx",
			BQDataset:    "finance",
		},
		Metrics: MetricsConfig{
			ReportingCurrency: domain.DefaultReportingCurrency,
			MissingFX:         "skip",
			TrendWindow:       3,
		},
		Server: ServerConfig{
			Port:      "8080",
			RateLimit: 5,
			RateBurst: 10,
			Workers:   2,
		},
		Report: ReportConfig{
			Dir:    "reports",
			Format: "html",
		},
		Notion: NotionConfig{
			MonthsBack: 12,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads .env (if present), then path (if present), then environment
// overrides, and validates the result. An empty path means DefaultPath.
func Load(path string) (Config, error) {
	// A missing .env is the common case outside local development.
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	if err := loadConfigFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := loadConfigFromEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("CFO_DATA_SOURCE", &cfg.Data.Source)
	setString("CFO_WORKBOOK_PATH", &cfg.Data.WorkbookPath)
	setString("CFO_GCS_URI", &cfg.Data.GCSURI)
	setString("CFO_BQ_PROJECT", &cfg.Data.BQProject)
	setString("CFO_BQ_DATASET", &cfg.Data.BQDataset)
	setString("CFO_REPORTING_CURRENCY", &cfg.Metrics.ReportingCurrency)
	setString("CFO_MISSING_FX", &cfg.Metrics.MissingFX)
	setString("CFO_DEFAULT_MONTH", &cfg.Metrics.DefaultMonth)
	setString("CFO_REPORT_BUCKET", &cfg.Report.Bucket)
	setString("CFO_REPORT_DIR", &cfg.Report.Dir)
	setString("CFO_REPORT_FORMAT", &cfg.Report.Format)
	setString("PORT", &cfg.Server.Port)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
	setString("NOTION_TOKEN", &cfg.Notion.Token)
	setString("NOTION_KPI_DB_ID", &cfg.Notion.KPIDBID)

	if v := os.Getenv("CFO_TREND_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CFO_TREND_WINDOW: %w", err)
		}
		cfg.Metrics.TrendWindow = n
	}
	if v := os.Getenv("CFO_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("CFO_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = f
	}
	if v := os.Getenv("CFO_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CFO_RATE_BURST: %w", err)
		}
		cfg.Server.RateBurst = n
	}
	return nil
}

// Validate checks that enumerated fields hold known values.
func (c Config) Validate() error {
	var errs []error

	switch c.Data.Source {
	case SourceWorkbook:
		if c.Data.WorkbookPath == "" {
			errs = append(errs, errors.New("data.workbook_path is required for the workbook source"))
		}
	case SourceGCS:
		if !strings.HasPrefix(c.Data.GCSURI, "gs://") {
			errs = append(errs, fmt.Errorf("data.gcs_uri must be a gs:// URI, got %q", c.Data.GCSURI))
		}
	case SourceBigQuery:
		if c.Data.BQProject == "" {
			errs = append(errs, errors.New("data.bq_project is required for the bigquery source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown data.source %q", c.Data.Source))
	}

	// FX rates are quoted against USD only.
	if cur := strings.ToUpper(strings.TrimSpace(c.Metrics.ReportingCurrency)); cur != "" && cur != domain.DefaultReportingCurrency {
		errs = append(errs, fmt.Errorf("metrics.reporting_currency must be %s, got %q", domain.DefaultReportingCurrency, c.Metrics.ReportingCurrency))
	}

	switch strings.ToLower(c.Metrics.MissingFX) {
	case "", "skip", "strict":
	default:
		errs = append(errs, fmt.Errorf("unknown metrics.missing_fx %q", c.Metrics.MissingFX))
	}

	if c.Metrics.DefaultMonth != "" {
		if _, err := domain.ParseMonth(c.Metrics.DefaultMonth); err != nil {
			errs = append(errs, fmt.Errorf("metrics.default_month: %w", err))
		}
	}
	switch strings.ToLower(c.Report.Format) {
	case "", "html", "pdf":
	default:
		errs = append(errs, fmt.Errorf("unknown report.format %q (expected html or pdf)", c.Report.Format))
	}

	if c.Metrics.TrendWindow < 1 {
		errs = append(errs, fmt.Errorf("metrics.trend_window must be positive, got %d", c.Metrics.TrendWindow))
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server rate limit must be positive, got %v/%d", c.Server.RateLimit, c.Server.RateBurst))
	}

	return errors.Join(errs...)
}
