package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dvloznov/cfo-copilot/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfo-copilot.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

var envKeys = []string{
	"CFO_DATA_SOURCE", "CFO_WORKBOOK_PATH", "CFO_GCS_URI", "CFO_BQ_PROJECT", "CFO_BQ_DATASET",
	"CFO_REPORTING_CURRENCY", "CFO_MISSING_FX", "CFO_DEFAULT_MONTH", "CFO_REPORT_BUCKET",
	"CFO_REPORT_DIR", "CFO_REPORT_FORMAT", "PORT", "LOG_LEVEL", "LOG_FORMAT", "NOTION_TOKEN", "NOTION_KPI_DB_ID",
	"CFO_TREND_WINDOW", "CFO_RATE_LIMIT", "CFO_RATE_BURST",
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data:
  source: bigquery
  bq_project: acme-finance
metrics:
  missing_fx: strict
  default_month: "2025-06"
  trend_window: 6
server:
  port: "9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.Source != SourceBigQuery || cfg.Data.BQProject != "acme-finance" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Data.BQDataset != "finance" {
		t.Errorf("unset field lost its default: bq_dataset = %q", cfg.Data.BQDataset)
	}
	if cfg.Metrics.MissingFX != "strict" || cfg.Metrics.DefaultMonth != "2025-06" || cfg.Metrics.TrendWindow != 6 {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  port: \"9090\"\n")
	t.Setenv("PORT", "7070")
	t.Setenv("CFO_TREND_WINDOW", "4")
	t.Setenv("CFO_MISSING_FX", "strict")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, want env value 7070", cfg.Server.Port)
	}
	if cfg.Metrics.TrendWindow != 4 || cfg.Metrics.MissingFX != "strict" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("CFO_RATE_BURST", "lots")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for non-numeric CFO_RATE_BURST")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "data: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown source", func(c *Config) { c.Data.Source = "s3" }, "unknown data.source"},
		{"gcs without uri", func(c *Config) { c.Data.Source = SourceGCS }, "gs:// URI"},
		{"bigquery without project", func(c *Config) { c.Data.Source = SourceBigQuery }, "bq_project"},
		{"lowercase usd", func(c *Config) { c.Metrics.ReportingCurrency = "usd" }, ""},
		{"non-usd currency", func(c *Config) { c.Metrics.ReportingCurrency = "EUR" }, "reporting_currency must be USD"},
		{"bad policy", func(c *Config) { c.Metrics.MissingFX = "ignore" }, "missing_fx"},
		{"bad default month", func(c *Config) { c.Metrics.DefaultMonth = "June 2025" }, "default_month"},
		{"pdf report", func(c *Config) { c.Report.Format = "PDF" }, ""},
		{"bad report format", func(c *Config) { c.Report.Format = "docx" }, "report.format"},
		{"zero window", func(c *Config) { c.Metrics.TrendWindow = 0 }, "trend_window"},
		{"zero burst", func(c *Config) { c.Server.RateBurst = 0 }, "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_RejectsNonUSDCurrencyFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CFO_REPORTING_CURRENCY", "GBP")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reporting_currency") {
		t.Fatalf("Load() error = %v, want reporting_currency rejection", err)
	}
}

func TestValidate_WrapsInvalidMonth(t *testing.T) {
	cfg := Default()
	cfg.Metrics.DefaultMonth = "2025-13"
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidMonth) {
		t.Errorf("Validate() error = %v, want ErrInvalidMonth", err)
	}
}
