package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	if New().GetLevel() != zerolog.InfoLevel {
		t.Error("expected default logger at info level")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithWriter(buf)
	l.Info().Str("month", "2025-06").Msg("report built")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["message"] != "report built" || entry["month"] != "2025-06" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     zerolog.Level
		wantJSON      bool
	}{
		{"debug", "json", zerolog.DebugLevel, true},
		{"WARN", "JSON", zerolog.WarnLevel, true},
		{"", "console", zerolog.InfoLevel, false},
		{"verbose", "text", zerolog.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewFromConfig(buf, tt.level, tt.format)
			if log.GetLevel() != tt.wantLevel {
				t.Errorf("level = %s, want %s", log.GetLevel(), tt.wantLevel)
			}

			log.Error().Msg("hello")
			isJSON := strings.HasPrefix(buf.String(), "{")
			if isJSON != tt.wantJSON {
				t.Errorf("json output = %v, want %v: %s", isJSON, tt.wantJSON, buf.String())
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	l := FromContext(ctx)
	l.Info().Msg("from context")

	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("expected message through context logger, got %q", buf.String())
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	if FromContext(context.Background()).GetLevel() == zerolog.Disabled {
		t.Error("expected default logger to be enabled")
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"job_id": "abc",
		"rows":   12,
	})
	log.Info().Msg("loaded")

	out := buf.String()
	if !strings.Contains(out, `"job_id":"abc"`) || !strings.Contains(out, `"rows":12`) {
		t.Errorf("missing fields in %s", out)
	}
}
