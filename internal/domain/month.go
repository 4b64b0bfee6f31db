package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MonthLayout is the canonical month format used across the system.
const MonthLayout = "2006-01"

// ErrInvalidMonth is returned when a month is not in YYYY-MM form.
var ErrInvalidMonth = errors.New("invalid month")

// ParseMonth validates a "YYYY-MM" string and returns it unchanged.
func ParseMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(MonthLayout) {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidMonth, s)
	}
	if _, err := time.Parse(MonthLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidMonth, s)
	}
	return s, nil
}

// NormalizeMonth accepts the month shapes spreadsheets and warehouses tend to
// export ("2025-06", "2025-06-01", "2025-06-01 00:00:00", "2025-06-01T00:00:00Z")
// and truncates them to "YYYY-MM".
func NormalizeMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(MonthLayout) {
		if len(s) < 10 {
			return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
		}
		if _, err := time.Parse("2006-01-02", s[:10]); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
		}
		s = s[:len(MonthLayout)]
	}
	return ParseMonth(s)
}

// MonthOf formats a time as "YYYY-MM".
func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}
