package metrics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoActuals is returned when a metric needs at least one month of actuals.
	ErrNoActuals = errors.New("no months of actuals available")

	// ErrNoCash is returned when the cash table is empty.
	ErrNoCash = errors.New("no cash balance available")

	// ErrMissingFXRate is wrapped by MissingFXError under the strict policy.
	ErrMissingFXRate = errors.New("missing FX rate")
)

// MissingFXError lists every (month, currency) pair that had no FX rate.
type MissingFXError struct {
	Pairs []FXKey
}

func (e *MissingFXError) Error() string {
	parts := make([]string, 0, len(e.Pairs))
	for _, p := range e.Pairs {
		parts = append(parts, p.Month+"/"+p.Currency)
	}
	return fmt.Sprintf("%s for %d pair(s): %s", ErrMissingFXRate, len(e.Pairs), strings.Join(parts, ", "))
}

func (e *MissingFXError) Unwrap() error {
	return ErrMissingFXRate
}
