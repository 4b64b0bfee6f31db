// Package handlers implements the HTTP endpoints of the copilot API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dvloznov/cfo-copilot/internal/api/middleware"
	"github.com/dvloznov/cfo-copilot/internal/copilot"
	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/metrics"
)

// Asker answers free-form questions.
type Asker interface {
	Ask(ctx context.Context, question string) (*copilot.Answer, error)
}

// Engine is the subset of *metrics.Engine exposed over HTTP.
type Engine interface {
	GetRevenueVsBudget(month string) metrics.RevenueVsBudget
	GetGrossMarginTrend(start, end string) []metrics.GrossMarginPoint
	GetOpexBreakdown(month string) []metrics.OpexCategory
	GetEBITDA(month string) metrics.EBITDA
	GetCashRunway() (metrics.CashRunway, error)
	Months() []string
	LatestMonth() (string, bool)
}

// monthParam reads an optional YYYY-MM query parameter. It writes a 400 and
// returns ok=false when the value is malformed.
func monthParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", true
	}
	month, err := domain.ParseMonth(raw)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid "+name+": expected YYYY-MM")
		return "", false
	}
	return month, true
}

// metricErrorStatus maps metric failures to HTTP statuses.
func metricErrorStatus(err error) int {
	switch {
	case errors.Is(err, copilot.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, metrics.ErrNoActuals), errors.Is(err, metrics.ErrNoCash):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
