package handlers

import (
	"net/http"

	"github.com/dvloznov/cfo-copilot/internal/api/middleware"
	"github.com/dvloznov/cfo-copilot/internal/metrics"
	"github.com/rs/zerolog"
)

// MetricsHandler exposes the finance metrics directly.
type MetricsHandler struct {
	engine Engine
	log    zerolog.Logger
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(engine Engine, log zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{engine: engine, log: log}
}

// monthOrLatest reads ?month= and falls back to the latest actuals month.
func (h *MetricsHandler) monthOrLatest(w http.ResponseWriter, r *http.Request) (string, bool) {
	month, ok := monthParam(w, r, "month")
	if !ok {
		return "", false
	}
	if month != "" {
		return month, true
	}
	latest, ok := h.engine.LatestMonth()
	if !ok {
		middleware.WriteError(w, http.StatusUnprocessableEntity, metrics.ErrNoActuals.Error())
		return "", false
	}
	return latest, true
}

// RevenueVsBudget handles GET /api/metrics/revenue-vs-budget?month=YYYY-MM
func (h *MetricsHandler) RevenueVsBudget(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(w, r, "month")
	if !ok {
		return
	}
	if month == "" {
		middleware.WriteError(w, http.StatusBadRequest, "month is required")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.engine.GetRevenueVsBudget(month))
}

// GrossMarginTrend handles GET /api/metrics/gross-margin-trend?start=&end=
// Missing bounds default to the first and last months of actuals.
func (h *MetricsHandler) GrossMarginTrend(w http.ResponseWriter, r *http.Request) {
	start, ok := monthParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := monthParam(w, r, "end")
	if !ok {
		return
	}

	months := h.engine.Months()
	if start == "" && len(months) > 0 {
		start = months[0]
	}
	if end == "" && len(months) > 0 {
		end = months[len(months)-1]
	}
	if start > end {
		middleware.WriteError(w, http.StatusBadRequest, "start must not be after end")
		return
	}

	points := h.engine.GetGrossMarginTrend(start, end)
	if points == nil {
		points = []metrics.GrossMarginPoint{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"start":  start,
		"end":    end,
		"points": points,
	})
}

// OpexBreakdown handles GET /api/metrics/opex-breakdown?month=YYYY-MM
func (h *MetricsHandler) OpexBreakdown(w http.ResponseWriter, r *http.Request) {
	month, ok := h.monthOrLatest(w, r)
	if !ok {
		return
	}

	categories := h.engine.GetOpexBreakdown(month)
	if categories == nil {
		categories = []metrics.OpexCategory{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"month":      month,
		"categories": categories,
	})
}

// EBITDA handles GET /api/metrics/ebitda?month=YYYY-MM
func (h *MetricsHandler) EBITDA(w http.ResponseWriter, r *http.Request) {
	month, ok := h.monthOrLatest(w, r)
	if !ok {
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.engine.GetEBITDA(month))
}

// CashRunway handles GET /api/metrics/cash-runway
func (h *MetricsHandler) CashRunway(w http.ResponseWriter, r *http.Request) {
	runway, err := h.engine.GetCashRunway()
	if err != nil {
		middleware.WriteError(w, metricErrorStatus(err), err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, runway)
}

// Months handles GET /api/months
func (h *MetricsHandler) Months(w http.ResponseWriter, r *http.Request) {
	months := h.engine.Months()
	if months == nil {
		months = []string{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"months": months,
		"count":  len(months),
	})
}
