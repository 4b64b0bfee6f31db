package handlers

import (
	"net/http"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/api/middleware"
)

// Routes bundles the handlers mounted by NewMux.
type Routes struct {
	Ask     *AskHandler
	Metrics *MetricsHandler
	Reports *ReportsHandler
	Jobs    *JobsHandler

	// AskLimiter throttles /api/ask when set.
	AskLimiter *middleware.IPRateLimiter

	// Prometheus serves /metrics when set.
	Prometheus http.Handler
}

// method restricts a handler to one HTTP method.
func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

// NewMux registers every API route.
func NewMux(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	var ask http.Handler = method(http.MethodPost, rt.Ask.Ask)
	if rt.AskLimiter != nil {
		ask = rt.AskLimiter.Limit(ask)
	}
	mux.Handle("/api/ask", ask)

	mux.HandleFunc("/api/months", method(http.MethodGet, rt.Metrics.Months))
	mux.HandleFunc("/api/metrics/revenue-vs-budget", method(http.MethodGet, rt.Metrics.RevenueVsBudget))
	mux.HandleFunc("/api/metrics/gross-margin-trend", method(http.MethodGet, rt.Metrics.GrossMarginTrend))
	mux.HandleFunc("/api/metrics/opex-breakdown", method(http.MethodGet, rt.Metrics.OpexBreakdown))
	mux.HandleFunc("/api/metrics/ebitda", method(http.MethodGet, rt.Metrics.EBITDA))
	mux.HandleFunc("/api/metrics/cash-runway", method(http.MethodGet, rt.Metrics.CashRunway))

	mux.HandleFunc("/api/reports", method(http.MethodPost, rt.Reports.CreateReport))

	mux.HandleFunc("/api/jobs", method(http.MethodGet, rt.Jobs.ListJobs))
	mux.HandleFunc("/api/jobs/", method(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		rt.Jobs.GetJob(w, r, jobID)
	}))

	mux.HandleFunc("/health", Health)
	if rt.Prometheus != nil {
		mux.Handle("/metrics", rt.Prometheus)
	}

	return mux
}
