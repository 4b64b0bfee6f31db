// Package telemetry exposes the service's Prometheus metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cfo_copilot"

var (
	// questionsTotal counts copilot questions.
	// Labels: intent
	questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "copilot",
		Name:      "questions_total",
		Help:      "Total questions answered by intent",
	}, []string{"intent"})

	// httpRequestDuration measures request latency.
	// Labels: method, route, status
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route", "status"})

	// reportJobsTotal counts finished report jobs.
	// Labels: status (completed, failed)
	reportJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "jobs_total",
		Help:      "Total report generation attempts by outcome",
	}, []string{"status"})

	// reportDuration measures build + render + publish time.
	reportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "generation_seconds",
		Help:      "Report generation time in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// rateLimitedTotal counts requests rejected by the rate limiter.
	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Total requests rejected by the per-IP rate limiter",
	})
)

// RecordQuestion counts one answered question.
func RecordQuestion(intent string) {
	questionsTotal.WithLabelValues(intent).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordReportJob records one report generation attempt.
func RecordReportJob(err error, elapsed time.Duration) {
	status := "completed"
	if err != nil {
		status = "failed"
	}
	reportJobsTotal.WithLabelValues(status).Inc()
	reportDuration.Observe(elapsed.Seconds())
}

// RecordRateLimited counts one rejected request.
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
