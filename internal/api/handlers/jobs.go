package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/cfo-copilot/internal/api/middleware"
	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/dvloznov/cfo-copilot/internal/jobs"
	"github.com/rs/zerolog"
)

// ReportsHandler enqueues report generation.
type ReportsHandler struct {
	publisher jobs.Publisher
	engine    Engine
	log       zerolog.Logger
}

// NewReportsHandler creates a new reports handler. The engine supplies the
// default month when a request omits one.
func NewReportsHandler(publisher jobs.Publisher, engine Engine, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{publisher: publisher, engine: engine, log: log}
}

// CreateReport handles POST /api/reports
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	month := req.Month
	if month == "" {
		latest, ok := h.engine.LatestMonth()
		if !ok {
			middleware.WriteError(w, http.StatusUnprocessableEntity, "month is required when no actuals are loaded")
			return
		}
		month = latest
	}
	month, err := domain.ParseMonth(month)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid month: expected YYYY-MM")
		return
	}

	job := &jobs.GenerateReportJob{Month: month}
	if err := h.publisher.PublishGenerateReport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("month", month).Msg("Failed to enqueue report job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue report job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("month", month).Msg("Report job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"month":  month,
		"status": string(job.Status),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Month:  query.Get("month"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
