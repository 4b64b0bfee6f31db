package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dvloznov/cfo-copilot/internal/api/middleware"
	"github.com/rs/zerolog"
)

// maxQuestionBytes bounds the /api/ask request body.
const maxQuestionBytes = 8 << 10

// AskHandler handles the chat endpoint.
type AskHandler struct {
	copilot Asker
	log     zerolog.Logger
}

// NewAskHandler creates a new ask handler.
func NewAskHandler(copilot Asker, log zerolog.Logger) *AskHandler {
	return &AskHandler{copilot: copilot, log: log}
}

// Ask handles POST /api/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	answer, err := h.copilot.Ask(r.Context(), req.Question)
	if err != nil {
		status := metricErrorStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("Failed to answer question")
		}
		middleware.WriteError(w, status, err.Error())
		return
	}

	h.log.Info().
		Str("intent", string(answer.Intent)).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Bool("warning", answer.Warning != "").
		Msg("Question answered")

	middleware.WriteJSON(w, http.StatusOK, answer)
}
