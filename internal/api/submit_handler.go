package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/logger"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/service"
)

// Submitter is the submission pipeline boundary the handler depends on.
type Submitter interface {
	Submit(
		ctx context.Context,
		sessionID uuid.UUID,
		moduleID string,
		scenarioID string,
		text string,
	) (*service.SubmitResult, error)
}

// SubmitHandler handles submission-related HTTP requests.
type SubmitHandler struct {
	submitter Submitter
	logger    *slog.Logger
}

// NewSubmitHandler creates a new SubmitHandler.
// If logger is nil, a default logger will be used.
func NewSubmitHandler(submitter Submitter, logger *slog.Logger) *SubmitHandler {
	if submitter == nil {
		panic("submitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SubmitHandler{
		submitter: submitter,
		logger:    logger.With(slog.String("component", "submit_handler")),
	}
}

// Submit handles POST /submissions.
// It scores the submission, composes feedback, and returns the full
// submission outcome including the difficulty transition.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "session_id must be a valid UUID")
		return
	}
	if req.ModuleID == "" || req.ScenarioID == "" {
		RespondWithError(w, r, http.StatusBadRequest, "module_id and scenario_id are required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		RespondWithError(w, r, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.submitter.Submit(r.Context(), sessionID, req.ModuleID, req.ScenarioID, req.Text)
	if err != nil {
		log.Warn("submission failed",
			slog.String("error", err.Error()),
			slog.String("session_id", req.SessionID),
			slog.String("module_id", req.ModuleID))
		RespondWithError(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err))
		return
	}

	RespondWithJSON(w, r, http.StatusOK, result)
}
