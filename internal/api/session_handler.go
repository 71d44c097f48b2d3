package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/logger"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/service"
)

// SessionHandler handles session lifecycle HTTP requests.
type SessionHandler struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
// If logger is nil, a default logger will be used.
func NewSessionHandler(sessions *service.SessionService, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		RespondWithError(w, r, http.StatusBadRequest, "display_name is required")
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), domain.SessionProfile{
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		log.Warn("session creation failed", slog.String("error", err.Error()))
		RespondWithError(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err))
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// Get handles GET /sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "session id must be a valid UUID")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		RespondWithError(w, r, MapErrorToStatusCode(err), SafeErrorMessage(err))
		return
	}

	RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}
