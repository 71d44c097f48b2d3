package api

import (
	"time"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// SubmitRequest is the body of POST /submissions.
type SubmitRequest struct {
	SessionID  string `json:"session_id"`
	ModuleID   string `json:"module_id"`
	ScenarioID string `json:"scenario_id"`
	Text       string `json:"text"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

func sessionToResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		ID:           session.ID.String(),
		DisplayName:  session.DisplayName,
		Role:         session.Role,
		CreatedAt:    session.CreatedAt,
		LastActiveAt: session.LastActiveAt,
	}
}
