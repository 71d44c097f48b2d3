package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// SessionService covers session lifecycle outside the submission pipeline:
// creation at first interaction and profile lookup.
type SessionService struct {
	sessionStore store.SessionStore
	logger       *slog.Logger
}

// NewSessionService creates a session lifecycle service.
// If logger is nil, a default logger will be used.
func NewSessionService(sessionStore store.SessionStore, logger *slog.Logger) (*SessionService, error) {
	if sessionStore == nil {
		return nil, fmt.Errorf("%w: sessionStore cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SessionService{
		sessionStore: sessionStore,
		logger:       logger.With(slog.String("component", "session_service")),
	}, nil
}

// CreateSession creates a session from the supplied profile.
func (s *SessionService) CreateSession(ctx context.Context, profile domain.SessionProfile) (*domain.Session, error) {
	session, err := domain.NewSession(profile)
	if err != nil {
		return nil, err
	}

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		slog.String("session_id", session.ID.String()))

	return session, nil
}

// GetSession retrieves a session by ID.
// Returns store.ErrSessionNotFound if it does not exist.
func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.sessionStore.GetSession(ctx, id)
}
