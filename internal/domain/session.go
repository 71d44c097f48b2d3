package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Session.
var (
	ErrEmptySessionID          = errors.New("session ID cannot be empty")
	ErrEmptySessionDisplayName = errors.New("session display name cannot be empty")
)

// Session is the durable record of one learner: profile fields, per-module
// progress, and (via the session store) all conversation turns. It is created
// at the first learner interaction and is the sole owner of its
// ModuleProgress and ConversationTurn records. Sessions are never deleted by
// the core; lifecycle belongs to the excluded account-management layer.
type Session struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"` // free-form profile field, e.g. "pharmacist"
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// SessionProfile carries the profile fields supplied when a session is
// first created.
type SessionProfile struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// NewSession creates a new Session from the given profile.
// It generates a new UUID for the session ID and stamps both timestamps.
// Returns an error if validation fails.
func NewSession(profile SessionProfile) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:           uuid.New(),
		DisplayName:  profile.DisplayName,
		Role:         profile.Role,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.DisplayName == "" {
		return ErrEmptySessionDisplayName
	}

	return nil
}

// Touch updates the last-active timestamp.
func (s *Session) Touch(now time.Time) {
	s.LastActiveAt = now.UTC()
}
