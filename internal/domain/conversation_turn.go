package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ConversationTurn.
var (
	ErrEmptyTurnSessionID = errors.New("conversation turn session ID cannot be empty")
	ErrEmptyTurnModuleID  = errors.New("conversation turn module ID cannot be empty")
	ErrEmptyTurnSubmitter = errors.New("conversation turn submitter text cannot be empty")
)

// ConversationTurn is one exchange in a learner's dialogue for a module:
// the submitted text, the composed feedback, and the evidence sources the
// feedback actually cited. Turns accumulate as unbounded full history; only
// the most recent N form the active context window for prompt assembly.
type ConversationTurn struct {
	SessionID        uuid.UUID `json:"session_id"`
	ModuleID         string    `json:"module_id"`
	SubmitterText    string    `json:"submitter_text"`
	ComposedFeedback string    `json:"composed_feedback"`
	CitedSources     []string  `json:"cited_sources"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewConversationTurn creates a turn stamped with the current time.
// Returns an error if validation fails.
func NewConversationTurn(
	sessionID uuid.UUID,
	moduleID string,
	submitterText string,
	composedFeedback string,
	citedSources []string,
) (*ConversationTurn, error) {
	turn := &ConversationTurn{
		SessionID:        sessionID,
		ModuleID:         moduleID,
		SubmitterText:    submitterText,
		ComposedFeedback: composedFeedback,
		CitedSources:     citedSources,
		Timestamp:        time.Now().UTC(),
	}

	if err := turn.Validate(); err != nil {
		return nil, err
	}

	return turn, nil
}

// Validate checks if the ConversationTurn has valid data.
func (t *ConversationTurn) Validate() error {
	if t.SessionID == uuid.Nil {
		return ErrEmptyTurnSessionID
	}

	if t.ModuleID == "" {
		return ErrEmptyTurnModuleID
	}

	if t.SubmitterText == "" {
		return ErrEmptyTurnSubmitter
	}

	return nil
}
