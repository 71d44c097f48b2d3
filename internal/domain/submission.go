package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Submission.
var (
	ErrEmptySubmissionID         = errors.New("submission ID cannot be empty")
	ErrEmptySubmissionSessionID  = errors.New("submission session ID cannot be empty")
	ErrEmptySubmissionModuleID   = errors.New("submission module ID cannot be empty")
	ErrEmptySubmissionScenarioID = errors.New("submission scenario ID cannot be empty")
	ErrEmptySubmissionText       = errors.New("submission text cannot be empty")
)

// Submission is a learner's free-text response to one clinical scenario.
// It is created once per attempt and is immutable afterwards; rubric scores
// and retrieval results reference it by ID.
type Submission struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	ModuleID   string    `json:"module_id"`
	ScenarioID string    `json:"scenario_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSubmission creates a new Submission for the given session, module and
// scenario. It generates a new UUID for the submission ID and stamps the
// creation time. Returns an error if validation fails.
func NewSubmission(sessionID uuid.UUID, moduleID, scenarioID, text string) (*Submission, error) {
	sub := &Submission{
		ID:         uuid.New(),
		SessionID:  sessionID,
		ModuleID:   moduleID,
		ScenarioID: scenarioID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	return sub, nil
}

// Validate checks if the Submission has valid data.
// Returns an error if any field fails validation.
func (s *Submission) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubmissionID
	}

	if s.SessionID == uuid.Nil {
		return ErrEmptySubmissionSessionID
	}

	if s.ModuleID == "" {
		return ErrEmptySubmissionModuleID
	}

	if s.ScenarioID == "" {
		return ErrEmptySubmissionScenarioID
	}

	if s.Text == "" {
		return ErrEmptySubmissionText
	}

	return nil
}
