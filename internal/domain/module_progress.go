package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ModuleProgress.
var (
	ErrEmptyProgressSessionID = errors.New("module progress session ID cannot be empty")
	ErrEmptyProgressModuleID  = errors.New("module progress module ID cannot be empty")
	ErrNegativeAttempts       = errors.New("attempts must be greater than or equal to 0")
)

// ModuleProgress tracks a learner's standing within one module: attempt
// count, the best mastery score ever recorded (monotonically non-decreasing),
// the current difficulty level, and accumulated time spent. It is owned by
// its Session and mutated after every scored submission; only the adaptive
// difficulty controller changes the current level.
type ModuleProgress struct {
	SessionID        uuid.UUID       `json:"session_id"`
	ModuleID         string          `json:"module_id"`
	Attempts         int             `json:"attempts"`
	BestMasteryScore float64         `json:"best_mastery_score"`
	CurrentLevel     DifficultyLevel `json:"current_difficulty"`

	// MasteryComplete is set once the learner scores at or above the expert
	// threshold while at expert level. Further practice is allowed but no
	// forced transitions occur.
	MasteryComplete bool `json:"mastery_complete"`

	TimeSpent time.Duration `json:"time_spent"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewModuleProgress creates progress for a session and module with default
// values: zero attempts at novice level.
func NewModuleProgress(sessionID uuid.UUID, moduleID string) (*ModuleProgress, error) {
	now := time.Now().UTC()
	progress := &ModuleProgress{
		SessionID:        sessionID,
		ModuleID:         moduleID,
		Attempts:         0,
		BestMasteryScore: 0,
		CurrentLevel:     DifficultyNovice,
		MasteryComplete:  false,
		TimeSpent:        0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the ModuleProgress has valid data.
// Returns an error if any field fails validation.
func (p *ModuleProgress) Validate() error {
	if p.SessionID == uuid.Nil {
		return ErrEmptyProgressSessionID
	}

	if p.ModuleID == "" {
		return ErrEmptyProgressModuleID
	}

	if p.Attempts < 0 {
		return ErrNegativeAttempts
	}

	if p.BestMasteryScore < 0 || p.BestMasteryScore > 1 {
		return ErrMasteryScoreOutOfRange
	}

	if !p.CurrentLevel.Valid() {
		return ErrInvalidDifficultyLevel
	}

	return nil
}
