package domain

import "errors"

// Common validation errors for Scenario.
var (
	ErrEmptyScenarioID       = errors.New("scenario ID cannot be empty")
	ErrEmptyScenarioModuleID = errors.New("scenario module ID cannot be empty")
	ErrEmptyScenarioStem     = errors.New("scenario stem cannot be empty")
)

// Scenario is one clinical case presented to a learner. Each scenario
// belongs to a module at a fixed difficulty level and carries concept tags
// that anchor retrieval sub-queries and allow gap-biased selection.
type Scenario struct {
	ID          string          `json:"id"`
	ModuleID    string          `json:"module_id"`
	Difficulty  DifficultyLevel `json:"difficulty"`
	ConceptTags []string        `json:"concept_tags"`
	Stem        string          `json:"stem"`
}

// Validate checks if the Scenario has valid data.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return ErrEmptyScenarioID
	}

	if s.ModuleID == "" {
		return ErrEmptyScenarioModuleID
	}

	if s.Stem == "" {
		return ErrEmptyScenarioStem
	}

	if !s.Difficulty.Valid() {
		return ErrInvalidDifficultyLevel
	}

	return nil
}
