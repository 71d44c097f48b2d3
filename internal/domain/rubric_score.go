package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Common validation errors for RubricScore.
var (
	ErrEmptyScoreSubmissionID = errors.New("rubric score submission ID cannot be empty")
	ErrNoDimensionScores      = errors.New("rubric score must have at least one dimension score")
	ErrDimensionScoreRange    = errors.New("dimension score out of range [0,1]")
)

// RubricScore is the quantitative evaluation of one Submission against a
// module rubric. It is computed synchronously from the submission, is
// one-to-one with it, and is never mutated afterwards.
type RubricScore struct {
	SubmissionID uuid.UUID `json:"submission_id"`

	// DimensionScores maps each rubric dimension name to its score in [0,1].
	DimensionScores map[string]float64 `json:"dimension_scores"`

	// MasteryScore is the weighted aggregate of the dimension scores,
	// always in [0,1].
	MasteryScore float64 `json:"mastery_score"`

	// NarrativeGaps lists the lowest-scoring dimensions in ascending score
	// order, used to bias subsequent scenario selection.
	NarrativeGaps []string `json:"narrative_gaps"`
}

// Validate checks if the RubricScore has valid data.
// Returns an error if any field fails validation.
func (r *RubricScore) Validate() error {
	if r.SubmissionID == uuid.Nil {
		return ErrEmptyScoreSubmissionID
	}

	if len(r.DimensionScores) == 0 {
		return ErrNoDimensionScores
	}

	for _, score := range r.DimensionScores {
		if score < 0 || score > 1 {
			return ErrDimensionScoreRange
		}
	}

	if r.MasteryScore < 0 || r.MasteryScore > 1 {
		return ErrMasteryScoreOutOfRange
	}

	return nil
}
