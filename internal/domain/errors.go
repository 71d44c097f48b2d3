// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidDifficultyLevel is returned when a difficulty level is not
	// one of the defined ordered levels.
	ErrInvalidDifficultyLevel = errors.New("invalid difficulty level")

	// ErrInvalidEvidenceTier is returned when a chunk carries an unknown
	// evidence tier label.
	ErrInvalidEvidenceTier = errors.New("invalid evidence tier")

	// ErrMasteryScoreOutOfRange is returned when a mastery score falls
	// outside [0,1]. Scores are never silently clamped.
	ErrMasteryScoreOutOfRange = errors.New("mastery score out of range [0,1]")
)
