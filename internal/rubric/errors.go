package rubric

import "errors"

// Common errors returned by the rubric package.
var (
	// ErrRubricConfig is returned when a rubric definition is missing or
	// malformed. This is a configuration error: it is surfaced immediately
	// and never silently defaulted.
	ErrRubricConfig = errors.New("invalid rubric configuration")

	// ErrRubricNotFound is returned when no rubric definition exists for
	// the requested module.
	ErrRubricNotFound = errors.New("rubric definition not found")

	// ErrEvaluatorUnavailable is returned when an external-evaluator
	// strategy is configured but no evaluator was supplied to the engine.
	ErrEvaluatorUnavailable = errors.New("external evaluator not configured")

	// ErrInvalidEvaluation is returned when an external evaluator returns a
	// dimension score outside [0,1].
	ErrInvalidEvaluation = errors.New("external evaluator returned score out of range")
)
