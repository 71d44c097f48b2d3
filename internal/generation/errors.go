package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationUnavailable is returned when no configured generative
	// provider could serve the request. Scoring and persistence never
	// depend on generation succeeding, so callers surface this as a
	// distinct failure mode instead of aborting the submission.
	ErrGenerationUnavailable = errors.New("generative text service unavailable")

	// ErrInvalidResponse is returned when the provider response cannot be
	// parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the provider blocks the content
	// due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyPrompt is returned when the prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
