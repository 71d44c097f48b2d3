// Package generation defines the boundary between the application core and
// the external generative text service, following the hexagonal
// architecture pattern.
package generation

import (
	"context"
)

// Result is the normalized reply of a generative provider.
type Result struct {
	// Text is the generated free text.
	Text string

	// RawMetadata carries provider-specific response metadata, retained
	// for audit and debugging. Callers must not depend on its shape.
	RawMetadata map[string]any
}

// Generator produces text from a prompt. Implementations wrap one concrete
// provider; ordered fallback across providers is handled by FallbackChain
// with no change to this contract.
type Generator interface {
	// Generate submits the prompt and returns the normalized reply.
	// maxTokens bounds the reply length; zero means the provider default.
	//
	// Returns an error from this package's taxonomy (see errors.go); in
	// particular ErrGenerationUnavailable when the provider cannot serve
	// the request at all.
	Generate(ctx context.Context, prompt string, maxTokens int) (*Result, error)
}
