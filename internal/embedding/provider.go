// Package embedding defines the boundary to the external embedding
// provider: mapping text to a fixed-dimension vector, with a bounded LRU
// cache in front of it.
package embedding

import (
	"context"
	"errors"
)

// Common errors returned by the embedding package.
var (
	// ErrEmbeddingUnavailable is returned when the provider times out or
	// fails. Callers degrade locally: a failed sub-query is skipped, never
	// aborting the whole submission.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrEmptyText is returned when the text to embed is empty.
	ErrEmptyText = errors.New("text to embed cannot be empty")
)

// Provider maps text to a fixed-dimension embedding vector. It is used both
// at index time and at query time so that query and chunk vectors share one
// embedding space.
type Provider interface {
	// Embed returns the embedding vector for the given text.
	// Fails with an error wrapping ErrEmbeddingUnavailable on timeout or
	// provider error.
	Embed(ctx context.Context, text string) ([]float32, error)
}
