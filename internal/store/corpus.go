// Package store provides abstractions and implementations for data persistence.
package store

import (
	"context"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// ScoredChunk pairs a chunk with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk      domain.Chunk
	Similarity float64
}

// CorpusStore defines the interface for the read-mostly evidence corpora.
// Version: 1.0
type CorpusStore interface {
	// Search returns up to topK chunks from the corpus ordered by cosine
	// similarity descending, all with similarity >= minSimilarity.
	// An empty result is a valid, non-error outcome.
	// Returns ErrCorpusNotFound if the corpus does not exist.
	Search(
		ctx context.Context,
		corpusID string,
		queryVector []float32,
		topK int,
		minSimilarity float64,
	) ([]ScoredChunk, error)

	// Append adds chunks to the corpus. It is the only mutator and is
	// idempotent on identical chunk IDs: re-appending an existing ID is a
	// no-op, chunks are immutable once indexed.
	Append(ctx context.Context, corpusID string, chunks []domain.Chunk) error
}
