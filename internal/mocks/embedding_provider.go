package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/embedding"
)

// EmbeddingProvider is a deterministic in-memory embedding.Provider.
// Unknown texts get a stable vector derived from the text; texts registered
// via FailFor return ErrEmbeddingUnavailable.
type EmbeddingProvider struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failing map[string]bool
	calls   int
}

// NewEmbeddingProvider creates an empty provider.
func NewEmbeddingProvider() *EmbeddingProvider {
	return &EmbeddingProvider{
		vectors: make(map[string][]float32),
		failing: make(map[string]bool),
	}
}

// Ensure interface compliance.
var _ embedding.Provider = (*EmbeddingProvider)(nil)

// SetVector fixes the vector returned for a text.
func (p *EmbeddingProvider) SetVector(text string, vector []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vectors[embedding.NormalizeQuery(text)] = vector
}

// FailFor makes Embed fail for the given text.
func (p *EmbeddingProvider) FailFor(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[embedding.NormalizeQuery(text)] = true
}

// Calls returns how many times Embed was invoked.
func (p *EmbeddingProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Embed implements embedding.Provider.
func (p *EmbeddingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	key := embedding.NormalizeQuery(text)

	if p.failing[key] {
		return nil, fmt.Errorf("%w: injected failure", embedding.ErrEmbeddingUnavailable)
	}

	if vector, ok := p.vectors[key]; ok {
		return vector, nil
	}

	// Stable fallback vector so distinct texts map to distinct directions.
	sum := float32(0)
	for _, r := range key {
		sum += float32(r)
	}
	return []float32{sum, float32(len(key)), 1}, nil
}
