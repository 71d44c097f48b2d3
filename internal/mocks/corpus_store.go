package mocks

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// CorpusStore is an in-memory store.CorpusStore computing real cosine
// similarities, with optional per-corpus failure injection.
type CorpusStore struct {
	mu      sync.Mutex
	corpora map[string]map[string]domain.Chunk // corpusID -> chunkID -> chunk
	failing map[string]bool
}

// NewCorpusStore creates an empty in-memory corpus store with the given
// corpora registered.
func NewCorpusStore(corpusIDs ...string) *CorpusStore {
	s := &CorpusStore{
		corpora: make(map[string]map[string]domain.Chunk),
		failing: make(map[string]bool),
	}
	for _, id := range corpusIDs {
		s.corpora[id] = make(map[string]domain.Chunk)
	}
	return s
}

// Ensure interface compliance.
var _ store.CorpusStore = (*CorpusStore)(nil)

// FailCorpus makes every search against the corpus fail.
func (s *CorpusStore) FailCorpus(corpusID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[corpusID] = true
}

// Append implements store.CorpusStore. Idempotent on chunk IDs.
func (s *CorpusStore) Append(_ context.Context, corpusID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	corpus, ok := s.corpora[corpusID]
	if !ok {
		return store.ErrCorpusNotFound
	}

	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		if _, exists := corpus[chunk.ID]; exists {
			continue
		}
		corpus[chunk.ID] = chunk
	}

	return nil
}

// Search implements store.CorpusStore.
func (s *CorpusStore) Search(
	_ context.Context,
	corpusID string,
	queryVector []float32,
	topK int,
	minSimilarity float64,
) ([]store.ScoredChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing[corpusID] {
		return nil, fmt.Errorf("corpus %q unavailable", corpusID)
	}

	corpus, ok := s.corpora[corpusID]
	if !ok {
		return nil, store.ErrCorpusNotFound
	}

	var hits []store.ScoredChunk
	for _, chunk := range corpus {
		sim := cosineSimilarity(queryVector, chunk.Embedding)
		if sim >= minSimilarity {
			hits = append(hits, store.ScoredChunk{Chunk: chunk, Similarity: sim})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}

	return hits, nil
}

// Len returns the chunk count of a corpus.
func (s *CorpusStore) Len(corpusID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.corpora[corpusID])
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
