package embedding

import (
	"context"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the embedding cache capacity used when the
// configuration does not set one.
const DefaultCacheSize = 1024

// CachingProvider fronts another Provider with a bounded
// least-recently-used cache. Entries are keyed by normalized query text and
// never require invalidation: chunks are immutable once indexed, so a text's
// embedding never changes.
type CachingProvider struct {
	inner  Provider
	cache  *lru.Cache[string, []float32]
	logger *slog.Logger
}

// NewCachingProvider wraps the given provider with an LRU cache of the given
// capacity. A capacity below 1 falls back to DefaultCacheSize. If logger is
// nil, a default logger will be used.
func NewCachingProvider(inner Provider, capacity int, logger *slog.Logger) (*CachingProvider, error) {
	if capacity < 1 {
		capacity = DefaultCacheSize
	}

	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}

	return &CachingProvider{
		inner:  inner,
		cache:  cache,
		logger: logger.With(slog.String("component", "embedding_cache")),
	}, nil
}

// Embed implements Provider. Repeated sub-queries with the same normalized
// text are served from the cache without touching the inner provider.
func (p *CachingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	key := NormalizeQuery(text)

	if vector, ok := p.cache.Get(key); ok {
		p.logger.DebugContext(ctx, "embedding cache hit", slog.Int("text_length", len(text)))
		return vector, nil
	}

	vector, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	p.cache.Add(key, vector)
	return vector, nil
}

// Len returns the number of cached embeddings.
func (p *CachingProvider) Len() int {
	return p.cache.Len()
}

// NormalizeQuery lowercases and collapses whitespace so that trivially
// different spellings of the same query share one cache entry.
func NormalizeQuery(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
