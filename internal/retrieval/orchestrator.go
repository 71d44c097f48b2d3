// Package retrieval produces ranked, deduplicated evidence sets grounding
// feedback: it fans a submission out into semantically distinct sub-queries
// against one or both corpora, merges the hits, and re-ranks them by a
// composite of similarity, evidence tier, and recency.
package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/embedding"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/logger"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// Common errors returned by the retrieval package.
var (
	// ErrNoCorpora is returned when a request names no target corpora.
	ErrNoCorpora = errors.New("retrieval request must target at least one corpus")

	// ErrEmptySubmission is returned when the submission text is empty.
	ErrEmptySubmission = errors.New("submission text cannot be empty")
)

// Evidence is one ranked retrieval hit. Similarity and composite score are
// both retained for audit.
type Evidence struct {
	Chunk          domain.Chunk `json:"chunk"`
	Similarity     float64      `json:"similarity"`
	CompositeScore float64      `json:"composite_score"`
}

// Result is the outcome of one retrieval run. An empty evidence list is a
// valid, non-error outcome; Degraded marks partial failure of sub-queries
// or corpora.
type Result struct {
	Evidence []Evidence

	// Degraded is true when one or more sub-queries or corpus searches
	// failed and the evidence set was assembled from the remainder.
	Degraded bool

	// FailedSubQueries counts the sub-queries skipped due to embedding or
	// search failure.
	FailedSubQueries int
}

// Config encapsulates retrieval parameters.
type Config struct {
	// ResultBudget bounds the final evidence list.
	ResultBudget int

	// PerQueryCap bounds hits taken per sub-query per corpus.
	PerQueryCap int

	// MinSimilarity is the similarity floor passed to corpus search.
	MinSimilarity float64

	// EmbedTimeout bounds each embedding provider call.
	EmbedTimeout time.Duration

	// SearchTimeout bounds each corpus search call.
	SearchTimeout time.Duration
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() Config {
	return Config{
		ResultBudget:  5,
		PerQueryCap:   2,
		MinSimilarity: 0.4,
		EmbedTimeout:  5 * time.Second,
		SearchTimeout: 2 * time.Second,
	}
}

// Request describes one retrieval run.
type Request struct {
	SubmissionText string

	// ConceptTags and ScenarioStem anchor the expanded sub-queries.
	ConceptTags  []string
	ScenarioStem string

	// Corpora are the target corpus IDs (literature, expert, or both).
	Corpora []string
}

// Orchestrator coordinates sub-query expansion, embedding, corpus search,
// merging, and ranking.
type Orchestrator struct {
	provider embedding.Provider
	corpus   store.CorpusStore
	cfg      Config
	logger   *slog.Logger

	// now is the clock used for recency scoring; replaceable in tests.
	now func() time.Time
}

// NewOrchestrator creates a retrieval orchestrator.
// If logger is nil, a default logger will be used.
func NewOrchestrator(
	provider embedding.Provider,
	corpus store.CorpusStore,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	if provider == nil {
		panic("provider cannot be nil")
	}
	if corpus == nil {
		panic("corpus cannot be nil")
	}

	if cfg.ResultBudget <= 0 {
		cfg.ResultBudget = DefaultConfig().ResultBudget
	}
	if cfg.PerQueryCap <= 0 {
		cfg.PerQueryCap = DefaultConfig().PerQueryCap
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = DefaultConfig().EmbedTimeout
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = DefaultConfig().SearchTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		provider: provider,
		corpus:   corpus,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "retrieval_orchestrator")),
		now:      time.Now,
	}
}

// Retrieve runs the full retrieval pipeline for the request. Sub-queries
// whose embedding or search fails are skipped and the result is marked
// degraded; only a malformed request is an error.
func (o *Orchestrator) Retrieve(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, o.logger)

	if req.SubmissionText == "" {
		return nil, ErrEmptySubmission
	}
	if len(req.Corpora) == 0 {
		return nil, ErrNoCorpora
	}

	queries := buildSubQueries(req.SubmissionText, req.ConceptTags, req.ScenarioStem)
	now := o.now()

	var (
		mu       sync.Mutex
		merged   []Evidence
		failures int
		degraded bool
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, query := range queries {
		g.Go(func() error {
			hits, failed := o.runSubQuery(gctx, log, query, req.Corpora, now)

			mu.Lock()
			defer mu.Unlock()
			if failed {
				// Partial degradation: the rest of the sub-queries still
				// contribute.
				degraded = true
				if hits == nil {
					failures++
				}
			}
			merged = append(merged, hits...)
			return nil
		})
	}

	// Sub-query failures are absorbed above, so Wait only reports context
	// cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	evidence := rank(dedupeBySource(merged), o.cfg.ResultBudget)

	result := &Result{
		Evidence:         evidence,
		Degraded:         degraded,
		FailedSubQueries: failures,
	}

	log.Debug("retrieval complete",
		slog.Int("sub_queries", len(queries)),
		slog.Int("failed_sub_queries", failures),
		slog.Int("evidence", len(evidence)),
		slog.Bool("degraded", result.Degraded))

	return result, nil
}

// runSubQuery embeds one sub-query and searches every target corpus,
// applying the per-call timeouts. An embedding failure loses the whole
// sub-query (nil hits, failed); a corpus search failure loses only that
// corpus's contribution. Either way retrieval continues degraded rather
// than aborting.
func (o *Orchestrator) runSubQuery(
	ctx context.Context,
	log *slog.Logger,
	query string,
	corpora []string,
	now time.Time,
) (hits []Evidence, failed bool) {
	embedCtx, cancel := context.WithTimeout(ctx, o.cfg.EmbedTimeout)
	vector, err := o.provider.Embed(embedCtx, query)
	cancel()
	if err != nil {
		log.Warn("sub-query embedding failed, skipping",
			slog.String("error", err.Error()),
			slog.Int("query_length", len(query)))
		return nil, true
	}

	for _, corpusID := range corpora {
		searchCtx, cancel := context.WithTimeout(ctx, o.cfg.SearchTimeout)
		scored, err := o.corpus.Search(searchCtx, corpusID, vector, o.cfg.PerQueryCap, o.cfg.MinSimilarity)
		cancel()
		if err != nil {
			log.Warn("corpus search failed, continuing without it",
				slog.String("error", err.Error()),
				slog.String("corpus_id", corpusID))
			failed = true
			continue
		}

		for _, sc := range scored {
			hits = append(hits, Evidence{
				Chunk:          sc.Chunk,
				Similarity:     sc.Similarity,
				CompositeScore: compositeScore(sc.Similarity, &sc.Chunk, now),
			})
		}
	}

	return hits, failed
}
