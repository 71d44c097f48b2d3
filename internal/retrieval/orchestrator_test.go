package retrieval

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/mocks"
)

// chunkAtSimilarity returns a chunk whose embedding has the given cosine
// similarity to the unit query vector [1, 0].
func chunkAtSimilarity(id, sourceRef string, tier domain.EvidenceTier, year int, similarity float64) domain.Chunk {
	return domain.Chunk{
		ID:            id,
		CorpusID:      domain.CorpusLiterature,
		Text:          "chunk " + id,
		Embedding:     []float32{float32(similarity), float32(math.Sqrt(1 - similarity*similarity))},
		EvidenceTier:  tier,
		PublishedYear: year,
		SourceRef:     sourceRef,
	}
}

func newTestOrchestrator(
	t *testing.T,
	provider *mocks.EmbeddingProvider,
	corpus *mocks.CorpusStore,
) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(provider, corpus, DefaultConfig(), nil)
	o.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return o
}

const submissionText = "Start empiric vancomycin for suspected MRSA bacteremia"

func seedLiterature(t *testing.T, corpus *mocks.CorpusStore, chunks ...domain.Chunk) {
	t.Helper()
	require.NoError(t, corpus.Append(context.Background(), domain.CorpusLiterature, chunks))
}

func TestRetrieveRanksByCompositeScore(t *testing.T) {
	t.Parallel()

	provider := mocks.NewEmbeddingProvider()
	provider.SetVector(submissionText, []float32{1, 0})

	corpus := mocks.NewCorpusStore(domain.CorpusLiterature)
	seedLiterature(t, corpus,
		// Similar but old cohort study: 0.9 + 0.10 - 0.05 = 0.95
		chunkAtSimilarity("cohort", "pmid:1", domain.TierCohort, 2015, 0.9),
		// Less similar but recent systematic review: 0.7 + 0.30 + 0.2 = 1.2
		chunkAtSimilarity("sysrev", "pmid:2", domain.TierSystematicReview, 2026, 0.7),
	)

	o := newTestOrchestrator(t, provider, corpus)

	result, err := o.Retrieve(context.Background(), Request{
		SubmissionText: submissionText,
		Corpora:        []string{domain.CorpusLiterature},
	})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 2)
	assert.False(t, result.Degraded)
	assert.Equal(t, "sysrev", result.Evidence[0].Chunk.ID)
	assert.Equal(t, "cohort", result.Evidence[1].Chunk.ID)
	assert.InDelta(t, 1.2, result.Evidence[0].CompositeScore, 1e-6)
	assert.InDelta(t, 0.95, result.Evidence[1].CompositeScore, 1e-6)

	// Audit values retained.
	assert.InDelta(t, 0.7, result.Evidence[0].Similarity, 1e-6)
}

func TestRetrieveDeduplicatesBySourceRef(t *testing.T) {
	t.Parallel()

	provider := mocks.NewEmbeddingProvider()
	provider.SetVector(submissionText, []float32{1, 0})

	corpus := mocks.NewCorpusStore(domain.CorpusLiterature)
	// Two chunks citing the same source: the 0.81 hit must survive, the
	// 0.77 hit must be dropped.
	seedLiterature(t, corpus,
		chunkAtSimilarity("chunk-a", "pmid:42", domain.TierRCT, 2024, 0.81),
		chunkAtSimilarity("chunk-b", "pmid:42", domain.TierRCT, 2024, 0.77),
	)

	o := newTestOrchestrator(t, provider, corpus)

	result, err := o.Retrieve(context.Background(), Request{
		SubmissionText: submissionText,
		Corpora:        []string{domain.CorpusLiterature},
	})
	require.NoError(t, err)

	require.Len(t, result.Evidence, 1)
	assert.Equal(t, "chunk-a", result.Evidence[0].Chunk.ID)
	assert.Equal(t, "pmid:42", result.Evidence[0].Chunk.SourceRef)
	assert.InDelta(t, 0.81, result.Evidence[0].Similarity, 1e-6)
}

func TestRetrieveDegradesOnEmbeddingFailures(t *testing.T) {
	t.Parallel()

	provider := mocks.NewEmbeddingProvider()
	provider.SetVector(submissionText, []float32{1, 0})

	// Five sub-queries total: submission, three concept variants, one
	// scenario template. Two of them lose their embeddings.
	provider.FailFor("dosing: " + submissionText)
	provider.FailFor("monitoring: " + submissionText)

	corpus := mocks.NewCorpusStore(domain.CorpusLiterature)
	seedLiterature(t, corpus,
		chunkAtSimilarity("hit", "pmid:7", domain.TierGuideline, 2025, 0.85),
	)

	o := newTestOrchestrator(t, provider, corpus)

	result, err := o.Retrieve(context.Background(), Request{
		SubmissionText: submissionText,
		ConceptTags:    []string{"dosing", "monitoring", "allergy"},
		ScenarioStem:   "Febrile neutropenia after chemotherapy",
		Corpora:        []string{domain.CorpusLiterature},
	})
	require.NoError(t, err, "partial embedding failure must not abort retrieval")

	assert.True(t, result.Degraded)
	assert.Equal(t, 2, result.FailedSubQueries)
	assert.NotEmpty(t, result.Evidence, "surviving sub-queries must still contribute")
}

func TestRetrieveDegradesOnCorpusFailure(t *testing.T) {
	t.Parallel()

	provider := mocks.NewEmbeddingProvider()
	provider.SetVector(submissionText, []float32{1, 0})

	corpus := mocks.NewCorpusStore(domain.CorpusLiterature, domain.CorpusExpert)
	seedLiterature(t, corpus,
		chunkAtSimilarity("lit", "pmid:9", domain.TierRCT, 2025, 0.9),
	)
	corpus.FailCorpus(domain.CorpusExpert)

	o := newTestOrchestrator(t, provider, corpus)

	result, err := o.Retrieve(context.Background(), Request{
		SubmissionText: submissionText,
		Corpora:        []string{domain.CorpusLiterature, domain.CorpusExpert},
	})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, "lit", result.Evidence[0].Chunk.ID)
}

func TestRetrieveEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	provider := mocks.NewEmbeddingProvider()
	provider.SetVector(submissionText, []float32{1, 0})

	corpus := mocks.NewCorpusStore(domain.CorpusLiterature)
	// Orthogonal chunk: similarity 0, below the floor.
	seedLiterature(t, corpus,
		chunkAtSimilarity("far", "pmid:3", domain.TierOther, 0, 0.0),
	)

	o := newTestOrchestrator(t, provider, corpus)

	result, err := o.Retrieve(context.Background(), Request{
		SubmissionText: submissionText,
		Corpora:        []string{domain.CorpusLiterature},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Evidence)
	assert.False(t, result.Degraded)
}

func TestRetrieveHonorsResultBudget(t *testing.T) {
	t.Parallel()

	provider := mocks.NewEmbeddingProvider()
	provider.SetVector(submissionText, []float32{1, 0})

	corpus := mocks.NewCorpusStore(domain.CorpusLiterature)

	chunks := make([]domain.Chunk, 0, 8)
	sims := []float64{0.95, 0.9, 0.85, 0.8, 0.75, 0.7, 0.65, 0.6}
	for i, sim := range sims {
		chunks = append(chunks, chunkAtSimilarity(
			// Distinct sources so nothing is deduplicated away.
			string(rune('a'+i)), "pmid:"+string(rune('a'+i)), domain.TierRCT, 2024, sim))
	}
	seedLiterature(t, corpus, chunks...)

	cfg := DefaultConfig()
	cfg.PerQueryCap = 10
	o := NewOrchestrator(provider, corpus, cfg, nil)

	result, err := o.Retrieve(context.Background(), Request{
		SubmissionText: submissionText,
		Corpora:        []string{domain.CorpusLiterature},
	})
	require.NoError(t, err)

	assert.Len(t, result.Evidence, cfg.ResultBudget)

	// Sorted by composite score descending.
	for i := 1; i < len(result.Evidence); i++ {
		assert.GreaterOrEqual(t,
			result.Evidence[i-1].CompositeScore,
			result.Evidence[i].CompositeScore)
	}
}

func TestRetrieveValidatesRequest(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, mocks.NewEmbeddingProvider(), mocks.NewCorpusStore(domain.CorpusLiterature))

	_, err := o.Retrieve(context.Background(), Request{Corpora: []string{domain.CorpusLiterature}})
	assert.ErrorIs(t, err, ErrEmptySubmission)

	_, err = o.Retrieve(context.Background(), Request{SubmissionText: "text"})
	assert.ErrorIs(t, err, ErrNoCorpora)
}
