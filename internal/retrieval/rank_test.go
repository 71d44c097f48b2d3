package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

func TestRecencyBonus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		year int
		want float64
	}{
		{"unknown year", 0, 0},
		{"current year", 2026, 0.2},
		{"one year old", 2025, 0.2},
		{"two years old", 2024, 0.1},
		{"five years old", 2021, 0.1},
		{"six years old", 2020, -0.05},
		{"decade old", 2016, -0.05},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, recencyBonus(tc.year, now), 1e-9)
		})
	}
}

func TestTierWeightOrdering(t *testing.T) {
	t.Parallel()

	// Stronger evidence must never rank below weaker evidence at equal
	// similarity and recency.
	assert.Greater(t, tierWeight(domain.TierSystematicReview), tierWeight(domain.TierMetaAnalysis))
	assert.Greater(t, tierWeight(domain.TierMetaAnalysis), tierWeight(domain.TierRCT))
	assert.Greater(t, tierWeight(domain.TierRCT), tierWeight(domain.TierGuideline))
	assert.Greater(t, tierWeight(domain.TierGuideline), tierWeight(domain.TierCohort))
	assert.Greater(t, tierWeight(domain.TierCohort), tierWeight(domain.TierOther))
	assert.Equal(t, tierWeight(domain.TierMetaAnalysis), tierWeight(domain.TierExpertCorrection))
}

func TestDedupeBySourceKeepsHighestSimilarity(t *testing.T) {
	t.Parallel()

	evidence := []Evidence{
		{Chunk: domain.Chunk{ID: "a", SourceRef: "pmid:1"}, Similarity: 0.77},
		{Chunk: domain.Chunk{ID: "b", SourceRef: "pmid:2"}, Similarity: 0.60},
		{Chunk: domain.Chunk{ID: "c", SourceRef: "pmid:1"}, Similarity: 0.81},
	}

	deduped := dedupeBySource(evidence)

	assert.Len(t, deduped, 2)

	bySource := make(map[string]Evidence)
	for _, ev := range deduped {
		bySource[ev.Chunk.SourceRef] = ev
	}
	assert.InDelta(t, 0.81, bySource["pmid:1"].Similarity, 1e-9)
	assert.Equal(t, "c", bySource["pmid:1"].Chunk.ID)
}

func TestRankOrdersAndTruncates(t *testing.T) {
	t.Parallel()

	evidence := []Evidence{
		{Chunk: domain.Chunk{ID: "low"}, CompositeScore: 0.4},
		{Chunk: domain.Chunk{ID: "high"}, CompositeScore: 1.1},
		{Chunk: domain.Chunk{ID: "mid"}, CompositeScore: 0.8},
	}

	ranked := rank(evidence, 2)

	assert.Len(t, ranked, 2)
	assert.Equal(t, "high", ranked[0].Chunk.ID)
	assert.Equal(t, "mid", ranked[1].Chunk.ID)
}

func TestBuildSubQueries(t *testing.T) {
	t.Parallel()

	queries := buildSubQueries(
		"Start vancomycin. Check trough at steady state.",
		[]string{"dosing", "monitoring"},
		"A 62-year-old with MRSA bacteremia.",
	)

	assert.Equal(t, []string{
		"Start vancomycin. Check trough at steady state.",
		"dosing: Start vancomycin.",
		"monitoring: Start vancomycin.",
		"evidence for managing: A 62-year-old with MRSA bacteremia.",
	}, queries)

	// Concept tags are capped.
	many := buildSubQueries("text", []string{"a", "b", "c", "d", "e"}, "")
	assert.Len(t, many, 1+maxConceptSubQueries)
}
