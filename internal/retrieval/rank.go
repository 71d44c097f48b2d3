package retrieval

import (
	"sort"
	"time"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// tierWeights maps each evidence tier to its ranking contribution.
// Stronger study designs and curated expert corrections outrank weaker
// observational evidence.
var tierWeights = map[domain.EvidenceTier]float64{
	domain.TierSystematicReview: 0.30,
	domain.TierMetaAnalysis:     0.25,
	domain.TierExpertCorrection: 0.25,
	domain.TierRCT:              0.20,
	domain.TierGuideline:        0.15,
	domain.TierCohort:           0.10,
	domain.TierOther:            0.0,
}

// tierWeight returns the ranking contribution for the tier, 0 for unknown.
func tierWeight(tier domain.EvidenceTier) float64 {
	return tierWeights[tier]
}

// recencyBonus rewards recent publications and slightly penalizes stale
// ones: +0.2 under 2 years old, +0.1 at 2 to 5 years, -0.05 beyond 5 years,
// 0 when the year is unknown.
func recencyBonus(publishedYear int, now time.Time) float64 {
	if publishedYear <= 0 {
		return 0
	}

	age := now.Year() - publishedYear
	switch {
	case age < 2:
		return 0.2
	case age <= 5:
		return 0.1
	default:
		return -0.05
	}
}

// compositeScore is the retrieval ranking value: similarity plus evidence
// tier weight plus recency bonus.
func compositeScore(similarity float64, chunk *domain.Chunk, now time.Time) float64 {
	return similarity + tierWeight(chunk.EvidenceTier) + recencyBonus(chunk.PublishedYear, now)
}

// dedupeBySource drops lower-similarity duplicates of the same source_ref,
// keeping the best hit per source across all sub-queries and corpora.
func dedupeBySource(evidence []Evidence) []Evidence {
	best := make(map[string]int, len(evidence))
	deduped := make([]Evidence, 0, len(evidence))

	for _, ev := range evidence {
		ref := ev.Chunk.SourceRef
		if idx, seen := best[ref]; seen {
			if ev.Similarity > deduped[idx].Similarity {
				deduped[idx] = ev
			}
			continue
		}
		best[ref] = len(deduped)
		deduped = append(deduped, ev)
	}

	return deduped
}

// rank orders evidence by composite score descending (similarity breaking
// ties) and truncates to the budget.
func rank(evidence []Evidence, budget int) []Evidence {
	sort.SliceStable(evidence, func(i, j int) bool {
		if evidence[i].CompositeScore != evidence[j].CompositeScore {
			return evidence[i].CompositeScore > evidence[j].CompositeScore
		}
		return evidence[i].Similarity > evidence[j].Similarity
	})

	if budget > 0 && len(evidence) > budget {
		evidence = evidence[:budget]
	}

	return evidence
}
