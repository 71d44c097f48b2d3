package domain

import (
	"errors"
)

// EvidenceTier is the categorical strength-of-evidence label attached to a
// corpus chunk. Tiers are used by retrieval ranking, not as a strict order.
type EvidenceTier string

// Possible evidence tier values.
const (
	TierSystematicReview EvidenceTier = "systematic_review"
	TierMetaAnalysis     EvidenceTier = "meta_analysis"
	TierRCT              EvidenceTier = "rct"
	TierCohort           EvidenceTier = "cohort"
	TierGuideline        EvidenceTier = "guideline"
	TierExpertCorrection EvidenceTier = "expert_correction"
	TierOther            EvidenceTier = "other"
)

// Valid reports whether the tier is one of the defined tiers.
func (t EvidenceTier) Valid() bool {
	switch t {
	case TierSystematicReview, TierMetaAnalysis, TierRCT, TierCohort,
		TierGuideline, TierExpertCorrection, TierOther:
		return true
	default:
		return false
	}
}

// Corpus identifiers for the two independently versioned knowledge corpora.
const (
	CorpusLiterature = "literature"
	CorpusExpert     = "expert"
)

// Common validation errors for Chunk.
var (
	ErrEmptyChunkID        = errors.New("chunk ID cannot be empty")
	ErrEmptyChunkCorpusID  = errors.New("chunk corpus ID cannot be empty")
	ErrEmptyChunkText      = errors.New("chunk text cannot be empty")
	ErrEmptyChunkEmbedding = errors.New("chunk embedding cannot be empty")
	ErrEmptyChunkSourceRef = errors.New("chunk source ref cannot be empty")
)

// Chunk is an immutable text fragment with a precomputed embedding and
// structured provenance metadata. Chunks are produced by the offline
// ingestion process and are read-only at serve time.
type Chunk struct {
	ID            string       `json:"id"`
	CorpusID      string       `json:"corpus_id"`
	Text          string       `json:"text"`
	Embedding     []float32    `json:"embedding"`
	EvidenceTier  EvidenceTier `json:"evidence_tier"`
	PublishedYear int          `json:"published_year"` // 0 when unknown
	SourceRef     string       `json:"source_ref"`
}

// Validate checks if the Chunk has valid data.
// Returns an error if any field fails validation.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return ErrEmptyChunkID
	}

	if c.CorpusID == "" {
		return ErrEmptyChunkCorpusID
	}

	if c.Text == "" {
		return ErrEmptyChunkText
	}

	if len(c.Embedding) == 0 {
		return ErrEmptyChunkEmbedding
	}

	if c.SourceRef == "" {
		return ErrEmptyChunkSourceRef
	}

	if !c.EvidenceTier.Valid() {
		return ErrInvalidEvidenceTier
	}

	return nil
}
