package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewSubmission(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()
	text := "Start empiric vancomycin plus cefepime pending cultures."

	sub, err := NewSubmission(sessionID, "empiric-therapy", "sepsis-01", text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if sub.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if sub.SessionID != sessionID {
		t.Errorf("Expected session ID %s, got %s", sessionID, sub.SessionID)
	}

	if sub.Text != text {
		t.Errorf("Expected text %q, got %q", text, sub.Text)
	}

	if sub.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Invalid session ID
	if _, err := NewSubmission(uuid.Nil, "empiric-therapy", "sepsis-01", text); err != ErrEmptySubmissionSessionID {
		t.Errorf("Expected error %v, got %v", ErrEmptySubmissionSessionID, err)
	}

	// Missing text
	if _, err := NewSubmission(sessionID, "empiric-therapy", "sepsis-01", ""); err != ErrEmptySubmissionText {
		t.Errorf("Expected error %v, got %v", ErrEmptySubmissionText, err)
	}

	// Missing scenario
	if _, err := NewSubmission(sessionID, "empiric-therapy", "", text); err != ErrEmptySubmissionScenarioID {
		t.Errorf("Expected error %v, got %v", ErrEmptySubmissionScenarioID, err)
	}
}

func TestChunkValidate(t *testing.T) {
	t.Parallel()

	valid := Chunk{
		ID:            "lit-0001",
		CorpusID:      CorpusLiterature,
		Text:          "Vancomycin AUC-guided dosing reduces nephrotoxicity.",
		Embedding:     []float32{0.1, 0.2, 0.3},
		EvidenceTier:  TierMetaAnalysis,
		PublishedYear: 2023,
		SourceRef:     "pmid:123456",
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.EvidenceTier = "anecdote"
	if err := invalid.Validate(); err != ErrInvalidEvidenceTier {
		t.Errorf("Expected error %v, got %v", ErrInvalidEvidenceTier, err)
	}

	invalid = valid
	invalid.Embedding = nil
	if err := invalid.Validate(); err != ErrEmptyChunkEmbedding {
		t.Errorf("Expected error %v, got %v", ErrEmptyChunkEmbedding, err)
	}

	invalid = valid
	invalid.SourceRef = ""
	if err := invalid.Validate(); err != ErrEmptyChunkSourceRef {
		t.Errorf("Expected error %v, got %v", ErrEmptyChunkSourceRef, err)
	}
}

func TestRubricScoreValidate(t *testing.T) {
	t.Parallel()

	valid := RubricScore{
		SubmissionID: uuid.New(),
		DimensionScores: map[string]float64{
			"drug_selection": 0.8,
			"dosing":         0.5,
		},
		MasteryScore:  0.68,
		NarrativeGaps: []string{"dosing"},
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.MasteryScore = 1.2
	if err := invalid.Validate(); err != ErrMasteryScoreOutOfRange {
		t.Errorf("Expected error %v, got %v", ErrMasteryScoreOutOfRange, err)
	}

	invalid = valid
	invalid.DimensionScores = map[string]float64{"dosing": -0.1}
	if err := invalid.Validate(); err != ErrDimensionScoreRange {
		t.Errorf("Expected error %v, got %v", ErrDimensionScoreRange, err)
	}

	invalid = valid
	invalid.DimensionScores = nil
	if err := invalid.Validate(); err != ErrNoDimensionScores {
		t.Errorf("Expected error %v, got %v", ErrNoDimensionScores, err)
	}
}
