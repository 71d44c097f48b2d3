// Package composer assembles the bounded feedback prompt from scenario,
// submission, rubric results, conversation context, and retrieved evidence,
// submits it to the generative text service, and normalizes the reply into
// composed feedback plus the list of sources it actually cites.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/generation"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/retrieval"
)

// ErrEmptyInput is returned when the input carries no submission text.
var ErrEmptyInput = errors.New("composer input must include submission text")

// Bounds applied while assembling the prompt. Oversized sections are
// truncated rather than rejected so a long submission still gets feedback.
const (
	maxSubmissionChars = 4000
	maxEvidenceChars   = 600
	maxTurnChars       = 800
)

// Input carries everything one feedback composition needs. Evidence may be
// empty; the prompt then instructs the model to answer from general
// principles without fabricating citations.
type Input struct {
	ScenarioStem   string
	SubmissionText string

	// Turns is the active conversation window, oldest first.
	Turns []domain.ConversationTurn

	DimensionScores map[string]float64
	MasteryScore    float64
	NarrativeGaps   []string

	// Evidence is the ranked retrieval output, best first.
	Evidence []retrieval.Evidence
}

// Output is the normalized composition result.
type Output struct {
	ComposedFeedback string

	// CitedSources lists the source refs the reply actually referenced,
	// in evidence rank order. When the reply cites nothing recognizable,
	// it falls back to every supplied source.
	CitedSources []string
}

// Composer builds prompts and normalizes generative replies.
type Composer struct {
	generator generation.Generator
	maxTokens int
	logger    *slog.Logger
}

// NewComposer creates a feedback composer.
// If logger is nil, a default logger will be used.
func NewComposer(generator generation.Generator, maxTokens int, logger *slog.Logger) *Composer {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Composer{
		generator: generator,
		maxTokens: maxTokens,
		logger:    logger.With(slog.String("component", "composer")),
	}
}

// Compose builds the prompt, submits it, and extracts composed feedback and
// cited sources. Generation errors pass through unwrapped-by-category so the
// caller can distinguish ErrGenerationUnavailable from the rest.
func (c *Composer) Compose(ctx context.Context, input Input) (*Output, error) {
	if strings.TrimSpace(input.SubmissionText) == "" {
		return nil, ErrEmptyInput
	}

	prompt := buildPrompt(input)

	result, err := c.generator.Generate(ctx, prompt, c.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("composing feedback: %w", err)
	}

	cited := extractCitedSources(result.Text, input.Evidence)

	c.logger.Debug("feedback composed",
		slog.Int("prompt_length", len(prompt)),
		slog.Int("reply_length", len(result.Text)),
		slog.Int("cited_sources", len(cited)))

	return &Output{
		ComposedFeedback: result.Text,
		CitedSources:     cited,
	}, nil
}

// extractCitedSources returns the evidence source refs present verbatim in
// the reply, preserving evidence rank order. When none match it falls back
// to all supplied sources, since not every provider echoes identifiers.
func extractCitedSources(reply string, evidence []retrieval.Evidence) []string {
	if len(evidence) == 0 {
		return nil
	}

	var cited []string
	seen := make(map[string]bool)
	for _, ev := range evidence {
		ref := ev.Chunk.SourceRef
		if seen[ref] {
			continue
		}
		seen[ref] = true
		if strings.Contains(reply, ref) {
			cited = append(cited, ref)
		}
	}

	if len(cited) > 0 {
		return cited
	}

	cited = make([]string, 0, len(evidence))
	for _, ev := range evidence {
		if !containsString(cited, ev.Chunk.SourceRef) {
			cited = append(cited, ev.Chunk.SourceRef)
		}
	}
	return cited
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
