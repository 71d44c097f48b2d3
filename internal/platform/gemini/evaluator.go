package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/generation"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/rubric"
)

// evaluatorMaxTokens bounds the model's reply; a score needs very few tokens.
const evaluatorMaxTokens = 16

// Evaluator implements rubric.Evaluator by asking a generator for a single
// numeric score. It reuses the generation stack, so fallback and timeout
// behavior are whatever the supplied generator composes.
type Evaluator struct {
	generator generation.Generator
	logger    *slog.Logger
}

// NewEvaluator creates an evaluator on top of an existing generator.
// If logger is nil, a default logger will be used.
func NewEvaluator(generator generation.Generator, logger *slog.Logger) (*Evaluator, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", generation.ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{
		generator: generator,
		logger:    logger.With(slog.String("component", "gemini_evaluator")),
	}, nil
}

// Ensure Evaluator implements rubric.Evaluator.
var _ rubric.Evaluator = (*Evaluator)(nil)

// ScoreDimension asks the model to grade one dimension of the submission and
// parses the reply as a number in [0,1]. Replies that do not parse, or parse
// outside the range, are errors; the rubric engine decides how to surface
// them.
func (e *Evaluator) ScoreDimension(ctx context.Context, dim rubric.Dimension, submissionText string) (float64, error) {
	prompt := buildScoringPrompt(dim, submissionText)

	result, err := e.generator.Generate(ctx, prompt, evaluatorMaxTokens)
	if err != nil {
		return 0, fmt.Errorf("scoring dimension %q: %w", dim.Name, err)
	}

	score, err := parseScore(result.Text)
	if err != nil {
		e.logger.Warn("unparseable score reply",
			slog.String("dimension", dim.Name),
			slog.String("reply", result.Text))
		return 0, fmt.Errorf("scoring dimension %q: %w", dim.Name, err)
	}

	return score, nil
}

func buildScoringPrompt(dim rubric.Dimension, submissionText string) string {
	var b strings.Builder

	b.WriteString("You are grading one dimension of a clinical trainee's antimicrobial plan.\n")
	b.WriteString("Dimension: ")
	b.WriteString(dim.Name)
	b.WriteString("\n")
	if dim.Strategy.Hint != "" {
		b.WriteString("Guidance: ")
		b.WriteString(dim.Strategy.Hint)
		b.WriteString("\n")
	}
	b.WriteString("\nPlan:\n")
	b.WriteString(submissionText)
	b.WriteString("\n\nReply with only a decimal number between 0 and 1. No other text.")

	return b.String()
}

// parseScore accepts a bare number, tolerating surrounding whitespace and a
// trailing period that models sometimes append.
func parseScore(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimSuffix(trimmed, ".")

	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: reply %q is not a number", generation.ErrInvalidResponse, text)
	}
	if score < 0 || score > 1 {
		return 0, fmt.Errorf("%w: score %v outside [0,1]", generation.ErrInvalidResponse, score)
	}

	return score, nil
}
