package rubric

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// Evaluator scores a single dimension of a submission using an external
// evaluative model. Implementations may be non-deterministic; the engine
// re-validates every returned score and recomputes the aggregate itself so
// the mastery score is always mathematically consistent with the dimension
// scores.
type Evaluator interface {
	ScoreDimension(ctx context.Context, dim Dimension, submissionText string) (float64, error)
}

// Engine evaluates submissions against rubric definitions.
type Engine struct {
	evaluator Evaluator // may be nil when no rubric uses StrategyExternal
	logger    *slog.Logger
}

// NewEngine creates a rubric engine. The evaluator may be nil if no rubric
// definition uses the external strategy. If logger is nil, a default logger
// will be used.
func NewEngine(evaluator Evaluator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		evaluator: evaluator,
		logger:    logger.With(slog.String("component", "rubric_engine")),
	}
}

// Evaluate scores the submission against the definition and returns the
// resulting RubricScore: per-dimension scores in [0,1], the weighted
// mastery score, and the lowest-scoring dimensions as narrative gaps
// (declaration order breaks ties).
//
// A malformed definition fails with ErrRubricConfig before any scoring.
// For definitions whose strategies are all deterministic, identical input
// yields identical output.
func (e *Engine) Evaluate(
	ctx context.Context,
	def *Definition,
	submission *domain.Submission,
) (*domain.RubricScore, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: definition is nil", ErrRubricConfig)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	if err := submission.Validate(); err != nil {
		return nil, err
	}

	normalized := normalizeText(submission.Text)

	dimensionScores := make(map[string]float64, len(def.Dimensions))
	mastery := 0.0

	for _, dim := range def.Dimensions {
		score, err := e.scoreDimension(ctx, dim, submission.Text, normalized)
		if err != nil {
			return nil, err
		}

		dimensionScores[dim.Name] = score
		mastery += dim.Weight * score
	}

	// Guard against floating-point drift at the boundaries.
	if mastery < 0 {
		mastery = 0
	}
	if mastery > 1 {
		mastery = 1
	}

	score := &domain.RubricScore{
		SubmissionID:    submission.ID,
		DimensionScores: dimensionScores,
		MasteryScore:    mastery,
		NarrativeGaps:   narrativeGaps(def, dimensionScores),
	}

	e.logger.DebugContext(ctx, "submission scored",
		slog.String("submission_id", submission.ID.String()),
		slog.String("module_id", def.ModuleID),
		slog.Float64("mastery_score", mastery))

	return score, nil
}

func (e *Engine) scoreDimension(
	ctx context.Context,
	dim Dimension,
	rawText string,
	normalizedText string,
) (float64, error) {
	switch dim.Strategy.Kind {
	case StrategyKeyword:
		return scoreKeyword(dim.Strategy.Criteria, normalizedText), nil

	case StrategyFields:
		return scoreFields(dim.Strategy.Fields, normalizedText), nil

	case StrategyExternal:
		if e.evaluator == nil {
			return 0, fmt.Errorf("%w: dimension %q", ErrEvaluatorUnavailable, dim.Name)
		}

		score, err := e.evaluator.ScoreDimension(ctx, dim, rawText)
		if err != nil {
			return 0, fmt.Errorf("external evaluation of dimension %q failed: %w", dim.Name, err)
		}

		if score < 0 || score > 1 {
			return 0, fmt.Errorf("%w: dimension %q score %v", ErrInvalidEvaluation, dim.Name, score)
		}

		return score, nil

	default:
		// Unreachable after Validate, kept as a hard stop.
		return 0, fmt.Errorf("%w: unknown strategy kind %q", ErrRubricConfig, dim.Strategy.Kind)
	}
}

// scoreKeyword computes the fraction of criterion weight satisfied by the
// submission. A criterion is satisfied when any of its terms occurs in the
// normalized text.
func scoreKeyword(criteria []Criterion, normalizedText string) float64 {
	total := 0.0
	matched := 0.0

	for _, criterion := range criteria {
		total += criterion.Weight
		for _, term := range criterion.Terms {
			if strings.Contains(normalizedText, normalizeText(term)) {
				matched += criterion.Weight
				break
			}
		}
	}

	if total == 0 {
		return 0
	}

	return matched / total
}

// scoreFields computes the fraction of required field labels present in the
// normalized text.
func scoreFields(fields []string, normalizedText string) float64 {
	if len(fields) == 0 {
		return 0
	}

	present := 0
	for _, field := range fields {
		if strings.Contains(normalizedText, normalizeText(field)) {
			present++
		}
	}

	return float64(present) / float64(len(fields))
}

// narrativeGaps returns the lowest-scoring dimensions in ascending score
// order, truncated to the definition's gap limit. Ties resolve to rubric
// declaration order.
func narrativeGaps(def *Definition, scores map[string]float64) []string {
	type ranked struct {
		name  string
		score float64
		order int
	}

	all := make([]ranked, 0, len(def.Dimensions))
	for i, dim := range def.Dimensions {
		all = append(all, ranked{name: dim.Name, score: scores[dim.Name], order: i})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score < all[j].score
		}
		return all[i].order < all[j].order
	})

	limit := def.maxGaps()
	if limit > len(all) {
		limit = len(all)
	}

	gaps := make([]string, 0, limit)
	for _, r := range all[:limit] {
		gaps = append(gaps, r.name)
	}

	return gaps
}

// normalizeText lowercases and collapses whitespace so keyword and field
// matching is insensitive to case and spacing.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
