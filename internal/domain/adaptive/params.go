package adaptive

import (
	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// Params defines all configurable parameters for the adaptive difficulty
// controller.
type Params struct {
	// PromoteThresholds maps each non-terminal level to the mastery score
	// required to advance one level. Expert has no promotion threshold.
	PromoteThresholds map[domain.DifficultyLevel]float64

	// MasteryCompleteThreshold is the score at expert level that marks the
	// module mastery-complete.
	MasteryCompleteThreshold float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance.
type ParamsConfig struct {
	NovicePromoteThreshold       float64
	IntermediatePromoteThreshold float64
	AdvancedPromoteThreshold     float64
	MasteryCompleteThreshold     float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		PromoteThresholds: map[domain.DifficultyLevel]float64{
			domain.DifficultyNovice:       0.4,
			domain.DifficultyIntermediate: 0.7,
			domain.DifficultyAdvanced:     0.85,
		},
		MasteryCompleteThreshold: 0.85,
	}
}

// NewParams creates a Params instance from the given config, falling back to
// defaults for zero-valued fields.
func NewParams(cfg ParamsConfig) *Params {
	params := NewDefaultParams()

	if cfg.NovicePromoteThreshold > 0 {
		params.PromoteThresholds[domain.DifficultyNovice] = cfg.NovicePromoteThreshold
	}
	if cfg.IntermediatePromoteThreshold > 0 {
		params.PromoteThresholds[domain.DifficultyIntermediate] = cfg.IntermediatePromoteThreshold
	}
	if cfg.AdvancedPromoteThreshold > 0 {
		params.PromoteThresholds[domain.DifficultyAdvanced] = cfg.AdvancedPromoteThreshold
	}
	if cfg.MasteryCompleteThreshold > 0 {
		params.MasteryCompleteThreshold = cfg.MasteryCompleteThreshold
	}

	return params
}
