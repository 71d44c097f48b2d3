// Package rubric converts free-text submissions into quantitative,
// auditable competency scores against module-specific rubric definitions.
package rubric

import (
	"fmt"
	"math"
)

// StrategyKind identifies how a dimension is scored.
type StrategyKind string

// The enumerated set of scoring strategy kinds.
const (
	// StrategyKeyword scores a dimension by weighted criterion keyword
	// matching against the submission text.
	StrategyKeyword StrategyKind = "keyword"

	// StrategyFields scores a dimension by the fraction of required
	// structured fields present in the submission.
	StrategyFields StrategyKind = "fields"

	// StrategyExternal delegates scoring to an external evaluative model.
	StrategyExternal StrategyKind = "external"
)

// weightSumTolerance bounds floating-point drift when checking that
// dimension weights sum to 1.0.
const weightSumTolerance = 1e-9

// defaultMaxNarrativeGaps is the number of lowest-scoring dimensions
// reported as narrative gaps when the definition does not set its own limit.
const defaultMaxNarrativeGaps = 2

// Criterion is one weighted keyword criterion: it is satisfied when any of
// its terms appears in the submission.
type Criterion struct {
	Terms  []string `json:"terms"`
	Weight float64  `json:"weight"`
}

// Strategy is the tagged variant describing how one dimension is scored.
// Exactly the fields relevant to Kind are consulted.
type Strategy struct {
	Kind StrategyKind `json:"kind"`

	// Criteria configures StrategyKeyword.
	Criteria []Criterion `json:"criteria,omitempty"`

	// Fields configures StrategyFields: labels whose presence is checked.
	Fields []string `json:"fields,omitempty"`

	// Hint is free text passed to the external evaluator for
	// StrategyExternal.
	Hint string `json:"hint,omitempty"`
}

// Dimension is one named competency dimension with its aggregation weight
// and scoring strategy. Declaration order is significant: it breaks ties
// when ranking narrative gaps.
type Dimension struct {
	Name     string   `json:"name"`
	Weight   float64  `json:"weight"`
	Strategy Strategy `json:"strategy"`
}

// Definition is the rubric for one module: an ordered list of weighted
// dimensions whose weights sum to 1.0.
type Definition struct {
	ModuleID   string      `json:"module_id"`
	Dimensions []Dimension `json:"dimensions"`

	// MaxNarrativeGaps caps the narrative gap list. Zero means the default.
	MaxNarrativeGaps int `json:"max_narrative_gaps,omitempty"`
}

// Validate checks the definition for the configuration errors the engine
// refuses to score with: no dimensions, duplicate or empty names, weights
// outside (0,1], weights not summing to 1.0, or unknown strategy kinds.
// All failures wrap ErrRubricConfig.
func (d *Definition) Validate() error {
	if d.ModuleID == "" {
		return fmt.Errorf("%w: module ID cannot be empty", ErrRubricConfig)
	}

	if len(d.Dimensions) == 0 {
		return fmt.Errorf("%w: rubric for module %q has no dimensions", ErrRubricConfig, d.ModuleID)
	}

	seen := make(map[string]bool, len(d.Dimensions))
	weightSum := 0.0

	for i, dim := range d.Dimensions {
		if dim.Name == "" {
			return fmt.Errorf("%w: dimension %d has an empty name", ErrRubricConfig, i)
		}

		if seen[dim.Name] {
			return fmt.Errorf("%w: duplicate dimension %q", ErrRubricConfig, dim.Name)
		}
		seen[dim.Name] = true

		if dim.Weight <= 0 || dim.Weight > 1 {
			return fmt.Errorf("%w: dimension %q weight %v outside (0,1]",
				ErrRubricConfig, dim.Name, dim.Weight)
		}
		weightSum += dim.Weight

		if err := dim.Strategy.validate(dim.Name); err != nil {
			return err
		}
	}

	if math.Abs(weightSum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: dimension weights sum to %v, want 1.0", ErrRubricConfig, weightSum)
	}

	return nil
}

func (s *Strategy) validate(dimension string) error {
	switch s.Kind {
	case StrategyKeyword:
		if len(s.Criteria) == 0 {
			return fmt.Errorf("%w: keyword dimension %q has no criteria", ErrRubricConfig, dimension)
		}
		for i, criterion := range s.Criteria {
			if len(criterion.Terms) == 0 {
				return fmt.Errorf("%w: dimension %q criterion %d has no terms",
					ErrRubricConfig, dimension, i)
			}
			if criterion.Weight <= 0 {
				return fmt.Errorf("%w: dimension %q criterion %d weight must be positive",
					ErrRubricConfig, dimension, i)
			}
		}
	case StrategyFields:
		if len(s.Fields) == 0 {
			return fmt.Errorf("%w: fields dimension %q has no fields", ErrRubricConfig, dimension)
		}
	case StrategyExternal:
		// Nothing to check statically; evaluator presence is checked at
		// scoring time.
	default:
		return fmt.Errorf("%w: dimension %q has unknown strategy kind %q",
			ErrRubricConfig, dimension, s.Kind)
	}

	return nil
}

// maxGaps returns the effective narrative gap limit for the definition.
func (d *Definition) maxGaps() int {
	if d.MaxNarrativeGaps > 0 {
		return d.MaxNarrativeGaps
	}
	return defaultMaxNarrativeGaps
}
