// Package adaptive implements the difficulty controller: a small state
// machine over the ordered difficulty levels that consumes mastery scores
// and decides the next scenario difficulty for a module.
package adaptive

import (
	"errors"
	"fmt"
	"time"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// Common errors
var (
	ErrNilProgress  = errors.New("module progress cannot be nil")
	ErrInvalidLevel = errors.New("invalid difficulty level")
)

// Service defines the interface for adaptive difficulty operations.
type Service interface {
	// ApplyScore computes new module progress after one scored submission.
	// A mastery score outside [0,1] is a programming error and is rejected,
	// never clamped.
	ApplyScore(
		progress *domain.ModuleProgress,
		masteryScore float64,
		now time.Time,
	) (*domain.ModuleProgress, error)

	// NextLevel returns the level one scored submission at the given
	// mastery score would move the learner to.
	NextLevel(
		level domain.DifficultyLevel,
		masteryScore float64,
	) (domain.DifficultyLevel, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new adaptive service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new adaptive service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ApplyScore implements the Service interface.
func (s *defaultService) ApplyScore(
	progress *domain.ModuleProgress,
	masteryScore float64,
	now time.Time,
) (*domain.ModuleProgress, error) {
	if progress == nil {
		return nil, ErrNilProgress
	}

	if masteryScore < 0 || masteryScore > 1 {
		return nil, fmt.Errorf("%w: %v", domain.ErrMasteryScoreOutOfRange, masteryScore)
	}

	if !progress.CurrentLevel.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, progress.CurrentLevel)
	}

	return calculateNextProgress(progress, masteryScore, now, s.params), nil
}

// NextLevel implements the Service interface.
func (s *defaultService) NextLevel(
	level domain.DifficultyLevel,
	masteryScore float64,
) (domain.DifficultyLevel, error) {
	if masteryScore < 0 || masteryScore > 1 {
		return "", fmt.Errorf("%w: %v", domain.ErrMasteryScoreOutOfRange, masteryScore)
	}

	if !level.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	return calculateNextLevel(level, masteryScore, s.params), nil
}
