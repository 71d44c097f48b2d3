package adaptive

import (
	"time"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// calculateNextLevel determines the difficulty level after one scored
// submission.
//
// The controller moves at most one step per submission: a learner whose
// mastery score clears the promotion threshold for their current level
// advances exactly one level, even if the score would also clear the next
// threshold. A score below the threshold leaves the level unchanged, and the
// learner receives another scenario at the same level.
//
// Parameters:
//   - level: The learner's current difficulty level for the module
//   - masteryScore: The aggregate score of the submission, in [0,1]
//   - params: Configuration parameters for the controller
//
// Returns:
//   - The next difficulty level (equal to level or one step above)
func calculateNextLevel(
	level domain.DifficultyLevel,
	masteryScore float64,
	params *Params,
) domain.DifficultyLevel {
	threshold, ok := params.PromoteThresholds[level]
	if !ok {
		// Expert is terminal for promotion purposes.
		return level
	}

	if masteryScore >= threshold {
		return level.Next()
	}

	return level
}

// calculateNextProgress creates a new ModuleProgress with updated values
// after one scored submission, following the immutable-update pattern: the
// existing progress is never modified, a new value is returned.
//
// Behavior:
//   - Increments the attempt count
//   - Raises BestMasteryScore when the new score exceeds it (monotonic max)
//   - Applies the single-step difficulty transition rule
//   - Marks the module mastery-complete at expert level once the score
//     reaches the completion threshold; the flag is never cleared
//   - Updates the updated timestamp to now
func calculateNextProgress(
	progress *domain.ModuleProgress,
	masteryScore float64,
	now time.Time,
	params *Params,
) *domain.ModuleProgress {
	next := &domain.ModuleProgress{
		SessionID:        progress.SessionID,
		ModuleID:         progress.ModuleID,
		Attempts:         progress.Attempts + 1,
		BestMasteryScore: progress.BestMasteryScore,
		CurrentLevel:     progress.CurrentLevel,
		MasteryComplete:  progress.MasteryComplete,
		TimeSpent:        progress.TimeSpent,
		CreatedAt:        progress.CreatedAt,
		UpdatedAt:        now,
	}

	if masteryScore > next.BestMasteryScore {
		next.BestMasteryScore = masteryScore
	}

	if progress.CurrentLevel == domain.DifficultyExpert &&
		masteryScore >= params.MasteryCompleteThreshold {
		next.MasteryComplete = true
	}

	next.CurrentLevel = calculateNextLevel(progress.CurrentLevel, masteryScore, params)

	return next
}
