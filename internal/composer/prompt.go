package composer

import (
	"fmt"
	"sort"
	"strings"
)

// buildPrompt renders the structured feedback prompt. Section order is
// fixed so prompts are deterministic for a given input, and every free-text
// section is length-bounded.
func buildPrompt(input Input) string {
	var b strings.Builder

	b.WriteString("You are an antimicrobial stewardship preceptor giving feedback on a trainee's clinical plan.\n\n")

	if input.ScenarioStem != "" {
		b.WriteString("## Scenario\n")
		b.WriteString(truncate(input.ScenarioStem, maxTurnChars))
		b.WriteString("\n\n")
	}

	if len(input.Turns) > 0 {
		b.WriteString("## Prior exchange (oldest first)\n")
		for _, turn := range input.Turns {
			fmt.Fprintf(&b, "Trainee: %s\n", truncate(turn.SubmitterText, maxTurnChars))
			fmt.Fprintf(&b, "Preceptor: %s\n", truncate(turn.ComposedFeedback, maxTurnChars))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Trainee's plan\n")
	b.WriteString(truncate(input.SubmissionText, maxSubmissionChars))
	b.WriteString("\n\n")

	b.WriteString("## Rubric assessment\n")
	fmt.Fprintf(&b, "Overall mastery: %.2f\n", input.MasteryScore)
	for _, name := range sortedDimensionNames(input.DimensionScores) {
		fmt.Fprintf(&b, "- %s: %.2f\n", name, input.DimensionScores[name])
	}
	if len(input.NarrativeGaps) > 0 {
		fmt.Fprintf(&b, "Weakest areas, in priority order: %s\n", strings.Join(input.NarrativeGaps, ", "))
	}
	b.WriteString("\n")

	if len(input.Evidence) > 0 {
		b.WriteString("## Evidence (cite by source identifier where relevant)\n")
		for _, ev := range input.Evidence {
			fmt.Fprintf(&b, "[%s] (%s) %s\n",
				ev.Chunk.SourceRef,
				ev.Chunk.EvidenceTier,
				truncate(ev.Chunk.Text, maxEvidenceChars))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("## Evidence\nNo corpus evidence was retrieved for this plan. Give feedback from general stewardship principles and do not fabricate citations.\n\n")
	}

	b.WriteString("Give concise, specific feedback: what the plan gets right, what it misses, and the single most important improvement. Reference evidence by its source identifier in square brackets.")

	return b.String()
}

// sortedDimensionNames keeps the rubric section stable across runs; map
// iteration order would otherwise vary the prompt for identical input.
func sortedDimensionNames(scores map[string]float64) []string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
