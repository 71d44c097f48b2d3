package retrieval

import (
	"fmt"
	"strings"
)

// maxConceptSubQueries bounds how many scenario concept tags expand into
// their own sub-queries.
const maxConceptSubQueries = 3

// buildSubQueries expands a submission and its scenario into a fixed set of
// semantically distinct sub-queries:
//
//  1. the submission text itself,
//  2. one concept-anchored variant per scenario tag (capped), pairing the
//     tag with the submission's leading sentence,
//  3. a scenario-anchored template combining the stem with the submission.
//
// The set is deterministic for a given submission and scenario.
func buildSubQueries(submissionText string, conceptTags []string, scenarioStem string) []string {
	queries := []string{submissionText}

	lead := leadingSentence(submissionText)

	for i, tag := range conceptTags {
		if i == maxConceptSubQueries {
			break
		}
		if tag == "" {
			continue
		}
		queries = append(queries, fmt.Sprintf("%s: %s", tag, lead))
	}

	if scenarioStem != "" {
		queries = append(queries, fmt.Sprintf("evidence for managing: %s", leadingSentence(scenarioStem)))
	}

	return queries
}

// leadingSentence returns the first sentence of the text, or the whole text
// when no sentence delimiter is found.
func leadingSentence(text string) string {
	text = strings.TrimSpace(text)
	for _, delim := range []string{". ", "! ", "? "} {
		if idx := strings.Index(text, delim); idx >= 0 {
			return text[:idx+1]
		}
	}
	return text
}
