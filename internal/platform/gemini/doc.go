// Package gemini adapts the Google Gemini API to the embedding.Provider
// and generation.Generator boundaries. One shared genai client backs both;
// each adapter normalizes provider errors into its boundary's taxonomy.
package gemini
