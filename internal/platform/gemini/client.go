package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/generation"
)

// NewClient creates the shared genai client used by both the embedder and
// the generator.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return client, nil
}
