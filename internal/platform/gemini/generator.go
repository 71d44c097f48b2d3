package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/generation"
)

// Generator implements generation.Generator on top of one Gemini model.
// Ordered fallback across models is composed outside via
// generation.FallbackChain, one Generator per model.
type Generator struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

// NewGenerator creates a Gemini-backed generator for a single model.
// If logger is nil, a default logger will be used.
func NewGenerator(client *genai.Client, modelName string, logger *slog.Logger) (*Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client cannot be nil", generation.ErrInvalidConfig)
	}
	if modelName == "" {
		return nil, fmt.Errorf("%w: model name is required", generation.ErrInvalidConfig)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		client:    client,
		modelName: modelName,
		logger:    logger.With(
			slog.String("component", "gemini_generator"),
			slog.String("model", modelName)),
	}, nil
}

// Ensure Generator implements generation.Generator.
var _ generation.Generator = (*Generator)(nil)

// Generate implements generation.Generator.Generate
// Safety blocks map to generation.ErrContentBlocked; every other provider
// failure maps to generation.ErrGenerationUnavailable so the fallback
// chain can try the next model.
func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int) (*generation.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, generation.ErrEmptyPrompt
	}

	var cfg *genai.GenerateContentConfig
	if maxTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(maxTokens)}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		g.logger.Warn("generation call failed",
			slog.String("error", err.Error()),
			slog.Int("prompt_length", len(prompt)))
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationUnavailable, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		g.logger.Warn("prompt blocked by safety filters",
			slog.String("block_reason", string(resp.PromptFeedback.BlockReason)))
		return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: candidate stopped for safety", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply text", generation.ErrInvalidResponse)
	}

	metadata := map[string]any{"model": g.modelName}
	if resp.UsageMetadata != nil {
		metadata["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		metadata["reply_tokens"] = resp.UsageMetadata.CandidatesTokenCount
	}
	if len(resp.Candidates) > 0 {
		metadata["finish_reason"] = string(resp.Candidates[0].FinishReason)
	}

	return &generation.Result{
		Text:        text,
		RawMetadata: metadata,
	}, nil
}
