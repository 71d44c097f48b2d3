package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/logger"
)

// FallbackChain is a Generator backed by an ordered list of providers:
// each is tried in turn and the first success wins. Only when every
// provider fails does the chain report ErrGenerationUnavailable.
type FallbackChain struct {
	generators []Generator
	logger     *slog.Logger
}

// NewFallbackChain creates a chain over the given generators, tried in
// order. At least one generator is required. If logger is nil, a default
// logger will be used.
func NewFallbackChain(generators []Generator, logger *slog.Logger) (*FallbackChain, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("%w: fallback chain needs at least one generator", ErrInvalidConfig)
	}

	for i, g := range generators {
		if g == nil {
			return nil, fmt.Errorf("%w: generator %d is nil", ErrInvalidConfig, i)
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &FallbackChain{
		generators: generators,
		logger:     logger.With(slog.String("component", "generation_fallback")),
	}, nil
}

// Ensure FallbackChain implements the Generator interface
var _ Generator = (*FallbackChain)(nil)

// Generate implements Generator. Context cancellation stops the chain
// immediately; provider errors move it to the next provider.
func (c *FallbackChain) Generate(ctx context.Context, prompt string, maxTokens int) (*Result, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	log := logger.FromContextOrDefault(ctx, c.logger)

	var lastErr error
	for i, g := range c.generators {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
		}

		result, err := g.Generate(ctx, prompt, maxTokens)
		if err == nil {
			if i > 0 {
				log.Info("generation served by fallback provider",
					slog.Int("provider_index", i))
			}
			return result, nil
		}

		// Safety blocks are terminal: retrying the same content against
		// another provider will not produce usable feedback.
		if errors.Is(err, ErrContentBlocked) {
			return nil, err
		}

		log.Warn("generation provider failed, trying next",
			slog.Int("provider_index", i),
			slog.String("error", err.Error()))
		lastErr = err
	}

	return nil, fmt.Errorf("%w: all %d providers failed: %v",
		ErrGenerationUnavailable, len(c.generators), lastErr)
}
