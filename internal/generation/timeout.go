package generation

import (
	"context"
	"time"
)

// timeoutGenerator bounds every Generate call with a deadline.
type timeoutGenerator struct {
	inner   Generator
	timeout time.Duration
}

// WithTimeout wraps a generator so each call observes the given deadline.
// A non-positive timeout returns the generator unchanged.
func WithTimeout(inner Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return inner
	}
	return &timeoutGenerator{inner: inner, timeout: timeout}
}

// Generate implements Generator.
func (g *timeoutGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.inner.Generate(ctx, prompt, maxTokens)
}
