package mocks

import (
	"context"
	"sync"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/generation"
)

// Generator is a scriptable generation.Generator: it replays a fixed reply
// or error and records the prompts it received.
type Generator struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []string
}

// Ensure interface compliance.
var _ generation.Generator = (*Generator)(nil)

// Generate implements generation.Generator.
func (g *Generator) Generate(_ context.Context, prompt string, _ int) (*generation.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Prompts = append(g.Prompts, prompt)

	if g.Err != nil {
		return nil, g.Err
	}

	return &generation.Result{
		Text:        g.Reply,
		RawMetadata: map[string]any{"mock": true},
	}, nil
}

// LastPrompt returns the most recent prompt, or empty when none.
func (g *Generator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Prompts) == 0 {
		return ""
	}
	return g.Prompts[len(g.Prompts)-1]
}
