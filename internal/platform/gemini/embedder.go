package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/embedding"
)

// Embedder implements embedding.Provider on top of the Gemini embedding
// models. Queries are embedded with the retrieval-query task type so they
// land in the same space as the retrieval-document vectors produced by the
// offline corpus ingestion.
type Embedder struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

// NewEmbedder creates a Gemini-backed embedding provider.
// If logger is nil, a default logger will be used.
func NewEmbedder(client *genai.Client, modelName string, logger *slog.Logger) (*Embedder, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if modelName == "" {
		return nil, fmt.Errorf("embedding model name is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Embedder{
		client:    client,
		modelName: modelName,
		logger:    logger.With(slog.String("component", "gemini_embedder")),
	}, nil
}

// Ensure Embedder implements embedding.Provider.
var _ embedding.Provider = (*Embedder)(nil)

// Embed implements embedding.Provider.Embed
// All provider failures surface as embedding.ErrEmbeddingUnavailable so
// callers degrade instead of aborting the submission.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, embedding.ErrEmptyText
	}

	resp, err := e.client.Models.EmbedContent(
		ctx,
		e.modelName,
		genai.Text(text),
		&genai.EmbedContentConfig{TaskType: "RETRIEVAL_QUERY"},
	)
	if err != nil {
		e.logger.Warn("embedding call failed",
			slog.String("error", err.Error()),
			slog.Int("text_length", len(text)))
		return nil, fmt.Errorf("%w: %v", embedding.ErrEmbeddingUnavailable, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", embedding.ErrEmbeddingUnavailable)
	}

	return resp.Embeddings[0].Values, nil
}
