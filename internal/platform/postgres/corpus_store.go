package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pgvector/pgvector-go"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/logger"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// PostgresCorpusStore implements the store.CorpusStore interface using a
// PostgreSQL database with the pgvector extension. Cosine similarity is
// computed in SQL via the `<=>` cosine distance operator over an indexed
// vector column.
type PostgresCorpusStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCorpusStore creates a new PostgreSQL implementation of the
// CorpusStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCorpusStore(db store.DBTX, logger *slog.Logger) *PostgresCorpusStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCorpusStore{
		db:     db,
		logger: logger.With(slog.String("component", "corpus_store")),
	}
}

// Ensure PostgresCorpusStore implements store.CorpusStore interface
var _ store.CorpusStore = (*PostgresCorpusStore)(nil)

// Search implements store.CorpusStore.Search
// It returns up to topK chunks ordered by cosine similarity descending,
// all clearing minSimilarity. An empty result is a valid outcome.
// Returns store.ErrCorpusNotFound if the corpus does not exist.
func (s *PostgresCorpusStore) Search(
	ctx context.Context,
	corpusID string,
	queryVector []float32,
	topK int,
	minSimilarity float64,
) ([]store.ScoredChunk, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.corpusExists(ctx, corpusID); err != nil {
		return nil, err
	}

	// `<=>` is cosine distance, so similarity is 1 - distance.
	query := `
		SELECT id, corpus_id, text, embedding, evidence_tier,
		       COALESCE(published_year, 0), source_ref,
		       1 - (embedding <=> $2) AS similarity
		FROM chunks
		WHERE corpus_id = $1
		  AND 1 - (embedding <=> $2) >= $3
		ORDER BY embedding <=> $2
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, corpusID, pgvector.NewVector(queryVector), minSimilarity, topK)
	if err != nil {
		log.Error("corpus search failed",
			slog.String("error", err.Error()),
			slog.String("corpus_id", corpusID))
		return nil, fmt.Errorf("searching corpus %s: %w", corpusID, err)
	}
	defer func() { _ = rows.Close() }()

	var hits []store.ScoredChunk
	for rows.Next() {
		var (
			chunk     domain.Chunk
			embedding pgvector.Vector
			tier      string
			sim       float64
		)
		if err := rows.Scan(
			&chunk.ID,
			&chunk.CorpusID,
			&chunk.Text,
			&embedding,
			&tier,
			&chunk.PublishedYear,
			&chunk.SourceRef,
			&sim,
		); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		chunk.Embedding = embedding.Slice()
		chunk.EvidenceTier = domain.EvidenceTier(tier)
		hits = append(hits, store.ScoredChunk{Chunk: chunk, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rows: %w", err)
	}

	log.Debug("corpus search complete",
		slog.String("corpus_id", corpusID),
		slog.Int("hits", len(hits)))

	return hits, nil
}

// Append implements store.CorpusStore.Append
// It inserts chunks, skipping any whose ID already exists: chunks are
// immutable once indexed, so re-appending an existing ID is a no-op.
// Returns store.ErrCorpusNotFound if the corpus does not exist.
// Returns store.ErrInvalidEntity wrapping the validation error for
// malformed chunks.
func (s *PostgresCorpusStore) Append(ctx context.Context, corpusID string, chunks []domain.Chunk) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.corpusExists(ctx, corpusID); err != nil {
		return err
	}

	query := `
		INSERT INTO chunks (id, corpus_id, text, embedding, evidence_tier, published_year, source_ref)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0), $7)
		ON CONFLICT (id) DO NOTHING
	`

	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			log.Warn("chunk validation failed during append",
				slog.String("error", err.Error()),
				slog.String("chunk_id", chunk.ID))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		_, err := s.db.ExecContext(
			ctx,
			query,
			chunk.ID,
			corpusID,
			chunk.Text,
			pgvector.NewVector(chunk.Embedding),
			string(chunk.EvidenceTier),
			chunk.PublishedYear,
			chunk.SourceRef,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %s", store.ErrCorpusNotFound, corpusID)
			}
			log.Error("failed to append chunk",
				slog.String("error", err.Error()),
				slog.String("chunk_id", chunk.ID),
				slog.String("corpus_id", corpusID))
			return fmt.Errorf("appending chunk %s: %w", chunk.ID, err)
		}
	}

	log.Info("chunks appended",
		slog.String("corpus_id", corpusID),
		slog.Int("count", len(chunks)))

	return nil
}

func (s *PostgresCorpusStore) corpusExists(ctx context.Context, corpusID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM corpora WHERE id = $1)`, corpusID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", store.ErrCorpusNotFound, corpusID)
		}
		return fmt.Errorf("checking corpus %s: %w", corpusID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", store.ErrCorpusNotFound, corpusID)
	}
	return nil
}
