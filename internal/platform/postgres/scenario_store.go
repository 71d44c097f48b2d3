package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// PostgresScenarioStore implements the store.ScenarioStore interface
// using a PostgreSQL database as the storage backend.
type PostgresScenarioStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScenarioStore creates a new PostgreSQL implementation of the
// ScenarioStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresScenarioStore(db store.DBTX, logger *slog.Logger) *PostgresScenarioStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresScenarioStore{
		db:     db,
		logger: logger.With(slog.String("component", "scenario_store")),
	}
}

// Ensure PostgresScenarioStore implements store.ScenarioStore interface
var _ store.ScenarioStore = (*PostgresScenarioStore)(nil)

// GetScenario implements store.ScenarioStore.GetScenario
// Returns store.ErrScenarioNotFound if the scenario does not exist.
func (s *PostgresScenarioStore) GetScenario(ctx context.Context, id string) (*domain.Scenario, error) {
	query := `
		SELECT id, module_id, difficulty, concept_tags, stem
		FROM scenarios
		WHERE id = $1
	`

	scenario, err := scanScenario(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrScenarioNotFound, id)
		}
		return nil, fmt.Errorf("getting scenario %s: %w", id, err)
	}

	return scenario, nil
}

// NextScenario implements store.ScenarioStore.NextScenario
// It lists the module's scenarios at the given level in catalog order and
// prefers one whose concept tags overlap the bias tags, so a learner's
// weakest areas steer what they see next. With no overlap, or no bias
// tags, the first scenario at the level is returned.
// Returns store.ErrScenarioNotFound when the module has no scenario at
// the level.
func (s *PostgresScenarioStore) NextScenario(
	ctx context.Context,
	moduleID string,
	level domain.DifficultyLevel,
	biasTags []string,
) (*domain.Scenario, error) {
	query := `
		SELECT id, module_id, difficulty, concept_tags, stem
		FROM scenarios
		WHERE module_id = $1 AND difficulty = $2
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, moduleID, string(level))
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []domain.Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scenario row: %w", err)
		}
		candidates = append(candidates, *scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenario rows: %w", err)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: module %s at %s", store.ErrScenarioNotFound, moduleID, level)
	}

	for i := range candidates {
		if tagsOverlap(candidates[i].ConceptTags, biasTags) {
			return &candidates[i], nil
		}
	}

	return &candidates[0], nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (*domain.Scenario, error) {
	var (
		scenario   domain.Scenario
		difficulty string
		tags       []byte
	)
	if err := row.Scan(
		&scenario.ID,
		&scenario.ModuleID,
		&difficulty,
		&tags,
		&scenario.Stem,
	); err != nil {
		return nil, err
	}

	scenario.Difficulty = domain.DifficultyLevel(difficulty)
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &scenario.ConceptTags); err != nil {
			return nil, fmt.Errorf("decoding concept tags: %w", err)
		}
	}

	return &scenario, nil
}

func tagsOverlap(tags, biasTags []string) bool {
	for _, bias := range biasTags {
		for _, tag := range tags {
			if tag == bias {
				return true
			}
		}
	}
	return false
}
