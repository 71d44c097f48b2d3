package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/logger"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
// It returns a store instance bound to the given transaction so multiple
// operations can run atomically under caller-managed transaction control.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// DB implements store.SessionStore.DB
// It returns the underlying connection when the store is not bound to a
// transaction, and nil otherwise.
func (s *PostgresSessionStore) DB() *sql.DB {
	if db, ok := s.db.(*sql.DB); ok {
		return db
	}
	return nil
}

// CreateSession implements store.SessionStore.CreateSession
// It saves a new session, handling domain validation internally.
// Returns store.ErrDuplicate if the session ID already exists.
func (s *PostgresSessionStore) CreateSession(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	query := `
		INSERT INTO sessions (id, display_name, role, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.DisplayName,
		session.Role,
		session.CreatedAt,
		session.LastActiveAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session %s", store.ErrDuplicate, session.ID)
		}
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("creating session: %w", err)
	}

	log.Info("session created", slog.String("session_id", session.ID.String()))
	return nil
}

// GetSession implements store.SessionStore.GetSession
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, display_name, role, created_at, last_active_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.DisplayName,
		&session.Role,
		&session.CreatedAt,
		&session.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}

	return &session, nil
}

// TouchSession implements store.SessionStore.TouchSession
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) TouchSession(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_active_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("touching session %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touching session %s: %w", id, err)
	}
	if rows == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// GetOrCreateModuleProgress implements store.SessionStore.GetOrCreateModuleProgress
// It returns the progress record for the session and module, inserting a
// fresh novice-level record if none exists yet.
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) GetOrCreateModuleProgress(
	ctx context.Context,
	sessionID uuid.UUID,
	moduleID string,
) (*domain.ModuleProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	progress, err := s.getModuleProgress(ctx, sessionID, moduleID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, store.ErrModuleProgressNotFound) {
		return nil, err
	}

	fresh, err := domain.NewModuleProgress(sessionID, moduleID)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO module_progress
			(session_id, module_id, attempts, best_mastery_score,
			 current_difficulty, mastery_complete, time_spent_ns, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id, module_id) DO NOTHING
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		fresh.SessionID,
		fresh.ModuleID,
		fresh.Attempts,
		fresh.BestMasteryScore,
		string(fresh.CurrentLevel),
		fresh.MasteryComplete,
		int64(fresh.TimeSpent),
		fresh.CreatedAt,
		fresh.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to create module progress",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()),
			slog.String("module_id", moduleID))
		return nil, fmt.Errorf("creating module progress: %w", err)
	}

	// Re-read in case a concurrent insert won the ON CONFLICT race.
	return s.getModuleProgress(ctx, sessionID, moduleID)
}

func (s *PostgresSessionStore) getModuleProgress(
	ctx context.Context,
	sessionID uuid.UUID,
	moduleID string,
) (*domain.ModuleProgress, error) {
	query := `
		SELECT session_id, module_id, attempts, best_mastery_score,
		       current_difficulty, mastery_complete, time_spent_ns, created_at, updated_at
		FROM module_progress
		WHERE session_id = $1 AND module_id = $2
	`

	var (
		progress    domain.ModuleProgress
		level       string
		timeSpentNs int64
	)
	err := s.db.QueryRowContext(ctx, query, sessionID, moduleID).Scan(
		&progress.SessionID,
		&progress.ModuleID,
		&progress.Attempts,
		&progress.BestMasteryScore,
		&level,
		&progress.MasteryComplete,
		&timeSpentNs,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrModuleProgressNotFound
		}
		return nil, fmt.Errorf("getting module progress: %w", err)
	}

	progress.CurrentLevel = domain.DifficultyLevel(level)
	progress.TimeSpent = time.Duration(timeSpentNs)

	return &progress, nil
}

// UpdateModuleProgress implements store.SessionStore.UpdateModuleProgress
// It saves changes to an existing progress record, stamping updated_at.
// Returns store.ErrModuleProgressNotFound if the record does not exist.
func (s *PostgresSessionStore) UpdateModuleProgress(ctx context.Context, progress *domain.ModuleProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("module progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("session_id", progress.SessionID.String()),
			slog.String("module_id", progress.ModuleID))
		return err
	}

	query := `
		UPDATE module_progress
		SET attempts = $3,
		    best_mastery_score = $4,
		    current_difficulty = $5,
		    mastery_complete = $6,
		    time_spent_ns = $7,
		    updated_at = $8
		WHERE session_id = $1 AND module_id = $2
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.SessionID,
		progress.ModuleID,
		progress.Attempts,
		progress.BestMasteryScore,
		string(progress.CurrentLevel),
		progress.MasteryComplete,
		int64(progress.TimeSpent),
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to update module progress",
			slog.String("error", err.Error()),
			slog.String("session_id", progress.SessionID.String()),
			slog.String("module_id", progress.ModuleID))
		return fmt.Errorf("updating module progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating module progress: %w", err)
	}
	if rows == 0 {
		return store.ErrModuleProgressNotFound
	}

	return nil
}

// CreateSubmission implements store.SessionStore.CreateSubmission
// It saves a new submission, handling domain validation internally.
func (s *PostgresSessionStore) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := submission.Validate(); err != nil {
		log.Warn("submission validation failed during create",
			slog.String("error", err.Error()),
			slog.String("submission_id", submission.ID.String()))
		return err
	}

	query := `
		INSERT INTO submissions (id, session_id, module_id, scenario_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		submission.ID,
		submission.SessionID,
		submission.ModuleID,
		submission.ScenarioID,
		submission.Text,
		submission.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: session %s", store.ErrSessionNotFound, submission.SessionID)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: submission %s", store.ErrDuplicate, submission.ID)
		}
		log.Error("failed to create submission",
			slog.String("error", err.Error()),
			slog.String("submission_id", submission.ID.String()))
		return fmt.Errorf("creating submission: %w", err)
	}

	return nil
}

// AppendTurn implements store.SessionStore.AppendTurn
// It inserts the turn into the unbounded full history; the active window
// is enforced at read time by RecentTurns.
func (s *PostgresSessionStore) AppendTurn(ctx context.Context, turn *domain.ConversationTurn) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := turn.Validate(); err != nil {
		log.Warn("conversation turn validation failed during append",
			slog.String("error", err.Error()),
			slog.String("session_id", turn.SessionID.String()))
		return err
	}

	citedSources, err := json.Marshal(turn.CitedSources)
	if err != nil {
		return fmt.Errorf("encoding cited sources: %w", err)
	}

	query := `
		INSERT INTO conversation_turns
			(session_id, module_id, submitter_text, composed_feedback, cited_sources, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		turn.SessionID,
		turn.ModuleID,
		turn.SubmitterText,
		turn.ComposedFeedback,
		citedSources,
		turn.Timestamp,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: session %s", store.ErrSessionNotFound, turn.SessionID)
		}
		log.Error("failed to append conversation turn",
			slog.String("error", err.Error()),
			slog.String("session_id", turn.SessionID.String()),
			slog.String("module_id", turn.ModuleID))
		return fmt.Errorf("appending conversation turn: %w", err)
	}

	return nil
}

// RecentTurns implements store.SessionStore.RecentTurns
// It returns up to n most recent turns for the (session, module) pair,
// ordered oldest first.
func (s *PostgresSessionStore) RecentTurns(
	ctx context.Context,
	sessionID uuid.UUID,
	moduleID string,
	n int,
) ([]domain.ConversationTurn, error) {
	if n <= 0 {
		n = store.DefaultWindowSize
	}

	// The inner query takes the newest n by insertion order; the outer
	// query restores chronological order for prompt assembly.
	query := `
		SELECT session_id, module_id, submitter_text, composed_feedback, cited_sources, ts
		FROM (
			SELECT id, session_id, module_id, submitter_text, composed_feedback, cited_sources, ts
			FROM conversation_turns
			WHERE session_id = $1 AND module_id = $2
			ORDER BY id DESC
			LIMIT $3
		) recent
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID, moduleID, n)
	if err != nil {
		return nil, fmt.Errorf("listing recent turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []domain.ConversationTurn
	for rows.Next() {
		var (
			turn  domain.ConversationTurn
			cited []byte
		)
		if err := rows.Scan(
			&turn.SessionID,
			&turn.ModuleID,
			&turn.SubmitterText,
			&turn.ComposedFeedback,
			&cited,
			&turn.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning turn row: %w", err)
		}
		if len(cited) > 0 {
			if err := json.Unmarshal(cited, &turn.CitedSources); err != nil {
				return nil, fmt.Errorf("decoding cited sources: %w", err)
			}
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turn rows: %w", err)
	}

	return turns, nil
}

// TurnCount implements store.SessionStore.TurnCount
// It returns the full history length for the (session, module) pair.
func (s *PostgresSessionStore) TurnCount(ctx context.Context, sessionID uuid.UUID, moduleID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_turns WHERE session_id = $1 AND module_id = $2`,
		sessionID, moduleID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting turns: %w", err)
	}
	return count, nil
}
