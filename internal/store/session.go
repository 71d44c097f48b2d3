package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
)

// DefaultWindowSize is the active conversation window length used when the
// configuration does not set one.
const DefaultWindowSize = 5

// SessionStore defines the interface for durable session-scoped state:
// the session record itself, per-module progress, submissions, and the
// conversation history with its bounded active window.
// Version: 1.0
type SessionStore interface {
	// CreateSession saves a new session to the store.
	// It handles domain validation internally.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// TouchSession updates the session's last-active timestamp.
	TouchSession(ctx context.Context, id uuid.UUID) error

	// GetOrCreateModuleProgress returns the progress record for the session
	// and module, creating a fresh novice-level record if none exists.
	// Returns ErrSessionNotFound if the session does not exist.
	GetOrCreateModuleProgress(
		ctx context.Context,
		sessionID uuid.UUID,
		moduleID string,
	) (*domain.ModuleProgress, error)

	// UpdateModuleProgress saves changes to an existing progress record.
	// Returns ErrModuleProgressNotFound if the record does not exist.
	UpdateModuleProgress(ctx context.Context, progress *domain.ModuleProgress) error

	// CreateSubmission saves a new submission.
	CreateSubmission(ctx context.Context, submission *domain.Submission) error

	// AppendTurn inserts a conversation turn into the full history for its
	// (session, module) pair. History is unbounded; the active window is
	// enforced by RecentTurns at read time.
	AppendTurn(ctx context.Context, turn *domain.ConversationTurn) error

	// RecentTurns returns up to n most recent turns for the (session,
	// module) pair, ordered oldest first, suitable for prompt assembly.
	RecentTurns(
		ctx context.Context,
		sessionID uuid.UUID,
		moduleID string,
		n int,
	) ([]domain.ConversationTurn, error)

	// TurnCount returns the full history length for the (session, module)
	// pair.
	TurnCount(ctx context.Context, sessionID uuid.UUID, moduleID string) (int, error)

	// WithTx returns a new SessionStore instance that uses the provided
	// transaction. This allows multiple operations to be executed within a
	// single transaction, managed by the caller (typically a service).
	WithTx(tx *sql.Tx) SessionStore

	// DB returns the underlying database connection for transaction
	// management.
	DB() *sql.DB
}

// ScenarioStore defines the interface for the scenario catalog.
type ScenarioStore interface {
	// GetScenario retrieves a scenario by ID.
	// Returns ErrScenarioNotFound if it does not exist.
	GetScenario(ctx context.Context, id string) (*domain.Scenario, error)

	// NextScenario picks a scenario for the module at the given difficulty
	// level. When biasTags is non-empty, scenarios whose concept tags
	// overlap the bias tags are preferred; exhausted preferences fall back
	// to any scenario at the level.
	// Returns ErrScenarioNotFound when the module has no scenario at the level.
	NextScenario(
		ctx context.Context,
		moduleID string,
		level domain.DifficultyLevel,
		biasTags []string,
	) (*domain.Scenario, error)
}
