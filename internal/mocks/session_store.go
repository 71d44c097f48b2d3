package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

type progressKey struct {
	sessionID uuid.UUID
	moduleID  string
}

// SessionStore is an in-memory store.SessionStore. WithTx returns the store
// itself and DB returns nil, so services fall back to their non-transactional
// path in tests.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*domain.Session
	progress    map[progressKey]*domain.ModuleProgress
	submissions map[uuid.UUID]*domain.Submission
	turns       map[progressKey][]domain.ConversationTurn

	// FailUpdate injects a failure into UpdateModuleProgress.
	FailUpdate error
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:    make(map[uuid.UUID]*domain.Session),
		progress:    make(map[progressKey]*domain.ModuleProgress),
		submissions: make(map[uuid.UUID]*domain.Submission),
		turns:       make(map[progressKey][]domain.ConversationTurn),
	}
}

// Ensure interface compliance.
var _ store.SessionStore = (*SessionStore)(nil)

// CreateSession implements store.SessionStore.
func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return store.ErrDuplicate
	}

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

// GetSession implements store.SessionStore.
func (s *SessionStore) GetSession(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

// TouchSession implements store.SessionStore.
func (s *SessionStore) TouchSession(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return store.ErrSessionNotFound
	}

	session.LastActiveAt = time.Now().UTC()
	return nil
}

// GetOrCreateModuleProgress implements store.SessionStore.
func (s *SessionStore) GetOrCreateModuleProgress(
	_ context.Context,
	sessionID uuid.UUID,
	moduleID string,
) (*domain.ModuleProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, store.ErrSessionNotFound
	}

	key := progressKey{sessionID: sessionID, moduleID: moduleID}
	if progress, ok := s.progress[key]; ok {
		copied := *progress
		return &copied, nil
	}

	progress, err := domain.NewModuleProgress(sessionID, moduleID)
	if err != nil {
		return nil, err
	}

	s.progress[key] = progress
	copied := *progress
	return &copied, nil
}

// UpdateModuleProgress implements store.SessionStore.
func (s *SessionStore) UpdateModuleProgress(_ context.Context, progress *domain.ModuleProgress) error {
	if s.FailUpdate != nil {
		return s.FailUpdate
	}

	if err := progress.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{sessionID: progress.SessionID, moduleID: progress.ModuleID}
	if _, ok := s.progress[key]; !ok {
		return store.ErrModuleProgressNotFound
	}

	copied := *progress
	s.progress[key] = &copied
	return nil
}

// CreateSubmission implements store.SessionStore.
func (s *SessionStore) CreateSubmission(_ context.Context, submission *domain.Submission) error {
	if err := submission.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *submission
	s.submissions[submission.ID] = &copied
	return nil
}

// AppendTurn implements store.SessionStore.
func (s *SessionStore) AppendTurn(_ context.Context, turn *domain.ConversationTurn) error {
	if err := turn.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{sessionID: turn.SessionID, moduleID: turn.ModuleID}
	s.turns[key] = append(s.turns[key], *turn)
	return nil
}

// RecentTurns implements store.SessionStore.
func (s *SessionStore) RecentTurns(
	_ context.Context,
	sessionID uuid.UUID,
	moduleID string,
	n int,
) ([]domain.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{sessionID: sessionID, moduleID: moduleID}
	history := s.turns[key]

	if n <= 0 {
		n = store.DefaultWindowSize
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}

	window := make([]domain.ConversationTurn, len(history))
	copy(window, history)
	return window, nil
}

// TurnCount implements store.SessionStore.
func (s *SessionStore) TurnCount(_ context.Context, sessionID uuid.UUID, moduleID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.turns[progressKey{sessionID: sessionID, moduleID: moduleID}]), nil
}

// WithTx implements store.SessionStore.
func (s *SessionStore) WithTx(_ *sql.Tx) store.SessionStore { return s }

// DB implements store.SessionStore.
func (s *SessionStore) DB() *sql.DB { return nil }

// ScenarioStore is an in-memory store.ScenarioStore.
type ScenarioStore struct {
	mu        sync.Mutex
	scenarios map[string]*domain.Scenario
}

// NewScenarioStore creates a scenario store holding the given scenarios.
func NewScenarioStore(scenarios ...*domain.Scenario) *ScenarioStore {
	s := &ScenarioStore{scenarios: make(map[string]*domain.Scenario)}
	for _, sc := range scenarios {
		s.scenarios[sc.ID] = sc
	}
	return s
}

// Ensure interface compliance.
var _ store.ScenarioStore = (*ScenarioStore)(nil)

// GetScenario implements store.ScenarioStore.
func (s *ScenarioStore) GetScenario(_ context.Context, id string) (*domain.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenario, ok := s.scenarios[id]
	if !ok {
		return nil, store.ErrScenarioNotFound
	}
	return scenario, nil
}

// NextScenario implements store.ScenarioStore: scenarios sharing a bias tag
// win; otherwise any scenario at the level, in stable ID order.
func (s *ScenarioStore) NextScenario(
	_ context.Context,
	moduleID string,
	level domain.DifficultyLevel,
	biasTags []string,
) (*domain.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var atLevel []*domain.Scenario
	for _, sc := range s.scenarios {
		if sc.ModuleID == moduleID && sc.Difficulty == level {
			atLevel = append(atLevel, sc)
		}
	}

	sort.Slice(atLevel, func(i, j int) bool { return atLevel[i].ID < atLevel[j].ID })

	bias := make(map[string]bool, len(biasTags))
	for _, tag := range biasTags {
		bias[tag] = true
	}

	for _, sc := range atLevel {
		for _, tag := range sc.ConceptTags {
			if bias[tag] {
				return sc, nil
			}
		}
	}

	if len(atLevel) > 0 {
		return atLevel[0], nil
	}

	return nil, store.ErrScenarioNotFound
}
