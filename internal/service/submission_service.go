package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/composer"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain/adaptive"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/retrieval"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/rubric"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// GenerationUnavailableFeedback is the sentinel composed_feedback returned
// when every generative provider failed. The learner's score and progress
// are persisted regardless.
const GenerationUnavailableFeedback = "Feedback text is temporarily unavailable. " +
	"Your submission was scored and your progress has been saved."

// Retriever is the retrieval boundary the service depends on.
type Retriever interface {
	Retrieve(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
}

// FeedbackComposer is the composition boundary the service depends on.
type FeedbackComposer interface {
	Compose(ctx context.Context, input composer.Input) (*composer.Output, error)
}

// SubmitResult is the outcome of one scored submission: the composed
// feedback with its citations, the rubric outcome, the difficulty
// transition, and the scenario selected for the next attempt.
type SubmitResult struct {
	ComposedFeedback string   `json:"composed_feedback"`
	CitedSources     []string `json:"cited_sources"`

	MasteryScore    float64            `json:"mastery_score"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	NarrativeGaps   []string           `json:"narrative_gaps"`

	NewDifficultyLevel domain.DifficultyLevel `json:"new_difficulty_level"`
	MasteryComplete    bool                   `json:"mastery_complete"`

	// GenerationUnavailable marks that ComposedFeedback is the sentinel
	// because all generative providers failed.
	GenerationUnavailable bool `json:"generation_unavailable"`

	// RetrievalDegraded marks that the evidence set was assembled from a
	// subset of sub-queries or corpora.
	RetrievalDegraded bool `json:"retrieval_degraded"`

	// NextScenarioID is empty when the module has no scenario at the new
	// difficulty level.
	NextScenarioID string `json:"next_scenario_id,omitempty"`
}

// SubmissionService runs the full submission pipeline.
type SubmissionService struct {
	sessionStore  store.SessionStore
	scenarioStore store.ScenarioStore
	retriever     Retriever
	engine        *rubric.Engine
	registry      *rubric.Registry
	comp          FeedbackComposer
	adaptive      adaptive.Service
	windowSize    int
	logger        *slog.Logger

	locks *sessionLocks

	// now is the clock used for progress stamps; replaceable in tests.
	now func() time.Time
}

// NewSubmissionService creates the submission pipeline service.
// It returns an error if any of the required dependencies are nil.
// If logger is nil, a default logger will be used.
func NewSubmissionService(
	sessionStore store.SessionStore,
	scenarioStore store.ScenarioStore,
	retriever Retriever,
	engine *rubric.Engine,
	registry *rubric.Registry,
	comp FeedbackComposer,
	adaptiveService adaptive.Service,
	windowSize int,
	logger *slog.Logger,
) (*SubmissionService, error) {
	if sessionStore == nil {
		return nil, fmt.Errorf("%w: sessionStore cannot be nil", domain.ErrValidation)
	}
	if scenarioStore == nil {
		return nil, fmt.Errorf("%w: scenarioStore cannot be nil", domain.ErrValidation)
	}
	if retriever == nil {
		return nil, fmt.Errorf("%w: retriever cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine cannot be nil", domain.ErrValidation)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: registry cannot be nil", domain.ErrValidation)
	}
	if comp == nil {
		return nil, fmt.Errorf("%w: composer cannot be nil", domain.ErrValidation)
	}
	if adaptiveService == nil {
		return nil, fmt.Errorf("%w: adaptive service cannot be nil", domain.ErrValidation)
	}

	if windowSize <= 0 {
		windowSize = store.DefaultWindowSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SubmissionService{
		sessionStore:  sessionStore,
		scenarioStore: scenarioStore,
		retriever:     retriever,
		engine:        engine,
		registry:      registry,
		comp:          comp,
		adaptive:      adaptiveService,
		windowSize:    windowSize,
		logger:        logger.With(slog.String("component", "submission_service")),
		locks:         newSessionLocks(),
		now:           time.Now,
	}, nil
}

// Submit scores one learner submission end to end. Retrieval and rubric
// scoring run concurrently; both join before composition. Session state
// (submission, progress, conversation turn, last-active stamp) is applied
// atomically after scoring, and a generation failure never blocks that
// persistence. Submissions for the same session are serialized; a later
// one waits rather than failing.
func (s *SubmissionService) Submit(
	ctx context.Context,
	sessionID uuid.UUID,
	moduleID string,
	scenarioID string,
	text string,
) (*SubmitResult, error) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	log := s.logger.With(
		slog.String("session_id", sessionID.String()),
		slog.String("module_id", moduleID))

	if _, err := s.sessionStore.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	// Rubric configuration problems are fatal before any scoring work.
	def, err := s.registry.ForModule(moduleID)
	if err != nil {
		return nil, err
	}

	scenario, err := s.scenarioStore.GetScenario(ctx, scenarioID)
	if err != nil {
		return nil, err
	}
	if scenario.ModuleID != moduleID {
		return nil, fmt.Errorf("%w: scenario %s belongs to module %s",
			domain.ErrValidation, scenarioID, scenario.ModuleID)
	}

	submission, err := domain.NewSubmission(sessionID, moduleID, scenarioID, text)
	if err != nil {
		return nil, err
	}

	// Retrieval and rubric scoring have no data dependency; run them
	// concurrently and join before composing.
	var (
		evidence *retrieval.Result
		score    *domain.RubricScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		evidence, err = s.retriever.Retrieve(gctx, retrieval.Request{
			SubmissionText: text,
			ConceptTags:    scenario.ConceptTags,
			ScenarioStem:   scenario.Stem,
			Corpora:        []string{domain.CorpusLiterature, domain.CorpusExpert},
		})
		return err
	})
	g.Go(func() error {
		var err error
		score, err = s.engine.Evaluate(gctx, def, submission)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	turns, err := s.sessionStore.RecentTurns(ctx, sessionID, moduleID, s.windowSize)
	if err != nil {
		return nil, err
	}

	feedback := GenerationUnavailableFeedback
	var citedSources []string
	generationUnavailable := false

	output, err := s.comp.Compose(ctx, composer.Input{
		ScenarioStem:    scenario.Stem,
		SubmissionText:  text,
		Turns:           turns,
		DimensionScores: score.DimensionScores,
		MasteryScore:    score.MasteryScore,
		NarrativeGaps:   score.NarrativeGaps,
		Evidence:        evidence.Evidence,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("feedback composition failed, returning sentinel",
			slog.String("error", err.Error()))
		generationUnavailable = true
	} else {
		feedback = output.ComposedFeedback
		citedSources = output.CitedSources
	}

	progress, err := s.sessionStore.GetOrCreateModuleProgress(ctx, sessionID, moduleID)
	if err != nil {
		return nil, err
	}

	previousLevel := progress.CurrentLevel
	updated, err := s.adaptive.ApplyScore(progress, score.MasteryScore, s.now())
	if err != nil {
		return nil, err
	}

	turn, err := domain.NewConversationTurn(sessionID, moduleID, text, feedback, citedSources)
	if err != nil {
		return nil, err
	}

	// A cancelled submission must not partially mutate session state.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, submission, updated, turn); err != nil {
		return nil, err
	}

	result := &SubmitResult{
		ComposedFeedback:      feedback,
		CitedSources:          citedSources,
		MasteryScore:          score.MasteryScore,
		DimensionScores:       score.DimensionScores,
		NarrativeGaps:         score.NarrativeGaps,
		NewDifficultyLevel:    updated.CurrentLevel,
		MasteryComplete:       updated.MasteryComplete,
		GenerationUnavailable: generationUnavailable,
		RetrievalDegraded:     evidence.Degraded,
		NextScenarioID:        s.nextScenarioID(ctx, log, moduleID, previousLevel, updated.CurrentLevel, score.NarrativeGaps),
	}

	log.Info("submission scored",
		slog.String("submission_id", submission.ID.String()),
		slog.Float64("mastery_score", score.MasteryScore),
		slog.String("difficulty", string(updated.CurrentLevel)),
		slog.Bool("generation_unavailable", generationUnavailable),
		slog.Bool("retrieval_degraded", evidence.Degraded))

	return result, nil
}

// persist applies all session-state mutations for one submission. When the
// store is backed by a real database the writes share one transaction;
// stores without a connection (in-memory fakes) are written directly.
func (s *SubmissionService) persist(
	ctx context.Context,
	submission *domain.Submission,
	progress *domain.ModuleProgress,
	turn *domain.ConversationTurn,
) error {
	apply := func(ctx context.Context, st store.SessionStore) error {
		if err := st.CreateSubmission(ctx, submission); err != nil {
			return err
		}
		if err := st.UpdateModuleProgress(ctx, progress); err != nil {
			return err
		}
		if err := st.AppendTurn(ctx, turn); err != nil {
			return err
		}
		return st.TouchSession(ctx, submission.SessionID)
	}

	db := s.sessionStore.DB()
	if db == nil {
		return apply(ctx, s.sessionStore)
	}

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return apply(ctx, s.sessionStore.WithTx(tx))
	})
}

// nextScenarioID picks the scenario for the next attempt at the new level.
// When the level did not change, selection is biased toward the learner's
// narrative gaps. An empty catalog is not an error; the result just omits
// the next scenario.
func (s *SubmissionService) nextScenarioID(
	ctx context.Context,
	log *slog.Logger,
	moduleID string,
	previousLevel domain.DifficultyLevel,
	newLevel domain.DifficultyLevel,
	gaps []string,
) string {
	var biasTags []string
	if newLevel == previousLevel {
		biasTags = gaps
	}

	next, err := s.scenarioStore.NextScenario(ctx, moduleID, newLevel, biasTags)
	if err != nil {
		if !errors.Is(err, store.ErrScenarioNotFound) {
			log.Warn("next scenario selection failed",
				slog.String("error", err.Error()))
		}
		return ""
	}

	return next.ID
}
