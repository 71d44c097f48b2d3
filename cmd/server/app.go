package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/composer"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/config"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain/adaptive"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/embedding"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/generation"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/gemini"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/postgres"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/retrieval"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/rubric"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/service"
)

// application holds the wired dependency graph.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	submissionService *service.SubmissionService
	sessionService    *service.SessionService
}

// newApplication wires stores, the Gemini boundary adapters, the retrieval
// and rubric pipelines, and the services on top of them.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	logger *slog.Logger,
) (*application, error) {
	sessionStore := postgres.NewPostgresSessionStore(db, logger)
	scenarioStore := postgres.NewPostgresScenarioStore(db, logger)
	corpusStore := postgres.NewPostgresCorpusStore(db, logger)

	client, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	embedder, err := gemini.NewEmbedder(client, cfg.Embedding.ModelName, logger)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	cacheSize := cfg.Embedding.CacheSize
	if cacheSize <= 0 {
		cacheSize = embedding.DefaultCacheSize
	}
	cachedEmbedder, err := embedding.NewCachingProvider(embedder, cacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}

	generator, err := buildGeneratorChain(client, &cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	retriever := retrieval.NewOrchestrator(cachedEmbedder, corpusStore, retrievalConfig(cfg), logger)

	registry, err := rubric.LoadRegistry(cfg.Rubric.Path)
	if err != nil {
		return nil, fmt.Errorf("loading rubric definitions: %w", err)
	}

	comp := composer.NewComposer(
		generation.WithTimeout(generator, generationTimeout(cfg)),
		cfg.LLM.MaxOutputTokens,
		logger,
	)

	evaluator, err := gemini.NewEvaluator(
		generation.WithTimeout(generator, generationTimeout(cfg)), logger)
	if err != nil {
		return nil, fmt.Errorf("creating rubric evaluator: %w", err)
	}

	adaptiveService := adaptive.NewServiceWithParams(adaptive.NewParams(adaptive.ParamsConfig{
		NovicePromoteThreshold:       cfg.Adaptive.NovicePromoteThreshold,
		IntermediatePromoteThreshold: cfg.Adaptive.IntermediatePromoteThreshold,
		AdvancedPromoteThreshold:     cfg.Adaptive.AdvancedPromoteThreshold,
		MasteryCompleteThreshold:     cfg.Adaptive.MasteryCompleteThreshold,
	}))

	submissionService, err := service.NewSubmissionService(
		sessionStore,
		scenarioStore,
		retriever,
		rubric.NewEngine(evaluator, logger),
		registry,
		comp,
		adaptiveService,
		cfg.Session.WindowSize,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("creating submission service: %w", err)
	}

	sessionService, err := service.NewSessionService(sessionStore, logger)
	if err != nil {
		return nil, fmt.Errorf("creating session service: %w", err)
	}

	return &application{
		config:            cfg,
		logger:            logger,
		db:                db,
		submissionService: submissionService,
		sessionService:    sessionService,
	}, nil
}

// buildGeneratorChain assembles the ordered provider fallback: the primary
// model first, then each configured fallback model.
func buildGeneratorChain(
	client *genai.Client,
	llm *config.LLMConfig,
	logger *slog.Logger,
) (generation.Generator, error) {
	models := append([]string{llm.ModelName}, llm.FallbackModelNames...)

	generators := make([]generation.Generator, 0, len(models))
	for _, model := range models {
		g, err := gemini.NewGenerator(client, model, logger)
		if err != nil {
			return nil, fmt.Errorf("creating generator for %s: %w", model, err)
		}
		generators = append(generators, g)
	}

	chain, err := generation.NewFallbackChain(generators, logger)
	if err != nil {
		return nil, fmt.Errorf("creating fallback chain: %w", err)
	}
	return chain, nil
}

// retrievalConfig maps configuration onto retrieval defaults.
func retrievalConfig(cfg *config.Config) retrieval.Config {
	rc := retrieval.DefaultConfig()
	if cfg.Retrieval.ResultBudget > 0 {
		rc.ResultBudget = cfg.Retrieval.ResultBudget
	}
	if cfg.Retrieval.PerQueryCap > 0 {
		rc.PerQueryCap = cfg.Retrieval.PerQueryCap
	}
	if cfg.Retrieval.MinSimilarity > 0 {
		rc.MinSimilarity = cfg.Retrieval.MinSimilarity
	}
	if cfg.Retrieval.SearchTimeout > 0 {
		rc.SearchTimeout = time.Duration(cfg.Retrieval.SearchTimeout) * time.Second
	}
	if cfg.Embedding.Timeout > 0 {
		rc.EmbedTimeout = time.Duration(cfg.Embedding.Timeout) * time.Second
	}
	return rc
}

func generationTimeout(cfg *config.Config) time.Duration {
	if cfg.LLM.GenerationTimeout > 0 {
		return time.Duration(cfg.LLM.GenerationTimeout) * time.Second
	}
	return 30 * time.Second
}

// serve runs the HTTP server with graceful shutdown on SIGINT/SIGTERM.
func (app *application) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.setupRouter(),
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutdown signal received")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
