package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ASP_DATABASE_URL", "postgres://localhost:5432/asp?sslmode=disable")
	t.Setenv("ASP_LLM_GEMINI_API_KEY", "test-api-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 5, cfg.Retrieval.ResultBudget)
	assert.Equal(t, 2, cfg.Retrieval.PerQueryCap)
	assert.InDelta(t, 0.4, cfg.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, 5, cfg.Session.WindowSize)
	assert.Equal(t, 30, cfg.LLM.GenerationTimeout)
	assert.Equal(t, 5, cfg.Embedding.Timeout)
	assert.Equal(t, 2, cfg.Retrieval.SearchTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ASP_SERVER_PORT", "9090")
	t.Setenv("ASP_SERVER_LOG_LEVEL", "debug")
	t.Setenv("ASP_RETRIEVAL_RESULT_BUDGET", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 8, cfg.Retrieval.ResultBudget)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("ASP_LLM_GEMINI_API_KEY", "test-api-key")
	t.Setenv("ASP_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ASP_SERVER_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
