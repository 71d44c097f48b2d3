package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/mocks"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

func TestSessionServiceCreateAndGet(t *testing.T) {
	t.Parallel()

	svc, err := NewSessionService(mocks.NewSessionStore(), nil)
	require.NoError(t, err)

	ctx := context.Background()

	created, err := svc.CreateSession(ctx, domain.SessionProfile{DisplayName: "Dana", Role: "pharmacist"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Dana", created.DisplayName)

	fetched, err := svc.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestSessionServiceCreateRejectsEmptyDisplayName(t *testing.T) {
	t.Parallel()

	svc, err := NewSessionService(mocks.NewSessionStore(), nil)
	require.NoError(t, err)

	_, err = svc.CreateSession(context.Background(), domain.SessionProfile{})
	assert.ErrorIs(t, err, domain.ErrEmptySessionDisplayName)
}

func TestSessionServiceGetUnknown(t *testing.T) {
	t.Parallel()

	svc, err := NewSessionService(mocks.NewSessionStore(), nil)
	require.NoError(t, err)

	_, err = svc.GetSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
