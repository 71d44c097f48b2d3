package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/api"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/service"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// stubSubmitter replays a fixed result or error.
type stubSubmitter struct {
	result *service.SubmitResult
	err    error

	gotSessionID  uuid.UUID
	gotModuleID   string
	gotScenarioID string
	gotText       string
}

func (s *stubSubmitter) Submit(
	_ context.Context,
	sessionID uuid.UUID,
	moduleID string,
	scenarioID string,
	text string,
) (*service.SubmitResult, error) {
	s.gotSessionID = sessionID
	s.gotModuleID = moduleID
	s.gotScenarioID = scenarioID
	s.gotText = text

	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func postSubmit(t *testing.T, handler *api.SubmitHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)
	return rec
}

func TestSubmitHandlerSuccess(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()
	stub := &stubSubmitter{
		result: &service.SubmitResult{
			ComposedFeedback:   "Good plan [pmid:100].",
			CitedSources:       []string{"pmid:100"},
			MasteryScore:       0.68,
			DimensionScores:    map[string]float64{"drug_selection": 0.8, "monitoring": 0.5},
			NarrativeGaps:      []string{"monitoring"},
			NewDifficultyLevel: domain.DifficultyIntermediate,
			NextScenarioID:     "sc-2",
		},
	}
	handler := api.NewSubmitHandler(stub, nil)

	rec := postSubmit(t, handler, api.SubmitRequest{
		SessionID:  sessionID.String(),
		ModuleID:   "empiric-therapy",
		ScenarioID: "sc-1",
		Text:       "Start vancomycin.",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sessionID, stub.gotSessionID)
	assert.Equal(t, "empiric-therapy", stub.gotModuleID)
	assert.Equal(t, "sc-1", stub.gotScenarioID)

	var result service.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 0.68, result.MasteryScore, 1e-9)
	assert.Equal(t, domain.DifficultyIntermediate, result.NewDifficultyLevel)
	assert.Equal(t, []string{"pmid:100"}, result.CitedSources)
}

func TestSubmitHandlerValidation(t *testing.T) {
	t.Parallel()

	handler := api.NewSubmitHandler(&stubSubmitter{result: &service.SubmitResult{}}, nil)

	cases := []struct {
		name string
		body api.SubmitRequest
	}{
		{
			name: "bad session id",
			body: api.SubmitRequest{SessionID: "not-a-uuid", ModuleID: "m", ScenarioID: "s", Text: "x"},
		},
		{
			name: "missing module",
			body: api.SubmitRequest{SessionID: uuid.NewString(), ScenarioID: "s", Text: "x"},
		},
		{
			name: "missing scenario",
			body: api.SubmitRequest{SessionID: uuid.NewString(), ModuleID: "m", Text: "x"},
		},
		{
			name: "blank text",
			body: api.SubmitRequest{SessionID: uuid.NewString(), ModuleID: "m", ScenarioID: "s", Text: "  "},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postSubmit(t, handler, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitHandlerMapsServiceErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown session", store.ErrSessionNotFound, http.StatusNotFound},
		{"unknown scenario", store.ErrScenarioNotFound, http.StatusNotFound},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"internal", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := api.NewSubmitHandler(&stubSubmitter{err: tc.err}, nil)
			rec := postSubmit(t, handler, api.SubmitRequest{
				SessionID:  uuid.NewString(),
				ModuleID:   "m",
				ScenarioID: "s",
				Text:       "plan",
			})
			assert.Equal(t, tc.wantStatus, rec.Code)

			var body api.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tc.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Error)
			}
		})
	}
}
