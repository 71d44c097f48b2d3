package api

import (
	"errors"
	"net/http"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/domain"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/rubric"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/store"
)

// MapErrorToStatusCode translates service-layer errors into HTTP status
// codes. Unknown errors map to 500 so internal detail never leaks.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrScenarioNotFound),
		errors.Is(err, rubric.ErrRubricNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SafeErrorMessage returns a client-safe message for the error. Validation
// and not-found errors describe real client mistakes and pass through;
// everything else collapses to a generic message.
func SafeErrorMessage(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusNotFound, http.StatusBadRequest, http.StatusConflict:
		return err.Error()
	default:
		return "internal server error"
	}
}
