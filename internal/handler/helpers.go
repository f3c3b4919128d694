package handler

import (
	"errors"
	"net/http"

	"carelearn/internal/domain"
	"carelearn/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Anything unmapped is
// logged by the caller and reported as a bare 500.
func handleError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr) && len(validationErr.Fields) > 0:
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Error(), map[string]interface{}{
			"fields": validationErr.Fields,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrGenerationFailed):
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// isServerError reports whether handleError will answer err with a 500.
func isServerError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrConflict,
		domain.ErrInvalidTransition,
		domain.ErrGenerationFailed,
	} {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

// pathID returns the {id} path value or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "lesson ID is required")
		return "", false
	}
	return id, true
}
