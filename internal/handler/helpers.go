package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"quill/internal/domain"
	"quill/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Hierarchy errors are checked before ErrValidation because they also match it.
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr *domain.ConflictError
		notEmptyErr *domain.NotEmptyError
		storeErr    *domain.StoreError
	)

	switch {
	case errors.As(err, &notEmptyErr):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(), map[string]interface{}{
			"code":        "not_empty",
			"child_count": notEmptyErr.ChildCount,
		})
	case errors.Is(err, domain.ErrCircularReference):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(), map[string]interface{}{
			"code": "circular_reference",
		})
	case errors.Is(err, domain.ErrInvalidParent):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(), map[string]interface{}{
			"code": "invalid_parent",
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr), errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &storeErr):
		slog.Error("store failure", "op", storeErr.Op, "error", storeErr.Err)
		httputil.RespondError(w, http.StatusInternalServerError, "storage failure")
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID reads a UUID path parameter, writing a 400 when it is missing or malformed
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, label+" must be a UUID")
		return "", false
	}
	return id, true
}
