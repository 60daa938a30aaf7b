package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/relationship"
	"github.com/vidtube/backend/internal/repositories"
)

// errNotOwner indicates the caller is authenticated but does not own the
// record they are trying to mutate.
var errNotOwner = errors.New("caller does not own this resource")

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps domain errors onto status codes and stable messages.
// Internal causes are logged, never echoed to the caller.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relationship.ErrInvalidTarget):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid identifier"})
	case errors.Is(err, relationship.ErrTargetNotFound), errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, errNotOwner):
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, repositories.ErrConflict):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "conflict"})
	case errors.Is(err, repositories.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", "1")
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "temporarily unavailable, retry"})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrFingerprintMismatch):
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	default:
		logging.FromContext(ctx).Error("unexpected failure", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
