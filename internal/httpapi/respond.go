package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rohankatakam/devgraph/internal/apperrors"
)

// errorResponse is the JSON body every failed handler returns, carrying the
// same {kind, stage, details, retryable} shape spec.md §7 requires of every
// error surface, not just logs.
type errorResponse struct {
	Kind      string `json:"kind"`
	Stage     string `json:"stage,omitempty"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps an apperrors.Error's type to an HTTP status and writes the
// structured error body. A plain (non-apperrors) error is treated as
// internal, since every handler in this package is expected to wrap
// collaborator errors in apperrors before returning.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Kind:    "internal",
			Message: err.Error(),
		})
		return
	}

	status := statusForType(appErr.Type)
	writeJSON(w, status, errorResponse{
		Kind:      typeLabel(appErr.Type),
		Stage:     appErr.Stage,
		Message:   appErr.Error(),
		Retryable: appErr.IsRetryable(),
	})
}

func statusForType(t apperrors.ErrorType) int {
	switch t {
	case apperrors.Validation, apperrors.Decoding:
		return http.StatusBadRequest
	case apperrors.Config:
		return http.StatusUnprocessableEntity
	case apperrors.Repository, apperrors.FileSystem:
		return http.StatusNotFound
	case apperrors.StoreTransient:
		return http.StatusServiceUnavailable
	case apperrors.Cancellation:
		return http.StatusRequestTimeout
	case apperrors.StorePermanent, apperrors.Derivation, apperrors.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func typeLabel(t apperrors.ErrorType) string {
	switch t {
	case apperrors.Config:
		return "config"
	case apperrors.Validation:
		return "validation"
	case apperrors.Repository:
		return "repository"
	case apperrors.StoreTransient:
		return "store_transient"
	case apperrors.StorePermanent:
		return "store_permanent"
	case apperrors.FileSystem:
		return "filesystem"
	case apperrors.Decoding:
		return "decoding"
	case apperrors.Derivation:
		return "derivation"
	case apperrors.Cancellation:
		return "cancellation"
	default:
		return "internal"
	}
}
