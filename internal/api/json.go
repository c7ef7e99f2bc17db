package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/vaultmeta/internal/apperr"
)

// Error codes carried in error bodies.
const (
	codeInvalidPath   = "invalid_path"
	codeNotApplicable = "not_applicable"
	codeNotFound      = "not_found"
	codeUnauthorized  = "unauthorized"
	codeInternal      = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func errorBody(code, msg string) errResponse {
	return errResponse{Code: code, Error: msg}
}

// writeError maps service errors to status codes. Unknown errors are
// logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidPath):
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidPath, err.Error()))
	case errors.Is(err, apperr.ErrNotApplicable):
		writeJSON(w, http.StatusNotFound, errorBody(codeNotApplicable, err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, err.Error()))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal, "internal error"))
	}
}
