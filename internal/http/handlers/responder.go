package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/gridiron-service/internal/http/middleware"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// writeJSON encodes payload with no-store caching; league state changes every tick.
func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, errorBody{Error: message, RequestID: requestID(r)}, logger)
}

// writeStoreError maps store.ErrNotFound to 404 and logs anything else as a 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string, logger *slog.Logger) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, notFound, logger)
		return
	}
	logging.Error(loggerFromContext(r, logger), "store read failed", err)
	writeError(w, r, http.StatusInternalServerError, "internal error", logger)
}

func requestID(r *http.Request) string {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string, logger *slog.Logger) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", logger)
	return false
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
