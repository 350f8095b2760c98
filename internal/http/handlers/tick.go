package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/gridiron-service/internal/http/requestutil"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
)

// Ticker advances the league by one step.
type Ticker interface {
	Tick(ctx context.Context) (orchestrator.Action, error)
}

// TickHandler exposes POST /tick to the external scheduler.
type TickHandler struct {
	ticker Ticker
	secret string
	logger *slog.Logger
}

// NewTickHandler constructs a TickHandler. An empty secret disables the endpoint.
func NewTickHandler(ticker Ticker, secret string, logger *slog.Logger) *TickHandler {
	return &TickHandler{ticker: ticker, secret: secret, logger: logger}
}

// ServeHTTP runs one tick and returns the action taken.
func (h *TickHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost, h.logger) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	if h.secret == "" || h.ticker == nil {
		writeError(w, r, http.StatusServiceUnavailable, "tick endpoint not configured", logger)
		return
	}
	if !requestutil.BearerMatches(r, h.secret) {
		logging.Warn(logger, "tick unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", logger)
		return
	}

	action, err := h.ticker.Tick(r.Context())
	if err != nil {
		logging.Error(logger, "tick failed", err)
		writeError(w, r, http.StatusInternalServerError, "tick failed", logger)
		return
	}
	writeJSON(w, http.StatusOK, action, logger)
}
