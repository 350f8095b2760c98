package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/http/requestutil"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// LoggingMiddleware tags each request with an ID and a scoped logger, then
// records its outcome as a log line and an HTTP metric.
func LoggingMiddleware(baseLogger *slog.Logger, recorder *metrics.Recorder, next http.Handler) http.Handler {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := requestutil.SanitizeRequestID(r.Header.Get(requestIDHeader))
		w.Header().Set(requestIDHeader, reqID)

		logger := baseLogger.With(
			slog.String(logging.FieldRequestID, reqID),
			slog.String(logging.FieldMethod, r.Method),
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		ctx := withRequestID(logging.WithLogger(r.Context(), logger), reqID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		elapsed := time.Since(start)
		recorder.RecordHTTPRequest(r.Method, routeLabel(r.URL.Path), sw.status, elapsed)

		level := slog.LevelInfo
		if sw.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "request complete",
			slog.Int(logging.FieldStatusCode, sw.status),
			slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type requestIDKey struct{}

// RequestIDFromContext returns the ID LoggingMiddleware attached, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// routeLabel maps a request path onto its route pattern so metric labels stay bounded.
func routeLabel(path string) string {
	path, _, _ = strings.Cut(path, "?")
	switch {
	case path == "":
		return ""
	case path == "/health", path == "/ready", path == "/tick", path == "/teams",
		path == "/seasons/current", path == "/seasons/current/games", path == "/seasons/current/standings":
		return path
	case strings.HasPrefix(path, "/teams/") && strings.HasSuffix(path, "/players"):
		return "/teams/:id/players"
	case strings.HasPrefix(path, "/games/"):
		return "/games/:id"
	}
	return "other"
}
