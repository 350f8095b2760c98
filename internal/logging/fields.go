package logging

import "log/slog"

// Structured log keys shared by the tick path and the HTTP layer.
const (
	FieldService    = "service"
	FieldVersion    = "version"
	FieldRequestID  = "request_id"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"
	FieldSeasonID   = "season_id"
	FieldGameID     = "game_id"
	FieldWeek       = "week"
	FieldAction     = "action"
	FieldReason     = "reason"
	FieldEngine     = "engine"
	FieldAttempt    = "attempt"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	return appendNonEmpty(appendNonEmpty(attrs, FieldService, service), FieldVersion, version)
}

// ActionArgs builds key/value args describing a tick outcome, omitting blank ids.
func ActionArgs(action, seasonID, gameID, reason string) []any {
	var attrs []slog.Attr
	attrs = appendNonEmpty(attrs, FieldAction, action)
	attrs = appendNonEmpty(attrs, FieldSeasonID, seasonID)
	attrs = appendNonEmpty(attrs, FieldGameID, gameID)
	attrs = appendNonEmpty(attrs, FieldReason, reason)
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return args
}

func appendNonEmpty(attrs []slog.Attr, key, value string) []slog.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, slog.String(key, value))
}
