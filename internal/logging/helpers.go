package logging

import (
	"context"
	"log/slog"
)

func emit(logger *slog.Logger, level slog.Level, msg string, args []any) {
	if logger == nil {
		return
	}
	logger.Log(context.Background(), level, msg, args...)
}

// Debug logs at debug level when a logger is configured.
func Debug(logger *slog.Logger, msg string, args ...any) { emit(logger, slog.LevelDebug, msg, args) }

// Info logs at info level when a logger is configured.
func Info(logger *slog.Logger, msg string, args ...any) { emit(logger, slog.LevelInfo, msg, args) }

// Warn logs a warning when a logger is configured.
func Warn(logger *slog.Logger, msg string, args ...any) { emit(logger, slog.LevelWarn, msg, args) }

// Error logs err under the "error" key when a logger is configured.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err)
	}
	emit(logger, slog.LevelError, msg, args)
}
