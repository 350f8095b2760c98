package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/gridiron-service/internal/config"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/server"
)

const (
	appName    = "gridiron-service"
	appVersion = "dev"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg := config.Load()
	logger := newLogger(cfg.Log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg, logger); err != nil {
		logging.Error(logger, "server startup failed", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig, out io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:   cfg.Level,
		Format:  cfg.Format,
		Service: appName,
		Version: appVersion,
		Output:  out,
	})
}

// run blocks until ctx is cancelled or the HTTP server exits.
func run(ctx context.Context, stop context.CancelFunc, cfg config.Config, logger *slog.Logger) error {
	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}
	srv.Run(ctx, stop)
	return nil
}
