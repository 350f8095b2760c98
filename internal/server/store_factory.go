package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/config"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/store"
	"github.com/preston-bernstein/gridiron-service/internal/store/postgres"
)

const connMaxLifetime = 30 * time.Minute

// openPostgres remains a var for tests to override.
var openPostgres = func(ctx context.Context, cfg postgres.Config, logger *slog.Logger) (store.Store, func() error, error) {
	st, err := postgres.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return st, st.Close, nil
}

// openStore selects the persistence backend. The returned close func is never nil.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Store, func() error, error) {
	switch cfg.Kind {
	case config.StoreMemory, "":
		return store.NewMemoryStore(), func() error { return nil }, nil
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("store %q requires DATABASE_URL", cfg.Kind)
		}
		st, closeFn, err := openPostgres(ctx, postgres.Config{
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return st, closeFn, nil
	default:
		logging.Warn(logger, "unknown store, falling back to memory", slog.String("store", cfg.Kind))
		return store.NewMemoryStore(), func() error { return nil }, nil
	}
}
