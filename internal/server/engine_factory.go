package server

import (
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/gridiron-service/internal/config"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/metrics"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
	"github.com/preston-bernstein/gridiron-service/internal/simulation/fixture"
	"github.com/preston-bernstein/gridiron-service/internal/simulation/httpengine"
)

// engineFactory assembles the simulation engine with the shared retry wrapper.
type engineFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newEngineFactory(logger *slog.Logger, recorder *metrics.Recorder) engineFactory {
	return engineFactory{logger: logger, metrics: recorder}
}

func (f engineFactory) build(cfg config.EngineConfig) (simulation.Engine, error) {
	base, name, err := f.selectEngine(cfg)
	if err != nil {
		return nil, err
	}
	return simulation.NewRetryingEngine(base, name, f.logger, f.metrics, simulation.RetryConfig{
		MaxAttempts: cfg.RetryAttempts,
	}), nil
}

func (f engineFactory) selectEngine(cfg config.EngineConfig) (simulation.Engine, string, error) {
	switch cfg.Kind {
	case config.EngineFixture, "":
		return fixture.New(), fixture.Name, nil
	case config.EngineHTTP:
		client, err := httpengine.NewClient(httpengine.Config{
			BaseURL: cfg.URL,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, "", fmt.Errorf("building http engine: %w", err)
		}
		return client, httpengine.Name, nil
	default:
		logging.Warn(f.logger, "unknown engine, falling back to fixture", slog.String(logging.FieldEngine, cfg.Kind))
		return fixture.New(), fixture.Name, nil
	}
}
