package simulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/metrics"
)

const (
	defaultRetryAttempts  = 3
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)

// RetryConfig tunes the retrying wrapper. Zero values use defaults.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// retryingEngine wraps an Engine with exponential backoff and records every attempt.
type retryingEngine struct {
	inner    Engine
	name     string
	logger   *slog.Logger
	recorder *metrics.Recorder
	cfg      RetryConfig
}

// NewRetryingEngine wraps inner with retries. Client errors other than 429 are not retried.
func NewRetryingEngine(inner Engine, name string, logger *slog.Logger, recorder *metrics.Recorder, cfg RetryConfig) Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultRetryAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	return &retryingEngine{inner: inner, name: name, logger: logger, recorder: recorder, cfg: cfg}
}

func (r *retryingEngine) Simulate(ctx context.Context, req Request) (Result, error) {
	if r == nil || r.inner == nil {
		return Result{}, ErrEngineUnavailable
	}
	logger := logging.FromContext(ctx, r.logger)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.cfg.InitialBackoff
	policy.MaxInterval = r.cfg.MaxBackoff
	policy.MaxElapsedTime = 0

	attempt := 0
	op := func() (Result, error) {
		attempt++
		start := time.Now()
		res, err := r.inner.Simulate(ctx, req)
		r.recorder.RecordSimulationAttempt(r.name, time.Since(start), err)
		if err == nil {
			err = res.Validate(req)
		}
		if err != nil {
			if statusErr, ok := AsStatusError(err); ok && !statusErr.Retryable() {
				return Result{}, backoff.Permanent(err)
			}
			return Result{}, err
		}
		return res, nil
	}
	notify := func(err error, wait time.Duration) {
		r.recorder.RecordSimulationRetry(r.name, wait)
		logging.Warn(logger, "simulation retry",
			logging.FieldEngine, r.name,
			logging.FieldGameID, req.GameID,
			logging.FieldAttempt, attempt,
			"wait_ms", wait.Milliseconds(),
			"err", err,
		)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.cfg.MaxAttempts-1)), ctx)
	res, err := backoff.RetryNotifyWithData(op, bo, notify)
	if err != nil {
		logging.Error(logger, "simulation failed", err,
			logging.FieldEngine, r.name,
			logging.FieldGameID, req.GameID,
			"attempts", attempt,
		)
		return Result{}, err
	}
	return res, nil
}
