// Package poller drives the orchestrator from an in-process ticker for
// deployments without an external scheduler.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/metrics"
	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
)

const defaultInterval = time.Minute

// Ticker advances the league by one step.
type Ticker interface {
	Tick(ctx context.Context) (orchestrator.Action, error)
}

// Poller calls Tick on an interval.
type Poller struct {
	ticker   Ticker
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration

	clock    *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the tick loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	LastAction          orchestrator.Kind
}

// IsReady reports whether the loop has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults.
func New(ticker Ticker, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		ticker:   ticker,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins ticking until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.clock = time.NewTicker(p.interval)

	go func() {
		logging.Info(p.logger, "tick loop started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		p.tickOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopClock()
				logging.Info(p.logger, "tick loop stopped")
				return
			case <-p.done:
				p.stopClock()
				logging.Info(p.logger, "tick loop stopped")
				return
			case <-p.clock.C:
				p.tickOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopClock()
	})
	return nil
}

func (p *Poller) tickOnce(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)
	action, err := p.ticker.Tick(ctx)
	p.metrics.RecordLoopCycle(time.Since(start), err)
	if err != nil {
		logging.Error(p.logger, "tick loop cycle failed", err, slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
		p.recordFailure(err, start)
		return
	}
	p.recordSuccess(start, action.Kind)
}

func (p *Poller) stopClock() {
	if p.clock != nil {
		p.clock.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time, kind orchestrator.Kind) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
	p.status.LastAction = kind
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the loop's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
