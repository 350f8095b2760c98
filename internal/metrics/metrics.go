package metrics

import (
	"sync"
	"time"
)

type engineStats struct {
	calls           int
	errors          int
	retries         int
	lastRetryWait   time.Duration
	lastCallLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about ticks and simulation
// calls and forwards them to OpenTelemetry when configured.
type Recorder struct {
	mu      sync.Mutex
	engines map[string]*engineStats
	actions map[string]int
	otel    *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		engines: make(map[string]*engineStats),
		actions: make(map[string]int),
		otel:    otel,
	}
}

// RecordSimulationAttempt counts a simulation engine call and stores its latency.
func (r *Recorder) RecordSimulationAttempt(engine string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(engine)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordSimulationAttempt(engine, duration, err)
	}
}

// RecordSimulationRetry tracks a retry and the backoff wait before it.
func (r *Recorder) RecordSimulationRetry(engine string, wait time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(engine)
	stats.retries++
	if wait > 0 {
		stats.lastRetryWait = wait
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordSimulationRetry(engine, wait)
	}
}

// RecordTick counts a tick by the action it returned.
func (r *Recorder) RecordTick(action string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	if err != nil {
		action = "error"
	}

	r.mu.Lock()
	r.actions[action]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordTick(action, duration)
	}
}

// TickActions returns how many ticks returned the given action.
func (r *Recorder) TickActions(action string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actions[action]
}

// SimulationCalls returns the total attempts recorded for an engine.
func (r *Recorder) SimulationCalls(engine string) int {
	return r.Snapshot(engine).Calls
}

// SimulationErrors returns the failed attempts recorded for an engine.
func (r *Recorder) SimulationErrors(engine string) int {
	return r.Snapshot(engine).Errors
}

// Snapshot returns a copy of the current stats for an engine.
type Snapshot struct {
	Calls           int
	Errors          int
	Retries         int
	LastRetryWait   time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(engine string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.engines[engine]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		Retries:         stats.retries,
		LastRetryWait:   stats.lastRetryWait,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordLoopCycle tracks in-process tick loop cycles and errors.
func (r *Recorder) RecordLoopCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordLoop(duration, err)
}

// ensureStats must be called with r.mu held.
func (r *Recorder) ensureStats(engine string) *engineStats {
	stats, ok := r.engines[engine]
	if !ok {
		stats = &engineStats{}
		r.engines[engine] = stats
	}
	return stats
}
