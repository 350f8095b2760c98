package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/metrics"
	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
	"github.com/preston-bernstein/gridiron-service/internal/teststubs"
)

func TestPollerTicksOnStart(t *testing.T) {
	ticker := &teststubs.StubTicker{
		Action: orchestrator.Action{Kind: orchestrator.KindStartGame, GameID: "g1"},
		Notify: make(chan struct{}),
	}

	p := New(ticker, nil, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	select {
	case <-ticker.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial tick")
	}
	_ = p.Stop(context.Background())

	deadline := time.Now().Add(500 * time.Millisecond)
	for p.Status().LastSuccess.IsZero() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	status := p.Status()
	if status.LastSuccess.IsZero() {
		t.Fatalf("expected success recorded after initial tick")
	}
	if status.LastAction != orchestrator.KindStartGame {
		t.Fatalf("expected last action start_game, got %q", status.LastAction)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	ticker := &teststubs.StubTicker{Notify: make(chan struct{})}

	p := New(ticker, nil, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	select {
	case <-ticker.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial tick")
	}

	cancel()
	_ = p.Stop(context.Background())
	time.Sleep(10 * time.Millisecond)

	callsAfterStop := ticker.Calls.Load()
	time.Sleep(20 * time.Millisecond)
	if ticker.Calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional ticks after stop; before=%d after=%d", callsAfterStop, ticker.Calls.Load())
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(&teststubs.StubTicker{}, nil, nil, time.Hour)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	p := New(&teststubs.StubTicker{}, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := New(&teststubs.StubTicker{}, nil, nil, 0)
	if p.interval != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, p.interval)
	}
}

func TestPollerStartReturnsWhenAlreadyStarted(t *testing.T) {
	p := New(&teststubs.StubTicker{}, nil, nil, time.Hour)
	p.started = true
	p.Start(context.Background())
	if p.clock != nil {
		t.Fatalf("expected clock not to be created when already started")
	}
}

func TestPollerStatusTracksFailuresAndSuccess(t *testing.T) {
	ticker := &teststubs.StubTicker{Err: errors.New("boom")}
	p := New(ticker, nil, nil, time.Millisecond)
	ctx := context.Background()

	p.tickOnce(ctx)
	status := p.Status()
	if status.ConsecutiveFailures != 1 {
		t.Fatalf("expected 1 failure, got %d", status.ConsecutiveFailures)
	}
	if status.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
	if !status.LastSuccess.IsZero() {
		t.Fatalf("expected no success recorded yet")
	}
	if status.IsReady() {
		t.Fatalf("expected not ready after failure")
	}

	ticker.SetErr(nil)
	p.tickOnce(ctx)
	status = p.Status()
	if status.ConsecutiveFailures != 0 {
		t.Fatalf("expected failures reset, got %d", status.ConsecutiveFailures)
	}
	if status.LastSuccess.IsZero() {
		t.Fatalf("expected success timestamp")
	}
	if !status.IsReady() {
		t.Fatalf("expected ready after success")
	}
}

func TestStatusNotReadyAfterRepeatedFailures(t *testing.T) {
	s := Status{LastSuccess: time.Now(), ConsecutiveFailures: 3}
	if s.IsReady() {
		t.Fatalf("expected not ready after three failures")
	}
	s.ConsecutiveFailures = 2
	if !s.IsReady() {
		t.Fatalf("expected ready with two failures and a prior success")
	}
}

func TestPollerLogsAndRecordsMetrics(t *testing.T) {
	ticker := &teststubs.StubTicker{Err: errors.New("fail")}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	rec := metrics.NewRecorder()

	p := New(ticker, logger, rec, time.Second)
	p.tickOnce(context.Background())

	ticker.SetErr(nil)
	p.tickOnce(context.Background())

	if ticker.Calls.Load() != 2 {
		t.Fatalf("expected two ticks, got %d", ticker.Calls.Load())
	}
}

func BenchmarkPollerTickOnce(b *testing.B) {
	ticker := &teststubs.StubTicker{Action: orchestrator.Action{Kind: orchestrator.KindIdle}}
	p := New(ticker, nil, nil, time.Second)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.tickOnce(ctx)
	}
}
