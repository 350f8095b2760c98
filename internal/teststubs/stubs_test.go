package teststubs

import (
	"context"
	"errors"
	"testing"

	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
)

func TestStubTickerTracksCalls(t *testing.T) {
	err := errors.New("boom")
	s := &StubTicker{Action: orchestrator.Action{Kind: orchestrator.KindIdle}, Err: err, Notify: make(chan struct{})}
	if _, got := s.Tick(context.Background()); !errors.Is(got, err) {
		t.Fatalf("expected error passthrough, got %v", got)
	}
	if s.Calls.Load() != 1 {
		t.Fatalf("expected call count 1, got %d", s.Calls.Load())
	}
	select {
	case <-s.Notify:
	default:
		t.Fatalf("expected notify closed after first tick")
	}

	s.SetErr(nil)
	action, got := s.Tick(context.Background())
	if got != nil || action.Kind != orchestrator.KindIdle {
		t.Fatalf("expected idle action without error, got %+v %v", action, got)
	}
}

func TestStubEngine(t *testing.T) {
	e := &StubEngine{Result: simulation.Result{HomeScore: 21, AwayScore: 17}}
	res, err := e.Simulate(context.Background(), simulation.Request{GameID: "g1"})
	if err != nil || res.HomeScore != 21 {
		t.Fatalf("expected configured result, got %+v %v", res, err)
	}
	if e.Calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", e.Calls.Load())
	}
}
