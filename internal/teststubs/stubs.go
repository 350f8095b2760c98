// Package teststubs holds test doubles shared across packages.
package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
)

// StubTicker is a test double for the orchestrator's Tick.
type StubTicker struct {
	mu     sync.Mutex
	Action orchestrator.Action
	Err    error
	Calls  atomic.Int32
	Notify chan struct{}
}

// SetErr swaps the configured error.
func (s *StubTicker) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Tick returns the configured action and error while tracking calls.
func (s *StubTicker) Tick(ctx context.Context) (orchestrator.Action, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	return s.Action, s.Err
}

// StubEngine is a test double for simulation.Engine.
type StubEngine struct {
	Result simulation.Result
	Err    error
	Calls  atomic.Int32
}

// Simulate returns the configured result and error.
func (s *StubEngine) Simulate(ctx context.Context, req simulation.Request) (simulation.Result, error) {
	_ = ctx
	_ = req
	s.Calls.Add(1)
	return s.Result, s.Err
}
