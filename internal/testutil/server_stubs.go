package testutil

import (
	"context"
	"net/http"
	"sync/atomic"
)

// FakeHTTPServer stands in for the listener the server runs.
// ListenErr is returned from ListenAndServe (use http.ErrServerClosed for a clean exit).
// When Hold is non-nil Shutdown waits on it or on ctx, whichever comes first.
type FakeHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error
	Hold        chan struct{}

	listens   atomic.Int32
	shutdowns atomic.Int32
}

func (s *FakeHTTPServer) ListenAndServe() error {
	s.listens.Add(1)
	return s.ListenErr
}

func (s *FakeHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdowns.Add(1)
	if s.Hold == nil {
		return s.ShutdownErr
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.Hold:
		return s.ShutdownErr
	}
}

func (s *FakeHTTPServer) Addr() string {
	if s.AddrVal == "" {
		return ":0"
	}
	return s.AddrVal
}

func (s *FakeHTTPServer) Handler() http.Handler {
	if s.HandlerVal == nil {
		return http.NewServeMux()
	}
	return s.HandlerVal
}

// ListenCalls reports how many times ListenAndServe ran.
func (s *FakeHTTPServer) ListenCalls() int { return int(s.listens.Load()) }

// ShutdownCalls reports how many times Shutdown ran.
func (s *FakeHTTPServer) ShutdownCalls() int { return int(s.shutdowns.Load()) }
