package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/config"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// shutdownTimeout is a var so tests can shorten it.
var shutdownTimeout = 10 * time.Second

// httpServer abstracts the HTTP server implementation for easier testing.
type httpServer interface {
	ListenAndServe() error
	Shutdown(context.Context) error
	Addr() string
	Handler() http.Handler
}

type netHTTPServer struct {
	srv      *http.Server
	listener net.Listener
}

func newNetHTTPServer(port string, handler http.Handler, write time.Duration) netHTTPServer {
	return netHTTPServer{srv: &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: write,
		IdleTimeout:  idleTimeout,
	}}
}

// tickWriteTimeout leaves room for every simulation attempt a POST /tick may make.
func tickWriteTimeout(engine config.EngineConfig) time.Duration {
	attempts := engine.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	budget := time.Duration(attempts)*engine.Timeout + writeTimeout
	if budget < writeTimeout {
		return writeTimeout
	}
	return budget
}

func (s netHTTPServer) ListenAndServe() error {
	if s.listener != nil {
		return s.srv.Serve(s.listener)
	}
	return s.srv.ListenAndServe()
}

func (s netHTTPServer) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
func (s netHTTPServer) Addr() string                       { return s.srv.Addr }
func (s netHTTPServer) Handler() http.Handler              { return s.srv.Handler }
