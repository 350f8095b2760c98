// Package http assembles the service's routes.
package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/gridiron-service/internal/http/handlers"
)

// NewRouter registers the read API and the tick endpoint on a ServeMux.
func NewRouter(handler *handlers.Handler, tick *handlers.TickHandler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.Handle("/health", handler)
	mux.Handle("/ready", handler)
	mux.Handle("/seasons/", handler)
	mux.Handle("/teams", handler)
	mux.Handle("/teams/", handler)
	mux.Handle("/games/", handler)
	if tick != nil {
		mux.Handle("/tick", tick)
	}
	return mux
}
