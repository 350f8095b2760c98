package server

import (
	"context"

	"github.com/preston-bernstein/gridiron-service/internal/poller"
)

// stubPoller records lifecycle calls made by the server against its tick loop.
type stubPoller struct {
	StartCalls int
	StopCalls  int
	Err        error
	StatusVal  poller.Status
}

func (p *stubPoller) Start(context.Context) { p.StartCalls++ }

func (p *stubPoller) Stop(context.Context) error {
	p.StopCalls++
	return p.Err
}

func (p *stubPoller) Status() poller.Status { return p.StatusVal }
