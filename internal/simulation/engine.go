// Package simulation defines the game simulation engine contract and the
// wrappers shared by every engine.
package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

// ErrEngineUnavailable is returned when no engine is configured.
var ErrEngineUnavailable = errors.New("simulation engine unavailable")

// Request carries everything an engine needs to play one game.
type Request struct {
	GameID      string
	GameType    games.GameType
	Home        teams.Team
	Away        teams.Team
	HomePlayers []players.Player
	AwayPlayers []players.Player
}

// Result is a finished simulation. Events are ordered by offset from broadcast start.
type Result struct {
	Events    []games.Event
	HomeScore int
	AwayScore int
	BoxScore  games.BoxScore
	MVP       string
	Seeds     map[string]int64
}

// Engine turns two rosters into a scored event sequence.
type Engine interface {
	Simulate(ctx context.Context, req Request) (Result, error)
}

// StatusError reports a non-success response from a remote engine.
type StatusError struct {
	Engine     string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected engine response"
	}
	return fmt.Sprintf("%s: %s (status=%d)", e.Engine, msg, e.StatusCode)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// AsStatusError attempts to unwrap an error into a StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// Validate checks the invariants every engine result must hold.
func (r Result) Validate(req Request) error {
	if req.GameType.IsPlayoff() && r.HomeScore == r.AwayScore {
		return fmt.Errorf("game %s: playoff result tied %d-%d", req.GameID, r.HomeScore, r.AwayScore)
	}
	for i := 1; i < len(r.Events); i++ {
		if r.Events[i].Offset < r.Events[i-1].Offset {
			return fmt.Errorf("game %s: event %d precedes event %d", req.GameID, r.Events[i].Sequence, r.Events[i-1].Sequence)
		}
	}
	return nil
}
