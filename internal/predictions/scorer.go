// Package predictions settles user picks once a game is final.
package predictions

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
)

// Scorer settles every prediction tied to a completed game and reports how
// many were scored.
type Scorer interface {
	ScoreGame(ctx context.Context, game games.Game) (int, error)
}

// Noop scores nothing.
type Noop struct{}

func (Noop) ScoreGame(context.Context, games.Game) (int, error) { return 0, nil }

// LoggingScorer records each settlement and delegates to an inner scorer.
type LoggingScorer struct {
	inner  Scorer
	logger *slog.Logger
}

// NewLoggingScorer wraps inner. A nil inner scores nothing.
func NewLoggingScorer(inner Scorer, logger *slog.Logger) *LoggingScorer {
	if inner == nil {
		inner = Noop{}
	}
	return &LoggingScorer{inner: inner, logger: logger}
}

func (s *LoggingScorer) ScoreGame(ctx context.Context, game games.Game) (int, error) {
	n, err := s.inner.ScoreGame(ctx, game)
	logger := logging.FromContext(ctx, s.logger)
	if err != nil {
		logging.Warn(logger, "prediction scoring failed", logging.FieldGameID, game.ID, "error", err)
		return n, err
	}
	winner, _ := game.Winner()
	logging.Info(logger, "predictions scored",
		logging.FieldGameID, game.ID,
		logging.FieldCount, n,
		"winner", winner,
	)
	return n, nil
}
