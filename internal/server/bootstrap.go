package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/gridiron-service/internal/app/players"
	"github.com/preston-bernstein/gridiron-service/internal/app/teams"
	domainplayers "github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/league"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
)

// loadLeague reads the configured league file, or the built-in league when none is set.
func loadLeague(path string) (*league.League, error) {
	if path == "" {
		return league.Default(), nil
	}
	return league.LoadFromFile(path)
}

// bootstrapLeague seeds teams and rosters into an empty store. A store that
// already holds teams is left as is so persisted leagues survive restarts.
func bootstrapLeague(ctx context.Context, leagueFile string, teamSvc *teams.Service, playerSvc *players.Service, logger *slog.Logger) error {
	existing, err := teamSvc.Teams(ctx)
	if err != nil {
		return fmt.Errorf("reading teams: %w", err)
	}
	if len(existing) > 0 {
		logging.Info(logger, "league already loaded", slog.Int(logging.FieldCount, len(existing)))
		return nil
	}

	lg, err := loadLeague(leagueFile)
	if err != nil {
		return fmt.Errorf("loading league: %w", err)
	}
	list := lg.Teams()
	if err := teamSvc.ReplaceTeams(ctx, list); err != nil {
		return err
	}
	var roster []domainplayers.Player
	for _, t := range list {
		roster = append(roster, league.Roster(t)...)
	}
	if err := playerSvc.ReplacePlayers(ctx, roster); err != nil {
		return err
	}
	logging.Info(logger, "league bootstrapped",
		slog.Int(logging.FieldCount, len(list)),
		slog.Int("players", len(roster)),
	)
	return nil
}
