// Package store defines league persistence and an in-memory implementation.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/playoff"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert collides with an existing row.
	ErrConflict = errors.New("conflict")
)

// Store is the persistence contract shared by the memory and postgres backends.
// Methods returning (bool, error) are conditional writes: false with a nil error
// means the guard did not match and nothing changed.
type Store interface {
	Ping(ctx context.Context) error

	Teams(ctx context.Context) ([]teams.Team, error)
	UpsertTeams(ctx context.Context, list []teams.Team) error
	Players(ctx context.Context, teamID string) ([]players.Player, error)
	UpsertPlayers(ctx context.Context, list []players.Player) error

	CurrentSeason(ctx context.Context) (seasons.Season, error)
	Season(ctx context.Context, id string) (seasons.Season, error)
	CreateSeason(ctx context.Context, season seasons.Season) error
	AdvanceSeason(ctx context.Context, id string, from, to seasons.Position) (bool, error)
	CompleteSeason(ctx context.Context, id string, from seasons.Position, championID string, at time.Time) (bool, error)
	SaveBracket(ctx context.Context, seasonID string, bracket playoff.Bracket) error
	Bracket(ctx context.Context, seasonID string) (playoff.Bracket, error)

	InsertGames(ctx context.Context, list []games.Game) (int, error)
	Game(ctx context.Context, id string) (games.Game, error)
	WeekGames(ctx context.Context, seasonID string, week int) ([]games.Game, error)
	SeasonGames(ctx context.Context, seasonID string) ([]games.Game, error)
	RecentCompletedGames(ctx context.Context, limit int) ([]games.Game, error)
	TransitionGame(ctx context.Context, id string, t games.Transition) (bool, error)
	SetFeatured(ctx context.Context, gameID string) (bool, error)
	UpdateScheduledTimes(ctx context.Context, times map[string]time.Time) (int, error)
	SaveGameEvents(ctx context.Context, gameID string, events []games.Event) error
	GameEvents(ctx context.Context, gameID string) ([]games.Event, error)
	LastEventOffset(ctx context.Context, gameID string) (time.Duration, bool, error)

	Standings(ctx context.Context, seasonID string) ([]standings.Standing, error)
	SaveStandings(ctx context.Context, rows []standings.Standing) error
}

// SortGames orders games by scheduled time, unscheduled last, then by ID.
func SortGames(list []games.Game) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].ScheduledAt, list[j].ScheduledAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return list[i].ID < list[j].ID
	})
}
