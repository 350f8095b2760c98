package games

import (
	"context"
	"time"

	domaingames "github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
)

// Store defines the season and game reads the service needs.
type Store interface {
	CurrentSeason(ctx context.Context) (seasons.Season, error)
	WeekGames(ctx context.Context, seasonID string, week int) ([]domaingames.Game, error)
	Game(ctx context.Context, id string) (domaingames.Game, error)
	GameEvents(ctx context.Context, gameID string) ([]domaingames.Event, error)
}

// View is a game as the audience may see it at a point in time.
type View struct {
	domaingames.Game
	Events []domaingames.Event `json:"events"`
}

// WeekView lists one week of a season.
type WeekView struct {
	SeasonID string             `json:"seasonId"`
	Week     int                `json:"week"`
	Games    []domaingames.Game `json:"games"`
}

// Service coordinates schedule reads using a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service with the provided Store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CurrentSeason returns the season with the highest number.
func (s *Service) CurrentSeason(ctx context.Context) (seasons.Season, error) {
	return s.store.CurrentSeason(ctx)
}

// Week returns the current season's games for a week; week 0 means the current week.
func (s *Service) Week(ctx context.Context, week int) (WeekView, error) {
	season, err := s.store.CurrentSeason(ctx)
	if err != nil {
		return WeekView{}, err
	}
	if week == 0 {
		week = season.CurrentWeek
	}
	list, err := s.store.WeekGames(ctx, season.ID, week)
	if err != nil {
		return WeekView{}, err
	}
	now := s.now()
	for i := range list {
		list[i] = Redact(list[i], nil, now).Game
	}
	return WeekView{SeasonID: season.ID, Week: week, Games: list}, nil
}

// GameByID returns a game and the events aired so far.
func (s *Service) GameByID(ctx context.Context, id string) (View, error) {
	g, err := s.store.Game(ctx, id)
	if err != nil {
		return View{}, err
	}
	var events []domaingames.Event
	if g.Status == domaingames.StatusBroadcasting || g.Status == domaingames.StatusCompleted {
		if events, err = s.store.GameEvents(ctx, id); err != nil {
			return View{}, err
		}
	}
	return Redact(g, events, s.now()), nil
}

// Redact hides what has not aired yet. A game still being simulated shows no
// result; a broadcasting game shows only events up to now, with the score and
// result fields taken from the last aired event.
func Redact(g domaingames.Game, events []domaingames.Event, now time.Time) View {
	switch g.Status {
	case domaingames.StatusScheduled, domaingames.StatusSimulating:
		g.HomeScore, g.AwayScore, g.MVP, g.BoxScore = 0, 0, "", nil
		return View{Game: g, Events: []domaingames.Event{}}
	case domaingames.StatusBroadcasting:
		var elapsed time.Duration
		if g.BroadcastStartedAt != nil {
			elapsed = now.Sub(*g.BroadcastStartedAt)
		}
		aired := make([]domaingames.Event, 0, len(events))
		g.HomeScore, g.AwayScore, g.MVP, g.BoxScore = 0, 0, "", nil
		for _, e := range events {
			if e.Offset > elapsed {
				break
			}
			aired = append(aired, e)
			g.HomeScore, g.AwayScore = e.HomeScore, e.AwayScore
		}
		return View{Game: g, Events: aired}
	}
	if events == nil {
		events = []domaingames.Event{}
	}
	return View{Game: g, Events: events}
}
