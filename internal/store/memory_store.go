package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/playoff"
)

// MemoryStore keeps league state in memory behind a single lock. Conditional
// writes check their guard under the write lock, matching the row-level
// semantics of the postgres store.
type MemoryStore struct {
	mu        sync.RWMutex
	teams     map[string]teams.Team
	players   map[string][]players.Player
	seasons   map[string]seasons.Season
	brackets  map[string]playoff.Bracket
	games     map[string]games.Game
	events    map[string][]games.Event
	standings map[string]map[string]standings.Standing
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:     make(map[string]teams.Team),
		players:   make(map[string][]players.Player),
		seasons:   make(map[string]seasons.Season),
		brackets:  make(map[string]playoff.Bracket),
		games:     make(map[string]games.Game),
		events:    make(map[string][]games.Event),
		standings: make(map[string]map[string]standings.Standing),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Teams(context.Context) ([]teams.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]teams.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpsertTeams(_ context.Context, list []teams.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range list {
		s.teams[t.ID] = t
	}
	return nil
}

func (s *MemoryStore) Players(_ context.Context, teamID string) ([]players.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]players.Player(nil), s.players[teamID]...), nil
}

func (s *MemoryStore) UpsertPlayers(_ context.Context, list []players.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range list {
		roster := s.players[p.TeamID]
		replaced := false
		for i := range roster {
			if roster[i].ID == p.ID {
				roster[i] = p
				replaced = true
			}
		}
		if !replaced {
			roster = append(roster, p)
		}
		s.players[p.TeamID] = roster
	}
	return nil
}

// CurrentSeason returns the season with the highest number.
func (s *MemoryStore) CurrentSeason(context.Context) (seasons.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var current seasons.Season
	found := false
	for _, season := range s.seasons {
		if !found || season.Number > current.Number {
			current = season
			found = true
		}
	}
	if !found {
		return seasons.Season{}, fmt.Errorf("current season: %w", ErrNotFound)
	}
	return copySeason(current), nil
}

func (s *MemoryStore) Season(_ context.Context, id string) (seasons.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	season, ok := s.seasons[id]
	if !ok {
		return seasons.Season{}, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	return copySeason(season), nil
}

// CreateSeason inserts a season; a duplicate id or number is a conflict.
func (s *MemoryStore) CreateSeason(_ context.Context, season seasons.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.seasons {
		if existing.ID == season.ID || existing.Number == season.Number {
			return fmt.Errorf("season %d: %w", season.Number, ErrConflict)
		}
	}
	s.seasons[season.ID] = copySeason(season)
	return nil
}

func (s *MemoryStore) AdvanceSeason(_ context.Context, id string, from, to seasons.Position) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, ok := s.seasons[id]
	if !ok {
		return false, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	if season.Position() != from {
		return false, nil
	}
	season.Status = to.Status
	season.CurrentWeek = to.Week
	s.seasons[id] = season
	return true, nil
}

func (s *MemoryStore) CompleteSeason(_ context.Context, id string, from seasons.Position, championID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	season, ok := s.seasons[id]
	if !ok {
		return false, fmt.Errorf("season %s: %w", id, ErrNotFound)
	}
	if season.Position() != from {
		return false, nil
	}
	season.Status = seasons.StatusOffseason
	season.ChampionTeamID = championID
	season.CompletedAt = &at
	s.seasons[id] = season
	return true, nil
}

func (s *MemoryStore) SaveBracket(_ context.Context, seasonID string, bracket playoff.Bracket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.brackets[seasonID] = bracket.Clone()
	return nil
}

func (s *MemoryStore) Bracket(_ context.Context, seasonID string) (playoff.Bracket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.brackets[seasonID]
	if !ok {
		return playoff.Bracket{}, fmt.Errorf("bracket for season %s: %w", seasonID, ErrNotFound)
	}
	return b.Clone(), nil
}

// InsertGames adds games whose IDs are not yet stored and reports how many were new.
func (s *MemoryStore) InsertGames(_ context.Context, list []games.Game) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, g := range list {
		if _, ok := s.games[g.ID]; ok {
			continue
		}
		s.games[g.ID] = copyGame(g)
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) Game(_ context.Context, id string) (games.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return games.Game{}, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	return copyGame(g), nil
}

func (s *MemoryStore) WeekGames(_ context.Context, seasonID string, week int) ([]games.Game, error) {
	return s.filterGames(func(g games.Game) bool {
		return g.SeasonID == seasonID && g.Week == week
	}), nil
}

func (s *MemoryStore) SeasonGames(_ context.Context, seasonID string) ([]games.Game, error) {
	return s.filterGames(func(g games.Game) bool {
		return g.SeasonID == seasonID
	}), nil
}

// RecentCompletedGames returns completed games with a broadcast start, newest completion first.
func (s *MemoryStore) RecentCompletedGames(_ context.Context, limit int) ([]games.Game, error) {
	list := s.filterGames(func(g games.Game) bool {
		return g.Status == games.StatusCompleted && g.CompletedAt != nil && g.BroadcastStartedAt != nil
	})
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CompletedAt.After(*list[j].CompletedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *MemoryStore) TransitionGame(_ context.Context, id string, t games.Transition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return false, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if !t.Permits(g) {
		return false, nil
	}
	t.Apply(&g)
	s.games[id] = g
	return true, nil
}

// SetFeatured flags a scheduled game unless another game in its week already holds the flag.
func (s *MemoryStore) SetFeatured(_ context.Context, gameID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return false, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if g.Status != games.StatusScheduled {
		return false, nil
	}
	if g.IsFeatured {
		return true, nil
	}
	for _, other := range s.games {
		if other.ID != g.ID && other.SeasonID == g.SeasonID && other.Week == g.Week &&
			other.IsFeatured {
			return false, nil
		}
	}
	g.IsFeatured = true
	s.games[gameID] = g
	return true, nil
}

// UpdateScheduledTimes writes start times for games still scheduled and returns the number updated.
func (s *MemoryStore) UpdateScheduledTimes(_ context.Context, times map[string]time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for id, at := range times {
		g, ok := s.games[id]
		if !ok || g.Status != games.StatusScheduled {
			continue
		}
		at := at
		g.ScheduledAt = &at
		s.games[id] = g
		updated++
	}
	return updated, nil
}

// SaveGameEvents replaces the stored events for a game.
func (s *MemoryStore) SaveGameEvents(_ context.Context, gameID string, events []games.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[gameID] = append([]games.Event(nil), events...)
	return nil
}

func (s *MemoryStore) GameEvents(_ context.Context, gameID string) ([]games.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]games.Event(nil), s.events[gameID]...), nil
}

// LastEventOffset returns the largest event offset for a game; false when it has none.
func (s *MemoryStore) LastEventOffset(_ context.Context, gameID string) (time.Duration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[gameID]
	if len(events) == 0 {
		return 0, false, nil
	}
	var last time.Duration
	for _, e := range events {
		if e.Offset > last {
			last = e.Offset
		}
	}
	return last, true, nil
}

func (s *MemoryStore) Standings(_ context.Context, seasonID string) ([]standings.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.standings[seasonID]
	out := make([]standings.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (s *MemoryStore) SaveStandings(_ context.Context, rows []standings.Standing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		if s.standings[row.SeasonID] == nil {
			s.standings[row.SeasonID] = make(map[string]standings.Standing)
		}
		s.standings[row.SeasonID][row.TeamID] = row
	}
	return nil
}

func (s *MemoryStore) filterGames(keep func(games.Game) bool) []games.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]games.Game, 0)
	for _, g := range s.games {
		if keep(g) {
			out = append(out, copyGame(g))
		}
	}
	SortGames(out)
	return out
}

func copySeason(s seasons.Season) seasons.Season {
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		s.CompletedAt = &at
	}
	return s
}

func copyGame(g games.Game) games.Game {
	if g.BoxScore != nil {
		box := *g.BoxScore
		box.Home.QuarterScore = append([]int(nil), box.Home.QuarterScore...)
		box.Away.QuarterScore = append([]int(nil), box.Away.QuarterScore...)
		g.BoxScore = &box
	}
	for _, p := range []**time.Time{&g.ScheduledAt, &g.SimulationStartedAt, &g.BroadcastStartedAt, &g.CompletedAt} {
		if *p != nil {
			at := **p
			*p = &at
		}
	}
	return g
}
