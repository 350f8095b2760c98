package testutil

import (
	"context"
	"testing"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/league"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

// SampleTeam returns a team fixture with middling ratings.
func SampleTeam(id string, conf teams.Conference, division int) teams.Team {
	return teams.Team{
		ID:           id,
		Name:         "Team " + id,
		City:         "City",
		Abbreviation: id,
		Conference:   conf,
		Division:     division,
		Offense:      75,
		Defense:      75,
		SpecialTeams: 75,
	}
}

// SampleGame returns a scheduled regular-season game fixture.
func SampleGame(id, seasonID string, week int, homeID, awayID string) games.Game {
	return games.Game{
		ID:         id,
		SeasonID:   seasonID,
		Week:       week,
		Type:       games.TypeRegular,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Status:     games.StatusScheduled,
	}
}

// SampleSeason returns a season in week one of the regular season.
func SampleSeason(id string) seasons.Season {
	return seasons.Season{
		ID:          id,
		Number:      1,
		CurrentWeek: 1,
		TotalWeeks:  seasons.TotalWeeks,
		Status:      seasons.StatusRegularSeason,
		Seed:        "seed-" + id,
	}
}

// NewLeagueStore returns a memory store loaded with the built-in league and its rosters.
func NewLeagueStore(t testing.TB) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	list := league.Default().Teams()
	ctx := context.Background()
	if err := st.UpsertTeams(ctx, list); err != nil {
		t.Fatalf("seeding teams: %v", err)
	}
	var roster []players.Player
	for _, team := range list {
		roster = append(roster, league.Roster(team)...)
	}
	if err := st.UpsertPlayers(ctx, roster); err != nil {
		t.Fatalf("seeding players: %v", err)
	}
	return st
}
