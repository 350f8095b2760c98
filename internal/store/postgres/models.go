package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

type teamModel struct {
	ID           string `gorm:"primaryKey;size:32"`
	Name         string `gorm:"size:64;not null"`
	City         string `gorm:"size:64;not null"`
	Abbreviation string `gorm:"size:8"`
	Conference   string `gorm:"size:1;not null;index"`
	Division     int    `gorm:"not null"`
	Offense      int
	Defense      int
	SpecialTeams int
}

func (teamModel) TableName() string { return "teams" }

type playerModel struct {
	ID       string `gorm:"primaryKey;size:64"`
	TeamID   string `gorm:"size:32;not null;index"`
	Name     string `gorm:"size:128;not null"`
	Position string `gorm:"size:8"`
	Number   int
	Rating   int
}

func (playerModel) TableName() string { return "players" }

type seasonModel struct {
	ID             string `gorm:"primaryKey;size:64"`
	Number         int    `gorm:"uniqueIndex;not null"`
	CurrentWeek    int    `gorm:"not null"`
	TotalWeeks     int    `gorm:"not null"`
	Status         string `gorm:"size:32;not null"`
	Seed           string `gorm:"size:128;not null"`
	Bracket        datatypes.JSON
	ChampionTeamID string `gorm:"size:32"`
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

func (seasonModel) TableName() string { return "seasons" }

type gameModel struct {
	ID                  string `gorm:"primaryKey;size:128"`
	SeasonID            string `gorm:"size:64;not null;index:idx_games_season_week"`
	Week                int    `gorm:"not null;index:idx_games_season_week"`
	Type                string `gorm:"size:32;not null"`
	HomeTeamID          string `gorm:"size:32;not null"`
	AwayTeamID          string `gorm:"size:32;not null"`
	HomeScore           int
	AwayScore           int
	Status              string `gorm:"size:16;not null;index"`
	IsFeatured          bool
	MVP                 string `gorm:"size:128"`
	BoxScore            datatypes.JSON
	ScheduledAt         *time.Time
	SimulationStartedAt *time.Time
	BroadcastStartedAt  *time.Time
	CompletedAt         *time.Time `gorm:"index"`
}

func (gameModel) TableName() string { return "games" }

type eventModel struct {
	GameID      string `gorm:"primaryKey;size:128"`
	Sequence    int    `gorm:"primaryKey"`
	OffsetMS    int64  `gorm:"column:offset_ms;not null"`
	Quarter     int
	Kind        string `gorm:"size:32"`
	TeamID      string `gorm:"size:32"`
	Points      int
	HomeScore   int
	AwayScore   int
	Description string `gorm:"type:text"`
}

func (eventModel) TableName() string { return "game_events" }

type standingModel struct {
	SeasonID         string `gorm:"primaryKey;size:64"`
	TeamID           string `gorm:"primaryKey;size:32"`
	Wins             int
	Losses           int
	Ties             int
	DivisionWins     int
	DivisionLosses   int
	DivisionTies     int
	ConferenceWins   int
	ConferenceLosses int
	ConferenceTies   int
	PointsFor        int
	PointsAgainst    int
	Streak           string `gorm:"size:8"`
	PlayoffSeed      *int
	Clinched         *string `gorm:"size:16"`
}

func (standingModel) TableName() string { return "standings" }

func allModels() []any {
	return []any{&teamModel{}, &playerModel{}, &seasonModel{}, &gameModel{}, &eventModel{}, &standingModel{}}
}

func toTeamModel(t teams.Team) teamModel {
	return teamModel{
		ID: t.ID, Name: t.Name, City: t.City, Abbreviation: t.Abbreviation,
		Conference: string(t.Conference), Division: t.Division,
		Offense: t.Offense, Defense: t.Defense, SpecialTeams: t.SpecialTeams,
	}
}

func (m teamModel) domain() teams.Team {
	return teams.Team{
		ID: m.ID, Name: m.Name, City: m.City, Abbreviation: m.Abbreviation,
		Conference: teams.Conference(m.Conference), Division: m.Division,
		Offense: m.Offense, Defense: m.Defense, SpecialTeams: m.SpecialTeams,
	}
}

func toPlayerModel(p players.Player) playerModel {
	return playerModel(p)
}

func (m playerModel) domain() players.Player {
	return players.Player(m)
}

func toSeasonModel(s seasons.Season) seasonModel {
	return seasonModel{
		ID: s.ID, Number: s.Number, CurrentWeek: s.CurrentWeek, TotalWeeks: s.TotalWeeks,
		Status: string(s.Status), Seed: s.Seed, ChampionTeamID: s.ChampionTeamID,
		CreatedAt: s.CreatedAt, CompletedAt: s.CompletedAt,
	}
}

func (m seasonModel) domain() seasons.Season {
	return seasons.Season{
		ID: m.ID, Number: m.Number, CurrentWeek: m.CurrentWeek, TotalWeeks: m.TotalWeeks,
		Status: seasons.Status(m.Status), Seed: m.Seed, ChampionTeamID: m.ChampionTeamID,
		CreatedAt: m.CreatedAt, CompletedAt: m.CompletedAt,
	}
}

func toGameModel(g games.Game) (gameModel, error) {
	m := gameModel{
		ID: g.ID, SeasonID: g.SeasonID, Week: g.Week, Type: string(g.Type),
		HomeTeamID: g.HomeTeamID, AwayTeamID: g.AwayTeamID,
		HomeScore: g.HomeScore, AwayScore: g.AwayScore,
		Status: string(g.Status), IsFeatured: g.IsFeatured, MVP: g.MVP,
		ScheduledAt: g.ScheduledAt, SimulationStartedAt: g.SimulationStartedAt,
		BroadcastStartedAt: g.BroadcastStartedAt, CompletedAt: g.CompletedAt,
	}
	if g.BoxScore != nil {
		raw, err := json.Marshal(g.BoxScore)
		if err != nil {
			return gameModel{}, fmt.Errorf("encoding box score for %s: %w", g.ID, err)
		}
		m.BoxScore = datatypes.JSON(raw)
	}
	return m, nil
}

func (m gameModel) domain() (games.Game, error) {
	g := games.Game{
		ID: m.ID, SeasonID: m.SeasonID, Week: m.Week, Type: games.GameType(m.Type),
		HomeTeamID: m.HomeTeamID, AwayTeamID: m.AwayTeamID,
		HomeScore: m.HomeScore, AwayScore: m.AwayScore,
		Status: games.GameStatus(m.Status), IsFeatured: m.IsFeatured, MVP: m.MVP,
		ScheduledAt: m.ScheduledAt, SimulationStartedAt: m.SimulationStartedAt,
		BroadcastStartedAt: m.BroadcastStartedAt, CompletedAt: m.CompletedAt,
	}
	if len(m.BoxScore) > 0 {
		var box games.BoxScore
		if err := json.Unmarshal(m.BoxScore, &box); err != nil {
			return games.Game{}, fmt.Errorf("decoding box score for %s: %w", m.ID, err)
		}
		g.BoxScore = &box
	}
	return g, nil
}

func toEventModel(gameID string, e games.Event) eventModel {
	return eventModel{
		GameID: gameID, Sequence: e.Sequence, OffsetMS: e.Offset.Milliseconds(),
		Quarter: e.Quarter, Kind: e.Kind, TeamID: e.TeamID, Points: e.Points,
		HomeScore: e.HomeScore, AwayScore: e.AwayScore, Description: e.Description,
	}
}

func (m eventModel) domain() games.Event {
	return games.Event{
		Sequence: m.Sequence, Offset: time.Duration(m.OffsetMS) * time.Millisecond,
		Quarter: m.Quarter, Kind: m.Kind, TeamID: m.TeamID, Points: m.Points,
		HomeScore: m.HomeScore, AwayScore: m.AwayScore, Description: m.Description,
	}
}

func toStandingModel(s standings.Standing) standingModel {
	m := standingModel{
		SeasonID: s.SeasonID, TeamID: s.TeamID,
		Wins: s.Wins, Losses: s.Losses, Ties: s.Ties,
		DivisionWins: s.DivisionWins, DivisionLosses: s.DivisionLosses, DivisionTies: s.DivisionTies,
		ConferenceWins: s.ConferenceWins, ConferenceLosses: s.ConferenceLosses, ConferenceTies: s.ConferenceTies,
		PointsFor: s.PointsFor, PointsAgainst: s.PointsAgainst, Streak: s.Streak,
	}
	if s.PlayoffSeed > 0 {
		seed := s.PlayoffSeed
		m.PlayoffSeed = &seed
	}
	if s.Clinched != standings.ClinchNone {
		clinched := string(s.Clinched)
		m.Clinched = &clinched
	}
	return m
}

func (m standingModel) domain() standings.Standing {
	s := standings.Standing{
		SeasonID: m.SeasonID, TeamID: m.TeamID,
		Wins: m.Wins, Losses: m.Losses, Ties: m.Ties,
		DivisionWins: m.DivisionWins, DivisionLosses: m.DivisionLosses, DivisionTies: m.DivisionTies,
		ConferenceWins: m.ConferenceWins, ConferenceLosses: m.ConferenceLosses, ConferenceTies: m.ConferenceTies,
		PointsFor: m.PointsFor, PointsAgainst: m.PointsAgainst, Streak: m.Streak,
	}
	if m.PlayoffSeed != nil {
		s.PlayoffSeed = *m.PlayoffSeed
	}
	if m.Clinched != nil {
		s.Clinched = standings.Clinch(*m.Clinched)
	}
	return s
}
