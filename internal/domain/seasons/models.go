package seasons

import (
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
)

// Status is the phase of a season.
type Status string

const (
	StatusRegularSeason          Status = "regular_season"
	StatusWildCard               Status = "wild_card"
	StatusDivisional             Status = "divisional"
	StatusConferenceChampionship Status = "conference_championship"
	StatusSuperBowl              Status = "super_bowl"
	StatusOffseason              Status = "offseason"
)

const (
	RegularSeasonWeeks = 18
	PlayoffWeeks       = 4
	TotalWeeks         = RegularSeasonWeeks + PlayoffWeeks
)

// IsPlayoff reports whether the status is a postseason round.
func (s Status) IsPlayoff() bool {
	switch s {
	case StatusWildCard, StatusDivisional, StatusConferenceChampionship, StatusSuperBowl:
		return true
	}
	return false
}

// Next returns the status that follows s once its final week completes.
func (s Status) Next() Status {
	switch s {
	case StatusRegularSeason:
		return StatusWildCard
	case StatusWildCard:
		return StatusDivisional
	case StatusDivisional:
		return StatusConferenceChampionship
	case StatusConferenceChampionship:
		return StatusSuperBowl
	default:
		return StatusOffseason
	}
}

// GameType maps a season phase to the type of games played during it.
func (s Status) GameType() games.GameType {
	switch s {
	case StatusWildCard:
		return games.TypeWildCard
	case StatusDivisional:
		return games.TypeDivisional
	case StatusConferenceChampionship:
		return games.TypeConferenceChampionship
	case StatusSuperBowl:
		return games.TypeSuperBowl
	default:
		return games.TypeRegular
	}
}

// PlayoffWeek returns the season week a playoff round is played in.
func PlayoffWeek(s Status) int {
	switch s {
	case StatusWildCard:
		return RegularSeasonWeeks + 1
	case StatusDivisional:
		return RegularSeasonWeeks + 2
	case StatusConferenceChampionship:
		return RegularSeasonWeeks + 3
	case StatusSuperBowl:
		return RegularSeasonWeeks + 4
	}
	return 0
}

// Position is the (status, week) pair guarded by conditional season writes.
type Position struct {
	Status Status `json:"status"`
	Week   int    `json:"week"`
}

// Season is one full league year.
type Season struct {
	ID             string     `json:"id"`
	Number         int        `json:"seasonNumber"`
	CurrentWeek    int        `json:"currentWeek"`
	TotalWeeks     int        `json:"totalWeeks"`
	Status         Status     `json:"status"`
	Seed           string     `json:"seed"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	ChampionTeamID string     `json:"championTeamId,omitempty"`
}

// Position returns the season's current (status, week).
func (s Season) Position() Position {
	return Position{Status: s.Status, Week: s.CurrentWeek}
}

// NextPosition returns where the season moves once the current week is done.
func (s Season) NextPosition() Position {
	if s.Status == StatusRegularSeason && s.CurrentWeek < RegularSeasonWeeks {
		return Position{Status: StatusRegularSeason, Week: s.CurrentWeek + 1}
	}
	next := s.Status.Next()
	return Position{Status: next, Week: PlayoffWeek(next)}
}
