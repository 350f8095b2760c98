package games

import "time"

// GameType tags which part of the season a game belongs to.
type GameType string

const (
	TypeRegular                GameType = "regular"
	TypeWildCard               GameType = "wild_card"
	TypeDivisional             GameType = "divisional"
	TypeConferenceChampionship GameType = "conference_championship"
	TypeSuperBowl              GameType = "super_bowl"
)

// IsPlayoff reports whether the game type is a postseason round.
func (t GameType) IsPlayoff() bool {
	return t != TypeRegular && t != ""
}

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	StatusScheduled    GameStatus = "scheduled"
	StatusSimulating   GameStatus = "simulating"
	StatusBroadcasting GameStatus = "broadcasting"
	StatusCompleted    GameStatus = "completed"
)

// IsActive reports whether the game currently occupies the broadcast.
func (s GameStatus) IsActive() bool {
	return s == StatusSimulating || s == StatusBroadcasting
}

// TeamBox holds per-team totals produced by the simulation engine.
type TeamBox struct {
	Touchdowns   int   `json:"touchdowns"`
	FieldGoals   int   `json:"fieldGoals"`
	Safeties     int   `json:"safeties"`
	Turnovers    int   `json:"turnovers"`
	TotalYards   int   `json:"totalYards"`
	Possessions  int   `json:"possessions"`
	QuarterScore []int `json:"quarterScore"`
}

// BoxScore summarizes a finished simulation.
type BoxScore struct {
	Home TeamBox `json:"home"`
	Away TeamBox `json:"away"`
}

// Game is one matchup within a season.
type Game struct {
	ID                  string     `json:"id"`
	SeasonID            string     `json:"seasonId"`
	Week                int        `json:"week"`
	Type                GameType   `json:"gameType"`
	HomeTeamID          string     `json:"homeTeamId"`
	AwayTeamID          string     `json:"awayTeamId"`
	HomeScore           int        `json:"homeScore"`
	AwayScore           int        `json:"awayScore"`
	Status              GameStatus `json:"status"`
	IsFeatured          bool       `json:"isFeatured"`
	MVP                 string     `json:"mvp,omitempty"`
	BoxScore            *BoxScore  `json:"boxScore,omitempty"`
	ScheduledAt         *time.Time `json:"scheduledAt,omitempty"`
	SimulationStartedAt *time.Time `json:"-"`
	BroadcastStartedAt  *time.Time `json:"broadcastStartedAt,omitempty"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
}

// Winner returns the winning team ID. Ties report ok=false.
func (g Game) Winner() (string, bool) {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeamID, true
	case g.AwayScore > g.HomeScore:
		return g.AwayTeamID, true
	default:
		return "", false
	}
}

// Involves reports whether the team plays in this game.
func (g Game) Involves(teamID string) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}

// BroadcastDuration returns how long the broadcast ran, if both timestamps exist.
func (g Game) BroadcastDuration() (time.Duration, bool) {
	if g.BroadcastStartedAt == nil || g.CompletedAt == nil {
		return 0, false
	}
	return g.CompletedAt.Sub(*g.BroadcastStartedAt), true
}

// Event is one scored or notable play, positioned by its offset from broadcast start.
type Event struct {
	Sequence    int           `json:"sequence"`
	Offset      time.Duration `json:"offset"`
	Quarter     int           `json:"quarter"`
	Kind        string        `json:"kind"`
	TeamID      string        `json:"teamId,omitempty"`
	Points      int           `json:"points"`
	HomeScore   int           `json:"homeScore"`
	AwayScore   int           `json:"awayScore"`
	Description string        `json:"description"`
}

// Transition describes a guarded status change and the fields written with it.
// A non-nil ClaimedBefore further limits the change to games whose simulation
// claim is missing or older than that instant.
type Transition struct {
	From                GameStatus
	To                  GameStatus
	ClaimedBefore       *time.Time
	HomeScore           *int
	AwayScore           *int
	MVP                 *string
	BoxScore            *BoxScore
	SimulationStartedAt *time.Time
	BroadcastStartedAt  *time.Time
	CompletedAt         *time.Time
}

// Permits reports whether the guard matches g.
func (t Transition) Permits(g Game) bool {
	if g.Status != t.From {
		return false
	}
	if t.ClaimedBefore == nil || g.SimulationStartedAt == nil {
		return true
	}
	return g.SimulationStartedAt.Before(*t.ClaimedBefore)
}

// Apply writes the transition's fields onto g.
func (t Transition) Apply(g *Game) {
	g.Status = t.To
	if t.HomeScore != nil {
		g.HomeScore = *t.HomeScore
	}
	if t.AwayScore != nil {
		g.AwayScore = *t.AwayScore
	}
	if t.MVP != nil {
		g.MVP = *t.MVP
	}
	if t.BoxScore != nil {
		box := *t.BoxScore
		g.BoxScore = &box
	}
	if t.SimulationStartedAt != nil {
		at := *t.SimulationStartedAt
		g.SimulationStartedAt = &at
	}
	if t.BroadcastStartedAt != nil {
		at := *t.BroadcastStartedAt
		g.BroadcastStartedAt = &at
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		g.CompletedAt = &at
	}
}
