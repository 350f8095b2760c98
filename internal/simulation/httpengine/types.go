package httpengine

import (
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
)

type rosterPayload struct {
	Team    teams.Team       `json:"team"`
	Players []players.Player `json:"players"`
}

type simulateRequest struct {
	GameID   string         `json:"gameId"`
	GameType games.GameType `json:"gameType"`
	Home     rosterPayload  `json:"home"`
	Away     rosterPayload  `json:"away"`
}

type eventPayload struct {
	Sequence    int    `json:"sequence"`
	OffsetMS    int64  `json:"offsetMs"`
	Quarter     int    `json:"quarter"`
	Kind        string `json:"kind"`
	TeamID      string `json:"teamId"`
	Points      int    `json:"points"`
	HomeScore   int    `json:"homeScore"`
	AwayScore   int    `json:"awayScore"`
	Description string `json:"description"`
}

type simulateResponse struct {
	Events    []eventPayload   `json:"events"`
	HomeScore int              `json:"homeScore"`
	AwayScore int              `json:"awayScore"`
	BoxScore  games.BoxScore   `json:"boxScore"`
	MVP       string           `json:"mvp"`
	Seeds     map[string]int64 `json:"seeds"`
}

func toRequest(req simulation.Request) simulateRequest {
	return simulateRequest{
		GameID:   req.GameID,
		GameType: req.GameType,
		Home:     rosterPayload{Team: req.Home, Players: req.HomePlayers},
		Away:     rosterPayload{Team: req.Away, Players: req.AwayPlayers},
	}
}

func (r simulateResponse) result() simulation.Result {
	events := make([]games.Event, 0, len(r.Events))
	for _, e := range r.Events {
		events = append(events, games.Event{
			Sequence:    e.Sequence,
			Offset:      time.Duration(e.OffsetMS) * time.Millisecond,
			Quarter:     e.Quarter,
			Kind:        e.Kind,
			TeamID:      e.TeamID,
			Points:      e.Points,
			HomeScore:   e.HomeScore,
			AwayScore:   e.AwayScore,
			Description: e.Description,
		})
	}
	return simulation.Result{
		Events:    events,
		HomeScore: r.HomeScore,
		AwayScore: r.AwayScore,
		BoxScore:  r.BoxScore,
		MVP:       r.MVP,
		Seeds:     r.Seeds,
	}
}
