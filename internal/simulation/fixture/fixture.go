// Package fixture provides a deterministic in-process simulation engine.
package fixture

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
)

const (
	Name = "fixture"

	quarters             = 4
	possessionsPerHalf   = 12
	possessionAirtime    = 35 * time.Second
	overtimePossessions  = 4
	playoffOvertimeLimit = 12
)

// Engine plays games from team ratings with a seed derived from the game ID,
// so replaying a game yields the same result.
type Engine struct{}

// New creates a fixture engine.
func New() *Engine {
	return &Engine{}
}

var _ simulation.Engine = (*Engine)(nil)

type side struct {
	team  teams.Team
	box   games.TeamBox
	score int
}

type game struct {
	rng    *rand.Rand
	req    simulation.Request
	home   *side
	away   *side
	events []games.Event
	clock  time.Duration
}

// Simulate plays four quarters plus overtime. Playoff games keep playing
// overtime until someone leads.
func (e *Engine) Simulate(ctx context.Context, req simulation.Request) (simulation.Result, error) {
	if err := ctx.Err(); err != nil {
		return simulation.Result{}, err
	}
	seed := seedFor(req.GameID)
	g := &game{
		rng:  rand.New(rand.NewSource(seed)),
		req:  req,
		home: &side{team: req.Home, box: games.TeamBox{QuarterScore: make([]int, quarters)}},
		away: &side{team: req.Away, box: games.TeamBox{QuarterScore: make([]int, quarters)}},
	}
	g.emit(0, "kickoff", "", 0, fmt.Sprintf("%s kick off against %s", req.Away.FullName(), req.Home.FullName()))

	perQuarter := possessionsPerHalf / 2
	for q := 1; q <= quarters; q++ {
		for p := 0; p < perQuarter; p++ {
			offense, defense := g.home, g.away
			if (p+q)%2 == 0 {
				offense, defense = g.away, g.home
			}
			g.possession(q, offense, defense)
		}
		g.emit(q, "quarter_end", "", 0, fmt.Sprintf("End of quarter %d", q))
	}

	if g.home.score == g.away.score {
		limit := overtimePossessions
		if req.GameType.IsPlayoff() {
			limit = playoffOvertimeLimit
		}
		for p := 0; p < limit && g.home.score == g.away.score; p++ {
			offense, defense := g.home, g.away
			if p%2 == 1 {
				offense, defense = g.away, g.home
			}
			forceScore := req.GameType.IsPlayoff() && p == limit-1
			g.overtimePossession(offense, defense, forceScore)
		}
	}
	g.emit(0, "final", "", 0, fmt.Sprintf("Final: %s %d, %s %d", req.Away.Abbreviation, g.away.score, req.Home.Abbreviation, g.home.score))

	return simulation.Result{
		Events:    g.events,
		HomeScore: g.home.score,
		AwayScore: g.away.score,
		BoxScore:  games.BoxScore{Home: g.home.box, Away: g.away.box},
		MVP:       g.mvp(),
		Seeds:     map[string]int64{"game": seed},
	}, nil
}

func seedFor(gameID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(gameID))
	return int64(h.Sum64())
}

func (g *game) possession(quarter int, offense, defense *side) {
	g.clock += possessionAirtime
	offense.box.Possessions++
	edge := float64(offense.team.Offense-defense.team.Defense) / 300
	yards := 15 + g.rng.Intn(45) + int(edge*40)
	if yards < 0 {
		yards = 0
	}
	offense.box.TotalYards += yards

	roll := g.rng.Float64()
	switch {
	case roll < 0.20+edge:
		g.touchdown(quarter, offense)
	case roll < 0.36+edge+float64(offense.team.SpecialTeams-50)/500:
		g.fieldGoal(quarter, offense)
	case roll > 0.94:
		offense.box.Turnovers++
		g.emit(quarter, "turnover", offense.team.ID, 0, fmt.Sprintf("%s turn it over", offense.team.Name))
	case roll > 0.935:
		defense.box.Safeties++
		g.score(quarter, defense, 2)
		g.emit(quarter, "safety", defense.team.ID, 2, fmt.Sprintf("Safety for %s", defense.team.Name))
	}
}

func (g *game) overtimePossession(offense, defense *side, forceScore bool) {
	g.clock += possessionAirtime
	offense.box.Possessions++
	edge := float64(offense.team.Offense-defense.team.Defense) / 300
	roll := g.rng.Float64()
	switch {
	case roll < 0.22+edge:
		g.touchdown(0, offense)
	case roll < 0.45+edge || forceScore:
		g.fieldGoal(0, offense)
	}
}

func (g *game) touchdown(quarter int, s *side) {
	s.box.Touchdowns++
	g.score(quarter, s, 7)
	g.emit(quarter, "touchdown", s.team.ID, 7, fmt.Sprintf("Touchdown %s", s.team.Name))
}

func (g *game) fieldGoal(quarter int, s *side) {
	s.box.FieldGoals++
	g.score(quarter, s, 3)
	g.emit(quarter, "field_goal", s.team.ID, 3, fmt.Sprintf("Field goal %s", s.team.Name))
}

// score adds points; overtime points (quarter 0) count toward the final only.
func (g *game) score(quarter int, s *side, points int) {
	s.score += points
	if quarter >= 1 && quarter <= quarters {
		s.box.QuarterScore[quarter-1] += points
	}
}

func (g *game) emit(quarter int, kind, teamID string, points int, description string) {
	g.events = append(g.events, games.Event{
		Sequence:    len(g.events) + 1,
		Offset:      g.clock,
		Quarter:     quarter,
		Kind:        kind,
		TeamID:      teamID,
		Points:      points,
		HomeScore:   g.home.score,
		AwayScore:   g.away.score,
		Description: description,
	})
}

// mvp picks the top-rated skill player on the winning side, home on a tie.
func (g *game) mvp() string {
	winner, roster := g.home, g.req.HomePlayers
	if g.away.score > g.home.score {
		winner, roster = g.away, g.req.AwayPlayers
	}
	candidates := make([]players.Player, 0, len(roster))
	for _, p := range roster {
		if p.IsSkill() {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return winner.team.Name + " offense"
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Rating > candidates[j].Rating })
	top := candidates
	if len(top) > 3 {
		top = top[:3]
	}
	return top[g.rng.Intn(len(top))].Name
}
