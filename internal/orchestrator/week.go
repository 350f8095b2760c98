package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/playoff"
	"github.com/preston-bernstein/gridiron-service/internal/schedule"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

// advanceWeek moves the season past a fully completed week. Leaving week 18
// seeds the playoffs; leaving a playoff round schedules the next one.
func (o *Orchestrator) advanceWeek(ctx context.Context, season seasons.Season, week []games.Game) (Action, error) {
	next := season.NextPosition()

	var (
		bracket playoff.Bracket
		err     error
	)
	switch {
	case season.Status == seasons.StatusRegularSeason && next.Status.IsPlayoff():
		bracket, err = o.seedPlayoffs(ctx, season)
	case season.Status.IsPlayoff():
		bracket, err = o.syncBracket(ctx, season, week)
	}
	if err != nil {
		return Action{}, err
	}
	if next.Status.IsPlayoff() && len(bracket.Matchups(next.Status.GameType())) == 0 {
		return Action{}, fmt.Errorf("season %s: bracket has no %s matchups", season.ID, next.Status.GameType())
	}

	ok, err := o.store.AdvanceSeason(ctx, season.ID, season.Position(), next)
	if err != nil {
		return Action{}, fmt.Errorf("advancing season %s: %w", season.ID, err)
	}
	if !ok {
		return withSeason(idle(ReasonLostRace, "week already advanced"), season), nil
	}
	season.Status, season.CurrentWeek = next.Status, next.Week

	if next.Status.IsPlayoff() {
		if _, err := o.insertRound(ctx, season, bracket); err != nil {
			return Action{}, err
		}
	}
	o.reproject(ctx, season.ID)
	o.featureWeek(ctx, season)

	a := withSeason(Action{Kind: KindAdvanceWeek}, season)
	a.Message = fmt.Sprintf("advanced to week %d (%s)", season.CurrentWeek, season.Status)
	return a, nil
}

// seedPlayoffs ranks the final standings, tags clinch status and stores the
// opening bracket. A bracket that already exists is returned as is.
func (o *Orchestrator) seedPlayoffs(ctx context.Context, season seasons.Season) (playoff.Bracket, error) {
	existing, err := o.store.Bracket(ctx, season.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return playoff.Bracket{}, fmt.Errorf("loading bracket: %w", err)
	}

	list, err := o.store.Teams(ctx)
	if err != nil {
		return playoff.Bracket{}, fmt.Errorf("loading teams: %w", err)
	}
	rows, err := o.store.Standings(ctx, season.ID)
	if err != nil {
		return playoff.Bracket{}, fmt.Errorf("loading standings: %w", err)
	}
	rows = fillStandings(season.ID, list, rows)

	seeds, tagged, err := playoff.CalculateSeeds(list, rows)
	if err != nil {
		return playoff.Bracket{}, fmt.Errorf("seeding playoffs: %w", err)
	}
	if err := o.store.SaveStandings(ctx, tagged); err != nil {
		return playoff.Bracket{}, fmt.Errorf("saving seeds: %w", err)
	}
	bracket, err := playoff.NewBracket(seeds)
	if err != nil {
		return playoff.Bracket{}, err
	}
	if err := o.store.SaveBracket(ctx, season.ID, bracket); err != nil {
		return playoff.Bracket{}, fmt.Errorf("saving bracket: %w", err)
	}
	return bracket, nil
}

// syncBracket folds every completed playoff game of the week into the stored
// bracket, covering completions whose bracket update did not land.
func (o *Orchestrator) syncBracket(ctx context.Context, season seasons.Season, week []games.Game) (playoff.Bracket, error) {
	b, err := o.store.Bracket(ctx, season.ID)
	if err != nil {
		return playoff.Bracket{}, fmt.Errorf("loading bracket: %w", err)
	}
	before := decided(b)
	for _, g := range week {
		if g.Status != games.StatusCompleted || !g.Type.IsPlayoff() {
			continue
		}
		next, err := playoff.Advance(b, resultOf(g))
		if err != nil {
			logging.Warn(logging.FromContext(ctx, o.logger), "playoff result not applied",
				logging.FieldGameID, g.ID, "error", err)
			continue
		}
		b = next
	}
	if decided(b) > before {
		if err := o.store.SaveBracket(ctx, season.ID, b); err != nil {
			return playoff.Bracket{}, fmt.Errorf("saving bracket: %w", err)
		}
	}
	return b, nil
}

func decided(b playoff.Bracket) int {
	n := 0
	for _, r := range b.Rounds {
		for _, m := range r.Matchups {
			if m.Decided() {
				n++
			}
		}
	}
	return n
}

// insertRound schedules the bracket's matchups for the season's current round.
func (o *Orchestrator) insertRound(ctx context.Context, season seasons.Season, bracket playoff.Bracket) (int, error) {
	kind := season.Status.GameType()
	var list []games.Game
	for _, m := range bracket.Matchups(kind) {
		list = append(list, games.Game{
			ID:         gameID(season.ID, season.CurrentWeek, m.AwayTeamID, m.HomeTeamID),
			SeasonID:   season.ID,
			Week:       season.CurrentWeek,
			Type:       kind,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			Status:     games.StatusScheduled,
		})
	}
	n, err := o.store.InsertGames(ctx, list)
	if err != nil {
		return 0, fmt.Errorf("inserting %s games: %w", kind, err)
	}
	return n, nil
}

// repairWeek rebuilds the games of a week that has none, e.g. after a crash
// between advancing the season and inserting the round. Inserts are keyed by
// game ID so replays add nothing.
func (o *Orchestrator) repairWeek(ctx context.Context, season seasons.Season) (Action, error) {
	var (
		n   int
		err error
	)
	if season.Status.IsPlayoff() {
		var bracket playoff.Bracket
		bracket, err = o.store.Bracket(ctx, season.ID)
		if errors.Is(err, store.ErrNotFound) && season.Status == seasons.StatusWildCard {
			bracket, err = o.seedPlayoffs(ctx, season)
		}
		if err != nil {
			return Action{}, fmt.Errorf("loading bracket: %w", err)
		}
		n, err = o.insertRound(ctx, season, bracket)
	} else {
		n, err = o.regenerateSchedule(ctx, season)
	}
	if err != nil {
		return Action{}, err
	}
	if n == 0 {
		return withSeason(idle(ReasonNoGames, "no games to schedule this week"), season), nil
	}

	o.reproject(ctx, season.ID)
	o.featureWeek(ctx, season)
	logging.Warn(logging.FromContext(ctx, o.logger), "repaired empty week",
		logging.FieldSeasonID, season.ID, logging.FieldWeek, season.CurrentWeek, logging.FieldCount, n)
	return withSeason(idle(ReasonWeekRepaired, fmt.Sprintf("scheduled %d missing games", n)), season), nil
}

func (o *Orchestrator) regenerateSchedule(ctx context.Context, season seasons.Season) (int, error) {
	list, err := o.store.Teams(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading teams: %w", err)
	}
	sched, err := schedule.Generate(list, season.Seed)
	if err != nil {
		return 0, fmt.Errorf("generating schedule: %w", err)
	}
	return o.insertSchedule(ctx, season, sched)
}

func fillStandings(seasonID string, list []teams.Team, rows []domainstandings.Standing) []domainstandings.Standing {
	have := make(map[string]bool, len(rows))
	for _, r := range rows {
		have[r.TeamID] = true
	}
	for _, t := range list {
		if !have[t.ID] {
			rows = append(rows, domainstandings.New(seasonID, t.ID))
		}
	}
	return rows
}
