package orchestrator

import (
	"context"
	"fmt"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/playoff"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
	"github.com/preston-bernstein/gridiron-service/internal/standings"
)

// startGame claims a scheduled game, simulates it and puts it on air.
// Engine failures hand the game back to the schedule.
func (o *Orchestrator) startGame(ctx context.Context, season seasons.Season, g games.Game) (Action, error) {
	claimedAt := o.now()
	claimed, err := o.store.TransitionGame(ctx, g.ID, games.Transition{
		From:                games.StatusScheduled,
		To:                  games.StatusSimulating,
		SimulationStartedAt: &claimedAt,
	})
	if err != nil {
		return Action{}, fmt.Errorf("claiming game %s: %w", g.ID, err)
	}
	if !claimed {
		return withSeason(idle(ReasonLostRace, "game "+g.ID+" already claimed"), season), nil
	}

	// Once claimed the game must leave simulating, even if the caller has gone away.
	work := context.WithoutCancel(ctx)
	logger := logging.FromContext(work, o.logger)
	req, err := o.simulationRequest(work, g)
	if err == nil {
		var res simulation.Result
		if res, err = o.simulate(work, req); err == nil {
			return o.goLive(work, season, g, res)
		}
	}

	logging.Error(logger, "simulation failed", err, logging.FieldGameID, g.ID, logging.FieldSeasonID, season.ID)
	if _, revertErr := o.store.TransitionGame(work, g.ID, games.Transition{From: games.StatusSimulating, To: games.StatusScheduled}); revertErr != nil {
		return Action{}, fmt.Errorf("releasing game %s: %w", g.ID, revertErr)
	}
	a := withSeason(idle(ReasonSimulationFailed, "simulation failed for game "+g.ID), season)
	a.GameID = g.ID
	return a, nil
}

// stalled reports whether a simulating game has outlived any engine call that
// could still finish it. Claims without a timestamp count as stalled.
func (o *Orchestrator) stalled(g games.Game) bool {
	if g.SimulationStartedAt == nil {
		return true
	}
	return o.now().Sub(*g.SimulationStartedAt) > o.cfg.StalledSimulation
}

// releaseStalled returns a stalled game to the schedule. The claim time guard
// keeps a fresh claim made by another tick in place.
func (o *Orchestrator) releaseStalled(ctx context.Context, season seasons.Season, g games.Game) (Action, error) {
	cutoff := o.now().Add(-o.cfg.StalledSimulation)
	released, err := o.store.TransitionGame(ctx, g.ID, games.Transition{
		From:          games.StatusSimulating,
		To:            games.StatusScheduled,
		ClaimedBefore: &cutoff,
	})
	if err != nil {
		return Action{}, fmt.Errorf("releasing stalled game %s: %w", g.ID, err)
	}
	if !released {
		return withSeason(idle(ReasonLostRace, "game "+g.ID+" left simulation"), season), nil
	}
	logging.Warn(logging.FromContext(ctx, o.logger), "released stalled simulation",
		logging.FieldGameID, g.ID, logging.FieldSeasonID, season.ID)
	a := withSeason(idle(ReasonSimulationStall, "game "+g.ID+" returned to the schedule"), season)
	a.GameID = g.ID
	return a, nil
}

func (o *Orchestrator) simulate(ctx context.Context, req simulation.Request) (simulation.Result, error) {
	if o.engine == nil {
		return simulation.Result{}, simulation.ErrEngineUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, o.cfg.SimulationTimeout)
	defer cancel()
	res, err := o.engine.Simulate(ctx, req)
	if err != nil {
		return simulation.Result{}, err
	}
	if err := res.Validate(req); err != nil {
		return simulation.Result{}, err
	}
	return res, nil
}

func (o *Orchestrator) goLive(ctx context.Context, season seasons.Season, g games.Game, res simulation.Result) (Action, error) {
	if err := o.store.SaveGameEvents(ctx, g.ID, res.Events); err != nil {
		return Action{}, fmt.Errorf("saving events for game %s: %w", g.ID, err)
	}
	now := o.now()
	box := res.BoxScore
	live, err := o.store.TransitionGame(ctx, g.ID, games.Transition{
		From:               games.StatusSimulating,
		To:                 games.StatusBroadcasting,
		HomeScore:          &res.HomeScore,
		AwayScore:          &res.AwayScore,
		MVP:                &res.MVP,
		BoxScore:           &box,
		BroadcastStartedAt: &now,
	})
	if err != nil {
		return Action{}, fmt.Errorf("starting broadcast of game %s: %w", g.ID, err)
	}
	if !live {
		return withSeason(idle(ReasonLostRace, "game "+g.ID+" left simulation unexpectedly"), season), nil
	}
	a := withSeason(Action{Kind: KindStartGame}, season)
	a.GameID = g.ID
	a.Message = fmt.Sprintf("%s at %s is on air", g.AwayTeamID, g.HomeTeamID)
	return a, nil
}

func (o *Orchestrator) simulationRequest(ctx context.Context, g games.Game) (simulation.Request, error) {
	index, err := o.teamIndex(ctx)
	if err != nil {
		return simulation.Request{}, err
	}
	home, ok := index[g.HomeTeamID]
	if !ok {
		return simulation.Request{}, fmt.Errorf("home team %s not found", g.HomeTeamID)
	}
	away, ok := index[g.AwayTeamID]
	if !ok {
		return simulation.Request{}, fmt.Errorf("away team %s not found", g.AwayTeamID)
	}
	homePlayers, err := o.store.Players(ctx, home.ID)
	if err != nil {
		return simulation.Request{}, fmt.Errorf("loading %s roster: %w", home.ID, err)
	}
	awayPlayers, err := o.store.Players(ctx, away.ID)
	if err != nil {
		return simulation.Request{}, fmt.Errorf("loading %s roster: %w", away.ID, err)
	}
	return simulation.Request{
		GameID:      g.ID,
		GameType:    g.Type,
		Home:        home,
		Away:        away,
		HomePlayers: homePlayers,
		AwayPlayers: awayPlayers,
	}, nil
}

// completeBroadcast finishes the game once its last event plus the buffer has
// aired. done is false when the tick should stop with the returned action.
func (o *Orchestrator) completeBroadcast(ctx context.Context, season seasons.Season, g games.Game) (bool, Action, error) {
	lastOffset, _, err := o.store.LastEventOffset(ctx, g.ID)
	if err != nil {
		return false, Action{}, fmt.Errorf("loading events for game %s: %w", g.ID, err)
	}
	required := lastOffset + o.cfg.BroadcastBuffer
	now := o.now()
	if g.BroadcastStartedAt != nil && now.Sub(*g.BroadcastStartedAt) < required {
		a := withSeason(idle(ReasonBroadcasting, "game "+g.ID+" is on air"), season)
		a.GameID = g.ID
		return false, a, nil
	}

	ok, err := o.store.TransitionGame(ctx, g.ID, games.Transition{From: games.StatusBroadcasting, To: games.StatusCompleted, CompletedAt: &now})
	if err != nil {
		return false, Action{}, fmt.Errorf("completing game %s: %w", g.ID, err)
	}
	if !ok {
		return false, withSeason(idle(ReasonLostRace, "game "+g.ID+" already completed"), season), nil
	}
	g.Status = games.StatusCompleted
	g.CompletedAt = &now
	o.afterCompletion(ctx, season, g)
	return true, Action{}, nil
}

// afterCompletion runs the bookkeeping that follows a final whistle. Each step
// is independent and only logged on failure.
func (o *Orchestrator) afterCompletion(ctx context.Context, season seasons.Season, g games.Game) {
	logger := logging.FromContext(ctx, o.logger)
	// Standings are regular-season only; playoff results move the bracket instead.
	if g.Type.IsPlayoff() {
		if err := o.recordPlayoffResult(ctx, season.ID, g); err != nil {
			logging.Error(logger, "bracket update failed", err, logging.FieldGameID, g.ID)
		}
	} else if err := o.recordStandings(ctx, season.ID, g); err != nil {
		logging.Error(logger, "standings update failed", err, logging.FieldGameID, g.ID)
	}
	if _, err := o.scorer.ScoreGame(ctx, g); err != nil {
		logging.Error(logger, "prediction scoring failed", err, logging.FieldGameID, g.ID)
	}
	o.reproject(ctx, season.ID)
}

func (o *Orchestrator) recordStandings(ctx context.Context, seasonID string, g games.Game) error {
	index, err := o.teamIndex(ctx)
	if err != nil {
		return err
	}
	rows, err := o.store.Standings(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("loading standings: %w", err)
	}
	byTeam := standings.Index(rows)
	home, ok := byTeam[g.HomeTeamID]
	if !ok {
		home = domainstandings.New(seasonID, g.HomeTeamID)
	}
	away, ok := byTeam[g.AwayTeamID]
	if !ok {
		away = domainstandings.New(seasonID, g.AwayTeamID)
	}
	home, away, err = standings.ApplyGame(home, away, g, index[g.HomeTeamID], index[g.AwayTeamID])
	if err != nil {
		return err
	}
	return o.store.SaveStandings(ctx, []domainstandings.Standing{home, away})
}

func (o *Orchestrator) recordPlayoffResult(ctx context.Context, seasonID string, g games.Game) error {
	b, err := o.store.Bracket(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("loading bracket: %w", err)
	}
	next, err := playoff.Advance(b, resultOf(g))
	if err != nil {
		return err
	}
	return o.store.SaveBracket(ctx, seasonID, next)
}

func resultOf(g games.Game) playoff.Result {
	return playoff.Result{
		GameID:     g.ID,
		Kind:       g.Type,
		HomeTeamID: g.HomeTeamID,
		AwayTeamID: g.AwayTeamID,
		HomeScore:  g.HomeScore,
		AwayScore:  g.AwayScore,
	}
}

func (o *Orchestrator) reproject(ctx context.Context, seasonID string) {
	if o.projector == nil {
		return
	}
	if _, err := o.projector.Project(ctx, seasonID); err != nil {
		logging.Error(logging.FromContext(ctx, o.logger), "projection failed", err, logging.FieldSeasonID, seasonID)
	}
}

func (o *Orchestrator) pickFeatured(ctx context.Context, season seasons.Season, week []games.Game) (games.Game, bool, error) {
	index, err := o.teamIndex(ctx)
	if err != nil {
		return games.Game{}, false, err
	}
	rows, err := o.store.Standings(ctx, season.ID)
	if err != nil {
		return games.Game{}, false, fmt.Errorf("loading standings: %w", err)
	}
	g, ok := PickFeatured(week, index, standings.Index(rows))
	return g, ok, nil
}

// featureWeek flags the best scheduled game of the season's current week
// unless one is already flagged.
func (o *Orchestrator) featureWeek(ctx context.Context, season seasons.Season) {
	logger := logging.FromContext(ctx, o.logger)
	week, err := o.weekGames(ctx, season)
	if err != nil {
		logging.Error(logger, "featuring week failed", err, logging.FieldSeasonID, season.ID)
		return
	}
	if _, ok := featuredScheduled(week); ok {
		return
	}
	pick, ok, err := o.pickFeatured(ctx, season, week)
	if err != nil || !ok {
		if err != nil {
			logging.Error(logger, "featuring week failed", err, logging.FieldSeasonID, season.ID)
		}
		return
	}
	if _, err := o.store.SetFeatured(ctx, pick.ID); err != nil {
		logging.Error(logger, "featuring week failed", err, logging.FieldGameID, pick.ID)
	}
}

func (o *Orchestrator) teamIndex(ctx context.Context) (map[string]teams.Team, error) {
	list, err := o.store.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	index := make(map[string]teams.Team, len(list))
	for _, t := range list {
		index[t.ID] = t
	}
	return index, nil
}
