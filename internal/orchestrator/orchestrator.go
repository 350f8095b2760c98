// Package orchestrator decides and performs the single next step of the
// league each time it is ticked.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/metrics"
	"github.com/preston-bernstein/gridiron-service/internal/predictions"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

// Config holds the pacing between league steps.
type Config struct {
	Offseason       time.Duration
	Intermission    time.Duration
	WeekBreak       time.Duration
	BroadcastBuffer time.Duration

	// SimulationTimeout bounds one engine call. A game left in simulating
	// longer than StalledSimulation is handed back to the schedule.
	SimulationTimeout time.Duration
	StalledSimulation time.Duration
}

const defaultSimulationTimeout = 2 * time.Minute

func (c Config) withDefaults() Config {
	if c.SimulationTimeout <= 0 {
		c.SimulationTimeout = defaultSimulationTimeout
	}
	if c.StalledSimulation <= c.SimulationTimeout {
		c.StalledSimulation = 2 * c.SimulationTimeout
	}
	return c
}

// Projector recomputes start times for a season's scheduled games.
type Projector interface {
	Project(ctx context.Context, seasonID string) (int, error)
}

// Orchestrator holds no league state between ticks; everything is read from
// the store on each call, so any number of ticks may run concurrently.
type Orchestrator struct {
	store     store.Store
	engine    simulation.Engine
	scorer    predictions.Scorer
	projector Projector
	logger    *slog.Logger
	metrics   *metrics.Recorder
	cfg       Config

	now     func() time.Time
	newID   func() string
	newSeed func() string
}

// New wires an orchestrator. A nil scorer scores nothing.
func New(st store.Store, engine simulation.Engine, scorer predictions.Scorer, projector Projector, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Orchestrator {
	if scorer == nil {
		scorer = predictions.Noop{}
	}
	return &Orchestrator{
		store:     st,
		engine:    engine,
		scorer:    scorer,
		projector: projector,
		logger:    logger,
		metrics:   recorder,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		newID:     uuid.NewString,
		newSeed:   uuid.NewString,
	}
}

// Tick computes and performs exactly one action. Errors are returned only for
// unexpected failures; lost races and downstream failures come back as idle.
func (o *Orchestrator) Tick(ctx context.Context) (Action, error) {
	start := time.Now()
	action, err := o.tick(ctx)
	o.metrics.RecordTick(string(action.Kind), time.Since(start), err)

	logger := logging.FromContext(ctx, o.logger)
	if err != nil {
		logging.Error(logger, "tick failed", err, logging.FieldDurationMS, time.Since(start).Milliseconds())
		return Action{}, err
	}
	args := logging.ActionArgs(string(action.Kind), action.SeasonID, action.GameID, action.Reason)
	logging.Info(logger, "tick", append(args, logging.FieldDurationMS, time.Since(start).Milliseconds())...)
	return action, nil
}

func (o *Orchestrator) tick(ctx context.Context) (Action, error) {
	season, err := o.store.CurrentSeason(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return o.createSeason(ctx, nil)
	}
	if err != nil {
		return Action{}, fmt.Errorf("loading current season: %w", err)
	}

	if season.Status == seasons.StatusOffseason {
		if season.CompletedAt == nil || o.now().Sub(*season.CompletedAt) >= o.cfg.Offseason {
			return o.createSeason(ctx, &season)
		}
		return withSeason(idle(ReasonOffseason, "waiting for the next season"), season), nil
	}

	week, err := o.weekGames(ctx, season)
	if err != nil {
		return Action{}, err
	}

	var completedID string
	if active, ok := activeGame(week); ok {
		if active.Status == games.StatusSimulating {
			if o.stalled(active) {
				return o.releaseStalled(ctx, season, active)
			}
			return withSeason(idle(ReasonSimulating, "game "+active.ID+" is being simulated"), season), nil
		}
		done, action, err := o.completeBroadcast(ctx, season, active)
		if err != nil || !done {
			return action, err
		}
		completedID = active.ID
		if week, err = o.weekGames(ctx, season); err != nil {
			return Action{}, err
		}
	}

	action, err := o.nextStep(ctx, season, week)
	if completedID != "" {
		action.CompletedGameID = completedID
	}
	return action, err
}

// nextStep covers everything after the active broadcast has been dealt with.
func (o *Orchestrator) nextStep(ctx context.Context, season seasons.Season, week []games.Game) (Action, error) {
	now := o.now()
	scheduled, completed := split(week)

	if len(scheduled) > 0 {
		if last, ok := lastCompletion(completed); ok && now.Sub(last) < o.cfg.Intermission {
			return withSeason(idle(ReasonIntermission, "intermission between games"), season), nil
		}

		// Re-read so a featured flag claimed by a concurrent tick is seen.
		fresh, err := o.weekGames(ctx, season)
		if err != nil {
			return Action{}, err
		}
		if featured, ok := featuredScheduled(fresh); ok {
			return o.startGame(ctx, season, featured)
		}
		if _, ok := activeGame(fresh); ok {
			return withSeason(idle(ReasonLostRace, "another tick started a game"), season), nil
		}
		pick, ok, err := o.pickFeatured(ctx, season, fresh)
		if err != nil {
			return Action{}, err
		}
		if !ok {
			return withSeason(idle(ReasonNoGames, "no scheduled games"), season), nil
		}
		// Only the week's first pick carries the flag; the rest air in appeal order.
		if weekFeatured(fresh) {
			return o.startGame(ctx, season, pick)
		}
		claimed, err := o.store.SetFeatured(ctx, pick.ID)
		if err != nil {
			return Action{}, fmt.Errorf("featuring game %s: %w", pick.ID, err)
		}
		if !claimed {
			return withSeason(idle(ReasonLostRace, "featured game claimed by another tick"), season), nil
		}
		pick.IsFeatured = true
		return o.startGame(ctx, season, pick)
	}

	if len(week) == 0 {
		return o.repairWeek(ctx, season)
	}
	if len(completed) != len(week) {
		return withSeason(idle(ReasonNoGames, "waiting for games to be scheduled"), season), nil
	}

	if season.Status == seasons.StatusSuperBowl {
		return o.completeSeason(ctx, season, week)
	}
	if last, ok := lastCompletion(completed); ok && now.Sub(last) < o.cfg.WeekBreak {
		return withSeason(idle(ReasonWeekBreak, "break between weeks"), season), nil
	}
	return o.advanceWeek(ctx, season, week)
}

func (o *Orchestrator) weekGames(ctx context.Context, season seasons.Season) ([]games.Game, error) {
	list, err := o.store.WeekGames(ctx, season.ID, season.CurrentWeek)
	if err != nil {
		return nil, fmt.Errorf("loading week %d games: %w", season.CurrentWeek, err)
	}
	return list, nil
}

func withSeason(a Action, season seasons.Season) Action {
	a.SeasonID = season.ID
	a.Week = season.CurrentWeek
	return a
}

func activeGame(list []games.Game) (games.Game, bool) {
	for _, g := range list {
		if g.Status.IsActive() {
			return g, true
		}
	}
	return games.Game{}, false
}

func featuredScheduled(list []games.Game) (games.Game, bool) {
	for _, g := range list {
		if g.Status == games.StatusScheduled && g.IsFeatured {
			return g, true
		}
	}
	return games.Game{}, false
}

func weekFeatured(list []games.Game) bool {
	for _, g := range list {
		if g.IsFeatured {
			return true
		}
	}
	return false
}

func split(list []games.Game) (scheduled, completed []games.Game) {
	for _, g := range list {
		switch g.Status {
		case games.StatusScheduled:
			scheduled = append(scheduled, g)
		case games.StatusCompleted:
			completed = append(completed, g)
		}
	}
	return scheduled, completed
}

func lastCompletion(list []games.Game) (time.Time, bool) {
	var last time.Time
	for _, g := range list {
		if g.CompletedAt != nil && g.CompletedAt.After(last) {
			last = *g.CompletedAt
		}
	}
	return last, !last.IsZero()
}

func gameID(seasonID string, week int, away, home string) string {
	return fmt.Sprintf("%s-w%02d-%s-%s", seasonID, week, away, home)
}
