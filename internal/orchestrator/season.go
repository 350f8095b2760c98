package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/schedule"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

// createSeason opens the season after prev, or the first season when prev is nil.
func (o *Orchestrator) createSeason(ctx context.Context, prev *seasons.Season) (Action, error) {
	list, err := o.store.Teams(ctx)
	if err != nil {
		return Action{}, fmt.Errorf("loading teams: %w", err)
	}
	seed := o.newSeed()
	sched, err := schedule.Generate(list, seed)
	if err != nil {
		return Action{}, fmt.Errorf("generating schedule: %w", err)
	}

	number := 1
	if prev != nil {
		number = prev.Number + 1
	}
	season := seasons.Season{
		ID:          o.newID(),
		Number:      number,
		CurrentWeek: 1,
		TotalWeeks:  seasons.TotalWeeks,
		Status:      seasons.StatusRegularSeason,
		Seed:        seed,
		CreatedAt:   o.now(),
	}
	if err := o.store.CreateSeason(ctx, season); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return idle(ReasonLostRace, fmt.Sprintf("season %d already created", number)), nil
		}
		return Action{}, fmt.Errorf("creating season %d: %w", number, err)
	}

	rows := make([]domainstandings.Standing, 0, len(list))
	for _, t := range list {
		rows = append(rows, domainstandings.New(season.ID, t.ID))
	}
	if err := o.store.SaveStandings(ctx, rows); err != nil {
		return Action{}, fmt.Errorf("initializing standings: %w", err)
	}
	if _, err := o.insertSchedule(ctx, season, sched); err != nil {
		return Action{}, err
	}
	o.reproject(ctx, season.ID)
	o.featureWeek(ctx, season)

	logging.Info(logging.FromContext(ctx, o.logger), "season created",
		logging.FieldSeasonID, season.ID,
		"season_number", season.Number,
		"seed", seed,
		logging.FieldCount, sched.GameCount(),
	)
	a := withSeason(Action{Kind: KindCreateSeason}, season)
	a.Message = fmt.Sprintf("season %d created with %d games", number, sched.GameCount())
	return a, nil
}

func (o *Orchestrator) insertSchedule(ctx context.Context, season seasons.Season, sched *schedule.Schedule) (int, error) {
	list := make([]games.Game, 0, sched.GameCount())
	for i, week := range sched.Weeks {
		for _, m := range week {
			list = append(list, games.Game{
				ID:         gameID(season.ID, i+1, m.Away, m.Home),
				SeasonID:   season.ID,
				Week:       i + 1,
				Type:       games.TypeRegular,
				HomeTeamID: m.Home,
				AwayTeamID: m.Away,
				Status:     games.StatusScheduled,
			})
		}
	}
	n, err := o.store.InsertGames(ctx, list)
	if err != nil {
		return 0, fmt.Errorf("inserting schedule: %w", err)
	}
	return n, nil
}

// completeSeason crowns the title game winner and moves the season to the offseason.
func (o *Orchestrator) completeSeason(ctx context.Context, season seasons.Season, week []games.Game) (Action, error) {
	champion, err := o.champion(ctx, season, week)
	if err != nil {
		return Action{}, err
	}
	ok, err := o.store.CompleteSeason(ctx, season.ID, season.Position(), champion, o.now())
	if err != nil {
		return Action{}, fmt.Errorf("completing season %s: %w", season.ID, err)
	}
	if !ok {
		return withSeason(idle(ReasonLostRace, "season already completed"), season), nil
	}
	a := withSeason(Action{Kind: KindSeasonComplete}, season)
	a.Message = fmt.Sprintf("season %d champion: %s", season.Number, champion)
	return a, nil
}

func (o *Orchestrator) champion(ctx context.Context, season seasons.Season, week []games.Game) (string, error) {
	b, err := o.syncBracket(ctx, season, week)
	if err == nil {
		if id, ok := b.Champion(); ok {
			return id, nil
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	for _, g := range week {
		if g.Type == games.TypeSuperBowl {
			if id, ok := g.Winner(); ok {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("season %s: no title game winner", season.ID)
}
