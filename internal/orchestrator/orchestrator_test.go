package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/gridiron-service/internal/broadcast"
	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/league"
	"github.com/preston-bernstein/gridiron-service/internal/metrics"
	"github.com/preston-bernstein/gridiron-service/internal/playoff"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
	"github.com/preston-bernstein/gridiron-service/internal/simulation/fixture"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

var testTiming = Config{
	Offseason:       6 * time.Hour,
	Intermission:    3 * time.Minute,
	WeekBreak:       30 * time.Minute,
	BroadcastBuffer: time.Minute,
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// writeCounter counts every mutating store call.
type writeCounter struct {
	store.Store
	writes atomic.Int32
}

func (w *writeCounter) bump() { w.writes.Add(1) }

func (w *writeCounter) CreateSeason(ctx context.Context, s seasons.Season) error {
	w.bump()
	return w.Store.CreateSeason(ctx, s)
}

func (w *writeCounter) AdvanceSeason(ctx context.Context, id string, from, to seasons.Position) (bool, error) {
	w.bump()
	return w.Store.AdvanceSeason(ctx, id, from, to)
}

func (w *writeCounter) CompleteSeason(ctx context.Context, id string, from seasons.Position, champion string, at time.Time) (bool, error) {
	w.bump()
	return w.Store.CompleteSeason(ctx, id, from, champion, at)
}

func (w *writeCounter) SaveBracket(ctx context.Context, id string, b playoff.Bracket) error {
	w.bump()
	return w.Store.SaveBracket(ctx, id, b)
}

func (w *writeCounter) InsertGames(ctx context.Context, list []games.Game) (int, error) {
	w.bump()
	return w.Store.InsertGames(ctx, list)
}

func (w *writeCounter) TransitionGame(ctx context.Context, id string, t games.Transition) (bool, error) {
	w.bump()
	return w.Store.TransitionGame(ctx, id, t)
}

func (w *writeCounter) SetFeatured(ctx context.Context, id string) (bool, error) {
	w.bump()
	return w.Store.SetFeatured(ctx, id)
}

func (w *writeCounter) UpdateScheduledTimes(ctx context.Context, times map[string]time.Time) (int, error) {
	w.bump()
	return w.Store.UpdateScheduledTimes(ctx, times)
}

func (w *writeCounter) SaveGameEvents(ctx context.Context, id string, events []games.Event) error {
	w.bump()
	return w.Store.SaveGameEvents(ctx, id, events)
}

func (w *writeCounter) SaveStandings(ctx context.Context, rows []domainstandings.Standing) error {
	w.bump()
	return w.Store.SaveStandings(ctx, rows)
}

type failingEngine struct{}

func (failingEngine) Simulate(context.Context, simulation.Request) (simulation.Result, error) {
	return simulation.Result{}, errors.New("engine down")
}

type harness struct {
	orch     *Orchestrator
	store    *store.MemoryStore
	clock    *clock
	recorder *metrics.Recorder
}

func newHarness(t *testing.T, engine simulation.Engine) *harness {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemoryStore()
	list := league.Default().Teams()
	require.NoError(t, mem.UpsertTeams(ctx, list))
	var roster []players.Player
	for _, team := range list {
		roster = append(roster, league.Roster(team)...)
	}
	require.NoError(t, mem.UpsertPlayers(ctx, roster))

	clk := &clock{now: time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)}
	projector := broadcast.NewProjector(mem, broadcast.Config{
		DefaultDuration: 15 * time.Minute,
		MaxDuration:     2 * time.Hour,
		Intermission:    testTiming.Intermission,
		WeekBreak:       testTiming.WeekBreak,
	}, clk.Now, nil)
	recorder := metrics.NewRecorder()
	o := New(mem, engine, nil, projector, nil, recorder, testTiming)
	o.now = clk.Now
	o.newSeed = func() string { return "abc" }
	ids := 0
	o.newID = func() string {
		ids++
		return "season-" + string(rune('0'+ids))
	}
	return &harness{orch: o, store: mem, clock: clk, recorder: recorder}
}

func (h *harness) tick(t *testing.T) Action {
	t.Helper()
	a, err := h.orch.Tick(context.Background())
	require.NoError(t, err)
	return a
}

func (h *harness) season(t *testing.T) seasons.Season {
	t.Helper()
	s, err := h.store.CurrentSeason(context.Background())
	require.NoError(t, err)
	return s
}

func TestTickCreatesFirstSeason(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()

	a := h.tick(t)
	assert.Equal(t, KindCreateSeason, a.Kind)
	assert.Equal(t, "season-1", a.SeasonID)

	s := h.season(t)
	assert.Equal(t, 1, s.Number)
	assert.Equal(t, "abc", s.Seed)
	assert.Equal(t, seasons.StatusRegularSeason, s.Status)
	assert.Equal(t, 1, s.CurrentWeek)
	assert.Equal(t, seasons.TotalWeeks, s.TotalWeeks)

	all, err := h.store.SeasonGames(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, all, 272)
	weeks := make(map[int]bool)
	for _, g := range all {
		weeks[g.Week] = true
		assert.NotNil(t, g.ScheduledAt, "game %s projected", g.ID)
	}
	assert.Len(t, weeks, 18)

	week1, err := h.store.WeekGames(ctx, s.ID, 1)
	require.NoError(t, err)
	require.NotEmpty(t, week1)
	featured := 0
	for _, g := range week1 {
		if g.IsFeatured {
			featured++
		}
	}
	assert.Equal(t, 1, featured)

	rows, err := h.store.Standings(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, rows, league.TeamCount)
	assert.Equal(t, 1, h.recorder.TickActions(string(KindCreateSeason)))
}

func TestTickStartsFeaturedGame(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)

	a := h.tick(t)
	require.Equal(t, KindStartGame, a.Kind)
	g, err := h.store.Game(ctx, a.GameID)
	require.NoError(t, err)
	assert.True(t, g.IsFeatured)
	assert.Equal(t, games.StatusBroadcasting, g.Status)
	assert.NotNil(t, g.BroadcastStartedAt)
	assert.NotEmpty(t, g.MVP)

	events, err := h.store.GameEvents(ctx, g.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestTickIdleBelowRequiredDurationMakesNoWrites(t *testing.T) {
	h := newHarness(t, fixture.New())
	h.tick(t)
	started := h.tick(t)
	require.Equal(t, KindStartGame, started.Kind)

	counter := &writeCounter{Store: h.store}
	h.orch.store = counter
	h.clock.Advance(time.Minute)

	a := h.tick(t)
	assert.Equal(t, KindIdle, a.Kind)
	assert.Equal(t, ReasonBroadcasting, a.Reason)
	assert.Equal(t, started.GameID, a.GameID)
	assert.Zero(t, counter.writes.Load())
}

func TestTickCompletesBroadcastAndUpdatesStandings(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	started := h.tick(t)
	h.clock.Advance(time.Hour)

	a := h.tick(t)
	assert.Equal(t, KindIdle, a.Kind)
	assert.Equal(t, ReasonIntermission, a.Reason)
	assert.Equal(t, started.GameID, a.CompletedGameID)

	g, err := h.store.Game(ctx, started.GameID)
	require.NoError(t, err)
	assert.Equal(t, games.StatusCompleted, g.Status)
	rows, err := h.store.Standings(ctx, g.SeasonID)
	require.NoError(t, err)
	played := 0
	for _, r := range rows {
		played += r.GamesPlayed()
	}
	assert.Equal(t, 2, played)

	h.clock.Advance(testTiming.Intermission)
	next := h.tick(t)
	assert.Equal(t, KindStartGame, next.Kind)
	assert.NotEqual(t, started.GameID, next.GameID)
}

func TestConcurrentTicksCompleteBroadcastOnce(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	started := h.tick(t)
	h.clock.Advance(time.Hour)

	const workers = 8
	actions := make([]Action, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := h.orch.Tick(ctx)
			assert.NoError(t, err)
			actions[i] = a
		}(i)
	}
	wg.Wait()

	completions := 0
	for _, a := range actions {
		assert.Equal(t, KindIdle, a.Kind)
		if a.CompletedGameID == started.GameID {
			completions++
		}
	}
	assert.Equal(t, 1, completions)

	rows, err := h.store.Standings(ctx, h.season(t).ID)
	require.NoError(t, err)
	played := 0
	for _, r := range rows {
		played += r.GamesPlayed()
	}
	assert.Equal(t, 2, played)
}

func TestTickEngineFailureReleasesGame(t *testing.T) {
	h := newHarness(t, failingEngine{})
	ctx := context.Background()
	h.tick(t)

	a := h.tick(t)
	assert.Equal(t, KindIdle, a.Kind)
	assert.Equal(t, ReasonSimulationFailed, a.Reason)
	g, err := h.store.Game(ctx, a.GameID)
	require.NoError(t, err)
	assert.Equal(t, games.StatusScheduled, g.Status)
	assert.True(t, g.IsFeatured)
}

// cancelAwareStore fails writes and roster reads once the caller's context is done.
type cancelAwareStore struct {
	store.Store
}

func (c cancelAwareStore) Players(ctx context.Context, teamID string) ([]players.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Store.Players(ctx, teamID)
}

func (c cancelAwareStore) TransitionGame(ctx context.Context, id string, t games.Transition) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return c.Store.TransitionGame(ctx, id, t)
}

func (c cancelAwareStore) SaveGameEvents(ctx context.Context, id string, events []games.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Store.SaveGameEvents(ctx, id, events)
}

// hangingEngine blocks until its context ends.
type hangingEngine struct {
	err chan error
}

func (e hangingEngine) Simulate(ctx context.Context, _ simulation.Request) (simulation.Result, error) {
	<-ctx.Done()
	e.err <- ctx.Err()
	return simulation.Result{}, ctx.Err()
}

func TestTickCancelledMidSimulationReleasesGame(t *testing.T) {
	engine := hangingEngine{err: make(chan error, 1)}
	h := newHarness(t, engine)
	h.tick(t)
	h.orch.store = cancelAwareStore{Store: h.store}
	h.orch.cfg.SimulationTimeout = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	a, err := h.orch.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindIdle, a.Kind)
	assert.Equal(t, ReasonSimulationFailed, a.Reason)
	assert.ErrorIs(t, <-engine.err, context.DeadlineExceeded)
	require.Error(t, ctx.Err())

	g, err := h.store.Game(context.Background(), a.GameID)
	require.NoError(t, err)
	assert.Equal(t, games.StatusScheduled, g.Status)
}

func TestTickReleasesStalledSimulation(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	s := h.season(t)
	week, err := h.store.WeekGames(ctx, s.ID, s.CurrentWeek)
	require.NoError(t, err)
	g, ok := featuredScheduled(week)
	require.True(t, ok)

	claimedAt := h.clock.Now()
	ok, err = h.store.TransitionGame(ctx, g.ID, games.Transition{
		From: games.StatusScheduled, To: games.StatusSimulating, SimulationStartedAt: &claimedAt,
	})
	require.NoError(t, err)
	require.True(t, ok)

	h.clock.Advance(h.orch.cfg.StalledSimulation)
	a := h.tick(t)
	assert.Equal(t, ReasonSimulating, a.Reason)

	h.clock.Advance(time.Second)
	a = h.tick(t)
	assert.Equal(t, ReasonSimulationStall, a.Reason)
	assert.Equal(t, g.ID, a.GameID)
	released, err := h.store.Game(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, games.StatusScheduled, released.Status)

	a = h.tick(t)
	assert.Equal(t, KindStartGame, a.Kind)
	assert.Equal(t, g.ID, a.GameID)
}

func TestWeekKeepsSingleFeaturedGame(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	s := h.season(t)

	var started []string
	for i := 0; i < 200; i++ {
		a := h.tick(t)
		if a.Kind == KindAdvanceWeek {
			break
		}
		if a.Kind == KindStartGame {
			started = append(started, a.GameID)
		}
		h.clock.Advance(time.Hour)
	}

	week, err := h.store.WeekGames(ctx, s.ID, 1)
	require.NoError(t, err)
	require.Len(t, started, len(week))
	featured := 0
	for _, g := range week {
		assert.Equal(t, games.StatusCompleted, g.Status, "game %s", g.ID)
		if g.IsFeatured {
			featured++
			assert.Equal(t, started[0], g.ID)
		}
	}
	assert.Equal(t, 1, featured)
}

func TestPlayoffCompletionLeavesStandingsAlone(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	s := h.season(t)
	list := league.Default().Teams()
	done := h.clock.Now()
	played := func() int {
		rows, err := h.store.Standings(ctx, s.ID)
		require.NoError(t, err)
		total := 0
		for _, r := range rows {
			total += r.GamesPlayed()
		}
		return total
	}

	g := games.Game{
		ID: "wc", SeasonID: s.ID, Week: 19, Type: games.TypeWildCard,
		HomeTeamID: list[0].ID, AwayTeamID: list[1].ID, HomeScore: 24, AwayScore: 10,
		Status: games.StatusCompleted, CompletedAt: &done,
	}
	h.orch.afterCompletion(ctx, s, g)
	assert.Zero(t, played())

	g.ID, g.Week, g.Type = "reg", 1, games.TypeRegular
	h.orch.afterCompletion(ctx, s, g)
	assert.Equal(t, 2, played())
}

// completeWeek marks every game of the season's current week as played.
func completeWeek(t *testing.T, h *harness, s seasons.Season) {
	t.Helper()
	ctx := context.Background()
	week, err := h.store.WeekGames(ctx, s.ID, s.CurrentWeek)
	require.NoError(t, err)
	done := h.clock.Now().Add(-time.Hour)
	for i, g := range week {
		home, away := 20+i%3, 17
		ok, err := h.store.TransitionGame(ctx, g.ID, games.Transition{
			From: games.StatusScheduled, To: games.StatusCompleted,
			HomeScore: &home, AwayScore: &away, CompletedAt: &done,
		})
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestAdvancingPastWeek18StartsWildCard(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	s := h.season(t)

	for s.CurrentWeek < seasons.RegularSeasonWeeks {
		ok, err := h.store.AdvanceSeason(ctx, s.ID, s.Position(), s.NextPosition())
		require.NoError(t, err)
		require.True(t, ok)
		s = h.season(t)
	}
	completeWeek(t, h, s)

	a := h.tick(t)
	require.Equal(t, KindAdvanceWeek, a.Kind)
	s = h.season(t)
	assert.Equal(t, seasons.StatusWildCard, s.Status)
	assert.Equal(t, 19, s.CurrentWeek)

	wc, err := h.store.WeekGames(ctx, s.ID, 19)
	require.NoError(t, err)
	assert.Len(t, wc, 6)
	perConference := make(map[teams.Conference]int)
	index, err := h.orch.teamIndex(ctx)
	require.NoError(t, err)
	for _, g := range wc {
		assert.Equal(t, games.TypeWildCard, g.Type)
		perConference[index[g.HomeTeamID].Conference]++
	}
	assert.Equal(t, 3, perConference[teams.ConferenceA])
	assert.Equal(t, 3, perConference[teams.ConferenceB])

	rows, err := h.store.Standings(ctx, s.ID)
	require.NoError(t, err)
	seeded := 0
	for _, r := range rows {
		if r.PlayoffSeed > 0 {
			seeded++
		} else {
			assert.Equal(t, domainstandings.ClinchEliminated, r.Clinched)
		}
	}
	assert.Equal(t, 14, seeded)
}

func TestTickRepairsEmptyPlayoffWeek(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	s := h.season(t)
	_, err := h.orch.seedPlayoffs(ctx, s)
	require.NoError(t, err)
	for s.Status == seasons.StatusRegularSeason {
		ok, err := h.store.AdvanceSeason(ctx, s.ID, s.Position(), s.NextPosition())
		require.NoError(t, err)
		require.True(t, ok)
		s = h.season(t)
	}

	a := h.tick(t)
	assert.Equal(t, KindIdle, a.Kind)
	assert.Equal(t, ReasonWeekRepaired, a.Reason)
	wc, err := h.store.WeekGames(ctx, s.ID, s.CurrentWeek)
	require.NoError(t, err)
	assert.Len(t, wc, 6)

	again := h.tick(t)
	assert.Equal(t, KindStartGame, again.Kind)
}

func TestTickOffseasonWaitsThenCreatesNextSeason(t *testing.T) {
	h := newHarness(t, fixture.New())
	ctx := context.Background()
	h.tick(t)
	s := h.season(t)
	ok, err := h.store.CompleteSeason(ctx, s.ID, s.Position(), "champ", h.clock.Now())
	require.NoError(t, err)
	require.True(t, ok)

	a := h.tick(t)
	assert.Equal(t, KindIdle, a.Kind)
	assert.Equal(t, ReasonOffseason, a.Reason)

	h.clock.Advance(testTiming.Offseason)
	a = h.tick(t)
	assert.Equal(t, KindCreateSeason, a.Kind)
	assert.Equal(t, 2, h.season(t).Number)
}

func TestFullSeasonRunsToChampion(t *testing.T) {
	if testing.Short() {
		t.Skip("plays a full season")
	}
	h := newHarness(t, fixture.New())
	ctx := context.Background()

	var last Action
	for i := 0; i < 3000; i++ {
		last = h.tick(t)
		if last.Kind == KindSeasonComplete {
			break
		}
		h.clock.Advance(time.Hour)
	}
	require.Equal(t, KindSeasonComplete, last.Kind)

	s, err := h.store.Season(ctx, last.SeasonID)
	require.NoError(t, err)
	assert.Equal(t, seasons.StatusOffseason, s.Status)
	assert.NotEmpty(t, s.ChampionTeamID)
	require.NotNil(t, s.CompletedAt)

	all, err := h.store.SeasonGames(ctx, s.ID)
	require.NoError(t, err)
	playoffGames := 0
	for _, g := range all {
		assert.Equal(t, games.StatusCompleted, g.Status, "game %s", g.ID)
		if g.Type.IsPlayoff() {
			playoffGames++
		}
	}
	assert.Equal(t, 13, playoffGames)

	b, err := h.store.Bracket(ctx, s.ID)
	require.NoError(t, err)
	champ, ok := b.Champion()
	require.True(t, ok)
	assert.Equal(t, champ, s.ChampionTeamID)

	rows, err := h.store.Standings(ctx, s.ID)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, 17, r.GamesPlayed(), "team %s", r.TeamID)
	}

	featuredPerWeek := make(map[int]int)
	for _, g := range all {
		if g.IsFeatured {
			featuredPerWeek[g.Week]++
		}
	}
	for week, n := range featuredPerWeek {
		assert.LessOrEqual(t, n, 1, "week %d", week)
	}
}
