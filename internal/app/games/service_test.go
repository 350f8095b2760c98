package games

import (
	"context"
	"errors"
	"testing"
	"time"

	domaingames "github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

var base = time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	ms := store.NewMemoryStore()
	if err := ms.CreateSeason(ctx, seasons.Season{ID: "s1", Number: 1, CurrentWeek: 2, Status: seasons.StatusRegularSeason}); err != nil {
		t.Fatalf("create season: %v", err)
	}
	start := base.Add(-10 * time.Minute)
	_, _ = ms.InsertGames(ctx, []domaingames.Game{
		{ID: "w1", SeasonID: "s1", Week: 1, Status: domaingames.StatusCompleted, HomeScore: 24, AwayScore: 3, MVP: "QB"},
		{ID: "live", SeasonID: "s1", Week: 2, Status: domaingames.StatusBroadcasting, HomeScore: 31, AwayScore: 28, MVP: "RB", BroadcastStartedAt: &start},
		{ID: "next", SeasonID: "s1", Week: 2, Status: domaingames.StatusScheduled},
	})
	_ = ms.SaveGameEvents(ctx, "live", []domaingames.Event{
		{Sequence: 1, Offset: 2 * time.Minute, HomeScore: 7},
		{Sequence: 2, Offset: 8 * time.Minute, HomeScore: 7, AwayScore: 3},
		{Sequence: 3, Offset: 20 * time.Minute, HomeScore: 31, AwayScore: 28},
	})
	return ms
}

func TestServiceWeekDefaultsToCurrent(t *testing.T) {
	svc := NewService(seeded(t))
	svc.now = func() time.Time { return base }

	view, err := svc.Week(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Week != 2 || len(view.Games) != 2 {
		t.Fatalf("unexpected week view %+v", view)
	}
	for _, g := range view.Games {
		if g.ID == "live" && (g.HomeScore != 0 || g.MVP != "") {
			t.Fatalf("expected live game redacted in list, got %+v", g)
		}
	}

	view, err = svc.Week(context.Background(), 1)
	if err != nil || len(view.Games) != 1 || view.Games[0].HomeScore != 24 {
		t.Fatalf("unexpected week 1 view %+v err=%v", view, err)
	}
}

func TestServiceGameByIDShowsOnlyAiredEvents(t *testing.T) {
	svc := NewService(seeded(t))
	svc.now = func() time.Time { return base }

	view, err := svc.GameByID(context.Background(), "live")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Events) != 2 {
		t.Fatalf("expected 2 aired events, got %d", len(view.Events))
	}
	if view.HomeScore != 7 || view.AwayScore != 3 || view.MVP != "" {
		t.Fatalf("expected score from last aired event, got %d-%d mvp=%q", view.HomeScore, view.AwayScore, view.MVP)
	}
}

func TestServiceGameByIDCompletedAndScheduled(t *testing.T) {
	svc := NewService(seeded(t))

	done, err := svc.GameByID(context.Background(), "w1")
	if err != nil || done.HomeScore != 24 || done.MVP != "QB" {
		t.Fatalf("unexpected completed view %+v err=%v", done, err)
	}
	next, err := svc.GameByID(context.Background(), "next")
	if err != nil || next.Events == nil || len(next.Events) != 0 {
		t.Fatalf("unexpected scheduled view %+v err=%v", next, err)
	}
	if _, err := svc.GameByID(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceWeekWithoutSeason(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	if _, err := svc.Week(context.Background(), 0); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
