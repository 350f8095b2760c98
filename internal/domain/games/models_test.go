package games

import (
	"testing"
	"time"
)

func TestGameStatusValues(t *testing.T) {
	expected := map[GameStatus]string{
		StatusScheduled:    "scheduled",
		StatusSimulating:   "simulating",
		StatusBroadcasting: "broadcasting",
		StatusCompleted:    "completed",
	}

	for status, want := range expected {
		if string(status) != want {
			t.Fatalf("expected %q got %q", want, status)
		}
	}
	if !StatusSimulating.IsActive() || !StatusBroadcasting.IsActive() {
		t.Fatalf("expected simulating and broadcasting to be active")
	}
	if StatusScheduled.IsActive() || StatusCompleted.IsActive() {
		t.Fatalf("expected scheduled and completed to be inactive")
	}
}

func TestGameTypeIsPlayoff(t *testing.T) {
	if TypeRegular.IsPlayoff() {
		t.Fatalf("regular season is not a playoff round")
	}
	for _, gt := range []GameType{TypeWildCard, TypeDivisional, TypeConferenceChampionship, TypeSuperBowl} {
		if !gt.IsPlayoff() {
			t.Fatalf("expected %s to be a playoff round", gt)
		}
	}
}

func TestWinner(t *testing.T) {
	g := Game{HomeTeamID: "h", AwayTeamID: "a", HomeScore: 21, AwayScore: 17}
	if w, ok := g.Winner(); !ok || w != "h" {
		t.Fatalf("expected home winner, got %q %v", w, ok)
	}
	g.AwayScore = 24
	if w, ok := g.Winner(); !ok || w != "a" {
		t.Fatalf("expected away winner, got %q %v", w, ok)
	}
	g.HomeScore = 24
	if _, ok := g.Winner(); ok {
		t.Fatalf("expected tie to report no winner")
	}
}

func TestTransitionApply(t *testing.T) {
	start := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	home, away := 27, 10
	mvp := "QB1"
	g := Game{Status: StatusSimulating}

	Transition{
		From:               StatusSimulating,
		To:                 StatusBroadcasting,
		HomeScore:          &home,
		AwayScore:          &away,
		MVP:                &mvp,
		BroadcastStartedAt: &start,
	}.Apply(&g)

	if g.Status != StatusBroadcasting || g.HomeScore != 27 || g.AwayScore != 10 || g.MVP != "QB1" {
		t.Fatalf("unexpected game after transition: %+v", g)
	}
	if g.BroadcastStartedAt == nil || !g.BroadcastStartedAt.Equal(start) {
		t.Fatalf("expected broadcast start to be set")
	}
	if _, ok := g.BroadcastDuration(); ok {
		t.Fatalf("expected no duration before completion")
	}
	end := start.Add(12 * time.Minute)
	Transition{From: StatusBroadcasting, To: StatusCompleted, CompletedAt: &end}.Apply(&g)
	if d, ok := g.BroadcastDuration(); !ok || d != 12*time.Minute {
		t.Fatalf("expected 12m duration, got %s %v", d, ok)
	}
}
