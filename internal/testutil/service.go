package testutil

import (
	"context"
	"testing"

	"github.com/preston-bernstein/gridiron-service/internal/app/games"
	domaingames "github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

// NewServiceWithGames builds a games service over a memory store holding one
// season and the provided games.
func NewServiceWithGames(t testing.TB, season seasons.Season, list []domaingames.Game) *games.Service {
	t.Helper()
	ms := store.NewMemoryStore()
	ctx := context.Background()
	if err := ms.CreateSeason(ctx, season); err != nil {
		t.Fatalf("creating season: %v", err)
	}
	if len(list) > 0 {
		if _, err := ms.InsertGames(ctx, list); err != nil {
			t.Fatalf("inserting games: %v", err)
		}
	}
	return games.NewService(ms)
}
