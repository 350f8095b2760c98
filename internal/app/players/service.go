package players

import (
	"context"
	"fmt"

	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
)

// Store defines the roster persistence the service uses.
type Store interface {
	Players(ctx context.Context, teamID string) ([]players.Player, error)
	UpsertPlayers(ctx context.Context, list []players.Player) error
}

// Service coordinates roster operations using a Store.
type Service struct {
	store Store
}

// NewService constructs a Service with the provided Store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Roster returns a team's players.
func (s *Service) Roster(ctx context.Context, teamID string) ([]players.Player, error) {
	return s.store.Players(ctx, teamID)
}

// ReplacePlayers writes rosters for any number of teams.
func (s *Service) ReplacePlayers(ctx context.Context, list []players.Player) error {
	if err := s.store.UpsertPlayers(ctx, list); err != nil {
		return fmt.Errorf("saving players: %w", err)
	}
	return nil
}
