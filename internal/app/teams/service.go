package teams

import (
	"context"
	"fmt"

	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/standings"
)

// Store defines the team and standings persistence the service reads.
type Store interface {
	Teams(ctx context.Context) ([]teams.Team, error)
	UpsertTeams(ctx context.Context, list []teams.Team) error
	Standings(ctx context.Context, seasonID string) ([]domainstandings.Standing, error)
}

// Service coordinates team operations using a Store.
type Service struct {
	store Store
}

// NewService constructs a Service with the provided Store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Teams returns every team in conference and division order.
func (s *Service) Teams(ctx context.Context) ([]teams.Team, error) {
	return s.store.Teams(ctx)
}

// TeamByID returns a single team if present.
func (s *Service) TeamByID(ctx context.Context, id string) (teams.Team, bool, error) {
	list, err := s.store.Teams(ctx)
	if err != nil {
		return teams.Team{}, false, err
	}
	for _, t := range list {
		if t.ID == id {
			return t, true, nil
		}
	}
	return teams.Team{}, false, nil
}

// ReplaceTeams writes the league's teams.
func (s *Service) ReplaceTeams(ctx context.Context, list []teams.Team) error {
	if err := s.store.UpsertTeams(ctx, list); err != nil {
		return fmt.Errorf("saving teams: %w", err)
	}
	return nil
}

// Standings returns a season's rows, best record first.
func (s *Service) Standings(ctx context.Context, seasonID string) ([]domainstandings.Standing, error) {
	rows, err := s.store.Standings(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	return standings.Rank(rows), nil
}
