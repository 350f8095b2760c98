// Package playoff seeds conferences and advances the postseason bracket.
package playoff

import (
	"errors"
	"fmt"
	"sort"

	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/standings"
)

const (
	SeedsPerConference  = 7
	DivisionWinnerSeeds = 4
	WildCardSeeds       = SeedsPerConference - DivisionWinnerSeeds

	divisionsPerConference = 4
)

// ErrIncompleteSeeds means a conference cannot fill all seven seeds.
var ErrIncompleteSeeds = errors.New("incomplete playoff seeds")

// Seeding lists team ids per conference; index 0 is seed 1.
type Seeding map[teams.Conference][]string

// SeedOf returns the 1-based seed of a team, or 0 when it is not seeded.
func (s Seeding) SeedOf(teamID string) (teams.Conference, int) {
	for _, conf := range teams.Conferences {
		for i, id := range s[conf] {
			if id == teamID {
				return conf, i + 1
			}
		}
	}
	return "", 0
}

// CalculateSeeds ranks each conference into seven seeds and returns the seeding
// along with standings tagged with playoffSeed and clinched.
func CalculateSeeds(list []teams.Team, rows []domainstandings.Standing) (Seeding, []domainstandings.Standing, error) {
	byTeam := standings.Index(rows)
	seeding := make(Seeding, len(teams.Conferences))
	tagged := make(map[string]domainstandings.Standing, len(rows))

	for _, conf := range teams.Conferences {
		divisions := make(map[int][]domainstandings.Standing)
		for _, t := range list {
			if t.Conference != conf {
				continue
			}
			row, ok := byTeam[t.ID]
			if !ok {
				return nil, nil, fmt.Errorf("%w: no standing for team %s", ErrIncompleteSeeds, t.ID)
			}
			divisions[t.Division] = append(divisions[t.Division], row)
		}
		if len(divisions) != divisionsPerConference {
			return nil, nil, fmt.Errorf("%w: conference %s has %d divisions", ErrIncompleteSeeds, conf, len(divisions))
		}

		numbers := make([]int, 0, len(divisions))
		for n := range divisions {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)

		var winners, rest []domainstandings.Standing
		for _, n := range numbers {
			ranked := standings.Rank(divisions[n])
			winners = append(winners, ranked[0])
			rest = append(rest, ranked[1:]...)
		}
		winners = standings.Rank(winners)
		rest = standings.Rank(rest)
		if len(rest) < WildCardSeeds {
			return nil, nil, fmt.Errorf("%w: conference %s has %d wild card candidates", ErrIncompleteSeeds, conf, len(rest))
		}

		ids := make([]string, 0, SeedsPerConference)
		for i, row := range winners {
			row.PlayoffSeed = i + 1
			row.Clinched = domainstandings.ClinchDivision
			if i == 0 {
				row.Clinched = domainstandings.ClinchBye
			}
			tagged[row.TeamID] = row
			ids = append(ids, row.TeamID)
		}
		for i, row := range rest {
			if i < WildCardSeeds {
				row.PlayoffSeed = DivisionWinnerSeeds + i + 1
				row.Clinched = domainstandings.ClinchWildCard
				ids = append(ids, row.TeamID)
			} else {
				row.PlayoffSeed = 0
				row.Clinched = domainstandings.ClinchEliminated
			}
			tagged[row.TeamID] = row
		}
		seeding[conf] = ids
	}

	out := make([]domainstandings.Standing, 0, len(rows))
	for _, row := range rows {
		if t, ok := tagged[row.TeamID]; ok {
			out = append(out, t)
			continue
		}
		out = append(out, row)
	}
	return seeding, out, nil
}
