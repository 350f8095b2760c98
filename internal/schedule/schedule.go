// Package schedule builds deterministic 18-week regular-season schedules.
package schedule

import (
	"fmt"
	"sort"

	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

const (
	Weeks        = 18
	GamesPerTeam = 17
	FirstByeWeek = 5
	LastByeWeek  = 14
	MinHomeGames = 8
	MaxHomeGames = 9
)

// Matchup is one regular-season pairing.
type Matchup struct {
	Home       string `json:"home"`
	Away       string `json:"away"`
	Divisional bool   `json:"divisional"`

	round int
}

// Schedule holds matchups grouped by week; Weeks[0] is week 1.
type Schedule struct {
	Seed  string         `json:"seed"`
	Weeks [][]Matchup    `json:"weeks"`
	Byes  map[string]int `json:"byes"`
}

// Week returns the matchups for a 1-based week, or nil when out of range.
func (s *Schedule) Week(week int) []Matchup {
	if s == nil || week < 1 || week > len(s.Weeks) {
		return nil
	}
	return s.Weeks[week-1]
}

// GameCount returns the number of matchups across all weeks.
func (s *Schedule) GameCount() int {
	n := 0
	for _, w := range s.Weeks {
		n += len(w)
	}
	return n
}

// Validate checks a schedule against the structural rules for the given teams.
func Validate(list []teams.Team, s *Schedule) error {
	if s == nil {
		return &StructureError{Reason: "nil schedule"}
	}
	if len(s.Weeks) != Weeks {
		return &StructureError{Reason: fmt.Sprintf("schedule has %d weeks, want %d", len(s.Weeks), Weeks)}
	}
	byID := teams.Index(list)
	games := make(map[string]int, len(list))
	homes := make(map[string]int, len(list))
	played := make(map[string]map[int]bool, len(list))
	divisional := make(map[string]int)

	for i, week := range s.Weeks {
		weekNum := i + 1
		for _, m := range week {
			home, okHome := byID[m.Home]
			away, okAway := byID[m.Away]
			if !okHome || !okAway {
				return &StructureError{Reason: fmt.Sprintf("week %d: unknown team in %s@%s", weekNum, m.Away, m.Home)}
			}
			if m.Home == m.Away {
				return &StructureError{Reason: fmt.Sprintf("week %d: %s plays itself", weekNum, m.Home)}
			}
			for _, id := range []string{m.Home, m.Away} {
				if played[id] == nil {
					played[id] = make(map[int]bool)
				}
				if played[id][weekNum] {
					return &StructureError{Reason: fmt.Sprintf("team %s plays twice in week %d", id, weekNum)}
				}
				played[id][weekNum] = true
				games[id]++
			}
			homes[m.Home]++
			if home.DivisionKey() == away.DivisionKey() {
				divisional[m.Home+">"+m.Away]++
			}
		}
	}

	ids := make([]string, 0, len(list))
	for _, t := range list {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if games[id] != GamesPerTeam {
			return &StructureError{Reason: fmt.Sprintf("team %s has %d games, want %d", id, games[id], GamesPerTeam)}
		}
		if homes[id] < MinHomeGames || homes[id] > MaxHomeGames {
			return &StructureError{Reason: fmt.Sprintf("team %s has %d home games", id, homes[id])}
		}
		bye := 0
		for w := 1; w <= Weeks; w++ {
			if !played[id][w] {
				bye = w
			}
		}
		if bye < FirstByeWeek || bye > LastByeWeek {
			return &StructureError{Reason: fmt.Sprintf("team %s has bye in week %d", id, bye)}
		}
		if s.Byes != nil && s.Byes[id] != bye {
			return &StructureError{Reason: fmt.Sprintf("team %s bye recorded as week %d, plays none in week %d", id, s.Byes[id], bye)}
		}
		for _, rival := range list {
			if rival.ID == id || rival.DivisionKey() != byID[id].DivisionKey() {
				continue
			}
			if divisional[id+">"+rival.ID] != 1 {
				return &StructureError{Reason: fmt.Sprintf("team %s hosts rival %s %d times", id, rival.ID, divisional[id+">"+rival.ID])}
			}
		}
	}
	return nil
}
