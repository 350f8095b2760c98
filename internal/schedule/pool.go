package schedule

import "fmt"

// Construction rounds. Every round is a perfect matching over all 32 teams.
const (
	roundDivisionalFirst = 0  // 0-5
	roundRotationFirst   = 6  // 6-9
	roundInterFirst      = 10 // 10-13
	roundSamePlaceA      = 14
	roundSamePlaceB      = 15
	roundExtra           = 16
	roundCount           = 17
	roundUnplanned       = -1
)

// divisionalPairs lists (home, away) positions for the six divisional rounds.
// Each ordered pair appears once, so every rival meets twice with hosts swapped.
var divisionalPairs = [6][2][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
	{{1, 0}, {3, 2}},
	{{2, 0}, {3, 1}},
	{{3, 0}, {2, 1}},
}

// buildPool generates every matchup from the four structural rules:
// divisional home-and-away, the intra-conference rotation division, the paired
// inter-conference division, and three games against the two remaining divisions.
func buildPool(l *layout) []Matchup {
	pool := make([]Matchup, 0, teamCount*GamesPerTeam/2)
	add := func(home, away string, round int) {
		pool = append(pool, Matchup{
			Home:       home,
			Away:       away,
			Divisional: l.sameDivision(home, away),
			round:      round,
		})
	}

	for _, cl := range l.conferences {
		for _, d := range cl.divisions {
			for r, pairs := range divisionalPairs {
				for _, p := range pairs {
					add(d.teams[p[0]], d.teams[p[1]], roundDivisionalFirst+r)
				}
			}
		}
	}

	for _, cl := range l.conferences {
		for _, pair := range [][2]*division{{cl.divisions[0], cl.divisions[1]}, {cl.divisions[2], cl.divisions[3]}} {
			crossDivision(pair[0], pair[1], roundRotationFirst, add)
		}
	}

	for m, d := range l.conferences[0].divisions {
		crossDivision(d, l.conferences[1].divisions[l.interPartner[m]], roundInterFirst, add)
	}

	for _, cl := range l.conferences {
		d0, d1, d2, d3 := cl.divisions[0], cl.divisions[1], cl.divisions[2], cl.divisions[3]
		for i := 0; i < teamsPerDivision; i++ {
			even := i%2 == 0
			addHosted(d0.teams[i], d2.teams[i], even, roundSamePlaceA, add)
			addHosted(d1.teams[i], d3.teams[i], even, roundSamePlaceA, add)
			addHosted(d0.teams[i], d3.teams[i], !even, roundSamePlaceB, add)
			addHosted(d1.teams[i], d2.teams[i], !even, roundSamePlaceB, add)
			addHosted(d0.teams[i], d2.teams[(i+cl.extraShift[0])%teamsPerDivision], even, roundExtra, add)
			addHosted(d1.teams[i], d3.teams[(i+cl.extraShift[1])%teamsPerDivision], even, roundExtra, add)
		}
	}
	return pool
}

// crossDivision plays every team of a against every team of b over four rounds.
func crossDivision(a, b *division, firstRound int, add func(home, away string, round int)) {
	for r := 0; r < teamsPerDivision; r++ {
		for i := 0; i < teamsPerDivision; i++ {
			addHosted(a.teams[i], b.teams[(i+r)%teamsPerDivision], r%2 == 0, firstRound+r, add)
		}
	}
}

func addHosted(a, b string, aHosts bool, round int, add func(home, away string, round int)) {
	if aHosts {
		add(a, b, round)
		return
	}
	add(b, a, round)
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// dedupe keeps one directed instance per divisional (home, away) and one instance
// per non-divisional pair.
func dedupe(pool []Matchup) []Matchup {
	seen := make(map[string]bool, len(pool))
	out := pool[:0:0]
	for _, m := range pool {
		key := pairKey(m.Home, m.Away)
		if m.Divisional {
			key = m.Home + ">" + m.Away
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// trim drops non-divisional games until no team exceeds the per-team game count.
// Divisional games are never removed.
func trim(pool []Matchup) ([]Matchup, error) {
	counts := gameCounts(pool)
	keep := make([]bool, len(pool))
	for i := range keep {
		keep[i] = true
	}
	for pass := 0; pass < 2; pass++ {
		for i := len(pool) - 1; i >= 0; i-- {
			m := pool[i]
			if !keep[i] || m.Divisional {
				continue
			}
			homeOver := counts[m.Home] > GamesPerTeam
			awayOver := counts[m.Away] > GamesPerTeam
			// First pass only removes games that help both sides.
			if (pass == 0 && homeOver && awayOver) || (pass == 1 && (homeOver || awayOver)) {
				keep[i] = false
				counts[m.Home]--
				counts[m.Away]--
			}
		}
	}

	out := make([]Matchup, 0, len(pool))
	for i, m := range pool {
		if keep[i] {
			out = append(out, m)
		}
	}
	for team, n := range gameCounts(out) {
		if n != GamesPerTeam {
			return nil, &StructureError{Reason: fmt.Sprintf("team %q ends with %d games, want %d", team, n, GamesPerTeam)}
		}
	}
	return out, nil
}

func gameCounts(pool []Matchup) map[string]int {
	counts := make(map[string]int)
	for _, m := range pool {
		counts[m.Home]++
		counts[m.Away]++
	}
	return counts
}
