package schedule

import (
	"math/rand"
	"sort"

	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

const maxRebalanceSteps = 64

type placed struct {
	Matchup
	week    int
	planned int
}

type byePlan struct {
	byes map[string]int
	// roundWeek maps a construction round to its week. restWeek holds the
	// week that collects games displaced by a bye.
	roundWeek map[int]int
	restRound map[string]int
	restWeek  int
}

// Generate returns a deterministic schedule for the given teams and seed.
func Generate(list []teams.Team, seed string) (*Schedule, error) {
	rng := newRand(seed)
	l, err := buildLayout(list, rng)
	if err != nil {
		return nil, err
	}
	pool, err := trim(dedupe(buildPool(l)))
	if err != nil {
		return nil, err
	}
	plan := planByes(l, rng)

	games := place(pool, plan, rng)
	rebalanceHomes(games)
	spreadDivisional(games, plan.byes)

	s := &Schedule{
		Seed:  seed,
		Weeks: make([][]Matchup, Weeks),
		Byes:  plan.byes,
	}
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].week != games[j].week {
			return games[i].week < games[j].week
		}
		return games[i].Home < games[j].Home
	})
	for _, g := range games {
		s.Weeks[g.week-1] = append(s.Weeks[g.week-1], g.Matchup)
	}
	if err := Validate(list, s); err != nil {
		return nil, err
	}
	return s, nil
}

// planByes gives every team one bye in weeks 5-14. Six divisional rounds each
// rest a whole division and three inter-conference rounds rest one pair from the
// held-out division pair; the tenth window week collects every displaced game.
// Window weeks therefore carry four or two byes: six weeks of four, four of two.
func planByes(l *layout, rng *rand.Rand) byePlan {
	held := rng.Intn(divisionsPerConference)
	x := l.conferences[0].divisions[held]
	y := l.conferences[1].divisions[l.interPartner[held]]

	var resting []*division
	for _, cl := range l.conferences {
		for _, d := range cl.divisions {
			if d != x && d != y {
				resting = append(resting, d)
			}
		}
	}
	rng.Shuffle(len(resting), func(i, j int) { resting[i], resting[j] = resting[j], resting[i] })

	windowWeeks := rng.Perm(LastByeWeek - FirstByeWeek + 1)
	for i := range windowWeeks {
		windowWeeks[i] += FirstByeWeek
	}
	plan := byePlan{
		byes:      make(map[string]int, teamCount),
		roundWeek: make(map[int]int, roundCount),
		restRound: make(map[string]int, teamCount),
		restWeek:  windowWeeks[9],
	}

	for j, d := range resting {
		round := roundDivisionalFirst + j
		plan.roundWeek[round] = windowWeeks[j]
		for _, id := range d.teams {
			plan.byes[id] = windowWeeks[j]
			plan.restRound[id] = round
		}
	}
	// Inter round r pairs x[i] with y[(i+r)%4]; these three rounds rest
	// x0-y0, x1-y2 and x2-y1, leaving x3-y3 for the collector week.
	interRests := []struct{ r, i int }{{0, 0}, {1, 1}, {3, 2}}
	for k, rest := range interRests {
		round := roundInterFirst + rest.r
		week := windowWeeks[6+k]
		plan.roundWeek[round] = week
		for _, id := range []string{x.teams[rest.i], y.teams[(rest.i+rest.r)%teamsPerDivision]} {
			plan.byes[id] = week
			plan.restRound[id] = round
		}
	}
	plan.byes[x.teams[3]] = plan.restWeek
	plan.byes[y.teams[3]] = plan.restWeek

	outside := []int{1, 2, 3, 4, 15, 16, 17, 18}
	rng.Shuffle(len(outside), func(i, j int) { outside[i], outside[j] = outside[j], outside[i] })
	k := 0
	for round := 0; round < roundCount; round++ {
		if _, ok := plan.roundWeek[round]; ok {
			continue
		}
		plan.roundWeek[round] = outside[k]
		k++
	}
	return plan
}

func (p byePlan) plannedWeek(m Matchup) int {
	if r, ok := p.restRound[m.Home]; ok && r == m.round {
		return p.restWeek
	}
	return p.roundWeek[m.round]
}

// place drops each matchup into a legal week, trying the planned week first and
// then a seeded random order of the rest.
func place(pool []Matchup, plan byePlan, rng *rand.Rand) []placed {
	games := make([]placed, len(pool))
	for i, m := range pool {
		games[i] = placed{Matchup: m, planned: plan.plannedWeek(m)}
	}
	order := rng.Perm(len(games))

	busy := make(map[string]map[int]bool, teamCount)
	load := make([]int, Weeks+1)
	free := func(id string, week int) bool {
		return plan.byes[id] != week && !busy[id][week]
	}
	mark := func(g *placed, week int) {
		g.week = week
		load[week]++
		for _, id := range []string{g.Home, g.Away} {
			if busy[id] == nil {
				busy[id] = make(map[int]bool, Weeks)
			}
			busy[id][week] = true
		}
	}

	for _, idx := range order {
		g := &games[idx]
		candidates := make([]int, 0, Weeks)
		if g.planned > 0 {
			candidates = append(candidates, g.planned)
		}
		for _, w := range rng.Perm(Weeks) {
			if w+1 != g.planned {
				candidates = append(candidates, w+1)
			}
		}
		week := 0
		for _, w := range candidates {
			if free(g.Home, w) && free(g.Away, w) {
				week = w
				break
			}
		}
		if week == 0 {
			week = leastFull(load, func(w int) bool {
				return plan.byes[g.Home] != w && plan.byes[g.Away] != w
			})
		}
		mark(g, week)
	}
	return games
}

func leastFull(load []int, allowed func(int) bool) int {
	best := 0
	for w := 1; w <= Weeks; w++ {
		if !allowed(w) {
			continue
		}
		if best == 0 || load[w] < load[best] {
			best = w
		}
	}
	if best == 0 {
		best = 1
	}
	return best
}

// rebalanceHomes flips hosts along non-divisional paths until every team hosts
// between MinHomeGames and MaxHomeGames. Flipping each edge of a path moves one
// home game from its start to its end and leaves the middle unchanged.
func rebalanceHomes(games []placed) {
	for step := 0; step < maxRebalanceSteps; step++ {
		homes := homeCounts(games)
		path := rebalancePath(games, homes)
		if path == nil {
			return
		}
		flip(games, path)
	}
}

func rebalancePath(games []placed, homes map[string]int) []int {
	ids := make([]string, 0, len(homes))
	for id := range homes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if homes[id] > MaxHomeGames {
			return hostPath(games, id, func(t string) bool { return homes[t] < MaxHomeGames }, false)
		}
	}
	for _, id := range ids {
		if homes[id] < MinHomeGames {
			return hostPath(games, id, func(t string) bool { return homes[t] > MinHomeGames }, true)
		}
	}
	return nil
}

func homeCounts(games []placed) map[string]int {
	homes := make(map[string]int, teamCount)
	for _, g := range games {
		homes[g.Home]++
		if _, ok := homes[g.Away]; !ok {
			homes[g.Away] = 0
		}
	}
	return homes
}

// hostPath runs a BFS over non-divisional games from start and returns the game
// indexes leading to the first team accepted by target. Forward edges follow
// home->away; reverse edges follow away->home.
func hostPath(games []placed, start string, target func(string) bool, reverse bool) []int {
	type hop struct {
		team string
		via  int
		prev string
	}
	visited := map[string]hop{start: {team: start, via: -1}}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for i, g := range games {
			if g.Divisional {
				continue
			}
			from, to := g.Home, g.Away
			if reverse {
				from, to = g.Away, g.Home
			}
			if from != cur {
				continue
			}
			if _, seen := visited[to]; seen {
				continue
			}
			visited[to] = hop{team: to, via: i, prev: cur}
			if target(to) {
				var path []int
				for t := to; visited[t].via >= 0; t = visited[t].prev {
					path = append(path, visited[t].via)
				}
				return path
			}
			queue = append(queue, to)
		}
	}
	return nil
}

func flip(games []placed, path []int) {
	for _, i := range path {
		games[i].Home, games[i].Away = games[i].Away, games[i].Home
	}
}

// spreadDivisional is a best-effort pass that swaps whole weeks to reduce teams
// playing divisional games in consecutive weeks. Weeks inside the bye window only
// swap with each other, and byes move with their week.
func spreadDivisional(games []placed, byes map[string]int) {
	inWindow := func(w int) bool { return w >= FirstByeWeek && w <= LastByeWeek }
	best := clustering(games)
	for pass := 0; pass < 3; pass++ {
		improved := false
		for a := 1; a <= Weeks; a++ {
			for b := a + 1; b <= Weeks; b++ {
				if inWindow(a) != inWindow(b) {
					continue
				}
				swapWeeks(games, byes, a, b)
				if score := clustering(games); score < best {
					best = score
					improved = true
					continue
				}
				swapWeeks(games, byes, a, b)
			}
		}
		if !improved {
			return
		}
	}
}

func swapWeeks(games []placed, byes map[string]int, a, b int) {
	for i := range games {
		switch games[i].week {
		case a:
			games[i].week = b
		case b:
			games[i].week = a
		}
	}
	for id, w := range byes {
		switch w {
		case a:
			byes[id] = b
		case b:
			byes[id] = a
		}
	}
}

func clustering(games []placed) int {
	divWeeks := make(map[string][Weeks + 2]bool, teamCount)
	for _, g := range games {
		if !g.Divisional {
			continue
		}
		for _, id := range []string{g.Home, g.Away} {
			w := divWeeks[id]
			w[g.week] = true
			divWeeks[id] = w
		}
	}
	score := 0
	for _, w := range divWeeks {
		for week := 1; week < Weeks; week++ {
			if w[week] && w[week+1] {
				score++
			}
		}
	}
	return score
}
