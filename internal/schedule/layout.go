package schedule

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

const (
	divisionsPerConference = 4
	teamsPerDivision       = 4
	teamCount              = 2 * divisionsPerConference * teamsPerDivision
)

// StructureError reports input that cannot produce a valid schedule.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "invalid league structure: " + e.Reason
}

type division struct {
	conference teams.Conference
	number     int
	teams      [teamsPerDivision]string
}

func (d *division) key() string {
	return fmt.Sprintf("%s%d", d.conference, d.number)
}

// conferenceLayout orders a conference's divisions after the seeded shuffle.
// divisions[0]/[1] and [2]/[3] are rotation partners; [0]/[2] and [1]/[3] share the extra game.
type conferenceLayout struct {
	conference teams.Conference
	divisions  [divisionsPerConference]*division
	extraShift [2]int
}

type layout struct {
	conferences [2]*conferenceLayout
	// interPartner[m] is the index into conferences[1].divisions paired with conferences[0].divisions[m].
	interPartner [divisionsPerConference]int
	divisionOf   map[string]string
}

func newRand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// buildLayout validates the team list and fixes every seeded pairing decision.
func buildLayout(list []teams.Team, rng *rand.Rand) (*layout, error) {
	if len(list) != teamCount {
		return nil, &StructureError{Reason: fmt.Sprintf("expected %d teams, got %d", teamCount, len(list))}
	}

	grouped := make(map[teams.Conference]map[int][]string)
	seen := make(map[string]bool, len(list))
	for _, t := range list {
		if t.ID == "" {
			return nil, &StructureError{Reason: "team with empty id"}
		}
		if seen[t.ID] {
			return nil, &StructureError{Reason: fmt.Sprintf("duplicate team %q", t.ID)}
		}
		seen[t.ID] = true
		if t.Conference != teams.ConferenceA && t.Conference != teams.ConferenceB {
			return nil, &StructureError{Reason: fmt.Sprintf("team %q has unknown conference %q", t.ID, t.Conference)}
		}
		if t.Division < 1 || t.Division > divisionsPerConference {
			return nil, &StructureError{Reason: fmt.Sprintf("team %q has division %d outside 1-%d", t.ID, t.Division, divisionsPerConference)}
		}
		if grouped[t.Conference] == nil {
			grouped[t.Conference] = make(map[int][]string)
		}
		grouped[t.Conference][t.Division] = append(grouped[t.Conference][t.Division], t.ID)
	}

	l := &layout{divisionOf: make(map[string]string, teamCount)}
	for ci, conf := range teams.Conferences {
		cl := &conferenceLayout{conference: conf}
		for n := 1; n <= divisionsPerConference; n++ {
			ids := grouped[conf][n]
			if len(ids) != teamsPerDivision {
				return nil, &StructureError{Reason: fmt.Sprintf("division %s%d has %d teams, want %d", conf, n, len(ids), teamsPerDivision)}
			}
			sort.Strings(ids)
			rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
			d := &division{conference: conf, number: n}
			copy(d.teams[:], ids)
			cl.divisions[n-1] = d
			for _, id := range ids {
				l.divisionOf[id] = d.key()
			}
		}
		rng.Shuffle(divisionsPerConference, func(i, j int) {
			cl.divisions[i], cl.divisions[j] = cl.divisions[j], cl.divisions[i]
		})
		// Shift 0 would repeat a same-place opponent.
		cl.extraShift = [2]int{1 + rng.Intn(3), 1 + rng.Intn(3)}
		l.conferences[ci] = cl
	}
	copy(l.interPartner[:], rng.Perm(divisionsPerConference))
	return l, nil
}

func (l *layout) sameDivision(a, b string) bool {
	return l.divisionOf[a] != "" && l.divisionOf[a] == l.divisionOf[b]
}
