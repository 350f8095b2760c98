// Package standings ranks team records and applies finished games to them.
package standings

import (
	"math"
	"sort"

	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
)

const epsilon = 1e-9

// Compare orders two standings. A negative result means a ranks ahead of b.
// Criteria, first difference wins: win pct, division win pct, conference win pct,
// point differential, points for.
func Compare(a, b domainstandings.Standing) int {
	if c := compareFloat(a.WinPct(), b.WinPct()); c != 0 {
		return c
	}
	if c := compareFloat(a.DivisionWinPct(), b.DivisionWinPct()); c != 0 {
		return c
	}
	if c := compareFloat(a.ConferenceWinPct(), b.ConferenceWinPct()); c != 0 {
		return c
	}
	if c := compareFloat(float64(a.PointDifferential()), float64(b.PointDifferential())); c != 0 {
		return c
	}
	return compareFloat(float64(a.PointsFor), float64(b.PointsFor))
}

// compareFloat sorts higher values first.
func compareFloat(a, b float64) int {
	if math.Abs(a-b) < epsilon {
		return 0
	}
	if a > b {
		return -1
	}
	return 1
}

// Rank returns a sorted copy, best first. Standings equal on every criterion
// fall back to team ID so the order never depends on input order.
func Rank(list []domainstandings.Standing) []domainstandings.Standing {
	out := make([]domainstandings.Standing, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if c := Compare(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// Index maps team IDs to standings.
func Index(list []domainstandings.Standing) map[string]domainstandings.Standing {
	out := make(map[string]domainstandings.Standing, len(list))
	for _, s := range list {
		out[s.TeamID] = s
	}
	return out
}
