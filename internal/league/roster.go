package league

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

// rosterSlots is the positional makeup of a generated roster.
var rosterSlots = []struct {
	position string
	count    int
	numbers  int
}{
	{"QB", 2, 1},
	{"RB", 3, 20},
	{"WR", 5, 10},
	{"TE", 2, 80},
	{"OL", 7, 60},
	{"DL", 6, 90},
	{"LB", 5, 50},
	{"CB", 4, 21},
	{"S", 3, 30},
	{"K", 1, 3},
	{"P", 1, 4},
}

var firstNames = []string{
	"Aaron", "Ben", "Calvin", "Darius", "Eli", "Frank", "Graham", "Hector",
	"Isaiah", "Jalen", "Kyle", "Luis", "Marcus", "Nate", "Owen", "Patrick",
	"Quinn", "Reggie", "Sam", "Tyrell", "Victor", "Wes", "Xavier", "Zach",
}

var lastNames = []string{
	"Adams", "Brooks", "Carter", "Dawson", "Ellis", "Foster", "Grant", "Hayes",
	"Irving", "Jensen", "Keller", "Lawson", "Moore", "Nolan", "Ortiz", "Price",
	"Reed", "Stewart", "Turner", "Vaughn", "Walker", "Young",
}

// Roster builds a deterministic roster for the team. Ratings center on the
// team's offense rating for offensive positions and defense for the rest.
func Roster(t teams.Team) []players.Player {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.ID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	var out []players.Player
	for _, slot := range rosterSlots {
		base := t.Defense
		switch players.UnitOf(slot.position) {
		case players.UnitOffense:
			base = t.Offense
		case players.UnitSpecialTeams:
			base = t.SpecialTeams
		}
		for i := 0; i < slot.count; i++ {
			out = append(out, players.Player{
				ID:       fmt.Sprintf("%s-%s%d", t.ID, slot.position, i+1),
				TeamID:   t.ID,
				Name:     firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
				Position: slot.position,
				Number:   slot.numbers + i,
				Rating:   clampRating(base + rng.Intn(21) - 10 - 3*i),
			})
		}
	}
	return out
}

func clampRating(r int) int {
	switch {
	case r < 40:
		return 40
	case r > 99:
		return 99
	}
	return r
}
