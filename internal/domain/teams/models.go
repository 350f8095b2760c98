package teams

import "fmt"

// Conference identifies one half of the league.
type Conference string

const (
	ConferenceA Conference = "A"
	ConferenceB Conference = "B"
)

// Conferences lists both conferences in a stable order.
var Conferences = [...]Conference{ConferenceA, ConferenceB}

// Label returns the broadcast name of the conference.
func (c Conference) Label() string {
	switch c {
	case ConferenceA:
		return "AFC"
	case ConferenceB:
		return "NFC"
	default:
		return string(c)
	}
}

// Opponent returns the other conference.
func (c Conference) Opponent() Conference {
	if c == ConferenceA {
		return ConferenceB
	}
	return ConferenceA
}

// Team is the static identity of a franchise. Ratings do not change within a season.
type Team struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	City         string     `json:"city"`
	Abbreviation string     `json:"abbreviation"`
	Conference   Conference `json:"conference"`
	Division     int        `json:"division"`
	Offense      int        `json:"offense"`
	Defense      int        `json:"defense"`
	SpecialTeams int        `json:"specialTeams"`
}

// FullName joins city and nickname.
func (t Team) FullName() string {
	if t.City == "" {
		return t.Name
	}
	return t.City + " " + t.Name
}

// DivisionKey identifies the team's division across both conferences, e.g. "A2".
func (t Team) DivisionKey() string {
	return fmt.Sprintf("%s%d", t.Conference, t.Division)
}

// Strength is the offense plus defense rating.
func (t Team) Strength() int {
	return t.Offense + t.Defense
}

// Index maps team IDs to teams.
func Index(list []Team) map[string]Team {
	out := make(map[string]Team, len(list))
	for _, t := range list {
		out[t.ID] = t
	}
	return out
}
