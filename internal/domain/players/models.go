package players

// Player is a rostered player handed to the simulation engine.
type Player struct {
	ID       string `json:"id"`
	TeamID   string `json:"teamId"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Number   int    `json:"number"`
	Rating   int    `json:"rating"`
}

// Unit groups positions by the side of the ball they play.
type Unit string

const (
	UnitOffense      Unit = "offense"
	UnitDefense      Unit = "defense"
	UnitSpecialTeams Unit = "special_teams"
)

// UnitOf maps a position code to its unit; unknown codes count as defense.
func UnitOf(position string) Unit {
	switch position {
	case "QB", "RB", "WR", "TE", "OL":
		return UnitOffense
	case "K", "P":
		return UnitSpecialTeams
	}
	return UnitDefense
}

// IsSkill reports whether the player touches the ball on offense.
func (p Player) IsSkill() bool {
	switch p.Position {
	case "QB", "RB", "WR", "TE":
		return true
	}
	return false
}
