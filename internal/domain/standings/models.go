package standings

// Clinch is a standing's playoff status category. The zero value means unresolved.
type Clinch string

const (
	ClinchNone       Clinch = ""
	ClinchDivision   Clinch = "division"
	ClinchWildCard   Clinch = "wild_card"
	ClinchBye        Clinch = "bye"
	ClinchEliminated Clinch = "eliminated"
)

// Standing is one team's record within a season.
type Standing struct {
	SeasonID         string `json:"seasonId"`
	TeamID           string `json:"teamId"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	Ties             int    `json:"ties"`
	DivisionWins     int    `json:"divisionWins"`
	DivisionLosses   int    `json:"divisionLosses"`
	DivisionTies     int    `json:"divisionTies"`
	ConferenceWins   int    `json:"conferenceWins"`
	ConferenceLosses int    `json:"conferenceLosses"`
	ConferenceTies   int    `json:"conferenceTies"`
	PointsFor        int    `json:"pointsFor"`
	PointsAgainst    int    `json:"pointsAgainst"`
	Streak           string `json:"streak"`
	PlayoffSeed      int    `json:"playoffSeed,omitempty"`
	Clinched         Clinch `json:"clinched,omitempty"`
}

// New returns a zeroed standing row.
func New(seasonID, teamID string) Standing {
	return Standing{SeasonID: seasonID, TeamID: teamID}
}

// GamesPlayed is wins plus losses plus ties.
func (s Standing) GamesPlayed() int {
	return s.Wins + s.Losses + s.Ties
}

// WinPct counts ties as half a win.
func (s Standing) WinPct() float64 {
	return pct(s.Wins, s.Losses, s.Ties)
}

// DivisionWinPct is WinPct over division games.
func (s Standing) DivisionWinPct() float64 {
	return pct(s.DivisionWins, s.DivisionLosses, s.DivisionTies)
}

// ConferenceWinPct is WinPct over conference games.
func (s Standing) ConferenceWinPct() float64 {
	return pct(s.ConferenceWins, s.ConferenceLosses, s.ConferenceTies)
}

// PointDifferential is points for minus points against.
func (s Standing) PointDifferential() int {
	return s.PointsFor - s.PointsAgainst
}

// Undefeated has at least one win and no losses.
func (s Standing) Undefeated() bool {
	return s.Wins > 0 && s.Losses == 0
}

// Winless has at least one loss and no wins.
func (s Standing) Winless() bool {
	return s.Losses > 0 && s.Wins == 0
}

// WinningRecord has more wins than losses.
func (s Standing) WinningRecord() bool {
	return s.Wins > s.Losses
}

func pct(w, l, t int) float64 {
	total := w + l + t
	if total == 0 {
		return 0
	}
	return (float64(w) + 0.5*float64(t)) / float64(total)
}
