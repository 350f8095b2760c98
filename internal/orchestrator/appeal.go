package orchestrator

import (
	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

const (
	appealContenders    = 30
	appealDivision      = 20
	appealCloseRecords  = 15
	appealWinningTeams  = 15
	appealStarPower     = 10
	appealUndefeated    = 10
	appealWinless       = 10
	appealLateSeason    = 10
	appealTopSeeds      = 5
	starPowerThreshold  = 340
	closeRecordsMargin  = 2
	lateSeasonStartWeek = 15
)

// AppealScore rates how attractive a game is to feature. It depends only on
// the game, both teams and their standings.
func AppealScore(g games.Game, homeTeam, awayTeam teams.Team, home, away domainstandings.Standing) int {
	score := 0
	if home.Clinched != domainstandings.ClinchEliminated && away.Clinched != domainstandings.ClinchEliminated {
		score += appealContenders
	}
	if homeTeam.Conference == awayTeam.Conference && homeTeam.Division == awayTeam.Division {
		score += appealDivision
	}
	if diff := home.Wins - away.Wins; diff >= -closeRecordsMargin && diff <= closeRecordsMargin {
		score += appealCloseRecords
	}
	if home.WinningRecord() && away.WinningRecord() {
		score += appealWinningTeams
	}
	if homeTeam.Offense+homeTeam.Defense+awayTeam.Offense+awayTeam.Defense > starPowerThreshold {
		score += appealStarPower
	}
	if home.Undefeated() || away.Undefeated() {
		score += appealUndefeated
	}
	if home.Winless() || away.Winless() {
		score += appealWinless
	}
	if g.Week >= lateSeasonStartWeek {
		score += appealLateSeason
	}
	if topSeed(home) && topSeed(away) {
		score += appealTopSeeds
	}
	return score
}

func topSeed(s domainstandings.Standing) bool {
	return s.PlayoffSeed >= 1 && s.PlayoffSeed <= 2
}

// PickFeatured returns the scheduled candidate with the highest appeal. Ties
// go to the earlier game in the list. Missing standings count as a fresh record.
func PickFeatured(candidates []games.Game, teamIndex map[string]teams.Team, rows map[string]domainstandings.Standing) (games.Game, bool) {
	best, bestScore, found := games.Game{}, -1, false
	for _, g := range candidates {
		if g.Status != games.StatusScheduled {
			continue
		}
		home, ok := rows[g.HomeTeamID]
		if !ok {
			home = domainstandings.New(g.SeasonID, g.HomeTeamID)
		}
		away, ok := rows[g.AwayTeamID]
		if !ok {
			away = domainstandings.New(g.SeasonID, g.AwayTeamID)
		}
		score := AppealScore(g, teamIndex[g.HomeTeamID], teamIndex[g.AwayTeamID], home, away)
		if score > bestScore {
			best, bestScore, found = g, score, true
		}
	}
	return best, found
}
