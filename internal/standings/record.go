package standings

import (
	"fmt"
	"strconv"

	domaingames "github.com/preston-bernstein/gridiron-service/internal/domain/games"
	domainstandings "github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

type outcome byte

const (
	outcomeWin  outcome = 'W'
	outcomeLoss outcome = 'L'
	outcomeTie  outcome = 'T'
)

// ApplyGame folds a completed game into both teams' standings and returns the updated rows.
func ApplyGame(home, away domainstandings.Standing, game domaingames.Game, homeTeam, awayTeam teams.Team) (domainstandings.Standing, domainstandings.Standing, error) {
	if game.Status != domaingames.StatusCompleted {
		return home, away, fmt.Errorf("game %s is %s, not completed", game.ID, game.Status)
	}
	if home.TeamID != game.HomeTeamID || away.TeamID != game.AwayTeamID {
		return home, away, fmt.Errorf("standings %s/%s do not match game %s", home.TeamID, away.TeamID, game.ID)
	}

	sameDivision := homeTeam.Conference == awayTeam.Conference && homeTeam.Division == awayTeam.Division
	sameConference := homeTeam.Conference == awayTeam.Conference

	var homeResult, awayResult outcome
	switch {
	case game.HomeScore > game.AwayScore:
		homeResult, awayResult = outcomeWin, outcomeLoss
	case game.AwayScore > game.HomeScore:
		homeResult, awayResult = outcomeLoss, outcomeWin
	default:
		homeResult, awayResult = outcomeTie, outcomeTie
	}

	home = applyOutcome(home, homeResult, game.HomeScore, game.AwayScore, sameDivision, sameConference)
	away = applyOutcome(away, awayResult, game.AwayScore, game.HomeScore, sameDivision, sameConference)
	return home, away, nil
}

func applyOutcome(s domainstandings.Standing, result outcome, scored, allowed int, sameDivision, sameConference bool) domainstandings.Standing {
	s.PointsFor += scored
	s.PointsAgainst += allowed
	switch result {
	case outcomeWin:
		s.Wins++
		if sameDivision {
			s.DivisionWins++
		}
		if sameConference {
			s.ConferenceWins++
		}
	case outcomeLoss:
		s.Losses++
		if sameDivision {
			s.DivisionLosses++
		}
		if sameConference {
			s.ConferenceLosses++
		}
	case outcomeTie:
		s.Ties++
		if sameDivision {
			s.DivisionTies++
		}
		if sameConference {
			s.ConferenceTies++
		}
	}
	s.Streak = extendStreak(s.Streak, result)
	return s
}

// extendStreak turns "W2" + win into "W3" and "W2" + loss into "L1".
func extendStreak(streak string, result outcome) string {
	if len(streak) >= 2 && streak[0] == byte(result) {
		if n, err := strconv.Atoi(streak[1:]); err == nil {
			return fmt.Sprintf("%c%d", result, n+1)
		}
	}
	return fmt.Sprintf("%c1", result)
}
