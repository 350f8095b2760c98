package playoff

import (
	"errors"
	"fmt"
	"sort"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

var (
	// ErrUnknownGame means a result does not match any populated bracket slot.
	ErrUnknownGame = errors.New("game not in bracket")
	// ErrTiedGame means a playoff result carries no winner.
	ErrTiedGame = errors.New("playoff game cannot end tied")
)

// RoundState distinguishes rounds whose matchups are known from rounds still waiting on results.
type RoundState string

const (
	RoundPending   RoundState = "pending"
	RoundPopulated RoundState = "populated"
)

// Matchup is one bracket slot. Seeds are conference seeds; in the title game
// each side keeps the seed it held in its own conference.
type Matchup struct {
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
	HomeSeed   int    `json:"homeSeed"`
	AwaySeed   int    `json:"awaySeed"`
	GameID     string `json:"gameId,omitempty"`
	WinnerID   string `json:"winnerId,omitempty"`
	HomeScore  int    `json:"homeScore,omitempty"`
	AwayScore  int    `json:"awayScore,omitempty"`
}

// Decided reports whether the slot has a winner.
func (m Matchup) Decided() bool {
	return m.WinnerID != ""
}

func (m Matchup) winnerSeed() int {
	if m.WinnerID == m.HomeTeamID {
		return m.HomeSeed
	}
	return m.AwaySeed
}

// Round is one conference's round, or the shared title game when Conference is empty.
type Round struct {
	Kind       games.GameType   `json:"kind"`
	Conference teams.Conference `json:"conference,omitempty"`
	State      RoundState       `json:"state"`
	Matchups   []Matchup        `json:"matchups,omitempty"`
}

// Complete reports whether the round is populated and every slot is decided.
func (r Round) Complete() bool {
	if r.State != RoundPopulated || len(r.Matchups) == 0 {
		return false
	}
	for _, m := range r.Matchups {
		if !m.Decided() {
			return false
		}
	}
	return true
}

// Bracket is the full postseason tree.
type Bracket struct {
	Seeds  Seeding `json:"seeds"`
	Rounds []Round `json:"rounds"`
}

// Result reports a completed playoff game.
type Result struct {
	GameID     string
	Kind       games.GameType
	HomeTeamID string
	AwayTeamID string
	HomeScore  int
	AwayScore  int
}

var conferenceRounds = []games.GameType{
	games.TypeWildCard,
	games.TypeDivisional,
	games.TypeConferenceChampionship,
}

// NewBracket builds the bracket with Wild Card rounds populated: 2v7, 3v6 and 4v5
// with the higher seed hosting. Seed 1 sits out.
func NewBracket(seeds Seeding) (Bracket, error) {
	b := Bracket{Seeds: make(Seeding, len(seeds))}
	for _, conf := range teams.Conferences {
		ids := seeds[conf]
		if len(ids) != SeedsPerConference {
			return Bracket{}, fmt.Errorf("%w: conference %s has %d seeds", ErrIncompleteSeeds, conf, len(ids))
		}
		b.Seeds[conf] = append([]string(nil), ids...)
	}
	for _, kind := range conferenceRounds {
		for _, conf := range teams.Conferences {
			b.Rounds = append(b.Rounds, Round{Kind: kind, Conference: conf, State: RoundPending})
		}
	}
	b.Rounds = append(b.Rounds, Round{Kind: games.TypeSuperBowl, State: RoundPending})

	for _, conf := range teams.Conferences {
		wc := b.Round(games.TypeWildCard, conf)
		for _, pair := range [][2]int{{2, 7}, {3, 6}, {4, 5}} {
			wc.Matchups = append(wc.Matchups, b.seeded(conf, pair[0], pair[1]))
		}
		wc.State = RoundPopulated
	}
	return b, nil
}

func (b *Bracket) seeded(conf teams.Conference, home, away int) Matchup {
	return Matchup{
		HomeTeamID: b.Seeds[conf][home-1],
		AwayTeamID: b.Seeds[conf][away-1],
		HomeSeed:   home,
		AwaySeed:   away,
	}
}

// Round returns the round of the given kind; conference is ignored for the title game.
func (b *Bracket) Round(kind games.GameType, conf teams.Conference) *Round {
	if kind == games.TypeSuperBowl {
		conf = ""
	}
	for i := range b.Rounds {
		if b.Rounds[i].Kind == kind && b.Rounds[i].Conference == conf {
			return &b.Rounds[i]
		}
	}
	return nil
}

// Matchups returns every populated slot of a round kind across conferences.
func (b Bracket) Matchups(kind games.GameType) []Matchup {
	var out []Matchup
	for _, r := range b.Rounds {
		if r.Kind == kind && r.State == RoundPopulated {
			out = append(out, r.Matchups...)
		}
	}
	return out
}

// RoundComplete reports whether every round of the given kind is complete.
func (b Bracket) RoundComplete(kind games.GameType) bool {
	found := false
	for _, r := range b.Rounds {
		if r.Kind != kind {
			continue
		}
		found = true
		if !r.Complete() {
			return false
		}
	}
	return found
}

// Champion returns the title game winner once decided.
func (b Bracket) Champion() (string, bool) {
	r := b.Round(games.TypeSuperBowl, "")
	if r == nil || !r.Complete() {
		return "", false
	}
	return r.Matchups[0].WinnerID, true
}

// Clone returns a deep copy.
func (b Bracket) Clone() Bracket {
	out := Bracket{Seeds: make(Seeding, len(b.Seeds)), Rounds: make([]Round, len(b.Rounds))}
	for conf, ids := range b.Seeds {
		out.Seeds[conf] = append([]string(nil), ids...)
	}
	for i, r := range b.Rounds {
		r.Matchups = append([]Matchup(nil), r.Matchups...)
		out.Rounds[i] = r
	}
	return out
}

// Advance records a completed game and populates any round whose inputs are now
// known. It never mutates b. Replaying a recorded result returns an equal bracket.
func Advance(b Bracket, res Result) (Bracket, error) {
	next := b.Clone()
	slot := next.find(res)
	if slot == nil {
		return b, fmt.Errorf("%w: %s %s@%s", ErrUnknownGame, res.Kind, res.AwayTeamID, res.HomeTeamID)
	}
	if slot.Decided() {
		return next, nil
	}
	if res.HomeScore == res.AwayScore {
		return b, fmt.Errorf("%w: %s", ErrTiedGame, res.GameID)
	}

	slot.HomeScore, slot.AwayScore = res.HomeScore, res.AwayScore
	if res.GameID != "" {
		slot.GameID = res.GameID
	}
	slot.WinnerID = res.HomeTeamID
	if res.AwayScore > res.HomeScore {
		slot.WinnerID = res.AwayTeamID
	}
	next.populate()
	return next, nil
}

func (b *Bracket) find(res Result) *Matchup {
	for i := range b.Rounds {
		r := &b.Rounds[i]
		if r.Kind != res.Kind || r.State != RoundPopulated {
			continue
		}
		for j := range r.Matchups {
			m := &r.Matchups[j]
			if res.GameID != "" && m.GameID == res.GameID {
				return m
			}
			if m.HomeTeamID == res.HomeTeamID && m.AwayTeamID == res.AwayTeamID {
				return m
			}
		}
	}
	return nil
}

// populate fills pending rounds whose feeder rounds are complete. Populated
// rounds are left untouched.
func (b *Bracket) populate() {
	for _, conf := range teams.Conferences {
		wc := b.Round(games.TypeWildCard, conf)
		div := b.Round(games.TypeDivisional, conf)
		if div.State == RoundPending && wc.Complete() {
			seeds := winnerSeeds(wc.Matchups)
			// seeds is ascending, so the last entry is the lowest remaining seed.
			div.Matchups = []Matchup{
				b.seeded(conf, 1, seeds[2]),
				b.seeded(conf, seeds[0], seeds[1]),
			}
			div.State = RoundPopulated
		}

		cc := b.Round(games.TypeConferenceChampionship, conf)
		if cc.State == RoundPending && div.Complete() {
			seeds := winnerSeeds(div.Matchups)
			cc.Matchups = []Matchup{b.seeded(conf, seeds[0], seeds[1])}
			cc.State = RoundPopulated
		}
	}

	sb := b.Round(games.TypeSuperBowl, "")
	if sb.State != RoundPending {
		return
	}
	var champs []Matchup
	for _, conf := range teams.Conferences {
		cc := b.Round(games.TypeConferenceChampionship, conf)
		if !cc.Complete() {
			return
		}
		champs = append(champs, cc.Matchups[0])
	}
	sb.Matchups = []Matchup{{
		HomeTeamID: champs[0].WinnerID,
		AwayTeamID: champs[1].WinnerID,
		HomeSeed:   champs[0].winnerSeed(),
		AwaySeed:   champs[1].winnerSeed(),
	}}
	sb.State = RoundPopulated
}

func winnerSeeds(matchups []Matchup) []int {
	seeds := make([]int, 0, len(matchups))
	for _, m := range matchups {
		seeds = append(seeds, m.winnerSeed())
	}
	sort.Ints(seeds)
	return seeds
}
