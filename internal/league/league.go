// Package league loads the team layout the schedule is built from.
package league

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

const (
	DivisionsPerConference = 4
	TeamsPerDivision       = 4
	TeamCount              = len(teams.Conferences) * DivisionsPerConference * TeamsPerDivision
)

//go:embed default_league.yaml
var defaultLeague []byte

type TeamEntry struct {
	ID           string `yaml:"id"`
	City         string `yaml:"city"`
	Name         string `yaml:"name"`
	Abbreviation string `yaml:"abbreviation"`
	Offense      int    `yaml:"offense"`
	Defense      int    `yaml:"defense"`
	SpecialTeams int    `yaml:"special_teams"`
}

type Division struct {
	Number int         `yaml:"number"`
	Name   string      `yaml:"name"`
	Teams  []TeamEntry `yaml:"teams"`
}

type Conference struct {
	ID        teams.Conference `yaml:"id"`
	Divisions []Division       `yaml:"divisions"`
}

// League is the parsed league file.
type League struct {
	Conferences []Conference `yaml:"conferences"`
}

// Teams flattens the league into domain teams, conference and division order preserved.
func (l *League) Teams() []teams.Team {
	var out []teams.Team
	for _, c := range l.Conferences {
		for _, d := range c.Divisions {
			for _, t := range d.Teams {
				out = append(out, teams.Team{
					ID:           t.ID,
					Name:         t.Name,
					City:         t.City,
					Abbreviation: t.Abbreviation,
					Conference:   c.ID,
					Division:     d.Number,
					Offense:      t.Offense,
					Defense:      t.Defense,
					SpecialTeams: t.SpecialTeams,
				})
			}
		}
	}
	return out
}

// Default returns the embedded league.
func Default() *League {
	l, err := LoadFromBytes(defaultLeague)
	if err != nil {
		panic(fmt.Sprintf("embedded league is invalid: %v", err))
	}
	return l
}

// LoadFromBytes parses YAML bytes into a League and validates it.
func LoadFromBytes(data []byte) (*League, error) {
	var l League
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing league: %w", err)
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadFromFile reads a league file, falling back to the embedded league when path is empty.
func LoadFromFile(path string) (*League, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading league file: %w", err)
	}
	return LoadFromBytes(data)
}

func (l *League) validate() error {
	if len(l.Conferences) != len(teams.Conferences) {
		return fmt.Errorf("league needs %d conferences, got %d", len(teams.Conferences), len(l.Conferences))
	}

	seenConf := make(map[teams.Conference]bool)
	seenTeam := make(map[string]string)
	for _, c := range l.Conferences {
		if c.ID != teams.ConferenceA && c.ID != teams.ConferenceB {
			return fmt.Errorf("unknown conference %q (expected A or B)", c.ID)
		}
		if seenConf[c.ID] {
			return fmt.Errorf("conference %q listed twice", c.ID)
		}
		seenConf[c.ID] = true

		if len(c.Divisions) != DivisionsPerConference {
			return fmt.Errorf("conference %s needs %d divisions, got %d", c.ID, DivisionsPerConference, len(c.Divisions))
		}
		seenDiv := make(map[int]bool)
		for _, d := range c.Divisions {
			if d.Number < 1 || d.Number > DivisionsPerConference {
				return fmt.Errorf("conference %s: division number %d out of range 1-%d", c.ID, d.Number, DivisionsPerConference)
			}
			if seenDiv[d.Number] {
				return fmt.Errorf("conference %s: division %d listed twice", c.ID, d.Number)
			}
			seenDiv[d.Number] = true

			if len(d.Teams) != TeamsPerDivision {
				return fmt.Errorf("division %s%d needs %d teams, got %d", c.ID, d.Number, TeamsPerDivision, len(d.Teams))
			}
			for _, t := range d.Teams {
				if t.ID == "" {
					return fmt.Errorf("division %s%d has a team without an id", c.ID, d.Number)
				}
				key := fmt.Sprintf("%s%d", c.ID, d.Number)
				if prev, ok := seenTeam[t.ID]; ok {
					return fmt.Errorf("team %q appears in both %s and %s", t.ID, prev, key)
				}
				seenTeam[t.ID] = key
				for name, r := range map[string]int{"offense": t.Offense, "defense": t.Defense, "special_teams": t.SpecialTeams} {
					if r < 0 || r > 100 {
						return fmt.Errorf("team %q: %s rating %d out of range 0-100", t.ID, name, r)
					}
				}
			}
		}
	}
	return nil
}
