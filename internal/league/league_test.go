package league

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
)

func TestDefaultLeagueShape(t *testing.T) {
	all := Default().Teams()
	require.Len(t, all, TeamCount)

	perDivision := make(map[string]int)
	for _, team := range all {
		perDivision[team.DivisionKey()]++
	}
	assert.Len(t, perDivision, 8)
	for key, n := range perDivision {
		assert.Equal(t, TeamsPerDivision, n, "division %s", key)
	}
}

func TestLoadFromFileEmptyPathUsesDefault(t *testing.T) {
	l, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Len(t, l.Teams(), TeamCount)
}

func TestLoadFromFileReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league.yaml")
	require.NoError(t, os.WriteFile(path, defaultLeague, 0o644))

	l, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, teams.ConferenceA, l.Teams()[0].Conference)
}

func TestValidateRejectsDuplicateTeam(t *testing.T) {
	data := strings.Replace(string(defaultLeague), "id: bfl", "id: bos", 1)
	_, err := LoadFromBytes([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `team "bos"`)
}

func TestValidateRejectsShortDivision(t *testing.T) {
	data := `
conferences:
  - id: A
    divisions:
      - number: 1
        teams: [{id: x}]
  - id: B
    divisions: []
`
	_, err := LoadFromBytes([]byte(data))
	require.Error(t, err)
}

func TestValidateRejectsRatingsOutOfRange(t *testing.T) {
	data := strings.Replace(string(defaultLeague), "offense: 84", "offense: 184", 1)
	_, err := LoadFromBytes([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
