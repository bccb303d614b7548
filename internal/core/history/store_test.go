package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	s := Default()
	assert.Equal(t, DefaultVersion, s.Version())
	assert.Equal(t, 24, s.Len())
	assert.Equal(t, 3, s.CurrentWeek())

	for _, r := range s.Records() {
		assert.NotEqual(t, "geej", r.Home, "typo must be resolved")
		assert.NotEqual(t, "geej", r.Away, "typo must be resolved")
	}
}

func TestRecordsIsACopy(t *testing.T) {
	s := Default()
	recs := s.Records()
	recs[0].HomeGames = 99
	assert.Equal(t, 2, s.Records()[0].HomeGames)
}

func TestNewStoreRejectsWeeksGoingBackwards(t *testing.T) {
	_, err := NewStore("bad", []MatchRecord{
		{Week: 2, Home: "onic", Away: "rrq", HomeGames: 2},
		{Week: 1, Home: "evos", Away: "navi", HomeGames: 2},
	})
	require.Error(t, err)
}

func TestNewStoreRejectsSelfPairing(t *testing.T) {
	_, err := NewStore("bad", []MatchRecord{{Week: 1, Home: "ONIC", Away: "onic esports", HomeGames: 2}})
	require.Error(t, err)
}

func TestMatchesInvolvingAscending(t *testing.T) {
	got := Default().MatchesInvolving("ONIC")
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Week, got[i].Week)
	}
	for _, r := range got {
		assert.True(t, r.Involves("onic"))
	}
}

func TestMatchesBetweenEitherOrder(t *testing.T) {
	s := Default()
	ab := s.MatchesBetween("onic", "rrq")
	ba := s.MatchesBetween("RRQ Hoshi", "ONIC")
	require.Len(t, ab, 1)
	assert.Equal(t, ab, ba)
	assert.Equal(t, "onic", ab[0].Winner())

	assert.Empty(t, s.MatchesBetween("onic", "navi"))
	assert.Empty(t, s.MatchesBetween("onic", "onic"))
}

func TestPerspective(t *testing.T) {
	r := MatchRecord{Week: 1, Home: "ae", Away: "btr", HomeGames: 1, AwayGames: 2}
	own, opp, opponent, ok := r.Perspective("btr")
	assert.True(t, ok)
	assert.Equal(t, 2, own)
	assert.Equal(t, 1, opp)
	assert.Equal(t, "ae", opponent)

	_, _, _, ok = r.Perspective("onic")
	assert.False(t, ok)
}

func TestBefore(t *testing.T) {
	s := Default().Before(3)
	assert.Equal(t, 16, s.Len())
	assert.Equal(t, 2, s.CurrentWeek())
	assert.Empty(t, s.Week(3))

	empty := Default().Before(1)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, empty.CurrentWeek())
}

func TestDeriveStandings(t *testing.T) {
	rows := Default().DeriveStandings()
	require.Len(t, rows, 9)

	top := rows[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, "onic", top.Team)
	assert.Equal(t, 5, top.Wins)
	assert.Equal(t, 0, top.Losses)
	assert.Equal(t, 5.0, top.PointsOrZero())
	assert.Equal(t, 9.0, top.GameDiffOrZero())

	assert.Equal(t, "btr", rows[1].Team)
	assert.Equal(t, "4-2", rows[1].MatchWL)
	assert.Equal(t, 2.0, rows[1].GameDiffOrZero())

	var total float64
	for _, r := range rows {
		total += r.GameDiffOrZero()
	}
	assert.Equal(t, 0.0, total)
}
