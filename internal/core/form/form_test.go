package form

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/mplid-predictor/internal/core/history"
)

func store(t *testing.T, recs ...history.MatchRecord) *history.Store {
	t.Helper()
	s, err := history.NewStore("test", recs)
	require.NoError(t, err)
	return s
}

func TestTimeDecayStrictlyDecreasing(t *testing.T) {
	prev := TimeDecay(6, 6, 3)
	assert.Equal(t, 1.0, prev)
	for week := 5; week >= 0; week-- {
		w := TimeDecay(6, week, 3)
		assert.Less(t, w, prev, "week %d", week)
		prev = w
	}
	assert.InDelta(t, math.Exp(-1), TimeDecay(4, 1, 3), 1e-12)
}

func TestTimeDecayFloors(t *testing.T) {
	assert.Equal(t, 1.0, TimeDecay(2, 5, 3), "future weeks are not boosted")
	assert.Equal(t, TimeDecay(5, 3, 1), TimeDecay(5, 3, 0.2), "tau floors at 1")
}

func TestComputeNoHistoryIsZero(t *testing.T) {
	s := store(t, history.MatchRecord{Week: 1, Home: "onic", Away: "rrq", HomeGames: 2})
	assert.Equal(t, 0.0, Compute(s, "navi", nil, DefaultOptions()))
}

func TestComputeRecencyOutweighsOlderResults(t *testing.T) {
	recentWin := store(t,
		history.MatchRecord{Week: 1, Home: "ae", Away: "btr", HomeGames: 0, AwayGames: 2},
		history.MatchRecord{Week: 5, Home: "ae", Away: "evos", HomeGames: 2, AwayGames: 0},
	)
	recentLoss := store(t,
		history.MatchRecord{Week: 1, Home: "ae", Away: "btr", HomeGames: 2, AwayGames: 0},
		history.MatchRecord{Week: 5, Home: "ae", Away: "evos", HomeGames: 0, AwayGames: 2},
	)
	up := Compute(recentWin, "ae", nil, DefaultOptions())
	down := Compute(recentLoss, "ae", nil, DefaultOptions())
	assert.Greater(t, up, 0.0)
	assert.Less(t, down, 0.0)
	assert.InDelta(t, up, -down, 1e-12)
}

// A fresh win over a strong side must beat a stale win over a weak one.
func TestComputeDecayAndStrengthMultiply(t *testing.T) {
	s := store(t,
		history.MatchRecord{Week: 1, Home: "geek", Away: "dewa", HomeGames: 2, AwayGames: 0},
		history.MatchRecord{Week: 6, Home: "onic", Away: "rrq", HomeGames: 2, AwayGames: 0},
	)
	strengths := map[string]float64{"rrq": 1.4, "dewa": 0.6}

	fresh := Compute(s, "onic", strengths, Options{LastN: 5, Tau: 3, Scale: 3})
	stale := Compute(s, "geek", strengths, Options{LastN: 5, Tau: 3, Scale: 3})
	assert.Greater(t, fresh, stale)
	assert.Equal(t, 3.0, fresh, "1.4 × 3 is clamped")
	assert.InDelta(t, 1.8, stale, 1e-12)
}

func TestComputeUsesOnlyLastN(t *testing.T) {
	s := store(t,
		history.MatchRecord{Week: 1, Home: "ae", Away: "btr", HomeGames: 0, AwayGames: 2},
		history.MatchRecord{Week: 2, Home: "ae", Away: "evos", HomeGames: 2, AwayGames: 1},
		history.MatchRecord{Week: 3, Home: "ae", Away: "navi", HomeGames: 2, AwayGames: 0},
	)
	got := Compute(s, "ae", nil, Options{LastN: 2, Tau: 3, Scale: 3})
	assert.Equal(t, 3.0, got, "the week 1 loss is outside the window")
}

func TestComputeStaysInRange(t *testing.T) {
	s := history.Default()
	for _, team := range []string{"onic", "rrq", "ae", "btr", "dewa", "evos", "geek", "tlid", "navi"} {
		f := Compute(s, team, map[string]float64{"onic": 1.4, "navi": 0.6}, DefaultOptions())
		assert.GreaterOrEqual(t, f, -3.0, team)
		assert.LessOrEqual(t, f, 3.0, team)
	}
}

func TestHeadToHead(t *testing.T) {
	s := store(t,
		history.MatchRecord{Week: 1, Home: "onic", Away: "rrq", HomeGames: 2},
		history.MatchRecord{Week: 2, Home: "rrq", Away: "onic", HomeGames: 0, AwayGames: 2},
		history.MatchRecord{Week: 3, Home: "rrq", Away: "onic", HomeGames: 2, AwayGames: 1},
	)
	ab := HeadToHead(s, "ONIC", "RRQ Hoshi", DefaultH2HTau)
	ba := HeadToHead(s, "rrq", "onic", DefaultH2HTau)

	assert.True(t, ab.HasHistory())
	assert.Equal(t, 3, ab.Meetings)
	assert.InDelta(t, math.Exp(-0.5)+math.Exp(-0.25), ab.WeightA, 1e-12)
	assert.Equal(t, 1.0, ab.WeightB)
	assert.Greater(t, ab.Diff, 0.0)
	assert.Equal(t, -ab.Diff, ba.Diff)
}

func TestHeadToHeadNeverMet(t *testing.T) {
	r := HeadToHead(history.Default(), "onic", "navi", DefaultH2HTau)
	assert.False(t, r.HasHistory())
	assert.Equal(t, Result{}, r)
}
