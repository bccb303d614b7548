package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/mplid-predictor/internal/core/history"
	"github.com/charleschow/mplid-predictor/internal/core/predictor"
)

func TestRunOverDefaultSeason(t *testing.T) {
	h := history.Default()
	rep, err := Run(h, predictor.DefaultParams(), 2, 3)
	require.NoError(t, err)

	assert.Equal(t, h.Len()-h.Before(2).Len(), rep.Total.Matches)
	require.Len(t, rep.Weeks, 2)
	assert.Equal(t, 2, rep.Weeks[0].Week)
	assert.Equal(t, 3, rep.Weeks[1].Week)

	for _, p := range rep.Predictions {
		assert.GreaterOrEqual(t, p.ProbHome, 0.1)
		assert.LessOrEqual(t, p.ProbHome, 0.9)
		assert.False(t, math.IsInf(p.LogLoss, 0))
	}
	assert.GreaterOrEqual(t, rep.Total.Accuracy, 0.0)
	assert.LessOrEqual(t, rep.Total.Accuracy, 1.0)
	assert.LessOrEqual(t, rep.Total.Brier, 0.81)
}

func TestRunWeekOneIsAllCoinFlips(t *testing.T) {
	rep, err := Run(history.Default(), predictor.DefaultParams(), 0, 3)
	require.NoError(t, err)
	require.NotEmpty(t, rep.Weeks)

	first := rep.Weeks[0]
	assert.Equal(t, 1, first.Week)
	assert.Zero(t, first.Correct)
	assert.InDelta(t, 0.25, first.Brier, 1e-12)
	assert.InDelta(t, math.Ln2, first.LogLoss, 1e-9)
}

func TestRunRewardsConsistentForm(t *testing.T) {
	h := history.MustStore("test", []history.MatchRecord{
		{Week: 1, Home: "onic", Away: "rrq", HomeGames: 2, AwayGames: 0},
		{Week: 1, Home: "onic", Away: "evos", HomeGames: 2, AwayGames: 0},
		{Week: 2, Home: "ae", Away: "onic", HomeGames: 1, AwayGames: 2},
	})
	rep, err := Run(h, predictor.DefaultParams(), 2, 3)
	require.NoError(t, err)
	require.Len(t, rep.Predictions, 1)

	p := rep.Predictions[0]
	assert.Less(t, p.ProbHome, 0.5)
	assert.False(t, p.HomeWon)
	assert.True(t, p.Correct)
	assert.Less(t, p.Brier, 0.25)
	assert.Equal(t, 1.0, rep.Total.Accuracy)
}

func TestRunRejectsInvalidParams(t *testing.T) {
	p := predictor.DefaultParams()
	p.Alpha = -1
	_, err := Run(history.Default(), p, 2, 3)
	require.Error(t, err)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestReliability(t *testing.T) {
	preds := []Prediction{
		{ProbHome: 0.15, HomeWon: false},
		{ProbHome: 0.85, HomeWon: true},
		{ProbHome: 0.75, HomeWon: false},
		{ProbHome: 1.0, HomeWon: true},
	}
	b := Reliability(preds, 5)
	require.Len(t, b, 5)
	assert.Equal(t, 1, b[0].Count)
	assert.Equal(t, 0.0, b[0].ActualFreq)
	assert.Equal(t, 1, b[3].Count)
	assert.Equal(t, 0.0, b[3].ActualFreq)
	assert.Equal(t, 2, b[4].Count, "1.0 lands in the top bin")
	assert.InDelta(t, (0.85+1.0)/2, b[4].MeanPred, 1e-12)
	assert.Equal(t, 1.0, b[4].ActualFreq)
	assert.Zero(t, b[2].Count)
}

func TestGridSortedBestFirst(t *testing.T) {
	cands, err := Grid(history.Default(), predictor.DefaultParams(), []float64{1.5, 2.8}, []float64{0.5, 1.1, 1.6}, 2, 3)
	require.NoError(t, err)
	require.Len(t, cands, 6)
	for i := 1; i < len(cands); i++ {
		assert.LessOrEqual(t, cands[i-1].Total.Brier, cands[i].Total.Brier)
	}
}

func TestSteps(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2}, Steps(1, 2, 0.5))
	assert.Len(t, Steps(0.5, 1.6, 0.1), 12)
	assert.Equal(t, []float64{3}, Steps(3, 1, 0.5))
}
