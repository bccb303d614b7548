// Package backtest replays the season week by week, predicting each week's
// series from what was known before it.
package backtest

import (
	"math"

	"github.com/charleschow/mplid-predictor/internal/core/history"
	"github.com/charleschow/mplid-predictor/internal/core/predictor"
)

// Prediction is one replayed series.
type Prediction struct {
	Week     int
	Home     string
	Away     string
	ProbHome float64
	HomeWon  bool
	Correct  bool
	Brier    float64
	LogLoss  float64
}

// Summary aggregates a set of predictions. Coin flips (ProbHome exactly
// 0.5) score in Brier and log loss but never count as correct.
type Summary struct {
	Matches  int
	Correct  int
	Accuracy float64
	Brier    float64
	LogLoss  float64
}

type WeekSummary struct {
	Week int
	Summary
}

type Report struct {
	Predictions []Prediction
	Weeks       []WeekSummary
	Total       Summary
}

// Run predicts every series from week `from` onward using a history cut
// just before its week and standings derived from that cut. Drawn series
// are skipped. BestOf is the format assumed for every series.
func Run(h *history.Store, params predictor.Params, from, bestOf int) (Report, error) {
	if err := params.Validate(); err != nil {
		return Report{}, err
	}
	from = max(1, from)

	var rep Report
	for week := from; week <= h.CurrentWeek(); week++ {
		series := h.Week(week)
		if len(series) == 0 {
			continue
		}
		prior := h.Before(week)
		pred := predictor.New(prior, params)
		snap := predictor.Snapshot{Standings: prior.DeriveStandings()}

		var weekPreds []Prediction
		for _, m := range series {
			if m.HomeGames == m.AwayGames {
				continue
			}
			ex := pred.Predict(predictor.Request{TeamA: m.Home, TeamB: m.Away, BestOf: bestOf}, snap)
			weekPreds = append(weekPreds, score(week, m, ex.ProbA))
		}
		if len(weekPreds) == 0 {
			continue
		}
		rep.Weeks = append(rep.Weeks, WeekSummary{Week: week, Summary: Summarize(weekPreds)})
		rep.Predictions = append(rep.Predictions, weekPreds...)
	}
	rep.Total = Summarize(rep.Predictions)
	return rep, nil
}

func score(week int, m history.MatchRecord, p float64) Prediction {
	won := m.HomeGames > m.AwayGames
	y := 0.0
	if won {
		y = 1
	}
	return Prediction{
		Week:     week,
		Home:     m.Home,
		Away:     m.Away,
		ProbHome: p,
		HomeWon:  won,
		Correct:  (p > 0.5 && won) || (p < 0.5 && !won),
		Brier:    (p - y) * (p - y),
		LogLoss:  logLoss(p, y),
	}
}

// logLoss clamps p away from 0 and 1 so a confident miss stays finite.
func logLoss(p, y float64) float64 {
	const eps = 1e-9
	p = math.Min(1-eps, math.Max(eps, p))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

func Summarize(preds []Prediction) Summary {
	s := Summary{Matches: len(preds)}
	if s.Matches == 0 {
		return s
	}
	for _, p := range preds {
		if p.Correct {
			s.Correct++
		}
		s.Brier += p.Brier
		s.LogLoss += p.LogLoss
	}
	n := float64(s.Matches)
	s.Accuracy = float64(s.Correct) / n
	s.Brier /= n
	s.LogLoss /= n
	return s
}
