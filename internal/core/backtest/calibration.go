package backtest

import (
	"cmp"
	"slices"

	"github.com/charleschow/mplid-predictor/internal/core/history"
	"github.com/charleschow/mplid-predictor/internal/core/predictor"
)

// Bucket is one bin of a reliability table.
type Bucket struct {
	Lo, Hi     float64
	Count      int
	MeanPred   float64
	ActualFreq float64
}

// Reliability bins home probabilities into n equal-width buckets over
// [0, 1] and compares the mean prediction with how often home won.
func Reliability(preds []Prediction, n int) []Bucket {
	n = max(1, n)
	out := make([]Bucket, n)
	wins := make([]int, n)
	for i := range out {
		out[i].Lo = float64(i) / float64(n)
		out[i].Hi = float64(i+1) / float64(n)
	}
	for _, p := range preds {
		i := min(n-1, max(0, int(p.ProbHome*float64(n))))
		out[i].Count++
		out[i].MeanPred += p.ProbHome
		if p.HomeWon {
			wins[i]++
		}
	}
	for i := range out {
		if out[i].Count > 0 {
			out[i].MeanPred /= float64(out[i].Count)
			out[i].ActualFreq = float64(wins[i]) / float64(out[i].Count)
		}
	}
	return out
}

type Candidate struct {
	Alpha      float64
	FormWeight float64
	Total      Summary
}

// Grid backtests every (alpha, form weight) pair on top of base and returns
// the candidates best first: lowest Brier, then lowest log loss.
func Grid(h *history.Store, base predictor.Params, alphas, formWeights []float64, from, bestOf int) ([]Candidate, error) {
	out := make([]Candidate, 0, len(alphas)*len(formWeights))
	for _, a := range alphas {
		for _, w := range formWeights {
			p := base
			p.Alpha = a
			p.Weights.Form = w
			rep, err := Run(h, p, from, bestOf)
			if err != nil {
				return nil, err
			}
			out = append(out, Candidate{Alpha: a, FormWeight: w, Total: rep.Total})
		}
	}
	slices.SortStableFunc(out, func(x, y Candidate) int {
		return cmp.Or(cmp.Compare(x.Total.Brier, y.Total.Brier), cmp.Compare(x.Total.LogLoss, y.Total.LogLoss))
	})
	return out, nil
}

// Steps returns lo, lo+step, ... up to hi inclusive.
func Steps(lo, hi, step float64) []float64 {
	if !(step > 0) || hi < lo {
		return []float64{lo}
	}
	var out []float64
	for i := 0; ; i++ {
		v := lo + float64(i)*step
		if v > hi+step/2 {
			break
		}
		out = append(out, v)
	}
	return out
}
