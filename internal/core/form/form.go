// Package form scores a team's recent results and the head-to-head record
// between two teams from the series history.
package form

import (
	"math"

	"github.com/charleschow/mplid-predictor/internal/core/history"
	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/strength"
)

// Options controls Compute. Zero fields take the defaults.
type Options struct {
	LastN int     `yaml:"last_n"`
	Tau   float64 `yaml:"tau"`
	Scale float64 `yaml:"scale"`
}

func DefaultOptions() Options {
	return Options{LastN: 5, Tau: 3, Scale: 3}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LastN < 1 {
		o.LastN = d.LastN
	}
	if !(o.Tau > 0) {
		o.Tau = d.Tau
	}
	if !(o.Scale > 0) {
		o.Scale = d.Scale
	}
	return o
}

// DefaultH2HTau decays head-to-head results more slowly than form.
const DefaultH2HTau = 4.0

// TimeDecay weighs a result from matchWeek as seen from currentWeek:
// exp(−Δ/τ) with Δ floored at 0 and τ floored at 1.
func TimeDecay(currentWeek, matchWeek int, tau float64) float64 {
	delta := math.Max(0, float64(currentWeek-matchWeek))
	if math.IsNaN(tau) {
		tau = 1
	}
	return math.Exp(-delta / math.Max(1, tau))
}

func seriesResult(own, opp int) float64 {
	switch {
	case own > opp:
		return 1
	case own < opp:
		return -1
	}
	return 0
}

// Compute is the opponent-adjusted, time-decayed form of team over its
// last LastN series, scaled to [−Scale, +Scale]. No history gives exactly 0.
func Compute(h *history.Store, team string, strengths map[string]float64, opt Options) float64 {
	opt = opt.withDefaults()
	team = slug.Resolve(team)

	all := h.MatchesInvolving(team)
	if len(all) == 0 {
		return 0
	}
	last := all[max(0, len(all)-opt.LastN):]
	current := h.CurrentWeek()

	var num, den float64
	for _, m := range last {
		own, opp, opponent, ok := m.Perspective(team)
		if !ok {
			continue
		}
		w := TimeDecay(current, m.Week, opt.Tau)
		num += seriesResult(own, opp) * w * strength.Lookup(strengths, opponent)
		den += w
	}
	if !(den > 0) {
		return 0
	}
	return strength.Clamp(num/den*opt.Scale, -opt.Scale, opt.Scale, 0)
}

// Result is the decayed head-to-head tally between A and B.
type Result struct {
	WeightA  float64 `json:"weight_a"`
	WeightB  float64 `json:"weight_b"`
	Diff     float64 `json:"diff"`
	Meetings int     `json:"meetings"`
}

// HasHistory separates "never met" from a computed level record.
func (r Result) HasHistory() bool { return r.Meetings > 0 }

// HeadToHead credits the decayed weight of each series to its winner.
// Teams that never met get the zero Result.
func HeadToHead(h *history.Store, a, b string, tau float64) Result {
	a, b = slug.Resolve(a), slug.Resolve(b)
	games := h.MatchesBetween(a, b)
	if len(games) == 0 {
		return Result{}
	}

	current := h.CurrentWeek()
	var res Result
	for _, m := range games {
		w := TimeDecay(current, m.Week, tau)
		switch m.Winner() {
		case a:
			res.WeightA += w
		case b:
			res.WeightB += w
		}
	}
	res.Meetings = len(games)
	res.Diff = res.WeightA - res.WeightB
	return res
}
