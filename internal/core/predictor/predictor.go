// Package predictor combines form, head-to-head and standings features into
// a clamped win probability with a per-feature explanation.
package predictor

import (
	"math"

	"github.com/charleschow/mplid-predictor/internal/core/form"
	"github.com/charleschow/mplid-predictor/internal/core/history"
	"github.com/charleschow/mplid-predictor/internal/core/players"
	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
	"github.com/charleschow/mplid-predictor/internal/core/strength"
)

// Request names the two sides. BestOf 0 means unknown and applies no
// series scaling.
type Request struct {
	TeamA  string
	TeamB  string
	BestOf int
}

// Snapshot is the upstream data a prediction reads. Any part may be empty.
type Snapshot struct {
	Standings   []snapshot.StandingsRow
	TeamStats   []snapshot.TeamStatsRow
	PlayerPools []snapshot.HeroPoolRow
}

// Predictor is safe for concurrent use; it holds only immutable state.
type Predictor struct {
	history *history.Store
	params  Params
}

// New panics on invalid params; load them through config.LoadModel to get
// an error instead.
func New(h *history.Store, p Params) *Predictor {
	if err := p.Validate(); err != nil {
		panic("predictor: " + err.Error())
	}
	if h == nil {
		h = history.Default()
	}
	return &Predictor{history: h, params: p}
}

func (p *Predictor) Params() Params          { return p.params }
func (p *Predictor) History() *history.Store { return p.history }

// Predict never fails: missing teams, rows or history contribute zero.
func (p *Predictor) Predict(req Request, snap Snapshot) Explanation {
	prm := p.params
	a, b := slug.Resolve(req.TeamA), slug.Resolve(req.TeamB)

	standings := strength.FromRows(snap.Standings)
	strengths := strength.BuildOpponentStrengthMap(standings, prm.Strength)

	ex := Explanation{
		TeamA:          a,
		TeamB:          b,
		BestOf:         req.BestOf,
		HistoryVersion: p.history.Version(),
	}

	formA := form.Compute(p.history, a, strengths, prm.Form)
	formB := form.Compute(p.history, b, strengths, prm.Form)
	ex.Form = newFeature(formA, formB, formA-formB, prm.Weights.Form)

	h2h := form.HeadToHead(p.history, a, b, prm.H2HTau)
	ex.H2H = H2HFeature{
		Feature:    newFeature(h2h.WeightA, h2h.WeightB, h2h.Diff, prm.Weights.H2H),
		Meetings:   h2h.Meetings,
		HasHistory: h2h.HasHistory(),
	}

	sa, okA := standings[a]
	sb, okB := standings[b]
	if !okA {
		ex.Missing = append(ex.Missing, "standings:"+a)
	}
	if !okB {
		ex.Missing = append(ex.Missing, "standings:"+b)
	}
	ptsDiff := strength.ZScore(sa.Points, prm.Points.Mean, prm.Points.Std) -
		strength.ZScore(sb.Points, prm.Points.Mean, prm.Points.Std)
	gdDiff := strength.ZScore(sa.GameDiff, prm.GameDiff.Mean, prm.GameDiff.Std) -
		strength.ZScore(sb.GameDiff, prm.GameDiff.Mean, prm.GameDiff.Std)
	ex.Points = newFeature(sa.Points, sb.Points, ptsDiff, prm.Weights.Points)
	ex.GameDiff = newFeature(sa.GameDiff, sb.GameDiff, gdDiff, prm.Weights.GameDiff)

	raw := ex.Form.Contribution + ex.Points.Contribution + ex.GameDiff.Contribution + ex.H2H.Contribution

	if prm.Weights.Efficiency > 0 {
		n := strength.NewNormalizer(snap.Standings, snap.TeamStats)
		ea, eb := n.TeamEfficiency(a), n.TeamEfficiency(b)
		f := newFeature(ea, eb, ea-eb, prm.Weights.Efficiency)
		ex.Efficiency = &f
		raw += f.Contribution
	}

	if prm.Weights.DraftDepth > 0 {
		depth := players.DraftDepth(snap.PlayerPools)
		da, db := float64(depth[a]), float64(depth[b])
		r := draftRange(depth, prm.DraftDepthRange)
		f := newFeature(da, db, r.Norm(da)-r.Norm(db), prm.Weights.DraftDepth)
		ex.DraftDepth = &f
		raw += f.Contribution
	}

	ex.SeriesMultiplier = seriesMultiplier(req.BestOf, prm.SeriesStep)
	ex.RawScore = saturate(raw * ex.SeriesMultiplier)
	ex.ProbA, ex.ProbB = calibrate(ex.RawScore, prm.Alpha, prm.ProbFloor)
	return ex
}

func draftRange(depth map[string]int, floor Bounds) strength.Range {
	counts := make([]float64, 0, len(depth))
	for _, n := range depth {
		counts = append(counts, float64(n))
	}
	return strength.NewRange(counts, floor.Lo, floor.Hi)
}

func seriesMultiplier(bestOf int, step float64) float64 {
	return 1 + step*float64(max(0, bestOf-3))
}

// saturate keeps the sign of an overflowed score; NaN is no signal at all.
func saturate(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 1):
		return math.MaxFloat64
	case math.IsInf(x, -1):
		return -math.MaxFloat64
	}
	return x
}

func logistic(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// calibrate maps the score to (probA, probB). Working from |score| makes
// swapping the teams swap the outputs bit for bit, and clamping both sides
// keeps the short side from rounding below the floor.
func calibrate(score, alpha, floor float64) (float64, float64) {
	hi := strength.Clamp(logistic(alpha*math.Abs(score)), 0.5, 1-floor, 0.5)
	lo := strength.Clamp(1-hi, floor, 0.5, 0.5)
	if score >= 0 {
		return hi, lo
	}
	return lo, hi
}
