package predictor

import (
	"errors"
	"fmt"
	"math"

	"github.com/charleschow/mplid-predictor/internal/core/form"
	"github.com/charleschow/mplid-predictor/internal/core/strength"
)

// Weights of the linear score. Efficiency and DraftDepth are off at 0.
type Weights struct {
	Form       float64 `yaml:"form"`
	Points     float64 `yaml:"points"`
	GameDiff   float64 `yaml:"game_diff"`
	H2H        float64 `yaml:"h2h"`
	Efficiency float64 `yaml:"efficiency"`
	DraftDepth float64 `yaml:"draft_depth"`
}

// Typical is the league-typical location and spread used to z-score a
// standings column.
type Typical struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
}

// Params holds every tunable constant of the model.
type Params struct {
	Weights  Weights         `yaml:"weights"`
	Form     form.Options    `yaml:"form"`
	H2HTau   float64         `yaml:"h2h_tau"`
	Points   Typical         `yaml:"points"`
	GameDiff Typical         `yaml:"game_diff"`
	Strength strength.Params `yaml:"strength"`

	// Alpha is the logistic slope; ProbFloor bounds probA to
	// [ProbFloor, 1−ProbFloor].
	Alpha     float64 `yaml:"alpha"`
	ProbFloor float64 `yaml:"prob_floor"`

	// SeriesStep scales the score by 1 + step·max(0, bestOf−3).
	SeriesStep float64 `yaml:"series_step"`

	// DraftDepthRange is the minimum span of the hero-count normalization.
	DraftDepthRange Bounds `yaml:"draft_depth_range"`
}

type Bounds struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

func DefaultParams() Params {
	return Params{
		Weights: Weights{
			Form:     1.10,
			Points:   0.70,
			GameDiff: 0.45,
			H2H:      0.35,
		},
		Form:            form.DefaultOptions(),
		H2HTau:          form.DefaultH2HTau,
		Points:          Typical{Mean: 6, Std: 3},
		GameDiff:        Typical{Mean: 0, Std: 4},
		Strength:        strength.DefaultParams(),
		Alpha:           2.8,
		ProbFloor:       0.1,
		SeriesStep:      0.07,
		DraftDepthRange: Bounds{Lo: 5, Hi: 30},
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Validate reports every bad field at once.
func (p Params) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	w := p.Weights
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"form", w.Form}, {"points", w.Points}, {"game_diff", w.GameDiff},
		{"h2h", w.H2H}, {"efficiency", w.Efficiency}, {"draft_depth", w.DraftDepth},
	} {
		check(finite(f.v) && f.v >= 0, "weights.%s must be a finite non-negative number, got %v", f.name, f.v)
	}

	check(p.Form.LastN >= 1, "form.last_n must be at least 1, got %d", p.Form.LastN)
	check(finite(p.Form.Tau) && p.Form.Tau > 0, "form.tau must be positive, got %v", p.Form.Tau)
	check(finite(p.Form.Scale) && p.Form.Scale > 0, "form.scale must be positive, got %v", p.Form.Scale)
	check(finite(p.H2HTau) && p.H2HTau > 0, "h2h_tau must be positive, got %v", p.H2HTau)

	check(finite(p.Points.Mean), "points.mean must be finite")
	check(finite(p.Points.Std) && p.Points.Std > 0, "points.std must be positive, got %v", p.Points.Std)
	check(finite(p.GameDiff.Mean), "game_diff.mean must be finite")
	check(finite(p.GameDiff.Std) && p.GameDiff.Std > 0, "game_diff.std must be positive, got %v", p.GameDiff.Std)

	s := p.Strength
	check(finite(s.GameDiffFactor), "strength.game_diff_factor must be finite")
	check(finite(s.Scale) && s.Scale >= 0, "strength.scale must be non-negative, got %v", s.Scale)
	check(s.Min > 0 && s.Min <= strength.Neutral && s.Max >= strength.Neutral && finite(s.Max),
		"strength bounds must satisfy 0 < min <= 1 <= max, got [%v, %v]", s.Min, s.Max)

	check(finite(p.Alpha) && p.Alpha > 0, "alpha must be positive, got %v", p.Alpha)
	check(p.ProbFloor > 0 && p.ProbFloor < 0.5, "prob_floor must be in (0, 0.5), got %v", p.ProbFloor)
	check(finite(p.SeriesStep) && p.SeriesStep >= 0, "series_step must be non-negative, got %v", p.SeriesStep)
	r := p.DraftDepthRange
	check(finite(r.Lo) && finite(r.Hi) && r.Lo < r.Hi, "draft_depth_range must have lo < hi, got [%v, %v]", r.Lo, r.Hi)

	return errors.Join(errs...)
}
