package roster

import (
	"math"

	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

type Level string

const (
	LevelNone Level = ""
	LevelLow  Level = "Low"
	LevelMed  Level = "Med"
	LevelHigh Level = "High"
)

// LevelOf buckets an impact for display. Anything at or above −1 is noise.
func LevelOf(impact float64) Level {
	switch {
	case impact < -6:
		return LevelHigh
	case impact < -3:
		return LevelMed
	case impact < -1:
		return LevelLow
	}
	return LevelNone
}

type Side struct {
	Team           string  `json:"team"`
	Impact         float64 `json:"impact"`
	Level          Level   `json:"level,omitempty"`
	Hits           []Hit   `json:"hits,omitempty"`
	BaseWinPct     float64 `json:"baseWinPct"`
	AdjustedWinPct float64 `json:"adjustedWinPct"`
}

// Report holds both teams' roster adjustments for one matchup.
type Report struct {
	A Side `json:"a"`
	B Side `json:"b"`
}

// NewReport adjusts each side's model win percentage independently.
// probA is the model probability of team A, in [0, 1].
func NewReport(teamA, teamB string, probA float64, transfers []snapshot.Transfer, startersA, startersB []string, opt Options) Report {
	opt = opt.withDefaults()
	probA = math.Max(0, math.Min(1, snapshot.Finite(probA)))

	side := func(team string, base float64, starters []string) Side {
		o := opt
		o.Starters = starters
		hits := Breakdown(team, transfers, o)
		var impact float64
		for _, h := range hits {
			impact += h.Penalty
		}
		return Side{
			Team:           slug.Resolve(team),
			Impact:         math.Round(impact*100) / 100,
			Level:          LevelOf(impact),
			Hits:           hits,
			BaseWinPct:     math.Round(base*1000) / 10,
			AdjustedWinPct: applyImpact(base*100, impact, opt.MaxShift),
		}
	}
	return Report{
		A: side(teamA, probA, startersA),
		B: side(teamB, 1-probA, startersB),
	}
}
