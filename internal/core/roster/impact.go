// Package roster turns recent transfers into a non-positive adjustment of a
// team's win percentage. It is reported beside the model probability and
// never folded into it.
package roster

import (
	"math"
	"strings"
	"time"

	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

// Options tunes ComputeImpact. Starters and Now are per call.
type Options struct {
	WindowDays        int     `yaml:"window_days"`
	Base              float64 `yaml:"base"`
	CoachMultiplier   float64 `yaml:"coach_multiplier"`
	StarterMultiplier float64 `yaml:"starter_multiplier"`
	MaxShift          float64 `yaml:"max_shift"`

	Starters []string  `yaml:"-"`
	Now      time.Time `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		WindowDays:        30,
		Base:              4,
		CoachMultiplier:   0.5,
		StarterMultiplier: 1.8,
		MaxShift:          12,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WindowDays < 1 {
		o.WindowDays = d.WindowDays
	}
	if !(o.Base > 0) {
		o.Base = d.Base
	}
	if !(o.CoachMultiplier > 0) {
		o.CoachMultiplier = d.CoachMultiplier
	}
	if !(o.StarterMultiplier > 0) {
		o.StarterMultiplier = d.StarterMultiplier
	}
	if !(o.MaxShift > 0) {
		o.MaxShift = d.MaxShift
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Hit is one transfer that counted against a team.
type Hit struct {
	Player     string  `json:"player"`
	Role       string  `json:"role,omitempty"`
	DaysAgo    int     `json:"daysAgo"`
	Freshness  float64 `json:"freshness"`
	Multiplier float64 `json:"multiplier"`
	Penalty    float64 `json:"penalty"`
}

// Breakdown lists the transfers in or out of team inside the window.
// Undated rows are skipped, as are rows exactly WindowDays old, whose
// freshness would be zero.
func Breakdown(team string, transfers []snapshot.Transfer, opt Options) []Hit {
	opt = opt.withDefaults()
	key := slug.Resolve(team)
	if key == "" {
		return nil
	}
	starters := make(map[string]struct{}, len(opt.Starters))
	for _, s := range opt.Starters {
		starters[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	var hits []Hit
	for _, t := range transfers {
		if t.Date == nil {
			continue
		}
		if slug.Resolve(t.FromTeam) != key && slug.Resolve(t.ToTeam) != key {
			continue
		}
		days := int(math.Floor(opt.Now.Sub(*t.Date).Hours() / 24))
		days = max(0, days)
		if days >= opt.WindowDays {
			continue
		}

		mul := 1.0
		if t.IsCoach() {
			mul = opt.CoachMultiplier
		} else if _, ok := starters[strings.ToLower(strings.TrimSpace(t.Player))]; ok {
			mul = opt.StarterMultiplier
		}
		fresh := 1 - float64(days)/float64(opt.WindowDays)
		hits = append(hits, Hit{
			Player:     t.Player,
			Role:       t.Role,
			DaysAgo:    days,
			Freshness:  fresh,
			Multiplier: mul,
			Penalty:    -opt.Base * mul * fresh,
		})
	}
	return hits
}

// ComputeImpact sums the penalties of Breakdown. It is never positive and
// is exactly 0 when nothing qualifies.
func ComputeImpact(team string, transfers []snapshot.Transfer, opt Options) float64 {
	var impact float64
	for _, h := range Breakdown(team, transfers, opt) {
		impact += h.Penalty
	}
	return impact
}

// ApplyImpact shifts a 0–100 win percentage by impact bounded to
// ±DefaultOptions().MaxShift, clamps to [1, 99] and rounds to one decimal.
func ApplyImpact(winPct, impact float64) float64 {
	return applyImpact(winPct, impact, DefaultOptions().MaxShift)
}

// Apply is ApplyImpact bounded by o.MaxShift.
func (o Options) Apply(winPct, impact float64) float64 {
	return applyImpact(winPct, impact, o.withDefaults().MaxShift)
}

func applyImpact(winPct, impact, maxShift float64) float64 {
	delta := math.Max(-maxShift, math.Min(maxShift, snapshot.Finite(impact)))
	adjusted := math.Max(1, math.Min(99, snapshot.Finite(winPct)+delta))
	return math.Round(adjusted*10) / 10
}
