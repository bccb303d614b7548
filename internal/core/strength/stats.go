package strength

import (
	"math"

	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// popStdDev is the population standard deviation; fewer than two values
// have no spread.
func popStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// ZScore is (x−μ)/σ, or 0 when σ is not a usable positive number.
func ZScore(x, mu, sigma float64) float64 {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return 0
	}
	return snapshot.Finite((x - mu) / sigma)
}

// Clamp bounds x to [lo, hi]. NaN collapses to fallback.
func Clamp(x, lo, hi, fallback float64) float64 {
	if math.IsNaN(x) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, x))
}

// MinMax maps x onto [0,1] between lo and hi; an empty range is 0.5.
func MinMax(x, lo, hi float64) float64 {
	if !(hi > lo) {
		return 0.5
	}
	return Clamp((x-lo)/(hi-lo), 0, 1, 0.5)
}

// Range is the observed span of one metric, widened by the floor values.
type Range struct {
	Lo, Hi float64
}

// NewRange spans xs and is widened to include floorLo and floorHi.
func NewRange(xs []float64, floorLo, floorHi float64) Range {
	r := Range{Lo: floorLo, Hi: floorHi}
	for _, x := range xs {
		r.Lo = math.Min(r.Lo, x)
		r.Hi = math.Max(r.Hi, x)
	}
	return r
}

// observedRange spans xs with no widening; empty input is a zero range.
func observedRange(xs []float64) Range {
	if len(xs) == 0 {
		return Range{}
	}
	r := Range{Lo: xs[0], Hi: xs[0]}
	for _, x := range xs[1:] {
		r.Lo = math.Min(r.Lo, x)
		r.Hi = math.Max(r.Hi, x)
	}
	return r
}

func (r Range) Norm(x float64) float64 { return MinMax(x, r.Lo, r.Hi) }
