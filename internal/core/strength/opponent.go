package strength

import (
	"maps"
	"slices"

	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

// Neutral is the opponent multiplier for a team with no standings row.
const Neutral = 1.0

// Standing is the part of a standings row the strength model reads.
type Standing struct {
	Points   float64
	GameDiff float64
}

// Params shapes the opponent-strength multiplier.
type Params struct {
	GameDiffFactor float64 `yaml:"game_diff_factor"`
	Scale          float64 `yaml:"scale"`
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
}

func DefaultParams() Params {
	return Params{GameDiffFactor: 0.5, Scale: 0.75, Min: 0.6, Max: 1.4}
}

// FromRows keys standings by resolved slug. The first row for a slug wins.
func FromRows(rows []snapshot.StandingsRow) map[string]Standing {
	out := make(map[string]Standing, len(rows))
	for _, r := range rows {
		key := slug.Resolve(r.Team)
		if key == "" {
			continue
		}
		if _, dup := out[key]; dup {
			continue
		}
		out[key] = Standing{Points: r.PointsOrZero(), GameDiff: r.GameDiffOrZero()}
	}
	return out
}

// BuildOpponentStrengthMap turns points + factor·game diff into a z-score
// across the league and maps it to 1 + scale·z, clamped to [Min, Max].
// Teams without a row get no entry; read the map through Lookup.
func BuildOpponentStrengthMap(standings map[string]Standing, p Params) map[string]float64 {
	// Sorted so the sums, and therefore the result bits, are reproducible.
	keys := slices.Sorted(maps.Keys(standings))
	raw := make([]float64, len(keys))
	for i, k := range keys {
		s := standings[k]
		raw[i] = snapshot.Finite(s.Points) + p.GameDiffFactor*snapshot.Finite(s.GameDiff)
	}

	mu := mean(raw)
	sigma := popStdDev(raw)

	out := make(map[string]float64, len(keys))
	for i, k := range keys {
		z := ZScore(raw[i], mu, sigma)
		out[k] = Clamp(1+p.Scale*z, p.Min, p.Max, Neutral)
	}
	return out
}

// Lookup reads a strength map, defaulting absent teams to Neutral.
func Lookup(m map[string]float64, team string) float64 {
	if v, ok := m[team]; ok {
		return v
	}
	return Neutral
}
