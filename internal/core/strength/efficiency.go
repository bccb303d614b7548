package strength

import (
	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

// Sub-weights of the two [0,1] blends.
const (
	standPointsW = 0.65
	standGDiffW  = 0.35

	effPointsW = 0.20
	effGDiffW  = 0.15
	effKDAW    = 0.20
	effObjW    = 0.20
	effGoldW   = 0.15
	effDamageW = 0.10
)

// Normalizer places every team on [0,1] scales relative to the league.
type Normalizer struct {
	standings map[string]Standing
	stats     map[string]snapshot.TeamStatsRow

	points, gdiff          Range
	kda, obj, gold, damage Range
}

func NewNormalizer(standings []snapshot.StandingsRow, stats []snapshot.TeamStatsRow) *Normalizer {
	n := &Normalizer{
		standings: FromRows(standings),
		stats:     make(map[string]snapshot.TeamStatsRow, len(stats)),
	}

	var pts, gd []float64
	for _, s := range n.standings {
		pts = append(pts, s.Points)
		gd = append(gd, s.GameDiff)
	}
	n.points = NewRange(pts, 0, 1)
	n.gdiff = NewRange(gd, -10, 10)

	var kda, obj, gold, dmg []float64
	for _, r := range stats {
		key := slug.Resolve(r.TeamName)
		if key == "" {
			continue
		}
		if _, dup := n.stats[key]; dup {
			continue
		}
		n.stats[key] = r
		kda = append(kda, r.KDAProxy())
		obj = append(obj, r.ObjectiveControl())
		gold = append(gold, snapshot.Num(r.Gold))
		dmg = append(dmg, snapshot.Num(r.Damage))
	}
	n.kda = NewRange(kda, 0, 5)
	n.obj = NewRange(obj, 0, 50)
	n.gold = observedRange(gold)
	n.damage = observedRange(dmg)
	return n
}

// HasStats reports whether the team appears in the team-stats snapshot.
func (n *Normalizer) HasStats(team string) bool {
	_, ok := n.stats[slug.Resolve(team)]
	return ok
}

// Standing returns the team's standings values, zero when absent.
func (n *Normalizer) Standing(team string) (Standing, bool) {
	s, ok := n.standings[slug.Resolve(team)]
	return s, ok
}

// StandingsStrength blends normalized points and game diff.
func (n *Normalizer) StandingsStrength(team string) float64 {
	s := n.standings[slug.Resolve(team)]
	return standPointsW*n.points.Norm(s.Points) + standGDiffW*n.gdiff.Norm(s.GameDiff)
}

// TeamEfficiency blends standings with in-game output. Teams missing from
// team stats fall back to StandingsStrength.
func (n *Normalizer) TeamEfficiency(team string) float64 {
	key := slug.Resolve(team)
	r, ok := n.stats[key]
	if !ok {
		return n.StandingsStrength(key)
	}
	s := n.standings[key]
	return effPointsW*n.points.Norm(s.Points) +
		effGDiffW*n.gdiff.Norm(s.GameDiff) +
		effKDAW*n.kda.Norm(r.KDAProxy()) +
		effObjW*n.obj.Norm(r.ObjectiveControl()) +
		effGoldW*n.gold.Norm(snapshot.Num(r.Gold)) +
		effDamageW*n.damage.Norm(snapshot.Num(r.Damage))
}
