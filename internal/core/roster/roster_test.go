package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

var now = time.Date(2025, 8, 27, 12, 0, 0, 0, time.UTC)

func transfer(daysAgo int, player, role, from, to string) snapshot.Transfer {
	d := now.AddDate(0, 0, -daysAgo)
	return snapshot.Transfer{Date: &d, Player: player, Role: role, FromTeam: from, ToTeam: to}
}

func opts(starters ...string) Options {
	o := DefaultOptions()
	o.Now = now
	o.Starters = starters
	return o
}

func TestStarterLeavingToday(t *testing.T) {
	ts := []snapshot.Transfer{transfer(0, "Kairi", "Jungler", "ONIC Esports", "Free Agent")}
	impact := ComputeImpact("onic", ts, opts("kairi"))
	assert.InDelta(t, -7.2, impact, 1e-12)
	assert.Equal(t, 52.8, ApplyImpact(60, -7.2))
}

func TestStarterLeavingTwoDaysAgo(t *testing.T) {
	ts := []snapshot.Transfer{transfer(2, "Kairi", "Jungler", "ONIC", "")}
	assert.InDelta(t, -4*1.8*(1-2.0/30), ComputeImpact("onic", ts, opts("Kairi")), 1e-12)
}

func TestMultipliers(t *testing.T) {
	ts := []snapshot.Transfer{
		transfer(0, "Coach Yeb", "Head Coach", "", "RRQ Hoshi"),
		transfer(0, "Sub", "Roamer", "RRQ", ""),
	}
	hits := Breakdown("rrq", ts, opts())
	require.Len(t, hits, 2)
	assert.Equal(t, 0.5, hits[0].Multiplier)
	assert.Equal(t, 1.0, hits[1].Multiplier)
	assert.InDelta(t, -6.0, ComputeImpact("rrq", ts, opts()), 1e-12)
}

func TestImpactNeverPositive(t *testing.T) {
	ts := []snapshot.Transfer{
		transfer(0, "A", "", "evos", ""),
		transfer(15, "B", "coach", "", "evos"),
		transfer(29, "C", "", "EVOS Glory", ""),
		transfer(-3, "D", "", "evos", ""), // dated in the future
	}
	impact := ComputeImpact("evos", ts, opts("C"))
	assert.Less(t, impact, 0.0)
}

func TestImpactZeroOnlyWithoutQualifyingTransfers(t *testing.T) {
	ts := []snapshot.Transfer{
		transfer(30, "Edge", "", "navi", ""), // freshness would be 0
		transfer(45, "Old", "", "navi", ""),
		{Player: "Undated", FromTeam: "navi"},
		transfer(1, "Elsewhere", "", "ae", "btr"),
	}
	assert.Equal(t, 0.0, ComputeImpact("navi", ts, opts()))
	assert.Empty(t, Breakdown("navi", ts, opts()))
	assert.Equal(t, 0.0, ComputeImpact("navi", nil, opts()))
}

func TestApplyImpactBounds(t *testing.T) {
	assert.Equal(t, 48.0, ApplyImpact(60, -40), "shift is capped at 12")
	assert.Equal(t, 1.0, ApplyImpact(5, -12))
	assert.Equal(t, 99.0, ApplyImpact(98.5, 12))
	assert.Equal(t, 55.6, ApplyImpact(55.56, 0))

	wide := Options{MaxShift: 20}
	assert.Equal(t, 40.0, wide.Apply(60, -40))
	assert.Equal(t, 48.0, Options{}.Apply(60, -40), "zero MaxShift takes the default")
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, LevelHigh, LevelOf(-7.2))
	assert.Equal(t, LevelMed, LevelOf(-4))
	assert.Equal(t, LevelLow, LevelOf(-2))
	assert.Equal(t, LevelNone, LevelOf(-1))
	assert.Equal(t, LevelNone, LevelOf(0))
}

func TestNewReportIsTwoSided(t *testing.T) {
	ts := []snapshot.Transfer{transfer(0, "Kairi", "Jungler", "onic", "")}
	r := NewReport("ONIC", "rrq", 0.7, ts, []string{"Kairi"}, nil, opts())

	assert.Equal(t, "onic", r.A.Team)
	assert.Equal(t, 70.0, r.A.BaseWinPct)
	assert.Equal(t, 62.8, r.A.AdjustedWinPct)
	assert.Equal(t, LevelHigh, r.A.Level)
	require.Len(t, r.A.Hits, 1)

	assert.Equal(t, "rrq", r.B.Team)
	assert.Equal(t, 30.0, r.B.BaseWinPct)
	assert.Equal(t, 30.0, r.B.AdjustedWinPct)
	assert.Equal(t, 0.0, r.B.Impact)
	assert.Equal(t, LevelNone, r.B.Level)
}

func TestParseDate(t *testing.T) {
	for in, want := range map[string]time.Time{
		"25 Aug 2025":          time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC),
		" 3  September 2025 ":  time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC),
		"2025-07-01":           time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		"2025-07-01T10:00:00Z": time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		"Jan 5, 2025":          time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
	} {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%q: got %v", in, got)
	}

	_, ok := ParseDate("TBA")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}
