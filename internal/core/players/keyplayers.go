package players

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

// Player rows carry no team field; the logo path is the only reliable link.
var logoPatterns = map[string]*regexp.Regexp{
	"ae":   regexp.MustCompile(`(?i)/ae[-_]`),
	"btr":  regexp.MustCompile(`(?i)btr[_-]vit|bigetron|/btr`),
	"dewa": regexp.MustCompile(`(?i)/dewa[-_]`),
	"evos": regexp.MustCompile(`(?i)/evos[-_]`),
	"geek": regexp.MustCompile(`(?i)/geek[-_]`),
	"onic": regexp.MustCompile(`(?i)/onic[-_]`),
	"rrq":  regexp.MustCompile(`(?i)/rrq[-_]`),
	"tlid": regexp.MustCompile(`(?i)/tlid[-_]|team[-_]?liquid`),
	"navi": regexp.MustCompile(`(?i)/navi[-_]`),
}

func logoPattern(team string) *regexp.Regexp {
	if re, ok := logoPatterns[team]; ok {
		return re
	}
	return regexp.MustCompile(`(?i)/` + regexp.QuoteMeta(team) + `[-_]`)
}

// TeamPlayers returns the rows whose player logo belongs to team.
func TeamPlayers(rows []snapshot.PlayerStatsRow, team string) []snapshot.PlayerStatsRow {
	re := logoPattern(slug.Resolve(team))
	var out []snapshot.PlayerStatsRow
	for _, r := range rows {
		if r.PlayerLogo != "" && re.MatchString(r.PlayerLogo) {
			out = append(out, r)
		}
	}
	return out
}

// Top orders by average KDA, then kill participation, then games played,
// all descending, and returns at most n rows.
func Top(rows []snapshot.PlayerStatsRow, n int) []snapshot.PlayerStatsRow {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b snapshot.PlayerStatsRow) int {
		return cmp.Or(
			cmp.Compare(snapshot.Num(b.AvgKDA), snapshot.Num(a.AvgKDA)),
			cmp.Compare(snapshot.Num(b.KillParticipation), snapshot.Num(a.KillParticipation)),
			cmp.Compare(snapshot.Num(b.TotalGames), snapshot.Num(a.TotalGames)),
		)
	})
	return sorted[:min(max(n, 0), len(sorted))]
}

// ParsePercent reads "55%", "55.5 %" or a bare number. Garbage is 0.
func ParsePercent(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return snapshot.Finite(v)
}

type TeamKeyPlayers struct {
	ID      string                    `json:"id"`
	Players []snapshot.PlayerStatsRow `json:"players"`
	Count   int                       `json:"count"`
}

type KeyPlayersReport struct {
	TeamA TeamKeyPlayers `json:"teamA"`
	TeamB TeamKeyPlayers `json:"teamB"`
}

// KeyPlayers picks the top n players of both teams.
func KeyPlayers(rows []snapshot.PlayerStatsRow, teamA, teamB string, n int) KeyPlayersReport {
	side := func(team string) TeamKeyPlayers {
		id := slug.Resolve(team)
		list := TeamPlayers(rows, id)
		return TeamKeyPlayers{ID: id, Players: Top(list, n), Count: len(list)}
	}
	return KeyPlayersReport{TeamA: side(teamA), TeamB: side(teamB)}
}
