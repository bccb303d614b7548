package history

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

// DeriveStandings rebuilds a league table from the series in the store:
// one point per series won, game diff = games won − games lost. Ranks break
// ties on game diff, then slug.
func (s *Store) DeriveStandings() []snapshot.StandingsRow {
	type agg struct {
		wins, losses, gw, gl int
	}
	byTeam := make(map[string]*agg)
	get := func(team string) *agg {
		a, ok := byTeam[team]
		if !ok {
			a = &agg{}
			byTeam[team] = a
		}
		return a
	}

	for _, r := range s.records {
		home, away := get(r.Home), get(r.Away)
		home.gw += r.HomeGames
		home.gl += r.AwayGames
		away.gw += r.AwayGames
		away.gl += r.HomeGames
		switch r.Winner() {
		case r.Home:
			home.wins++
			away.losses++
		case r.Away:
			away.wins++
			home.losses++
		}
	}

	rows := make([]snapshot.StandingsRow, 0, len(byTeam))
	for team, a := range byTeam {
		rows = append(rows, snapshot.StandingsRow{
			Team:       team,
			Wins:       a.wins,
			Losses:     a.losses,
			Points:     snapshot.Ptr(float64(a.wins)),
			GameDiff:   snapshot.Ptr(float64(a.gw - a.gl)),
			MatchWL:    fmt.Sprintf("%d-%d", a.wins, a.losses),
			GameWL:     fmt.Sprintf("%d-%d", a.gw, a.gl),
			GameWins:   a.gw,
			GameLosses: a.gl,
		})
	}
	slices.SortFunc(rows, func(x, y snapshot.StandingsRow) int {
		if c := cmp.Compare(y.PointsOrZero(), x.PointsOrZero()); c != 0 {
			return c
		}
		if c := cmp.Compare(y.GameDiffOrZero(), x.GameDiffOrZero()); c != 0 {
			return c
		}
		return cmp.Compare(x.Team, y.Team)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
