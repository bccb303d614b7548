// Package players works on the per-player upstream feeds: hero pick pools,
// key players per team and hero-pool search.
package players

import (
	"strings"

	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

// ParsePlayerInfo splits "TEAM - Name". Everything after the first
// separator is the name, so "ONIC - Kiboy - Jr" keeps "Kiboy - Jr".
func ParsePlayerInfo(info string) (team, name string) {
	parts := strings.Split(info, " - ")
	team = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		name = strings.TrimSpace(strings.Join(parts[1:], " - "))
	}
	return team, name
}

// Enrich fills Team and Name on every pick from its player_info. The input
// is not modified.
func Enrich(rows []snapshot.HeroPoolRow) []snapshot.HeroPoolRow {
	out := make([]snapshot.HeroPoolRow, len(rows))
	for i, h := range rows {
		h.Players = append([]snapshot.PoolPick(nil), h.Players...)
		for j := range h.Players {
			p := &h.Players[j]
			if p.Info == "" {
				continue
			}
			p.Team, p.Name = ParsePlayerInfo(p.Info)
		}
		out[i] = h
	}
	return out
}

// FilterPools keeps the picks whose team equals team (case-insensitive) and
// whose name contains player. Heroes left without picks are dropped and
// Total is recounted. Empty filters return rows unchanged.
func FilterPools(rows []snapshot.HeroPoolRow, team, player string) []snapshot.HeroPoolRow {
	team = strings.ToLower(strings.TrimSpace(team))
	player = strings.ToLower(strings.TrimSpace(player))
	if team == "" && player == "" {
		return rows
	}

	var out []snapshot.HeroPoolRow
	for _, h := range rows {
		var kept []snapshot.PoolPick
		for _, p := range h.Players {
			if team != "" && strings.ToLower(p.Team) != team {
				continue
			}
			if player != "" && !strings.Contains(strings.ToLower(p.Name), player) {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			continue
		}
		h.Players = kept
		h.Total = len(kept)
		out = append(out, h)
	}
	return out
}

// DraftDepth counts the distinct heroes each team has picked, keyed by slug.
// Picks with an explicit zero count are ignored.
func DraftDepth(rows []snapshot.HeroPoolRow) map[string]int {
	seen := make(map[string]map[string]struct{})
	for _, h := range rows {
		hero := strings.ToLower(strings.TrimSpace(h.HeroName))
		if hero == "" {
			continue
		}
		for _, p := range h.Players {
			if p.Pick != nil && snapshot.Num(p.Pick) <= 0 {
				continue
			}
			team := p.Team
			if team == "" {
				team, _ = ParsePlayerInfo(p.Info)
			}
			key := slug.Resolve(team)
			if key == "" {
				continue
			}
			if seen[key] == nil {
				seen[key] = make(map[string]struct{})
			}
			seen[key][hero] = struct{}{}
		}
	}

	out := make(map[string]int, len(seen))
	for team, heroes := range seen {
		out[team] = len(heroes)
	}
	return out
}
