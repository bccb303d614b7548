// mplid_mock serves the upstream stats endpoints from the compiled-in match
// history so the predictor can run end to end without network access.
//
// Usage:
//
//	go run ./cmd/mplid_mock                 # listens on :8790
//	MPL_BASE=http://localhost:8790/api/mplid go run ./cmd
//	go run ./cmd/mplid_mock -index          # standings returns the endpoint index
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/charleschow/mplid-predictor/internal/core/history"
	"github.com/charleschow/mplid-predictor/internal/core/slug"
)

const prefix = "/api/mplid"

func main() {
	addr := flag.String("addr", ":8790", "listen address")
	index := flag.Bool("index", false, "answer /standings/ with the endpoint index")
	delay := flag.Duration("delay", 0, "artificial latency per request")
	flag.Parse()

	h := history.Default()
	now := time.Now().UTC()

	routes := map[string]func() any{
		"/standings/":    func() any { return standings(h) },
		"/teams/":        func() any { return teams() },
		"/team-stats/":   func() any { return teamStats(h) },
		"/player-stats/": func() any { return playerStats() },
		"/player-pools/": func() any { return playerPools() },
		"/transfers/":    func() any { return transfers(now) },
		"/hero-pools/":   func() any { return heroPools() },
	}
	if *index {
		routes["/standings/"] = func() any { return endpointIndex(routes) }
	}

	mux := http.NewServeMux()
	for path, body := range routes {
		mux.HandleFunc("GET "+prefix+path, func(w http.ResponseWriter, r *http.Request) {
			if *delay > 0 {
				time.Sleep(*delay)
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(body()); err != nil {
				log.Printf("encode %s: %v", path, err)
			}
			log.Printf("GET %s", r.URL.Path)
		})
	}

	log.Printf("mock upstream on %s%s  (history %s)", *addr, prefix, h.Version())
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func endpointIndex(routes map[string]func() any) []map[string]string {
	var out []map[string]string
	for path := range routes {
		out = append(out, map[string]string{"name": strings.Trim(path, "/"), "url": prefix + path})
	}
	return out
}

func standings(h *history.Store) []map[string]any {
	var out []map[string]any
	for _, r := range h.DeriveStandings() {
		out = append(out, map[string]any{
			"rank":         r.Rank,
			"team_name":    teamName(r.Team),
			"match_point":  r.PointsOrZero(),
			"match_wl":     r.MatchWL,
			"net_game_win": fmt.Sprintf("%+d", int(r.GameDiffOrZero())),
			"game_wl":      r.GameWL,
		})
	}
	return out
}

func teams() []map[string]any {
	var out []map[string]any
	for i, t := range slug.Teams() {
		out = append(out, map[string]any{
			"id":        i + 1,
			"team_name": t.Name,
			"tag":       t.Tag,
			"team_url":  "https://id-mpl.com/team/" + t.Slug,
		})
	}
	return out
}

// teamStats scales plausible per-game numbers by games won and lost.
func teamStats(h *history.Store) []map[string]any {
	var out []map[string]any
	for _, r := range h.DeriveStandings() {
		w, l := float64(r.GameWins), float64(r.GameLosses)
		out = append(out, map[string]any{
			"team_name": teamName(r.Team),
			"kills":     18*w + 11*l,
			"deaths":    10*w + 17*l,
			"assists":   40*w + 24*l,
			"gold":      fmt.Sprintf("%.0f", 68000*w+59000*l),
			"damage":    310000*w + 270000*l,
			"lord":      1.4*w + 0.5*l,
			"tortoise":  1.8*w + 0.9*l,
			"tower":     8*w + 3*l,
		})
	}
	return out
}

func playerStats() []map[string]any {
	return []map[string]any{
		{"player_name": "Kairi", "player_logo": "/img/onic-kairi.png", "lane": "Jungle", "total_games": 12, "avg_kda": 7.1, "kill_participation": "71.5%"},
		{"player_name": "Sanz", "player_logo": "/img/onic-sanz.png", "lane": "Mid", "total_games": 12, "avg_kda": 5.4, "kill_participation": "68%"},
		{"player_name": "Alberttt", "player_logo": "/img/rrq-alberttt.png", "lane": "Jungle", "total_games": 10, "avg_kda": 4.9, "kill_participation": "64%"},
		{"player_name": "Skylar", "player_logo": "/img/rrq-skylar.png", "lane": "Gold", "total_games": 10, "avg_kda": 5.0, "kill_participation": "59%"},
	}
}

func playerPools() []map[string]any {
	return []map[string]any{
		{"hero_name": "Ling", "total": 2, "players": []map[string]any{
			{"player_info": "ONIC - Kairi", "pick": 4},
			{"player_info": "RRQ - Alberttt", "pick": 2},
		}},
		{"hero_name": "Fanny", "total": 1, "players": []map[string]any{
			{"player_info": "ONIC - Kairi", "pick": 1},
		}},
		{"hero_name": "Valentina", "total": 1, "players": []map[string]any{
			{"player_info": "ONIC - Sanz", "pick": 3},
		}},
	}
}

func transfers(now time.Time) []map[string]any {
	date := func(daysAgo int) string { return now.AddDate(0, 0, -daysAgo).Format("2 Jan 2006") }
	return []map[string]any{
		{"transfer_date": date(2), "player_name": "Skylar", "player_role": "Gold Lane", "from_team_name": "RRQ Hoshi", "to_team_name": "Free Agent"},
		{"transfer_date": date(9), "player_name": "Coach Yeb", "player_role": "Head Coach", "from_team_name": "", "to_team_name": "EVOS"},
		{"transfer_date": date(45), "player_name": "Drian", "player_role": "Roam", "from_team_name": "Bigetron", "to_team_name": "Alter Ego"},
	}
}

func heroPools() []map[string]any {
	return []map[string]any{
		{"player_name": "Kairi", "heroes": []string{"Ling", "Fanny", "Hayabusa"}},
		{"player_name": "Sanz", "heroes": []string{"Valentina", "Pharsa"}},
	}
}

func teamName(s string) string {
	if t, ok := slug.Lookup(s); ok {
		return t.Name
	}
	return s
}
