package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charleschow/mplid-predictor/internal/core/players"
	"github.com/charleschow/mplid-predictor/internal/core/roster"
	"github.com/charleschow/mplid-predictor/internal/core/slug"
)

const keyPlayersPerTeam = 2

func (h *Handler) keyPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := strings.TrimSpace(q.Get("teamA")), strings.TrimSpace(q.Get("teamB"))
	if a == "" || b == "" {
		badRequest(w, "teamA and teamB are required")
		return
	}
	if slug.Resolve(a) == slug.Resolve(b) {
		badRequest(w, "teamA and teamB must be different teams")
		return
	}
	rows, err := h.up.PlayerStats(r.Context())
	if err != nil {
		upstreamFailed(w, "player stats", err)
		return
	}
	writeJSON(w, http.StatusOK, players.KeyPlayers(rows, a, b, keyPlayersPerTeam))
}

func (h *Handler) playerPools(w http.ResponseWriter, r *http.Request) {
	rows, err := h.up.PlayerPools(r.Context())
	if err != nil {
		upstreamFailed(w, "player pools", err)
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, nonNil(players.FilterPools(rows, q.Get("team"), q.Get("player"))))
}

func (h *Handler) heroPools(w http.ResponseWriter, r *http.Request) {
	list, err := h.up.HeroPools(r.Context())
	if err != nil {
		upstreamFailed(w, "hero pools", err)
		return
	}
	player := strings.TrimSpace(r.URL.Query().Get("player"))
	if player == "" {
		cacheFor(w, 2*time.Minute)
		writeJSON(w, http.StatusOK, nonNil(list))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player":  player,
		"results": nonNil(players.SearchHeroPools(list, player)),
	})
}

type rosterImpactResponse struct {
	Team           string       `json:"team"`
	Impact         float64      `json:"impact"`
	Level          roster.Level `json:"level,omitempty"`
	Hits           []roster.Hit `json:"hits"`
	BaseWinPct     float64      `json:"baseWinPct"`
	AdjustedWinPct float64      `json:"adjustedWinPct"`
}

// rosterImpact adjusts a caller-supplied base win percentage for one team.
func (h *Handler) rosterImpact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	team := strings.TrimSpace(q.Get("team"))
	if team == "" {
		badRequest(w, "team is required")
		return
	}
	base := 50.0
	if s := q.Get("base"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 100 {
			badRequest(w, "base must be a win percentage between 0 and 100")
			return
		}
		base = v
	}

	transfers, err := h.up.Transfers(r.Context())
	if err != nil {
		upstreamFailed(w, "transfers", err)
		return
	}
	opt := h.opt.Roster
	opt.Now = h.now()
	opt.Starters = splitList(q.Get("starters"))

	hits := roster.Breakdown(team, transfers, opt)
	var impact float64
	for _, x := range hits {
		impact += x.Penalty
	}
	writeJSON(w, http.StatusOK, rosterImpactResponse{
		Team:           slug.Resolve(team),
		Impact:         math.Round(impact*100) / 100,
		Level:          roster.LevelOf(impact),
		Hits:           nonNil(hits),
		BaseWinPct:     base,
		AdjustedWinPct: opt.Apply(base, impact),
	})
}
