package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charleschow/mplid-predictor/internal/adapters/outbound/mplid_http"
	"github.com/charleschow/mplid-predictor/internal/core/predictor"
	"github.com/charleschow/mplid-predictor/internal/core/roster"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
	"github.com/charleschow/mplid-predictor/internal/core/syncer"
	"github.com/charleschow/mplid-predictor/internal/events"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

// Upstream is the stats feed the handlers read.
type Upstream interface {
	Standings(ctx context.Context) ([]snapshot.StandingsRow, error)
	Teams(ctx context.Context) ([]snapshot.TeamRow, error)
	TeamStats(ctx context.Context) ([]snapshot.TeamStatsRow, error)
	PlayerStats(ctx context.Context) ([]snapshot.PlayerStatsRow, error)
	PlayerPools(ctx context.Context) ([]snapshot.HeroPoolRow, error)
	Transfers(ctx context.Context) ([]snapshot.Transfer, error)
	HeroPools(ctx context.Context) ([]snapshot.PlayerHeroPool, error)
}

type SyncRunner interface {
	Run(ctx context.Context) (syncer.Result, error)
}

type PredictionLog interface {
	LogPrediction(ctx context.Context, p syncer.PredictionRecord) error
	RecentPredictions(ctx context.Context, limit int) ([]syncer.PredictionRecord, error)
}

// Options carries the optional collaborators. Nil ones disable their
// routes or side effects.
type Options struct {
	Bus        *events.Bus
	Sync       SyncRunner
	Log        PredictionLog
	CronSecret string
	Roster     roster.Options
}

// Handler serves the public JSON API.
//
// Routes:
//
//	GET  /health
//	GET  /api/predict?home=&away=[&bo=][&startersA=][&startersB=]
//	GET  /api/predictions?limit=
//	GET  /api/standings
//	GET  /api/teams
//	GET  /api/transfers
//	GET  /api/key-players?teamA=&teamB=
//	GET  /api/player-pools?team=&player=
//	GET  /api/hero-pools?player=
//	GET  /api/roster-impact?team=&base=[&starters=]
//	POST /api/cron/sync
type Handler struct {
	up   Upstream
	pred *predictor.Predictor
	opt  Options
	now  func() time.Time
}

func NewHandler(up Upstream, pred *predictor.Predictor, opt Options) *Handler {
	return &Handler{up: up, pred: pred, opt: opt, now: time.Now}
}

// RegisterRoutes wires HTTP routes onto the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.healthCheck)
	mux.HandleFunc("GET /api/predict", h.predict)
	mux.HandleFunc("GET /api/predictions", h.recentPredictions)
	mux.HandleFunc("GET /api/standings", h.standings)
	mux.HandleFunc("GET /api/teams", h.teams)
	mux.HandleFunc("GET /api/transfers", h.transfers)
	mux.HandleFunc("GET /api/key-players", h.keyPlayers)
	mux.HandleFunc("GET /api/player-pools", h.playerPools)
	mux.HandleFunc("GET /api/hero-pools", h.heroPools)
	mux.HandleFunc("GET /api/roster-impact", h.rosterImpact)
	mux.HandleFunc("POST /api/cron/sync", h.cronSync)
}

func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"history": h.pred.History().Version(),
		"metrics": map[string]any{
			"predictions_served": telemetry.Metrics.PredictionsServed.Value(),
			"upstream_fetches":   telemetry.Metrics.UpstreamFetches.Value(),
			"upstream_errors":    telemetry.Metrics.UpstreamErrors.Value(),
			"cache_hits":         telemetry.Metrics.CacheHits.Value(),
			"rate_limited":       telemetry.Metrics.RateLimited.Value(),
			"ws_clients":         telemetry.Metrics.WSClients.Value(),
			"predict_p50_ms":     telemetry.Metrics.PredictLatency.P50().Milliseconds(),
			"upstream_p99_ms":    telemetry.Metrics.UpstreamLatency.P99().Milliseconds(),
		},
	})
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("api: encode response: %v", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: msg})
}

// upstreamFailed maps a fetch error to 502.
func upstreamFailed(w http.ResponseWriter, what string, err error) {
	telemetry.Warnf("api: %s: %v", what, err)
	body := errorBody{Error: "upstream_unreachable", Message: what + " unavailable"}
	var se *mplid_http.StatusError
	switch {
	case errors.Is(err, mplid_http.ErrIndexPayload):
		body = errorBody{Error: "index_payload", Message: "upstream returned its endpoint index instead of " + what}
	case errors.As(err, &se):
		body = errorBody{Error: "upstream_error", Message: what + " unavailable", Status: se.Code}
	}
	writeJSON(w, http.StatusBadGateway, body)
}

// cacheFor mirrors the upstream revalidation window for downstream caches.
func cacheFor(w http.ResponseWriter, d time.Duration) {
	s := strconv.Itoa(int(d.Seconds()))
	w.Header().Set("Cache-Control", "public, s-maxage="+s+", stale-while-revalidate="+s)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *Handler) standings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.up.Standings(r.Context())
	if err != nil {
		upstreamFailed(w, "standings", err)
		return
	}
	cacheFor(w, time.Minute)
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (h *Handler) teams(w http.ResponseWriter, r *http.Request) {
	rows, err := h.up.Teams(r.Context())
	if err != nil {
		upstreamFailed(w, "teams", err)
		return
	}
	w.Header().Set("X-Data-Fetched-At", h.now().UTC().Format(time.RFC3339))
	cacheFor(w, 5*time.Minute)
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (h *Handler) transfers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.up.Transfers(r.Context())
	if err != nil {
		upstreamFailed(w, "transfers", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (h *Handler) recentPredictions(w http.ResponseWriter, r *http.Request) {
	if h.opt.Log == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "store_disabled"})
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	rows, err := h.opt.Log.RecentPredictions(r.Context(), min(limit, 200))
	if err != nil {
		telemetry.Errorf("api: recent predictions: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "store_error"})
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (h *Handler) cronSync(w http.ResponseWriter, r *http.Request) {
	if h.opt.CronSecret != "" && r.Header.Get("Authorization") != "Bearer "+h.opt.CronSecret {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	if h.opt.Sync == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "sync_disabled"})
		return
	}
	res, err := h.opt.Sync.Run(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error(), "run_id": res.RunID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": res})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
