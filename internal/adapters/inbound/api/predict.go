package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/charleschow/mplid-predictor/internal/core/predictor"
	"github.com/charleschow/mplid-predictor/internal/core/roster"
	"github.com/charleschow/mplid-predictor/internal/core/slug"
	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
	"github.com/charleschow/mplid-predictor/internal/core/syncer"
	"github.com/charleschow/mplid-predictor/internal/events"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

type predictResponse struct {
	ID string `json:"id"`
	predictor.Explanation
	Roster *roster.Report `json:"roster,omitempty"`
}

// predictQuery validates home/away. It returns the resolved slugs or a
// message for a 400.
func predictQuery(home, away string) (a, b, msg string) {
	home, away = strings.TrimSpace(home), strings.TrimSpace(away)
	if home == "" || away == "" {
		return "", "", "home and away are required"
	}
	if strings.EqualFold(home, away) {
		return "", "", "home and away must be different teams"
	}
	var unknown []string
	for _, t := range []string{home, away} {
		if !slug.Known(t) {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		return "", "", fmt.Sprintf("unknown team %s; valid slugs: %s",
			strings.Join(unknown, ", "), strings.Join(slug.Slugs(), ", "))
	}
	a, b = slug.Resolve(home), slug.Resolve(away)
	if a == b {
		return "", "", "home and away must be different teams"
	}
	return a, b, ""
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer telemetry.Metrics.PredictLatency.Since(start)

	q := r.URL.Query()
	a, b, msg := predictQuery(q.Get("home"), q.Get("away"))
	if msg != "" {
		telemetry.Metrics.PredictRejected.Inc()
		badRequest(w, msg)
		return
	}
	bestOf := 0
	if s := q.Get("bo"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n%2 == 0 {
			telemetry.Metrics.PredictRejected.Inc()
			badRequest(w, "bo must be a positive odd number")
			return
		}
		bestOf = n
	}

	snap, transfers, err := h.fetchSnapshot(r.Context())
	if err != nil {
		upstreamFailed(w, "predict inputs", err)
		return
	}

	ex := h.pred.Predict(predictor.Request{TeamA: a, TeamB: b, BestOf: bestOf}, snap)
	resp := predictResponse{ID: uuid.NewString(), Explanation: ex}
	if transfers != nil {
		opt := h.opt.Roster
		opt.Now = h.now()
		rep := roster.NewReport(a, b, ex.ProbA, transfers,
			splitList(q.Get("startersA")), splitList(q.Get("startersB")), opt)
		resp.Roster = &rep
	}

	h.record(r.Context(), resp)
	telemetry.Metrics.PredictionsServed.Inc()
	cacheFor(w, 30*time.Second)
	writeJSON(w, http.StatusOK, resp)
}

// fetchSnapshot loads the three required feeds concurrently. Transfers are
// best effort: a failure there yields nil transfers, not an error.
func (h *Handler) fetchSnapshot(ctx context.Context) (predictor.Snapshot, []snapshot.Transfer, error) {
	var (
		snap      predictor.Snapshot
		transfers []snapshot.Transfer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := h.up.Standings(gctx)
		if err != nil {
			return fmt.Errorf("standings: %w", err)
		}
		snap.Standings = rows
		return nil
	})
	g.Go(func() error {
		rows, err := h.up.TeamStats(gctx)
		if err != nil {
			return fmt.Errorf("team stats: %w", err)
		}
		snap.TeamStats = rows
		return nil
	})
	g.Go(func() error {
		rows, err := h.up.PlayerPools(gctx)
		if err != nil {
			return fmt.Errorf("player pools: %w", err)
		}
		snap.PlayerPools = rows
		return nil
	})
	g.Go(func() error {
		rows, err := h.up.Transfers(gctx)
		if err != nil {
			telemetry.Debugf("api: transfers unavailable, roster section omitted: %v", err)
			return nil
		}
		transfers = nonNil(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return predictor.Snapshot{}, nil, err
	}
	return snap, transfers, nil
}

// record logs the prediction and announces it. Neither step can fail the
// request.
func (h *Handler) record(ctx context.Context, resp predictResponse) {
	ex := resp.Explanation
	var adjA, adjB *float64
	if resp.Roster != nil {
		adjA, adjB = &resp.Roster.A.AdjustedWinPct, &resp.Roster.B.AdjustedWinPct
	}

	if h.opt.Log != nil {
		err := h.opt.Log.LogPrediction(ctx, syncer.PredictionRecord{
			ID:             resp.ID,
			CreatedAt:      h.now(),
			TeamA:          ex.TeamA,
			TeamB:          ex.TeamB,
			BestOf:         ex.BestOf,
			ProbA:          ex.ProbA,
			ProbB:          ex.ProbB,
			RawScore:       ex.RawScore,
			HistoryVersion: ex.HistoryVersion,
			AdjustedA:      adjA,
			AdjustedB:      adjB,
		})
		if err != nil {
			telemetry.Warnf("api: log prediction %s: %v", resp.ID, err)
		}
	}

	if h.opt.Bus != nil {
		h.opt.Bus.Publish(events.New(events.EventPredictionServed, events.PredictionServedEvent{
			PredictionID: resp.ID,
			TeamA:        ex.TeamA,
			TeamB:        ex.TeamB,
			BestOf:       ex.BestOf,
			ProbA:        ex.ProbA,
			ProbB:        ex.ProbB,
			RawScore:     ex.RawScore,
			AdjustedA:    adjA,
			AdjustedB:    adjB,
		}))
	}
	telemetry.Infof("[PREDICT] %s vs %s bo%d → %.3f / %.3f (score %.3f)",
		ex.TeamA, ex.TeamB, ex.BestOf, ex.ProbA, ex.ProbB, ex.RawScore)
}
