// Package syncer copies upstream teams, standings and team stats into a
// local SQLite store and logs the predictions the API serves.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
	"github.com/charleschow/mplid-predictor/internal/events"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

// Source is the upstream the syncer reads.
type Source interface {
	Teams(ctx context.Context) ([]snapshot.TeamRow, error)
	Standings(ctx context.Context) ([]snapshot.StandingsRow, error)
	TeamStats(ctx context.Context) ([]snapshot.TeamStatsRow, error)
}

type Syncer struct {
	src    Source
	store  *Store
	bus    *events.Bus
	season string

	// one run at a time; cron and the ticker may overlap
	mu sync.Mutex
}

func New(src Source, store *Store, bus *events.Bus, season string) *Syncer {
	return &Syncer{src: src, store: store, bus: bus, season: season}
}

func (s *Syncer) Store() *Store { return s.store }

type Result struct {
	RunID    string        `json:"run_id"`
	Season   string        `json:"season"`
	Counts   Counts        `json:"counts"`
	Duration time.Duration `json:"duration_ns"`
}

// Run fetches the three feeds concurrently and applies them in one
// transaction. Every run is recorded, failed ones included.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := Result{RunID: uuid.NewString(), Season: s.season}
	start := time.Now()
	telemetry.Metrics.SyncRuns.Inc()

	counts, err := s.run(ctx)
	res.Counts = counts
	res.Duration = time.Since(start)

	if recErr := s.store.recordRun(context.WithoutCancel(ctx), res.RunID, s.season, start, time.Now(), counts, err); recErr != nil {
		telemetry.Warnf("syncer: %v", recErr)
	}

	if err != nil {
		telemetry.Metrics.SyncErrors.Inc()
		telemetry.Errorf("syncer: run %s failed: %v", res.RunID, err)
		s.publish(events.EventSyncFailed, events.SyncFailedEvent{RunID: res.RunID, Season: s.season, Error: err.Error()})
		return res, err
	}

	telemetry.Infof("syncer: run %s season=%s teams=%d standings=%d team_stats=%d (%s)",
		res.RunID, s.season, counts.Teams, counts.Standings, counts.TeamStats, res.Duration.Round(time.Millisecond))
	s.publish(events.EventSyncCompleted, events.SyncCompletedEvent{
		RunID:      res.RunID,
		Season:     s.season,
		Teams:      counts.Teams,
		Standings:  counts.Standings,
		TeamStats:  counts.TeamStats,
		DurationMS: res.Duration.Milliseconds(),
	})
	return res, nil
}

func (s *Syncer) run(ctx context.Context) (Counts, error) {
	var (
		teams     []snapshot.TeamRow
		standings []snapshot.StandingsRow
		stats     []snapshot.TeamStatsRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teams, err = s.src.Teams(gctx)
		if err != nil {
			return fmt.Errorf("fetch teams: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		standings, err = s.src.Standings(gctx)
		if err != nil {
			return fmt.Errorf("fetch standings: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		stats, err = s.src.TeamStats(gctx)
		if err != nil {
			return fmt.Errorf("fetch team stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return s.store.Apply(ctx, s.season, teams, standings, stats)
}

func (s *Syncer) publish(t events.EventType, payload any) {
	if s.bus != nil {
		s.bus.Publish(events.New(t, payload))
	}
}

// Loop runs once immediately and then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (s *Syncer) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, _ = s.Run(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
