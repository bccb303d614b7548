package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
	"github.com/charleschow/mplid-predictor/internal/events"
)

type fakeSource struct {
	teams     []snapshot.TeamRow
	standings []snapshot.StandingsRow
	stats     []snapshot.TeamStatsRow
	err       error
}

func (f *fakeSource) Teams(context.Context) ([]snapshot.TeamRow, error) { return f.teams, nil }
func (f *fakeSource) Standings(context.Context) ([]snapshot.StandingsRow, error) {
	return f.standings, f.err
}
func (f *fakeSource) TeamStats(context.Context) ([]snapshot.TeamStatsRow, error) { return f.stats, nil }

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "nested", "mplid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func source() *fakeSource {
	return &fakeSource{
		teams: []snapshot.TeamRow{
			{ID: "onic", Name: "ONIC", Tag: "ONIC", Logo: "onic.png"},
			{ID: "7", Name: "RRQ Hoshi", Tag: "RRQ"},
		},
		standings: []snapshot.StandingsRow{
			{Rank: 1, Team: "ONIC", Wins: 5, Losses: 0, Points: snapshot.Ptr(10), GameDiff: snapshot.Ptr(8)},
			{Rank: 2, Team: "RRQ HOSHI", Wins: 2, Losses: 3, Points: snapshot.Ptr(4)},
			{Rank: 3, Team: "Dewa United Esports", Wins: 0, Losses: 0},
		},
		stats: []snapshot.TeamStatsRow{
			{TeamName: "ONIC", Kills: snapshot.Ptr(120), Deaths: snapshot.Ptr(50)},
			{TeamName: "Geek Fam ID", Kills: snapshot.Ptr(70)},
		},
	}
}

func TestSeededRating(t *testing.T) {
	assert.Equal(t, 1500+0.5*400+8*8+10*5.0, SeededRating(5, 0, 8, 10))
	assert.Equal(t, 1500-0.5*400.0, SeededRating(0, 0, 0, 0), "no games counts as a single game")
	assert.Equal(t, 1500.0, SeededRating(2, 2, 0, 0))
}

func TestRunStoresSnapshotAndPublishes(t *testing.T) {
	store := openStore(t)
	bus := events.NewBus()
	var published []events.SyncCompletedEvent
	bus.Subscribe(func(e events.Event) error {
		published = append(published, e.Payload.(events.SyncCompletedEvent))
		return nil
	}, events.EventSyncCompleted)

	res, err := New(source(), store, bus, "S16").Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{Teams: 2, Standings: 3, TeamStats: 2}, res.Counts)
	require.Len(t, published, 1)
	assert.Equal(t, res.RunID, published[0].RunID)

	ctx := context.Background()
	teams, err := store.Teams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 4, "dewa and geek get bare rows")
	assert.Equal(t, "onic", teams[0].Slug)
	require.NotNil(t, teams[0].Rating)
	assert.Equal(t, SeededRating(5, 0, 8, 10), *teams[0].Rating)
	assert.Equal(t, "geek", teams[3].Slug, "unrated teams sort last")
	assert.Nil(t, teams[3].Rating)

	rows, err := store.Standings(ctx, "S16")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "onic", rows[0].Team)
	assert.Equal(t, "onic.png", rows[0].Logo)
	assert.Equal(t, "rrq", rows[1].Team)
	assert.Nil(t, rows[1].GameDiff)

	last, ok, err := store.LastRun(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), last, time.Minute)
}

func TestRunIsIdempotent(t *testing.T) {
	store := openStore(t)
	s := New(source(), store, nil, "S16")
	for range 2 {
		_, err := s.Run(context.Background())
		require.NoError(t, err)
	}
	teams, err := store.Teams(context.Background())
	require.NoError(t, err)
	assert.Len(t, teams, 4)
}

func TestRunFailureIsRecordedAndPublished(t *testing.T) {
	store := openStore(t)
	bus := events.NewBus()
	var failed []events.SyncFailedEvent
	bus.Subscribe(func(e events.Event) error {
		failed = append(failed, e.Payload.(events.SyncFailedEvent))
		return nil
	}, events.EventSyncFailed)

	src := source()
	src.err = errors.New("upstream down")
	_, err := New(src, store, bus, "S16").Run(context.Background())
	require.ErrorContains(t, err, "fetch standings")

	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Error, "upstream down")

	_, ok, err := store.LastRun(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "failed runs do not count as the last sync")

	teams, err := store.Teams(context.Background())
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestPredictionLog(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	adj := 62.8

	require.NoError(t, store.LogPrediction(ctx, PredictionRecord{
		ID: "p1", CreatedAt: base, TeamA: "onic", TeamB: "rrq", ProbA: 0.7, ProbB: 0.3, RawScore: 0.3, HistoryVersion: "v",
	}))
	require.NoError(t, store.LogPrediction(ctx, PredictionRecord{
		ID: "p2", CreatedAt: base.Add(time.Second), TeamA: "evos", TeamB: "navi", BestOf: 5, ProbA: 0.5, ProbB: 0.5, HistoryVersion: "v", AdjustedA: &adj,
	}))
	assert.Error(t, store.LogPrediction(ctx, PredictionRecord{}))

	got, err := store.RecentPredictions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, 5, got[0].BestOf)
	require.NotNil(t, got[0].AdjustedA)
	assert.Equal(t, 62.8, *got[0].AdjustedA)
	assert.Nil(t, got[0].AdjustedB)
	assert.True(t, base.Equal(got[1].CreatedAt))
}

func TestLoopStopsOnCancel(t *testing.T) {
	store := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		New(source(), store, nil, "S16").Loop(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ok, _ := store.LastRun(context.Background())
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}
