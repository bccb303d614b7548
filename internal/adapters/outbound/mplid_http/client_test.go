package mplid_http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/mplid-predictor/internal/events"
)

type upstream struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   atomic.Int64
	delay  time.Duration
}

func newUpstream(t *testing.T) (*upstream, *Client) {
	t.Helper()
	u := &upstream{bodies: map[string]string{}, status: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		if u.delay > 0 {
			time.Sleep(u.delay)
		}
		u.mu.Lock()
		body, ok := u.bodies[r.URL.Path]
		code := u.status[r.URL.Path]
		u.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		if code == 0 {
			code = http.StatusOK
		}
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return u, NewClient(srv.URL+"/api/mplid/", 2*time.Second, 0)
}

func (u *upstream) set(path, body string, code int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bodies["/api/mplid"+path] = body
	u.status["/api/mplid"+path] = code
}

const standingsBody = `[
	{"rank": 1, "team_name": "ONIC", "team_logo": "https://x/onic.png", "match_point": 10, "match_wl": "5-0", "net_game_win": 8, "game_wl": "10-2"},
	{"rank": "2", "team_name": "RRQ Hoshi", "match_point": "4", "match_wl": "2-3", "net_game_win": null, "game_wl": "weird"}
]`

func TestStandingsDecoding(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/standings/", standingsBody, 0)

	rows, err := c.Standings(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 5, rows[0].Wins)
	assert.Equal(t, 0, rows[0].Losses)
	assert.Equal(t, 10.0, rows[0].PointsOrZero())
	assert.Equal(t, 8.0, rows[0].GameDiffOrZero())
	assert.Equal(t, 10, rows[0].GameWins)
	assert.Equal(t, 2, rows[0].GameLosses)

	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, 4.0, rows[1].PointsOrZero())
	assert.Nil(t, rows[1].GameDiff)
	assert.Equal(t, 0, rows[1].GameWins)
}

func TestStandingsIndexPayload(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/standings/", `[{"name": "standings", "url": "https://x/standings/"}]`, 0)
	_, err := c.Standings(context.Background())
	assert.ErrorIs(t, err, ErrIndexPayload)
}

func TestUpstreamStatusError(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/teams/", `{"detail": "down"}`, http.StatusServiceUnavailable)

	_, err := c.Teams(context.Background())
	require.ErrorIs(t, err, ErrUpstreamStatus)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestTeamsDecoding(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/teams/", `[
		{"id": 7, "team_name": "Alter Ego", "team_logo": "ae.png", "team_url": "https://id-mpl.com/team/ae"},
		{"id": "rrq", "name": "RRQ Hoshi", "logo": "rrq.png"},
		{"team_url": "id-mpl.com/team/navi/"},
		{"id": 12}
	]`, 0)

	teams, err := c.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 4)
	assert.Equal(t, "ae", teams[0].ID)
	assert.Equal(t, "Alter Ego", teams[0].Name)
	assert.Equal(t, "ae.png", teams[0].Logo)
	assert.Equal(t, "rrq", teams[1].ID)
	assert.Equal(t, "navi", teams[2].ID)
	assert.Equal(t, "Unknown", teams[2].Name)
	assert.Equal(t, "12", teams[3].ID)
}

func TestOtherEndpoints(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/team-stats/", `{"data": [{"team_name": "ONIC", "kills": "120", "deaths": 50, "lord": "9"}]}`, 0)
	u.set("/player-stats/", `[{"player_name": "Kairi", "player_logo": "/onic_kairi.png", "avg_kda": 6.1, "kill_participation": "72.5%"}]`, 0)
	u.set("/player-pools/", `[{"hero_name": "Ling", "players": [{"player_info": "ONIC - Kairi", "pick": 3}]}]`, 0)
	u.set("/transfers/", `[{"transfer_date": "25 Aug 2025", "player_name": "Kairi ", "player_role": "Jungle", "from_team_name": "ONIC"}, {"transfer_date": "soon", "player_name": "X", "player_role": "Head Coach"}]`, 0)
	u.set("/hero-pools/", `[{"player_name": "Kairi", "heroes": ["Ling", "Fanny"]}]`, 0)
	ctx := context.Background()

	stats, err := c.TeamStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 120.0/51, stats[0].KDAProxy())
	assert.Equal(t, 9.0, stats[0].ObjectiveControl())

	ps, err := c.PlayerStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 72.5, *ps[0].KillParticipation)

	pools, err := c.PlayerPools(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ONIC", pools[0].Players[0].Team)
	assert.Equal(t, "Kairi", pools[0].Players[0].Name)
	assert.Equal(t, 1, pools[0].Total)

	trs, err := c.Transfers(ctx)
	require.NoError(t, err)
	require.Len(t, trs, 2)
	require.NotNil(t, trs[0].Date)
	assert.Equal(t, time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC), *trs[0].Date)
	assert.Equal(t, "Kairi", trs[0].Player)
	assert.Nil(t, trs[1].Date)
	assert.True(t, trs[1].IsCoach())

	hp, err := c.HeroPools(ctx)
	require.NoError(t, err)
	require.Len(t, hp, 1)
	assert.JSONEq(t, `{"player_name": "Kairi", "heroes": ["Ling", "Fanny"]}`, string(hp[0].Raw))
}

func TestCacheServesFreshAndInvalidates(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/standings/", standingsBody, 0)
	ctx := context.Background()

	for range 3 {
		_, err := c.Standings(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), u.hits.Load())

	bus := events.NewBus()
	c.InvalidateOnSync(bus)
	bus.Publish(events.New(events.EventSyncCompleted, events.SyncCompletedEvent{}))

	_, err := c.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.hits.Load())
}

func TestConcurrentMissesShareOneRequest(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/standings/", standingsBody, 0)
	u.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Standings(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), u.hits.Load())
}

func TestStaleBodyServedWhenRefreshFails(t *testing.T) {
	u, c := newUpstream(t)
	u.set("/standings/", standingsBody, 0)
	ctx := context.Background()

	_, err := c.Standings(ctx)
	require.NoError(t, err)

	c.cache.now = func() time.Time { return time.Now().Add(time.Hour) }
	u.set("/standings/", "boom", http.StatusBadGateway)

	rows, err := c.Standings(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int64(2), u.hits.Load())
}

func TestNumber(t *testing.T) {
	cases := map[string]*float64{
		`12`:        ptr(12),
		`"12.5"`:    ptr(12.5),
		`"55%"`:     ptr(55),
		`" 1,200 "`: ptr(1200),
		`null`:      nil,
		`"n/a"`:     nil,
		`true`:      nil,
	}
	for in, want := range cases {
		var n Number
		require.NoError(t, n.UnmarshalJSON([]byte(in)), in)
		assert.Equal(t, want, n.Ptr(), in)
	}
}

func ptr(v float64) *float64 { return &v }

func TestSplitPair(t *testing.T) {
	w, l := splitPair(" 3 - 1 ")
	assert.Equal(t, 3, w)
	assert.Equal(t, 1, l)
	w, l = splitPair("3:1")
	assert.Zero(t, w)
	assert.Zero(t, l)
}
