package mplid_http

import (
	"context"
	"time"

	"github.com/charleschow/mplid-predictor/internal/core/snapshot"
)

// Revalidation windows per endpoint.
const (
	standingsTTL = 60 * time.Second
	teamsTTL     = 300 * time.Second
	heroPoolsTTL = 120 * time.Second
	defaultTTL   = 30 * time.Second
)

func getAs[T any](ctx context.Context, c *Client, path string, ttl time.Duration, decode func([]byte) (T, error)) (T, error) {
	body, err := c.fetch(ctx, path+"?format=json", ttl)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode(body)
}

func (c *Client) Standings(ctx context.Context) ([]snapshot.StandingsRow, error) {
	return getAs(ctx, c, "/standings/", standingsTTL, decodeStandings)
}

func (c *Client) Teams(ctx context.Context) ([]snapshot.TeamRow, error) {
	return getAs(ctx, c, "/teams/", teamsTTL, decodeTeams)
}

func (c *Client) TeamStats(ctx context.Context) ([]snapshot.TeamStatsRow, error) {
	return getAs(ctx, c, "/team-stats/", defaultTTL, decodeTeamStats)
}

func (c *Client) PlayerStats(ctx context.Context) ([]snapshot.PlayerStatsRow, error) {
	return getAs(ctx, c, "/player-stats/", defaultTTL, decodePlayerStats)
}

func (c *Client) PlayerPools(ctx context.Context) ([]snapshot.HeroPoolRow, error) {
	return getAs(ctx, c, "/player-pools/", defaultTTL, decodePlayerPools)
}

func (c *Client) Transfers(ctx context.Context) ([]snapshot.Transfer, error) {
	return getAs(ctx, c, "/transfers/", defaultTTL, decodeTransfers)
}

func (c *Client) HeroPools(ctx context.Context) ([]snapshot.PlayerHeroPool, error) {
	return getAs(ctx, c, "/hero-pools/", heroPoolsTTL, decodeHeroPools)
}
