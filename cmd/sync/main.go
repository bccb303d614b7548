package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/mplid-predictor/internal/adapters/outbound/mplid_http"
	"github.com/charleschow/mplid-predictor/internal/config"
	"github.com/charleschow/mplid-predictor/internal/core/syncer"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

func main() {
	cfg := config.Load()
	dbPath := flag.String("db", cfg.SyncDBPath, "path to the sync store")
	season := flag.String("season", cfg.SyncSeason, "season label stored with the standings")
	list := flag.Bool("list", false, "print the stored table after syncing")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := syncer.OpenStore(*dbPath)
	if err != nil {
		telemetry.Errorf("open store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	mpl := mplid_http.NewClient(cfg.MPLBase, cfg.UpstreamTimeout, cfg.UpstreamRPS)
	res, err := syncer.New(mpl, store, nil, *season).Run(ctx)
	if err != nil {
		telemetry.Errorf("sync: %v", err)
		store.Close()
		os.Exit(1)
	}
	fmt.Printf("run %s  season=%s  teams=%d  standings=%d  team_stats=%d  (%s)\n",
		res.RunID, res.Season, res.Counts.Teams, res.Counts.Standings, res.Counts.TeamStats, res.Duration)

	if !*list {
		return
	}
	teams, err := store.Teams(ctx)
	if err != nil {
		telemetry.Errorf("list teams: %v", err)
		return
	}
	fmt.Printf("\n  %-6s  %-28s  %8s\n", "Slug", "Name", "Rating")
	for _, t := range teams {
		rating := "-"
		if t.Rating != nil {
			rating = fmt.Sprintf("%.1f", *t.Rating)
		}
		fmt.Printf("  %-6s  %-28s  %8s\n", t.Slug, t.Name, rating)
	}

	rows, err := store.Standings(ctx, *season)
	if err != nil {
		telemetry.Errorf("list standings: %v", err)
		return
	}
	fmt.Printf("\n  %4s  %-6s  %5s  %6s  %5s\n", "Rank", "Team", "W-L", "Points", "GD")
	for _, r := range rows {
		fmt.Printf("  %4d  %-6s  %2d-%-2d  %6.0f  %+5.0f\n", r.Rank, r.Team, r.Wins, r.Losses, r.PointsOrZero(), r.GameDiffOrZero())
	}
}
