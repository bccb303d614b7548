package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/mplid-predictor/internal/adapters/inbound/api"
	"github.com/charleschow/mplid-predictor/internal/adapters/outbound/discord"
	"github.com/charleschow/mplid-predictor/internal/adapters/outbound/mplid_http"
	"github.com/charleschow/mplid-predictor/internal/config"
	"github.com/charleschow/mplid-predictor/internal/core/history"
	"github.com/charleschow/mplid-predictor/internal/core/predictor"
	"github.com/charleschow/mplid-predictor/internal/core/syncer"
	"github.com/charleschow/mplid-predictor/internal/events"
	"github.com/charleschow/mplid-predictor/internal/fanout"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting MPL ID predictor")

	bus := events.NewBus()

	// ── Model ───────────────────────────────────────────────────
	model, err := config.LoadModel(cfg.ModelConfigPath)
	if err != nil {
		telemetry.Errorf("Failed to load model: %v", err)
		os.Exit(1)
	}
	hist := history.Default()
	pred := predictor.New(hist, model.Predictor)
	telemetry.Infof("Model loaded  history=%s  series=%d  week=%d", hist.Version(), hist.Len(), hist.CurrentWeek())

	// ── Upstream stats API ──────────────────────────────────────
	mpl := mplid_http.NewClient(cfg.MPLBase, cfg.UpstreamTimeout, cfg.UpstreamRPS)
	mpl.InvalidateOnSync(bus)
	telemetry.Infof("Upstream  base=%s  rps=%d", cfg.MPLBase, cfg.UpstreamRPS)

	// ── Sync store ──────────────────────────────────────────────
	opts := api.Options{Bus: bus, CronSecret: cfg.CronSecret, Roster: model.Roster}
	var sync *syncer.Syncer
	store, err := syncer.OpenStore(cfg.SyncDBPath)
	if err != nil {
		telemetry.Warnf("Sync store disabled: %v", err)
	} else {
		sync = syncer.New(mpl, store, bus, cfg.SyncSeason)
		opts.Sync = sync
		opts.Log = store
	}
	if notifier := discord.NewNotifier(cfg.DiscordWebhookURL); notifier.Enabled() {
		notifier.Watch(bus)
		telemetry.Infof("Discord sync alerts enabled")
	}
	if cfg.CronSecret == "" {
		telemetry.Warnf("CRON_SECRET not set, /api/cron/sync is open")
	}

	// ── HTTP API + fanout ───────────────────────────────────────
	fan := fanout.NewServer(bus)
	mux := http.NewServeMux()
	api.NewHandler(mpl, pred, opts).RegisterRoutes(mux)
	mux.HandleFunc("GET /ws", fan.HandleWS)

	limiter := api.NewRateLimiter(cfg.RateLimitPerMin)
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      limiter.Middleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("API listening on %q  rate=%d/min", cfg.Addr(), cfg.RateLimitPerMin)

	// ── Periodic sync ───────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sync != nil && cfg.SyncInterval > 0 {
		go sync.Loop(ctx, cfg.SyncInterval)
		telemetry.Infof("Sync every %s  season=%s", cfg.SyncInterval, cfg.SyncSeason)
	}

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if store != nil {
		store.Close()
	}

	telemetry.Infof("Shutdown complete  predictions=%d  rejected=%d  upstream=%d  upstream_errors=%d  cache_hits=%d  syncs=%d  sync_errors=%d",
		telemetry.Metrics.PredictionsServed.Value(),
		telemetry.Metrics.PredictRejected.Value(),
		telemetry.Metrics.UpstreamFetches.Value(),
		telemetry.Metrics.UpstreamErrors.Value(),
		telemetry.Metrics.CacheHits.Value(),
		telemetry.Metrics.SyncRuns.Value(),
		telemetry.Metrics.SyncErrors.Value(),
	)
}
