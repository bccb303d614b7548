package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/mplid-predictor/internal/events"
	"github.com/charleschow/mplid-predictor/internal/fanout"
	"github.com/charleschow/mplid-predictor/internal/telemetry"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "predictor server host:port")
	topic := flag.String("topic", string(events.TopicAll), "sync, predictions or all")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(os.Getenv("LOG_LEVEL")))

	if len(events.Topic(*topic).Types()) == 0 {
		telemetry.Errorf("unknown topic %q", *topic)
		os.Exit(2)
	}

	bus := events.NewBus()
	bus.SubscribeTopic(func(e events.Event) error {
		fmt.Println(describe(e))
		return nil
	}, events.Topic(*topic))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.Infof("watching %s on %s", *topic, *addr)
	fanout.NewClient(*addr, events.Topic(*topic), bus).ConnectWithRetry(ctx)
}

func describe(e events.Event) string {
	ts := e.Timestamp.Local().Format("15:04:05")
	switch p := e.Payload.(type) {
	case events.PredictionServedEvent:
		line := fmt.Sprintf("%s  PREDICT  %-6s vs %-6s  %.1f%% / %.1f%%", ts, p.TeamA, p.TeamB, 100*p.ProbA, 100*p.ProbB)
		if p.AdjustedA != nil && p.AdjustedB != nil {
			line += fmt.Sprintf("  (roster %.1f%% / %.1f%%)", *p.AdjustedA, *p.AdjustedB)
		}
		return line
	case events.SyncCompletedEvent:
		return fmt.Sprintf("%s  SYNC     %s  teams=%d standings=%d team_stats=%d  %dms",
			ts, p.Season, p.Teams, p.Standings, p.TeamStats, p.DurationMS)
	case events.SyncFailedEvent:
		return fmt.Sprintf("%s  SYNC ERR %s  %s", ts, p.Season, p.Error)
	}
	return fmt.Sprintf("%s  %s", ts, e.Type)
}
