package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/charleschow/mplid-predictor/internal/config"
	"github.com/charleschow/mplid-predictor/internal/core/backtest"
	"github.com/charleschow/mplid-predictor/internal/core/history"
)

func main() {
	modelPath := flag.String("model", "internal/config/model.yaml", "model parameters file")
	from := flag.Int("from", 2, "first week to predict")
	bestOf := flag.Int("bo", 3, "series format assumed for every match")
	csvPath := flag.String("csv", "", "write per-series predictions to this CSV file")
	flag.Parse()

	model, err := config.LoadModel(*modelPath)
	if err != nil {
		log.Fatalf("load model: %v", err)
	}

	h := history.Default()
	rep, err := backtest.Run(h, model.Predictor, *from, *bestOf)
	if err != nil {
		log.Fatalf("backtest: %v", err)
	}

	fmt.Printf("History %s  (%d series, weeks %d-%d, bo%d)\n", h.Version(), h.Len(), *from, h.CurrentWeek(), *bestOf)
	printReport(rep)

	if *csvPath != "" {
		if err := writeCSV(*csvPath, rep.Predictions); err != nil {
			log.Fatalf("write csv: %v", err)
		}
		fmt.Printf("\nWrote %d rows to %s\n", len(rep.Predictions), *csvPath)
	}
}

func printReport(rep backtest.Report) {
	if rep.Total.Matches == 0 {
		fmt.Println("\nNo series to predict.")
		return
	}

	fmt.Println()
	fmt.Printf("  %-6s  %7s  %7s  %8s  %7s  %8s\n", "Week", "Series", "Correct", "Acc", "Brier", "LogLoss")
	fmt.Printf("  %-6s  %7s  %7s  %8s  %7s  %8s\n", "------", "-------", "-------", "--------", "-------", "--------")
	for _, w := range rep.Weeks {
		fmt.Printf("  %-6d  %7d  %7d  %7.1f%%  %7.4f  %8.4f\n",
			w.Week, w.Matches, w.Correct, 100*w.Accuracy, w.Brier, w.LogLoss)
	}
	t := rep.Total
	fmt.Printf("  %-6s  %7d  %7d  %7.1f%%  %7.4f  %8.4f\n", "all", t.Matches, t.Correct, 100*t.Accuracy, t.Brier, t.LogLoss)
	fmt.Printf("\n  coin flip baseline: Brier 0.2500  LogLoss 0.6931\n")
}

func writeCSV(path string, preds []backtest.Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"week", "home", "away", "prob_home", "home_won", "correct", "brier", "log_loss"}); err != nil {
		return err
	}
	for _, p := range preds {
		row := []string{
			strconv.Itoa(p.Week),
			p.Home,
			p.Away,
			strconv.FormatFloat(p.ProbHome, 'f', 4, 64),
			strconv.FormatBool(p.HomeWon),
			strconv.FormatBool(p.Correct),
			strconv.FormatFloat(p.Brier, 'f', 4, 64),
			strconv.FormatFloat(p.LogLoss, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
