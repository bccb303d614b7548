// calibrate grid-searches the logistic slope and the form weight against
// the walk-forward backtest and prints the best candidates with a
// reliability table for the winner.
//
// Usage:
//
//	go run ./cmd/calibrate
//	go run ./cmd/calibrate -alpha 1.5:4:0.25 -form 0.6:1.6:0.1 -top 5
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/charleschow/mplid-predictor/internal/config"
	"github.com/charleschow/mplid-predictor/internal/core/backtest"
	"github.com/charleschow/mplid-predictor/internal/core/history"
)

func main() {
	modelPath := flag.String("model", "internal/config/model.yaml", "base model parameters")
	alphaSpec := flag.String("alpha", "1.5:4:0.25", "alpha grid lo:hi:step")
	formSpec := flag.String("form", "0.6:1.6:0.1", "form weight grid lo:hi:step")
	from := flag.Int("from", 2, "first week to predict")
	bestOf := flag.Int("bo", 3, "series format assumed for every match")
	top := flag.Int("top", 10, "candidates to print")
	bins := flag.Int("bins", 5, "reliability buckets")
	flag.Parse()

	model, err := config.LoadModel(*modelPath)
	if err != nil {
		log.Fatalf("load model: %v", err)
	}
	alphas, err := parseGrid(*alphaSpec)
	if err != nil {
		log.Fatalf("-alpha: %v", err)
	}
	forms, err := parseGrid(*formSpec)
	if err != nil {
		log.Fatalf("-form: %v", err)
	}

	h := history.Default()
	base, err := backtest.Run(h, model.Predictor, *from, *bestOf)
	if err != nil {
		log.Fatalf("backtest: %v", err)
	}
	cands, err := backtest.Grid(h, model.Predictor, alphas, forms, *from, *bestOf)
	if err != nil {
		log.Fatalf("grid: %v", err)
	}
	if len(cands) == 0 || base.Total.Matches == 0 {
		fmt.Println("No series to calibrate against.")
		return
	}

	fmt.Printf("History %s  %d series  %d candidates\n", h.Version(), base.Total.Matches, len(cands))
	fmt.Printf("Current model: alpha=%.2f form=%.2f  Brier %.4f  LogLoss %.4f  Acc %.1f%%\n\n",
		model.Predictor.Alpha, model.Predictor.Weights.Form, base.Total.Brier, base.Total.LogLoss, 100*base.Total.Accuracy)

	fmt.Printf("  %5s  %5s  %7s  %8s  %7s\n", "Alpha", "Form", "Brier", "LogLoss", "Acc")
	fmt.Printf("  %5s  %5s  %7s  %8s  %7s\n", "-----", "-----", "-------", "--------", "-------")
	for _, c := range cands[:min(*top, len(cands))] {
		fmt.Printf("  %5.2f  %5.2f  %7.4f  %8.4f  %6.1f%%\n", c.Alpha, c.FormWeight, c.Total.Brier, c.Total.LogLoss, 100*c.Total.Accuracy)
	}

	best := model.Predictor
	best.Alpha, best.Weights.Form = cands[0].Alpha, cands[0].FormWeight
	rep, err := backtest.Run(h, best, *from, *bestOf)
	if err != nil {
		log.Fatalf("backtest best: %v", err)
	}
	fmt.Printf("\nReliability (alpha=%.2f form=%.2f)\n", best.Alpha, best.Weights.Form)
	fmt.Printf("  %-9s  %5s  %8s  %8s\n", "P(home)", "N", "MeanPred", "Actual")
	for _, b := range backtest.Reliability(rep.Predictions, *bins) {
		if b.Count == 0 {
			fmt.Printf("  %.2f-%.2f  %5d  %8s  %8s\n", b.Lo, b.Hi, 0, "-", "-")
			continue
		}
		fmt.Printf("  %.2f-%.2f  %5d  %8.3f  %8.3f\n", b.Lo, b.Hi, b.Count, b.MeanPred, b.ActualFreq)
	}
}

func parseGrid(arg string) ([]float64, error) {
	parts := strings.Split(arg, ":")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return vals, nil
	case 3:
		return backtest.Steps(vals[0], vals[1], vals[2]), nil
	}
	return nil, fmt.Errorf("want lo:hi:step or a single value, got %q", arg)
}
