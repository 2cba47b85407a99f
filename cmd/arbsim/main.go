package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arbsim/arbsim-go/arbitrator"
	"github.com/arbsim/arbsim-go/cmd/arbsim/config"
)

func main() {
	configPath := flag.String("config", "scenario.yaml", "Path to the scenario file.")
	flag.Parse()

	rootLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	scenario, err := config.Load(*configPath)
	if err != nil {
		rootLogger.Error("Failed to load scenario", "path", *configPath, "error", err)
		os.Exit(1)
	}

	cfg := &arbitrator.Config{
		InitialAssets: scenario.InitialAssets,
		GasPrice:      scenario.GasPrice,
		Registry:      prometheus.NewRegistry(),
		Logger:        rootLogger.With("component", "arbitrator"),
	}
	// Populate both modes as configured; the arbitrator rejects conflicts.
	for _, pr := range scenario.Pairs {
		cfg.Pairs = append(cfg.Pairs, pr.Assets)
		cfg.Rates = append(cfg.Rates, pr.Rate)
	}
	if len(scenario.Pools) > 0 {
		cfg.Pools, err = scenario.BuildPools()
		if err != nil {
			rootLogger.Error("Failed to build pools", "error", err)
			os.Exit(1)
		}
	}

	arb, err := arbitrator.NewArbitrator(cfg)
	if err != nil {
		rootLogger.Error("Failed to initialize arbitrator", "error", err)
		os.Exit(1)
	}

	withFees := scenario.ApplyFees()
	loops, err := arb.GetLoops(scenario.Sizes, withFees)
	if err != nil {
		rootLogger.Error("Loop search failed", "error", err)
		os.Exit(1)
	}

	view := arb.GraphView()
	fmt.Printf("searched %d pairs over %d assets in %d pools, found %d loops\n\n",
		len(arb.Pairs()), len(view.Assets), len(view.Pools), len(loops))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tLOOP\tSTART\tSIZE\tUNIT RETURN\tOPT AMOUNT\tMAX PROFIT\tGAS")
	for i, l := range loops {
		unitReturn, err := l.Convert(1, withFees)
		if err != nil {
			rootLogger.Warn("Unit simulation failed", "loop", l.String(), "error", err)
			continue
		}
		amount, profit, err := l.MaxAbsoluteProfit()
		if err != nil {
			rootLogger.Warn("Profit optimization failed", "loop", l.String(), "error", err)
			continue
		}
		gas := float64(l.GasCost()) * arb.GasPrice()
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.6f\t%.4f\t%.4f\t%.2f\n",
			i+1, l, l.InitialAsset(), l.Size(), unitReturn, amount, profit, gas)
	}
	if err := w.Flush(); err != nil {
		rootLogger.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
}
