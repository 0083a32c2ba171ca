// Package main provides a CLI for running opening-range breakout
// backtests against synthetic market data and printing the result as
// JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/backtester"
	"github.com/atlas-desktop/orb-backtester/internal/market"
	"github.com/atlas-desktop/orb-backtester/pkg/types"
	"go.uber.org/zap"
)

func main() {
	ticker := flag.String("ticker", "SPY", "Ticker symbol")
	start := flag.String("start", "2024-01-02", "Start date (YYYY-MM-DD)")
	days := flag.Int("days", 60, "Trading days to simulate")
	capital := flag.Float64("capital", 100000, "Starting capital")
	commission := flag.Float64("commission", 0.005, "Commission per share")
	slippage := flag.Float64("slippage", 1.0, "Slippage per trade")
	seed := flag.Int64("seed", 42, "Market data seed")
	simulations := flag.Int("simulations", 1000, "Monte Carlo simulations (0 disables resampling defaults)")
	mcSeed := flag.Int64("mc-seed", 0, "Monte Carlo seed (0 uses the default)")

	orMinutes := flag.Int("or-minutes", 0, "Opening range minutes (0 keeps the default)")
	confirmation := flag.String("confirmation", "", "Breakout confirmation: close or wick")
	volumeConfirm := flag.Bool("volume-confirm", true, "Require breakout volume confirmation")
	sizing := flag.String("sizing", "", "Position sizing: fixed_risk or fixed_shares")
	risk := flag.Float64("risk", 0, "Risk fraction per trade (0 keeps the default)")
	maxTrades := flag.Int("max-trades", 0, "Max trades per day (0 keeps the default)")

	outFile := flag.String("out", "", "File to write the result JSON to (default stdout)")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fatalf("failed to build logger: %v", err)
		}
	}
	defer logger.Sync()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fatalf("invalid -start date %q, want YYYY-MM-DD", *start)
	}
	if _, ok := market.LookupProfile(*ticker); !ok {
		fatalf("unknown ticker %q, known symbols: %v", *ticker, market.Symbols())
	}

	overrides := &types.TradeOverrides{}
	if *orMinutes > 0 {
		overrides.OpeningRangeMinutes = orMinutes
	}
	if *confirmation != "" {
		ct := types.ConfirmationType(*confirmation)
		overrides.ConfirmationType = &ct
	}
	if !*volumeConfirm {
		overrides.VolumeConfirmation = volumeConfirm
	}
	if *sizing != "" {
		sm := types.SizingMode(*sizing)
		overrides.Sizing = &sm
	}
	if *risk > 0 {
		overrides.RiskFraction = risk
	}
	if *maxTrades > 0 {
		overrides.MaxTradesPerDay = maxTrades
	}

	cfg := types.BacktestConfig{
		Ticker:             *ticker,
		StartDate:          startDate,
		Days:               *days,
		StartingCapital:    *capital,
		CommissionPerShare: *commission,
		SlippagePerTrade:   *slippage,
		Seed:               *seed,
		Strategy:           overrides,
		MonteCarlo: types.MonteCarloConfig{
			Simulations: *simulations,
			Seed:        *mcSeed,
		},
	}

	engine := backtester.NewEngine(logger)
	result, err := engine.Run(context.Background(), cfg)
	if err != nil {
		fatalf("backtest failed: %v", err)
	}

	out := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fatalf("failed to encode result: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
