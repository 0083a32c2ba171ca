// Package backtester drives the ORB strategy across a generated
// historical series and computes performance statistics.
package backtester

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/market"
	"github.com/atlas-desktop/orb-backtester/internal/strategy"
	"github.com/atlas-desktop/orb-backtester/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine orchestrates series generation, per-day strategy runs, cost
// application, and metrics for one backtest invocation.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

const dateLayout = "2006-01-02"

// Run executes a full backtest. The strategy config is the documented
// defaults merged with the caller's overrides, resolved once here.
func (e *Engine) Run(ctx context.Context, cfg types.BacktestConfig) (*types.BacktestResult, error) {
	startedAt := time.Now()

	if cfg.Days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", cfg.Days)
	}
	if cfg.StartingCapital <= 0 {
		return nil, fmt.Errorf("starting capital must be positive, got %v", cfg.StartingCapital)
	}

	strat := types.DefaultTradeConfig().Merge(cfg.Strategy)
	if err := strat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}

	series := market.GenerateHistory(cfg.Ticker, cfg.StartDate, cfg.Days, cfg.Seed)
	if series == nil {
		return nil, fmt.Errorf("unknown ticker %q", cfg.Ticker)
	}

	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}

	e.logger.Info("Starting backtest",
		zap.String("id", cfg.ID),
		zap.String("ticker", series.Ticker),
		zap.Int("days", len(series.Days)),
		zap.Int64("seed", cfg.Seed),
	)

	runs, err := e.runDays(ctx, series, strat, cfg.StartingCapital)
	if err != nil {
		return nil, err
	}

	result := e.fold(cfg, strat, series, runs)
	result.StartedAt = startedAt

	result.Metrics = ComputeMetrics(result.Trades, result.EquityCurve, cfg.StartingCapital)
	result.MonteCarlo = Resample(result.Trades, cfg.StartingCapital,
		cfg.MonteCarlo.Simulations, cfg.MonteCarlo.Seed)

	result.CompletedAt = time.Now()

	e.logger.Info("Backtest completed",
		zap.String("id", cfg.ID),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("finalEquity", result.Metrics.FinalEquity),
		zap.Duration("elapsed", result.CompletedAt.Sub(startedAt)),
	)

	return result, nil
}

// runDays evaluates each day's strategy run. The day-to-day price
// dependency lives in series generation; once closes are known the days
// are independent, so they run concurrently and are collected by index.
func (e *Engine) runDays(ctx context.Context, series *market.Series, strat types.TradeConfig, capital float64) ([]*types.DayRun, error) {
	runs := make([]*types.DayRun, len(series.Days))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, day := range series.Days {
		i, day := i, day
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			runs[i] = strategy.Run(day.Candles, strat, capital)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

// fold accumulates day runs in order: trading costs, equity curve, and
// daily results.
func (e *Engine) fold(cfg types.BacktestConfig, strat types.TradeConfig, series *market.Series, runs []*types.DayRun) *types.BacktestResult {
	result := &types.BacktestResult{
		ID:             cfg.ID,
		Config:         cfg,
		Strategy:       strat,
		HistoricalDays: len(series.Days),
		EquityCurve:    make([]types.EquityPoint, 0, len(runs)),
		DailyResults:   make([]types.DailyResult, 0, len(runs)),
	}

	equity := cfg.StartingCapital
	peak := equity

	for i, run := range runs {
		date := series.Days[i].Date.Format(dateLayout)

		var dayPnL float64
		for _, trade := range run.Trades {
			commission := float64(trade.Shares) * cfg.CommissionPerShare * 2
			slippage := cfg.SlippagePerTrade * 2
			net := trade.TotalPnL - commission - slippage

			result.Trades = append(result.Trades, types.TradeRecord{
				ClosedTrade: trade,
				Day:         i,
				Date:        date,
				Commission:  commission,
				Slippage:    slippage,
				NetPnL:      net,
			})
			dayPnL += net
		}

		equity += dayPnL
		if equity > peak {
			peak = equity
		}
		drawdown := peak - equity
		var drawdownPct float64
		if peak > 0 {
			drawdownPct = drawdown / peak * 100
		}

		result.EquityCurve = append(result.EquityCurve, types.EquityPoint{
			Day:          i,
			Date:         date,
			Equity:       equity,
			PnL:          dayPnL,
			Drawdown:     drawdown,
			DrawdownPct:  drawdownPct,
			OpeningRange: run.OpeningRange,
			TradeCount:   len(run.Trades),
		})
		result.DailyResults = append(result.DailyResults, types.DailyResult{
			Day:          i,
			Date:         date,
			TradeCount:   len(run.Trades),
			PnL:          dayPnL,
			SignalCount:  len(run.Signals),
			OpeningRange: run.OpeningRange,
		})
	}

	return result
}
