package backtester_test

import (
	"math"
	"testing"

	"github.com/atlas-desktop/orb-backtester/internal/backtester"
	"github.com/atlas-desktop/orb-backtester/pkg/types"
)

func record(dir types.Direction, netPnL float64, minutes int) types.TradeRecord {
	return types.TradeRecord{
		ClosedTrade: types.ClosedTrade{
			ActiveTrade:     types.ActiveTrade{Direction: dir},
			DurationMinutes: minutes,
		},
		NetPnL: netPnL,
	}
}

func curveOf(capital float64, equities ...float64) []types.EquityPoint {
	out := make([]types.EquityPoint, len(equities))
	prev := capital
	for i, eq := range equities {
		out[i] = types.EquityPoint{Day: i, Equity: eq, PnL: eq - prev}
		prev = eq
	}
	return out
}

func TestComputeMetricsBasic(t *testing.T) {
	trades := []types.TradeRecord{
		record(types.DirectionLong, 100, 30),
		record(types.DirectionLong, 50, 20),
		record(types.DirectionShort, -30, 10),
		record(types.DirectionLong, 80, 40),
		record(types.DirectionShort, -20, 20),
	}
	curve := curveOf(10000, 10100, 10150, 10120, 10200, 10180)

	m := backtester.ComputeMetrics(trades, curve, 10000)

	if m.TotalTrades != 5 || m.WinningTrades != 3 || m.LosingTrades != 2 {
		t.Fatalf("trade counts wrong: %d/%d/%d", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	}
	if math.Abs(m.WinRate-0.6) > 1e-12 {
		t.Errorf("win rate %v, want 0.6", m.WinRate)
	}
	if math.Abs(m.GrossProfit-230) > 1e-9 || math.Abs(m.GrossLoss-50) > 1e-9 {
		t.Errorf("gross profit/loss %v/%v, want 230/50", m.GrossProfit, m.GrossLoss)
	}
	if math.Abs(m.ProfitFactor-4.6) > 1e-9 {
		t.Errorf("profit factor %v, want 4.6", m.ProfitFactor)
	}
	if math.Abs(m.Expectancy-36) > 1e-9 {
		t.Errorf("expectancy %v, want 36", m.Expectancy)
	}
	if math.Abs(m.LargestWin-100) > 1e-9 || math.Abs(m.LargestLoss-30) > 1e-9 {
		t.Errorf("largest win/loss %v/%v", m.LargestWin, m.LargestLoss)
	}
	if m.MaxConsecutiveWins != 2 || m.MaxConsecutiveLosses != 1 {
		t.Errorf("streaks %d/%d, want 2/1", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)
	}
	if math.Abs(m.AvgDurationMinutes-24) > 1e-9 {
		t.Errorf("avg duration %v, want 24", m.AvgDurationMinutes)
	}
	if m.LongTrades != 3 || m.ShortTrades != 2 {
		t.Errorf("direction counts %d/%d", m.LongTrades, m.ShortTrades)
	}
	if math.Abs(m.LongWinRate-1.0) > 1e-12 || m.ShortWinRate != 0 {
		t.Errorf("direction win rates %v/%v", m.LongWinRate, m.ShortWinRate)
	}
	if math.Abs(m.FinalEquity-10180) > 1e-9 {
		t.Errorf("final equity %v", m.FinalEquity)
	}
	if math.Abs(m.TotalReturnPct-1.8) > 1e-9 {
		t.Errorf("total return %v%%, want 1.8%%", m.TotalReturnPct)
	}
}

func TestComputeMetricsDrawdown(t *testing.T) {
	curve := curveOf(10000, 10100, 10150, 10120, 10200, 10180)
	m := backtester.ComputeMetrics(nil, curve, 10000)

	if math.Abs(m.MaxDrawdown-30) > 1e-9 {
		t.Errorf("max drawdown %v, want 30", m.MaxDrawdown)
	}
	wantPct := 30.0 / 10150 * 100
	if math.Abs(m.MaxDrawdownPct-wantPct) > 1e-9 {
		t.Errorf("max drawdown pct %v, want %v", m.MaxDrawdownPct, wantPct)
	}
	if m.LongestDrawdownDays != 1 {
		t.Errorf("longest drawdown %d days, want 1", m.LongestDrawdownDays)
	}
}

func TestProfitFactorEdgeCases(t *testing.T) {
	// Zero losers with positive gross profit: +Inf.
	winners := []types.TradeRecord{
		record(types.DirectionLong, 40, 10),
		record(types.DirectionLong, 60, 10),
	}
	m := backtester.ComputeMetrics(winners, curveOf(1000, 1100), 1000)
	if !math.IsInf(m.ProfitFactor, 1) {
		t.Errorf("profit factor %v, want +Inf", m.ProfitFactor)
	}

	// No activity: 0.
	m = backtester.ComputeMetrics(nil, nil, 1000)
	if m.ProfitFactor != 0 {
		t.Errorf("profit factor %v with no activity, want 0", m.ProfitFactor)
	}
	if m.FinalEquity != 1000 {
		t.Errorf("final equity %v with no activity, want capital", m.FinalEquity)
	}
}

func TestRatiosZeroDenominator(t *testing.T) {
	// Flat equity: zero variance.
	m := backtester.ComputeMetrics(nil, curveOf(5000, 5000, 5000, 5000), 5000)
	if m.SharpeRatio != 0 {
		t.Errorf("sharpe %v with flat equity, want 0", m.SharpeRatio)
	}

	// Monotonic gains: no negative returns for the Sortino denominator.
	m = backtester.ComputeMetrics(nil, curveOf(5000, 5100, 5200, 5300), 5000)
	if m.SortinoRatio != 0 {
		t.Errorf("sortino %v with no down days, want 0", m.SortinoRatio)
	}
	if m.SharpeRatio <= 0 {
		t.Errorf("sharpe %v for monotonic gains, want positive", m.SharpeRatio)
	}
}

func TestMetricsNeverNaN(t *testing.T) {
	cases := [][]types.TradeRecord{
		nil,
		{record(types.DirectionLong, 0, 0)},
		{record(types.DirectionShort, -5, 1)},
	}
	for i, trades := range cases {
		m := backtester.ComputeMetrics(trades, curveOf(100, 100), 100)
		for name, v := range map[string]float64{
			"winRate": m.WinRate, "profitFactor": m.ProfitFactor,
			"expectancy": m.Expectancy, "sharpe": m.SharpeRatio,
			"sortino": m.SortinoRatio, "avgWinLoss": m.AvgWinLossRatio,
		} {
			if math.IsNaN(v) {
				t.Errorf("case %d: %s is NaN", i, name)
			}
		}
	}
}
