// Package types provides shared type definitions for the ORB backtester.
package types

import (
	"encoding/json"
	"math"
	"time"
)

// Direction represents long or short exposure.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// SignalType represents the kind of audit-trail entry.
type SignalType string

const (
	SignalEntry       SignalType = "ENTRY"
	SignalPartialExit SignalType = "PARTIAL_EXIT"
	SignalExit        SignalType = "EXIT"
)

// ExitReason explains why a trade was closed.
type ExitReason string

const (
	ExitStopLoss    ExitReason = "Stop Loss"
	ExitMaxTime     ExitReason = "Max Time"
	ExitFinalTarget ExitReason = "Final Target"
	ExitEndOfDay    ExitReason = "End of Day"
)

// Candle represents a single minute bar. Time is epoch milliseconds.
// Invariant: Low <= min(Open, Close) <= max(Open, Close) <= High.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// OpeningRange is the price band established over the first K minutes
// of a session. Computed once per day; nil means no range, no trading.
type OpeningRange struct {
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	RangeSize   float64 `json:"rangeSize"`
	Midpoint    float64 `json:"midpoint"`
	AvgVolume   float64 `json:"avgVolume"`
	TotalVolume int64   `json:"totalVolume"`
	EndTime     int64   `json:"endTime"`
	OpenPrice   float64 `json:"openPrice"`
}

// PartialExit records one scale-out. TargetIndex is the target rank,
// or -1 for the terminal close.
type PartialExit struct {
	Time        int64   `json:"time"`
	Price       float64 `json:"price"`
	Shares      int64   `json:"shares"`
	TargetIndex int     `json:"targetIndex"`
	PnL         float64 `json:"pnl"`
}

// ActiveTrade is the single open position owned by a session.
// CurrentStop only ever moves in the trade's favor; RemainingShares
// only ever decreases.
type ActiveTrade struct {
	Direction             Direction     `json:"direction"`
	EntryPrice            float64       `json:"entryPrice"`
	EntryTime             int64         `json:"entryTime"`
	StopLoss              float64       `json:"stopLoss"`
	CurrentStop           float64       `json:"currentStop"`
	Shares                int64         `json:"shares"`
	RemainingShares       int64         `json:"remainingShares"`
	PartialExits          []PartialExit `json:"partialExits"`
	NextTargetIndex       int           `json:"nextTargetIndex"`
	MaxFavorableExcursion float64       `json:"maxFavorableExcursion"`
	MaxAdverseExcursion   float64       `json:"maxAdverseExcursion"`
}

// ClosedTrade is an ActiveTrade frozen at close.
// Invariant: the partial-exit shares sum to the original size.
type ClosedTrade struct {
	ActiveTrade
	ExitTime        int64      `json:"exitTime"`
	ExitReason      ExitReason `json:"exitReason"`
	TotalPnL        float64    `json:"totalPnl"`
	DurationMinutes int        `json:"durationMinutes"`
}

// Signal is an append-only audit-trail entry. The state machine writes
// signals but never reads them back.
type Signal struct {
	ID        string     `json:"id"`
	Time      int64      `json:"time"`
	Type      SignalType `json:"type"`
	Direction Direction  `json:"direction"`
	Price     float64    `json:"price"`
	Shares    int64      `json:"shares"`
	Reason    string     `json:"reason"`
}

// DaySummary aggregates one session's strategy run.
type DaySummary struct {
	TradeCount   int     `json:"tradeCount"`
	SignalCount  int     `json:"signalCount"`
	TotalPnL     float64 `json:"totalPnl"`
	RangeSize    float64 `json:"rangeSize"`
	RangePercent float64 `json:"rangePercent"`
}

// DayRun is the strategy runner's output for one session. OpeningRange
// is nil when the session had too few candles to establish a range.
type DayRun struct {
	Trades       []ClosedTrade `json:"trades"`
	OpeningRange *OpeningRange `json:"openingRange"`
	Signals      []Signal      `json:"signals"`
	Summary      DaySummary    `json:"summary"`
}

// TradeRecord is a closed trade tagged at the backtest level with its
// day, trading costs, and net P&L.
type TradeRecord struct {
	ClosedTrade
	Day        int     `json:"day"`
	Date       string  `json:"date"`
	Commission float64 `json:"commission"`
	Slippage   float64 `json:"slippage"`
	NetPnL     float64 `json:"netPnl"`
}

// EquityPoint is one day on the backtest equity curve.
type EquityPoint struct {
	Day          int           `json:"day"`
	Date         string        `json:"date"`
	Equity       float64       `json:"equity"`
	PnL          float64       `json:"pnl"`
	Drawdown     float64       `json:"drawdown"`
	DrawdownPct  float64       `json:"drawdownPct"`
	OpeningRange *OpeningRange `json:"openingRange"`
	TradeCount   int           `json:"tradeCount"`
}

// DailyResult summarizes one backtest day.
type DailyResult struct {
	Day          int           `json:"day"`
	Date         string        `json:"date"`
	TradeCount   int           `json:"tradeCount"`
	PnL          float64       `json:"pnl"`
	SignalCount  int           `json:"signalCount"`
	OpeningRange *OpeningRange `json:"openingRange"`
}

// BacktestMetrics holds the performance statistics of one run.
type BacktestMetrics struct {
	TotalTrades          int     `json:"totalTrades"`
	WinningTrades        int     `json:"winningTrades"`
	LosingTrades         int     `json:"losingTrades"`
	WinRate              float64 `json:"winRate"`
	GrossProfit          float64 `json:"grossProfit"`
	GrossLoss            float64 `json:"grossLoss"`
	ProfitFactor         float64 `json:"profitFactor"`
	Expectancy           float64 `json:"expectancy"`
	TotalPnL             float64 `json:"totalPnl"`
	AvgWin               float64 `json:"avgWin"`
	AvgLoss              float64 `json:"avgLoss"`
	AvgWinLossRatio      float64 `json:"avgWinLossRatio"`
	LargestWin           float64 `json:"largestWin"`
	LargestLoss          float64 `json:"largestLoss"`
	MaxDrawdown          float64 `json:"maxDrawdown"`
	MaxDrawdownPct       float64 `json:"maxDrawdownPct"`
	LongestDrawdownDays  int     `json:"longestDrawdownDays"`
	MaxConsecutiveWins   int     `json:"maxConsecutiveWins"`
	MaxConsecutiveLosses int     `json:"maxConsecutiveLosses"`
	AvgDurationMinutes   float64 `json:"avgDurationMinutes"`
	LongTrades           int     `json:"longTrades"`
	ShortTrades          int     `json:"shortTrades"`
	LongWinRate          float64 `json:"longWinRate"`
	ShortWinRate         float64 `json:"shortWinRate"`
	SharpeRatio          float64 `json:"sharpeRatio"`
	SortinoRatio         float64 `json:"sortinoRatio"`
	FinalEquity          float64 `json:"finalEquity"`
	TotalReturnPct       float64 `json:"totalReturnPct"`
}

// MarshalJSON renders an infinite profit factor as null, since JSON has
// no representation for it.
func (m BacktestMetrics) MarshalJSON() ([]byte, error) {
	type alias BacktestMetrics
	out := struct {
		alias
		ProfitFactor any `json:"profitFactor"`
	}{alias: alias(m)}
	if !math.IsInf(m.ProfitFactor, 0) {
		out.ProfitFactor = m.ProfitFactor
	}
	return json.Marshal(out)
}

// MonteCarloOutcome is a single resampled equity path.
type MonteCarloOutcome struct {
	FinalEquity float64 `json:"finalEquity"`
	TotalReturn float64 `json:"totalReturn"`
	MaxDrawdown float64 `json:"maxDrawdown"`
}

// MonteCarloResult reports the empirical distribution of resampled
// outcomes, sorted by final equity.
type MonteCarloResult struct {
	Simulations int               `json:"simulations"`
	Worst       MonteCarloOutcome `json:"worst"`
	P5          MonteCarloOutcome `json:"p5"`
	P25         MonteCarloOutcome `json:"p25"`
	Median      MonteCarloOutcome `json:"median"`
	P75         MonteCarloOutcome `json:"p75"`
	P95         MonteCarloOutcome `json:"p95"`
	Best        MonteCarloOutcome `json:"best"`
}

// BacktestResult is the full output of one backtest run.
type BacktestResult struct {
	ID             string            `json:"id"`
	Config         BacktestConfig    `json:"config"`
	Strategy       TradeConfig       `json:"strategy"`
	EquityCurve    []EquityPoint     `json:"equityCurve"`
	Trades         []TradeRecord     `json:"trades"`
	DailyResults   []DailyResult     `json:"dailyResults"`
	Metrics        *BacktestMetrics  `json:"metrics"`
	MonteCarlo     *MonteCarloResult `json:"monteCarlo,omitempty"`
	HistoricalDays int               `json:"historicalDays"`
	StartedAt      time.Time         `json:"startedAt"`
	CompletedAt    time.Time         `json:"completedAt"`
}
