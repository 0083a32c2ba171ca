package strategy

import (
	"github.com/atlas-desktop/orb-backtester/pkg/types"
)

// Run drives the trade state machine across one day's candles under an
// immutable config. Deterministic given (candles, cfg, accountSize).
//
// The returned DayRun carries a nil OpeningRange when the day had too
// few candles to establish one; no trades are taken in that case.
func Run(candles []types.Candle, cfg types.TradeConfig, accountSize float64) *types.DayRun {
	or := ComputeOpeningRange(candles, cfg.OpeningRangeMinutes)
	if or == nil {
		return &types.DayRun{}
	}

	s := newSession(cfg, or, accountSize)
	scanFrom := cfg.OpeningRangeMinutes + cfg.AvoidFirstMinutes

	for i := cfg.OpeningRangeMinutes; i < len(candles); i++ {
		c := candles[i]
		if s.active != nil {
			s.manage(c)
		} else if i >= scanFrom {
			s.tryEnter(c)
		}
	}

	// No overnight exposure: force-close at the last candle.
	if s.active != nil {
		last := candles[len(candles)-1]
		s.closeTrade(last.Time, last.Close, types.ExitEndOfDay)
	}

	var totalPnL float64
	for _, t := range s.trades {
		totalPnL += t.TotalPnL
	}

	return &types.DayRun{
		Trades:       s.trades,
		OpeningRange: or,
		Signals:      s.signals,
		Summary: types.DaySummary{
			TradeCount:   len(s.trades),
			SignalCount:  len(s.signals),
			TotalPnL:     totalPnL,
			RangeSize:    or.RangeSize,
			RangePercent: rangePercent(or),
		},
	}
}

func rangePercent(or *types.OpeningRange) float64 {
	if or.OpenPrice == 0 {
		return 0
	}
	return or.RangeSize / or.OpenPrice * 100
}
