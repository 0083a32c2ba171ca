// Package strategy implements the opening-range-breakout session logic:
// range calculation, the per-day trade state machine, and the runner
// that drives both across one day's candles.
package strategy

import (
	"github.com/atlas-desktop/orb-backtester/pkg/types"
)

// ComputeOpeningRange reduces the first minutes candles of a session to
// a range. Returns nil when fewer candles are supplied: no range, no
// trading.
func ComputeOpeningRange(candles []types.Candle, minutes int) *types.OpeningRange {
	if minutes <= 0 || len(candles) < minutes {
		return nil
	}

	window := candles[:minutes]
	or := &types.OpeningRange{
		High:      window[0].High,
		Low:       window[0].Low,
		OpenPrice: window[0].Open,
		EndTime:   window[minutes-1].Time,
	}

	for _, c := range window {
		if c.High > or.High {
			or.High = c.High
		}
		if c.Low < or.Low {
			or.Low = c.Low
		}
		or.TotalVolume += c.Volume
	}

	or.RangeSize = or.High - or.Low
	or.Midpoint = (or.High + or.Low) / 2
	or.AvgVolume = float64(or.TotalVolume) / float64(minutes)
	return or
}
