package strategy

import (
	"math"

	"github.com/atlas-desktop/orb-backtester/pkg/types"
	"github.com/google/uuid"
)

// session owns the trade state for one day. The machine has exactly two
// states: no position and one active trade. It is re-created per day.
type session struct {
	cfg         types.TradeConfig
	or          *types.OpeningRange
	accountSize float64

	active  *types.ActiveTrade
	trades  []types.ClosedTrade
	signals []types.Signal
}

func newSession(cfg types.TradeConfig, or *types.OpeningRange, accountSize float64) *session {
	return &session{cfg: cfg, or: or, accountSize: accountSize}
}

// tryEnter evaluates a candle for a new breakout entry. No-op while a
// trade is active or once the day's trade budget is spent.
func (s *session) tryEnter(c types.Candle) {
	if s.active != nil || len(s.trades) >= s.cfg.MaxTradesPerDay {
		return
	}
	if s.cfg.VolumeConfirmation && float64(c.Volume) < s.or.AvgVolume*s.cfg.VolumeMultiplier {
		return
	}

	var dir types.Direction
	var entry float64
	switch s.cfg.ConfirmationType {
	case types.ConfirmWick:
		if c.High > s.or.High {
			dir, entry = types.DirectionLong, s.or.High+0.01
		} else if c.Low < s.or.Low {
			dir, entry = types.DirectionShort, s.or.Low-0.01
		}
	default:
		if c.Close > s.or.High {
			dir, entry = types.DirectionLong, c.Close
		} else if c.Close < s.or.Low {
			dir, entry = types.DirectionShort, c.Close
		}
	}
	if dir == "" {
		return
	}

	var stop float64
	if dir == types.DirectionLong {
		stop = s.or.Low - s.cfg.StopBuffer
	} else {
		stop = s.or.High + s.cfg.StopBuffer
	}

	shares := s.positionSize(entry, stop)
	if shares <= 0 {
		return
	}

	s.active = &types.ActiveTrade{
		Direction:       dir,
		EntryPrice:      entry,
		EntryTime:       c.Time,
		StopLoss:        stop,
		CurrentStop:     stop,
		Shares:          shares,
		RemainingShares: shares,
	}
	s.logSignal(c.Time, types.SignalEntry, dir, entry, shares, "Opening range breakout")
}

// positionSize dispatches on the configured sizing mode. Returns 0 when
// the trade cannot be sized, which suppresses the entry.
func (s *session) positionSize(entry, stop float64) int64 {
	switch s.cfg.Sizing {
	case types.SizingFixedShares:
		return s.cfg.FixedShares
	case types.SizingFixedRisk:
		riskPerShare := math.Abs(entry - stop)
		if riskPerShare <= 0 {
			return 0
		}
		shares := math.Floor(s.accountSize * s.cfg.RiskFraction / riskPerShare)
		if shares <= 0 {
			return 0
		}
		return int64(shares)
	}
	return 0
}

// manage evaluates one candle against the active trade in fixed priority
// order: stop, holding time, partial targets, trailing stop.
func (s *session) manage(c types.Candle) {
	t := s.active
	s.updateExcursions(c)

	stopHit := (t.Direction == types.DirectionLong && c.Low <= t.CurrentStop) ||
		(t.Direction == types.DirectionShort && c.High >= t.CurrentStop)
	if stopHit {
		s.closeTrade(c.Time, t.CurrentStop, types.ExitStopLoss)
		return
	}

	heldMinutes := int((c.Time - t.EntryTime) / 60_000)
	if heldMinutes >= s.cfg.MaxHoldingMinutes {
		s.closeTrade(c.Time, c.Close, types.ExitMaxTime)
		return
	}

	if s.cfg.PartialProfits {
		s.checkTargets(c)
	} else if s.cfg.TrailingStop {
		s.updateTrailing(c)
	}
}

func (s *session) updateExcursions(c types.Candle) {
	t := s.active
	var favorable, adverse float64
	if t.Direction == types.DirectionLong {
		favorable = c.High - t.EntryPrice
		adverse = t.EntryPrice - c.Low
	} else {
		favorable = t.EntryPrice - c.Low
		adverse = c.High - t.EntryPrice
	}
	if favorable > t.MaxFavorableExcursion {
		t.MaxFavorableExcursion = favorable
	}
	if adverse > t.MaxAdverseExcursion {
		t.MaxAdverseExcursion = adverse
	}
}

// checkTargets walks the unreached targets in ascending order, scaling
// out at each one the candle reaches.
func (s *session) checkTargets(c types.Candle) {
	t := s.active
	for t.NextTargetIndex < len(s.cfg.Targets) {
		multiple := s.cfg.Targets[t.NextTargetIndex]

		var target float64
		var hit bool
		if t.Direction == types.DirectionLong {
			target = t.EntryPrice + s.or.RangeSize*multiple
			hit = c.High >= target
		} else {
			target = t.EntryPrice - s.or.RangeSize*multiple
			hit = c.Low <= target
		}
		if !hit {
			return
		}

		shares := s.partialShares(t)
		if shares > t.RemainingShares {
			shares = t.RemainingShares
		}

		pnl := tradePnL(t.Direction, t.EntryPrice, target, shares)
		t.PartialExits = append(t.PartialExits, types.PartialExit{
			Time:        c.Time,
			Price:       target,
			Shares:      shares,
			TargetIndex: t.NextTargetIndex,
			PnL:         pnl,
		})
		t.RemainingShares -= shares
		s.logSignal(c.Time, types.SignalPartialExit, t.Direction, target, shares, "Profit target")

		first := t.NextTargetIndex == 0
		t.NextTargetIndex++

		if first && s.cfg.BreakEvenAfterFirstTarget {
			s.moveStop(t.EntryPrice)
		}

		if t.RemainingShares == 0 {
			s.finalize(c.Time, target, types.ExitFinalTarget)
			return
		}
	}
}

// partialShares splits the remaining position across the unreached
// targets, normalizing the configured weights over what is left.
func (s *session) partialShares(t *types.ActiveTrade) int64 {
	weights := s.cfg.PartialPercents
	var total float64
	for _, w := range weights[t.NextTargetIndex:] {
		total += w
	}
	if total <= 0 {
		return t.RemainingShares
	}

	fraction := weights[t.NextTargetIndex] / total
	shares := int64(math.Round(float64(t.RemainingShares) * fraction))
	if shares < 1 {
		shares = 1
	}
	return shares
}

// updateTrailing ratchets the stop behind the best price seen since
// entry. It only ever tightens.
func (s *session) updateTrailing(c types.Candle) {
	t := s.active
	if t.MaxFavorableExcursion < s.cfg.TrailingActivation*s.or.RangeSize {
		return
	}

	distance := s.cfg.TrailingDistance * s.or.RangeSize
	var candidate float64
	if t.Direction == types.DirectionLong {
		candidate = t.EntryPrice + t.MaxFavorableExcursion - distance
	} else {
		candidate = t.EntryPrice - t.MaxFavorableExcursion + distance
	}
	s.moveStop(candidate)
}

// moveStop adopts a candidate stop only when strictly more favorable.
func (s *session) moveStop(candidate float64) {
	t := s.active
	if t.Direction == types.DirectionLong {
		if candidate > t.CurrentStop {
			t.CurrentStop = candidate
		}
	} else {
		if candidate < t.CurrentStop {
			t.CurrentStop = candidate
		}
	}
}

// closeTrade flattens whatever remains at the given price and finalizes.
func (s *session) closeTrade(ts int64, price float64, reason types.ExitReason) {
	t := s.active
	if t.RemainingShares > 0 {
		pnl := tradePnL(t.Direction, t.EntryPrice, price, t.RemainingShares)
		t.PartialExits = append(t.PartialExits, types.PartialExit{
			Time:        ts,
			Price:       price,
			Shares:      t.RemainingShares,
			TargetIndex: -1,
			PnL:         pnl,
		})
		t.RemainingShares = 0
	}
	s.finalize(ts, price, reason)
}

// finalize freezes the active trade into a ClosedTrade.
func (s *session) finalize(ts int64, price float64, reason types.ExitReason) {
	t := s.active

	var total float64
	for _, pe := range t.PartialExits {
		total += pe.PnL
	}

	s.trades = append(s.trades, types.ClosedTrade{
		ActiveTrade:     *t,
		ExitTime:        ts,
		ExitReason:      reason,
		TotalPnL:        total,
		DurationMinutes: int((ts - t.EntryTime) / 60_000),
	})
	s.logSignal(ts, types.SignalExit, t.Direction, price, t.Shares, string(reason))
	s.active = nil
}

func (s *session) logSignal(ts int64, kind types.SignalType, dir types.Direction, price float64, shares int64, reason string) {
	s.signals = append(s.signals, types.Signal{
		ID:        uuid.New().String(),
		Time:      ts,
		Type:      kind,
		Direction: dir,
		Price:     price,
		Shares:    shares,
		Reason:    reason,
	})
}

func tradePnL(dir types.Direction, entry, exit float64, shares int64) float64 {
	if dir == types.DirectionShort {
		return (entry - exit) * float64(shares)
	}
	return (exit - entry) * float64(shares)
}
