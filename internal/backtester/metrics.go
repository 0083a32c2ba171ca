package backtester

import (
	"math"

	"github.com/atlas-desktop/orb-backtester/pkg/types"
)

const tradingDaysPerYear = 252

// ComputeMetrics derives performance statistics from the net trade list
// and the daily equity curve. Numeric degeneracies resolve to the
// documented fallbacks (0 or +Inf), never NaN.
func ComputeMetrics(trades []types.TradeRecord, curve []types.EquityPoint, initialCapital float64) *types.BacktestMetrics {
	m := &types.BacktestMetrics{FinalEquity: initialCapital}
	if len(curve) > 0 {
		m.FinalEquity = curve[len(curve)-1].Equity
	}
	if initialCapital > 0 {
		m.TotalReturnPct = (m.FinalEquity - initialCapital) / initialCapital * 100
	}

	m.MaxDrawdown, m.MaxDrawdownPct, m.LongestDrawdownDays = drawdownStats(curve)

	returns := dailyReturns(curve, initialCapital)
	m.SharpeRatio = sharpe(returns)
	m.SortinoRatio = sortino(returns)

	if len(trades) == 0 {
		return m
	}

	var (
		winStreak, lossStreak   int
		totalDuration           float64
		longWins, shortWins     int
		currentWin, currentLoss int
	)

	for _, trade := range trades {
		pnl := trade.NetPnL
		m.TotalPnL += pnl
		totalDuration += float64(trade.DurationMinutes)

		if trade.Direction == types.DirectionLong {
			m.LongTrades++
		} else {
			m.ShortTrades++
		}

		switch {
		case pnl > 0:
			m.WinningTrades++
			m.GrossProfit += pnl
			if pnl > m.LargestWin {
				m.LargestWin = pnl
			}
			if trade.Direction == types.DirectionLong {
				longWins++
			} else {
				shortWins++
			}
			currentWin++
			currentLoss = 0
		case pnl < 0:
			m.LosingTrades++
			m.GrossLoss += -pnl
			if -pnl > m.LargestLoss {
				m.LargestLoss = -pnl
			}
			currentLoss++
			currentWin = 0
		default:
			currentWin, currentLoss = 0, 0
		}

		if currentWin > winStreak {
			winStreak = currentWin
		}
		if currentLoss > lossStreak {
			lossStreak = currentLoss
		}
	}

	m.TotalTrades = len(trades)
	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	m.Expectancy = m.TotalPnL / float64(m.TotalTrades)
	m.AvgDurationMinutes = totalDuration / float64(m.TotalTrades)
	m.MaxConsecutiveWins = winStreak
	m.MaxConsecutiveLosses = lossStreak

	if m.WinningTrades > 0 {
		m.AvgWin = m.GrossProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = m.GrossLoss / float64(m.LosingTrades)
	}
	if m.AvgLoss > 0 {
		m.AvgWinLossRatio = m.AvgWin / m.AvgLoss
	}

	switch {
	case m.GrossLoss > 0:
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	case m.GrossProfit > 0:
		m.ProfitFactor = math.Inf(1)
	}

	if m.LongTrades > 0 {
		m.LongWinRate = float64(longWins) / float64(m.LongTrades)
	}
	if m.ShortTrades > 0 {
		m.ShortWinRate = float64(shortWins) / float64(m.ShortTrades)
	}

	return m
}

// drawdownStats tracks the running peak over the equity curve and the
// longest stretch of trading days spent below it.
func drawdownStats(curve []types.EquityPoint) (maxDD, maxDDPct float64, longestDays int) {
	if len(curve) == 0 {
		return 0, 0, 0
	}

	peak := curve[0].Equity
	underwater := 0

	for _, point := range curve {
		if point.Equity >= peak {
			peak = point.Equity
			underwater = 0
			continue
		}

		underwater++
		if underwater > longestDays {
			longestDays = underwater
		}

		dd := peak - point.Equity
		if dd > maxDD {
			maxDD = dd
			if peak > 0 {
				maxDDPct = dd / peak * 100
			}
		}
	}

	return maxDD, maxDDPct, longestDays
}

// dailyReturns converts the equity curve into simple daily returns,
// anchored on the starting capital.
func dailyReturns(curve []types.EquityPoint, initialCapital float64) []float64 {
	if len(curve) == 0 {
		return nil
	}

	returns := make([]float64, 0, len(curve))
	prev := initialCapital
	for _, point := range curve {
		if prev != 0 {
			returns = append(returns, (point.Equity-prev)/prev)
		}
		prev = point.Equity
	}
	return returns
}

// sharpe annualizes mean daily return over daily volatility; 0 when the
// denominator degenerates.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	avg := mean(returns)
	sd := stdDev(returns)
	denom := sd * math.Sqrt(tradingDaysPerYear)
	if denom == 0 {
		return 0
	}
	return avg * tradingDaysPerYear / denom
}

// sortino substitutes the downside deviation of negative daily returns,
// population-style.
func sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var negatives []float64
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return 0
	}

	avg := mean(negatives)
	var sumSq float64
	for _, r := range negatives {
		diff := r - avg
		sumSq += diff * diff
	}
	downside := math.Sqrt(sumSq / float64(len(negatives)))

	denom := downside * math.Sqrt(tradingDaysPerYear)
	if denom == 0 {
		return 0
	}
	return mean(returns) * tradingDaysPerYear / denom
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - avg
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
