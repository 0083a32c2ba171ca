package market

import (
	"math"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/rng"
	"github.com/atlas-desktop/orb-backtester/pkg/types"
)

const (
	// MinutesPerSession covers the 09:30-16:00 regular session.
	MinutesPerSession = 390

	sessionOpenHour   = 9
	sessionOpenMinute = 30

	// The generator tracks the first 15 minutes to model breakout
	// liquidity, mirroring the strategy's default opening range.
	rangeTrackMinutes = 15

	tradingDaysPerYear = 252
)

// Day is one generated trading session.
type Day struct {
	Ticker       string         `json:"ticker"`
	Date         time.Time      `json:"date"`
	PreMarketGap float64        `json:"preMarketGap"`
	OpenPrice    float64        `json:"openPrice"`
	ClosePrice   float64        `json:"closePrice"`
	Candles      []types.Candle `json:"candles"`
}

// GenerateDay produces one session of minute candles from a seed and the
// previous session's close. Pass prevClose <= 0 to start from the
// profile's base price.
func GenerateDay(profile Profile, seed int64, date time.Time, prevClose float64) *Day {
	stream := rng.New(seed)

	base := prevClose
	if base <= 0 {
		base = profile.BasePrice
	}

	dailyVol := profile.Volatility / math.Sqrt(tradingDaysPerYear)
	minuteVol := dailyVol / math.Sqrt(MinutesPerSession)

	gap := stream.Normal() * dailyVol * 0.6
	open := round2(base * (1 + gap))
	if open < 0.01 {
		open = 0.01
	}

	// Day-level drift, spread evenly across the session.
	trendBias := stream.Normal() * dailyVol * 0.3

	candles := make([]types.Candle, 0, MinutesPerSession)
	ts := time.Date(date.Year(), date.Month(), date.Day(),
		sessionOpenHour, sessionOpenMinute, 0, 0, time.UTC).UnixMilli()

	price := open
	rangeHigh, rangeLow := open, open
	minuteVolume := float64(profile.AvgDailyVolume) / MinutesPerSession

	for i := 0; i < MinutesPerSession; i++ {
		t := float64(i) / MinutesPerSession
		volCurve := math.Exp(-8*t)*3 + math.Exp(-8*(1-t))*2.5 + 0.4

		noise := stream.Normal() * minuteVol * volCurve * 0.5
		meanReversion := 0.02 * (open - price) / open * minuteVol
		ret := noise + trendBias/MinutesPerSession + meanReversion

		o := price
		c := round2(o * (1 + ret))
		if c < 0.01 {
			c = 0.01
		}

		h := round2(math.Max(o, c) + math.Abs(stream.Normal())*minuteVol*o*0.5)
		l := round2(math.Min(o, c) - math.Abs(stream.Normal())*minuteVol*o*0.5)
		if h < math.Max(o, c) {
			h = math.Max(o, c)
		}
		if l > math.Min(o, c) {
			l = math.Min(o, c)
		}
		if l < 0.01 {
			l = 0.01
		}

		volume := minuteVolume * volCurve * (0.5 + stream.Next())
		if i < rangeTrackMinutes {
			if h > rangeHigh {
				rangeHigh = h
			}
			if l < rangeLow {
				rangeLow = l
			}
		} else if c > rangeHigh || c < rangeLow {
			// Breakout liquidity spike.
			volume *= 1.8 + stream.Next()*1.2
		}

		shares := int64(math.Round(volume))
		if shares < 0 {
			shares = 0
		}

		candles = append(candles, types.Candle{
			Time:   ts,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: shares,
		})

		price = c
		ts += 60_000
	}

	return &Day{
		Ticker:       profile.Symbol,
		Date:         date,
		PreMarketGap: gap,
		OpenPrice:    open,
		ClosePrice:   price,
		Candles:      candles,
	}
}

// GenerateDayBySymbol looks up the ticker profile and generates one
// session. Returns nil for an unknown ticker.
func GenerateDayBySymbol(symbol string, seed int64, date time.Time, prevClose float64) *Day {
	profile, ok := LookupProfile(symbol)
	if !ok {
		return nil
	}
	return GenerateDay(profile, seed, date, prevClose)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
