package market

import (
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/rng"
)

// Series is an ordered run of generated trading days. Each day's close
// feeds forward as the next day's price level, so the sequence cannot be
// restarted mid-way.
type Series struct {
	Ticker string `json:"ticker"`
	Days   []*Day `json:"days"`
}

// GenerateHistory chains day generation across business days starting at
// start, skipping Saturdays and Sundays. Returns nil for an unknown
// ticker.
func GenerateHistory(symbol string, start time.Time, days int, seed int64) *Series {
	profile, ok := LookupProfile(symbol)
	if !ok {
		return nil
	}
	if days <= 0 {
		return &Series{Ticker: profile.Symbol}
	}

	series := &Series{
		Ticker: profile.Symbol,
		Days:   make([]*Day, 0, days),
	}

	date := start
	daySeed := seed
	prevClose := profile.BasePrice

	for len(series.Days) < days {
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			date = date.AddDate(0, 0, 1)
			continue
		}

		day := GenerateDay(profile, daySeed, date, prevClose)
		series.Days = append(series.Days, day)

		prevClose = day.ClosePrice
		daySeed = rng.NextSeed(daySeed)
		date = date.AddDate(0, 0, 1)
	}

	return series
}
