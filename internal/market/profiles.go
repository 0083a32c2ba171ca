// Package market generates synthetic minute-bar market data with
// realistic microstructure: U-shaped volume, mean reversion, and
// breakout volume spikes. Everything is a pure function of a seed.
package market

import (
	"sort"
	"strings"
)

// Profile describes a tradable ticker: its price level, annualized
// volatility, and average daily share volume.
type Profile struct {
	Symbol         string  `json:"symbol"`
	BasePrice      float64 `json:"basePrice"`
	Volatility     float64 `json:"volatility"`
	AvgDailyVolume int64   `json:"avgDailyVolume"`
}

var profiles = map[string]Profile{
	"AAPL": {Symbol: "AAPL", BasePrice: 185.00, Volatility: 0.24, AvgDailyVolume: 58_000_000},
	"MSFT": {Symbol: "MSFT", BasePrice: 415.00, Volatility: 0.22, AvgDailyVolume: 22_000_000},
	"NVDA": {Symbol: "NVDA", BasePrice: 880.00, Volatility: 0.48, AvgDailyVolume: 45_000_000},
	"TSLA": {Symbol: "TSLA", BasePrice: 175.00, Volatility: 0.55, AvgDailyVolume: 95_000_000},
	"AMD":  {Symbol: "AMD", BasePrice: 160.00, Volatility: 0.45, AvgDailyVolume: 60_000_000},
	"META": {Symbol: "META", BasePrice: 485.00, Volatility: 0.34, AvgDailyVolume: 16_000_000},
	"AMZN": {Symbol: "AMZN", BasePrice: 178.00, Volatility: 0.30, AvgDailyVolume: 40_000_000},
	"SPY":  {Symbol: "SPY", BasePrice: 510.00, Volatility: 0.13, AvgDailyVolume: 70_000_000},
	"QQQ":  {Symbol: "QQQ", BasePrice: 435.00, Volatility: 0.18, AvgDailyVolume: 42_000_000},
	"IWM":  {Symbol: "IWM", BasePrice: 201.00, Volatility: 0.21, AvgDailyVolume: 32_000_000},
}

// LookupProfile returns the profile for a symbol, case-insensitively.
// A false return signals a configuration error to the caller.
func LookupProfile(symbol string) (Profile, bool) {
	p, ok := profiles[strings.ToUpper(symbol)]
	return p, ok
}

// Symbols returns all known ticker symbols, sorted.
func Symbols() []string {
	out := make([]string, 0, len(profiles))
	for s := range profiles {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
