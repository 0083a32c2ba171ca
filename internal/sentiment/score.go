// Package sentiment produces the pre-market composite sentiment score.
// The score is informational only and keyed by ticker and date; strategy
// code never reads it.
package sentiment

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/market"
	"github.com/atlas-desktop/orb-backtester/internal/rng"
)

// Components breaks the composite down by source, each in [-100, 100].
type Components struct {
	News        float64 `json:"news"`
	Social      float64 `json:"social"`
	Technical   float64 `json:"technical"`
	OptionsFlow float64 `json:"optionsFlow"`
}

// Score is a composite sentiment reading for one ticker on one date.
type Score struct {
	Ticker     string     `json:"ticker"`
	Date       string     `json:"date"`
	Composite  float64    `json:"composite"`
	Components Components `json:"components"`
	Label      string     `json:"label"`
}

// Component weights sum to 1.
const (
	newsWeight      = 0.35
	socialWeight    = 0.25
	technicalWeight = 0.25
	optionsWeight   = 0.15
)

// ScoreFor computes the deterministic composite score for a ticker and
// date. Returns nil for an unknown ticker.
func ScoreFor(ticker string, date time.Time) *Score {
	profile, ok := market.LookupProfile(ticker)
	if !ok {
		return nil
	}

	day := date.Format("2006-01-02")
	stream := rng.New(keySeed(profile.Symbol, day))

	c := Components{
		News:        component(stream),
		Social:      component(stream),
		Technical:   component(stream),
		OptionsFlow: component(stream),
	}

	composite := c.News*newsWeight + c.Social*socialWeight +
		c.Technical*technicalWeight + c.OptionsFlow*optionsWeight

	return &Score{
		Ticker:     profile.Symbol,
		Date:       day,
		Composite:  round2(clamp(composite)),
		Components: c,
		Label:      label(composite),
	}
}

func keySeed(ticker, day string) int64 {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	h.Write([]byte{'|'})
	h.Write([]byte(day))
	return int64(h.Sum64())
}

func component(stream *rng.Stream) float64 {
	return round2(clamp(stream.Normal() * 40))
}

func clamp(v float64) float64 {
	return math.Max(-100, math.Min(100, v))
}

func label(composite float64) string {
	switch {
	case composite >= 20:
		return "bullish"
	case composite <= -20:
		return "bearish"
	default:
		return "neutral"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
