package market_test

import (
	"testing"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/market"
)

var testDate = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestGenerateDayDeterminism(t *testing.T) {
	profile, ok := market.LookupProfile("AAPL")
	if !ok {
		t.Fatal("AAPL profile missing")
	}

	a := market.GenerateDay(profile, 12345, testDate, 0)
	b := market.GenerateDay(profile, 12345, testDate, 0)

	if len(a.Candles) != len(b.Candles) {
		t.Fatalf("candle counts differ: %d != %d", len(a.Candles), len(b.Candles))
	}
	if a.PreMarketGap != b.PreMarketGap || a.OpenPrice != b.OpenPrice || a.ClosePrice != b.ClosePrice {
		t.Fatal("day-level fields differ between identical seeds")
	}
	for i := range a.Candles {
		if a.Candles[i] != b.Candles[i] {
			t.Fatalf("candle %d differs: %+v != %+v", i, a.Candles[i], b.Candles[i])
		}
	}
}

func TestGenerateDaySessionShape(t *testing.T) {
	day := market.GenerateDayBySymbol("TSLA", 99, testDate, 0)
	if day == nil {
		t.Fatal("expected a generated day")
	}

	if len(day.Candles) != market.MinutesPerSession {
		t.Fatalf("expected %d candles, got %d", market.MinutesPerSession, len(day.Candles))
	}

	open := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC).UnixMilli()
	if day.Candles[0].Time != open {
		t.Errorf("first candle at %d, want %d", day.Candles[0].Time, open)
	}
	for i := 1; i < len(day.Candles); i++ {
		if day.Candles[i].Time-day.Candles[i-1].Time != 60_000 {
			t.Fatalf("candle %d not one minute after its predecessor", i)
		}
	}

	if day.OpenPrice != day.Candles[0].Open {
		t.Errorf("day open %v does not match first candle open %v", day.OpenPrice, day.Candles[0].Open)
	}
	if day.ClosePrice != day.Candles[len(day.Candles)-1].Close {
		t.Errorf("day close does not match last candle close")
	}
}

func TestGenerateDayOHLCValidity(t *testing.T) {
	for _, symbol := range market.Symbols() {
		day := market.GenerateDayBySymbol(symbol, 777, testDate, 0)
		for i, c := range day.Candles {
			lo, hi := c.Open, c.Open
			if c.Close < lo {
				lo = c.Close
			}
			if c.Close > hi {
				hi = c.Close
			}
			if c.Low > lo {
				t.Fatalf("%s candle %d: low %v above min(open, close) %v", symbol, i, c.Low, lo)
			}
			if c.High < hi {
				t.Fatalf("%s candle %d: high %v below max(open, close) %v", symbol, i, c.High, hi)
			}
			if c.Volume < 0 {
				t.Fatalf("%s candle %d: negative volume %d", symbol, i, c.Volume)
			}
		}
	}
}

func TestGenerateDayUnknownTicker(t *testing.T) {
	if day := market.GenerateDayBySymbol("ZZZZ", 1, testDate, 0); day != nil {
		t.Fatal("unknown ticker must yield a nil day")
	}
}

func TestGenerateHistorySkipsWeekends(t *testing.T) {
	// Friday 2024-03-01; the next business day is Monday 2024-03-04.
	friday := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := market.GenerateHistory("SPY", friday, 3, 555)
	if series == nil {
		t.Fatal("expected a series")
	}
	if len(series.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(series.Days))
	}

	for _, day := range series.Days {
		if wd := day.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("generated a weekend day: %s", day.Date)
		}
	}
	if !series.Days[1].Date.Equal(friday.AddDate(0, 0, 3)) {
		t.Errorf("second day should be Monday, got %s", series.Days[1].Date)
	}
}

func TestGenerateHistoryChainsCloses(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	series := market.GenerateHistory("QQQ", start, 5, 4242)

	profile, _ := market.LookupProfile("QQQ")
	prevClose := profile.BasePrice
	seed := int64(4242)
	for i, day := range series.Days {
		expect := market.GenerateDay(profile, seed, day.Date, prevClose)
		if day.OpenPrice != expect.OpenPrice || day.ClosePrice != expect.ClosePrice {
			t.Fatalf("day %d does not chain from the prior close", i)
		}
		prevClose = day.ClosePrice
		seed = seed*1103515245 + 12345
	}
}

func TestGenerateHistoryUnknownTicker(t *testing.T) {
	if s := market.GenerateHistory("NOPE", testDate, 5, 1); s != nil {
		t.Fatal("unknown ticker must yield a nil series")
	}
}
