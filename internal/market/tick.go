package market

import (
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/rng"
	"github.com/shopspring/decimal"
)

// Ticks quote a fixed 0.02% relative spread around the walked price.
var halfSpread = decimal.NewFromFloat(0.0001)

// Tick is a single simulated quote.
type Tick struct {
	Price      decimal.Decimal `json:"price"`
	Bid        decimal.Decimal `json:"bid"`
	Ask        decimal.Decimal `json:"ask"`
	Volume     int64           `json:"volume"`
	Timestamp  int64           `json:"timestamp"`
	TickNumber int64           `json:"tickNumber"`
}

// TickSimulator random-walks a price for real-time display. It is not
// part of the backtest path; candles remain the only strategy input.
type TickSimulator struct {
	symbol  string
	stream  *rng.Stream
	walkVol float64
	price   decimal.Decimal
	tick    int64
	now     func() time.Time
}

// NewTickSimulator creates a simulator seeded for a known ticker.
// Returns nil for an unknown symbol.
func NewTickSimulator(symbol string, seed int64) *TickSimulator {
	profile, ok := LookupProfile(symbol)
	if !ok {
		return nil
	}
	return &TickSimulator{
		symbol: profile.Symbol,
		stream: rng.New(seed),
		// Per-tick volatility, roughly one second of the daily move.
		walkVol: profile.Volatility / 1000,
		price:   decimal.NewFromFloat(profile.BasePrice),
		now:     time.Now,
	}
}

// NextTick advances the walk and returns the new quote.
func (ts *TickSimulator) NextTick() Tick {
	step := ts.stream.Normal() * ts.walkVol
	p, _ := ts.price.Float64()
	ts.price = decimal.NewFromFloat(p * (1 + step)).Round(2)
	if ts.price.LessThanOrEqual(decimal.Zero) {
		ts.price = decimal.NewFromFloat(0.01)
	}
	ts.tick++

	half := ts.price.Mul(halfSpread)
	return Tick{
		Price:      ts.price,
		Bid:        ts.price.Sub(half).Round(4),
		Ask:        ts.price.Add(half).Round(4),
		Volume:     100 + int64(ts.stream.Next()*900),
		Timestamp:  ts.now().UnixMilli(),
		TickNumber: ts.tick,
	}
}

// CurrentPrice returns the last walked price without advancing the
// stream.
func (ts *TickSimulator) CurrentPrice() decimal.Decimal {
	return ts.price
}

// Symbol returns the simulated ticker.
func (ts *TickSimulator) Symbol() string {
	return ts.symbol
}
