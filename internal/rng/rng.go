// Package rng provides the deterministic pseudo-random streams behind
// every synthetic price path. An identical seed produces bit-identical
// candles, trades, and metrics downstream.
package rng

import "math"

const (
	streamMultiplier = 1664525
	streamIncrement  = 1013904223

	seedMultiplier = 1103515245
	seedIncrement  = 12345
)

// Stream is a linear-congruential generator over 32-bit state. Two
// independently seeded streams never interfere.
type Stream struct {
	state uint32
}

// New creates a stream seeded with the low 32 bits of seed.
func New(seed int64) *Stream {
	return &Stream{state: uint32(seed)}
}

// Next advances the stream and returns a value in [0, 1].
func (s *Stream) Next() float64 {
	s.state = s.state*streamMultiplier + streamIncrement
	return float64(s.state) / float64(math.MaxUint32)
}

// Normal draws a standard normal variate via the Box-Muller transform.
// A zero first uniform is redrawn to keep the logarithm finite.
func (s *Stream) Normal() float64 {
	u1 := s.Next()
	for u1 == 0 {
		u1 = s.Next()
	}
	u2 := s.Next()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// NextSeed advances a day-level seed. This recurrence is independent of
// the per-minute stream so day chaining never perturbs intraday draws.
func NextSeed(seed int64) int64 {
	return seed*seedMultiplier + seedIncrement
}
