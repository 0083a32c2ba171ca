// Package types provides configuration types for the ORB backtester.
package types

import (
	"fmt"
	"time"
)

// ConfirmationType selects how a breakout is confirmed.
type ConfirmationType string

const (
	// ConfirmClose requires the candle to close beyond the range boundary;
	// the entry fills at the close.
	ConfirmClose ConfirmationType = "close"
	// ConfirmWick accepts an intrabar wick beyond the boundary; the entry
	// fills one cent past the boundary.
	ConfirmWick ConfirmationType = "wick"
)

// SizingMode selects the position-sizing rule.
type SizingMode string

const (
	// SizingFixedRisk sizes so a stop-out loses a fixed fraction of the account.
	SizingFixedRisk SizingMode = "fixed_risk"
	// SizingFixedShares always trades a constant share count.
	SizingFixedShares SizingMode = "fixed_shares"
)

// TradeConfig is the immutable strategy configuration for one run.
// Build it once with DefaultTradeConfig().Merge(overrides) and thread it
// as a value; nothing mutates it afterwards.
type TradeConfig struct {
	OpeningRangeMinutes int              `json:"openingRangeMinutes"`
	ConfirmationType    ConfirmationType `json:"confirmationType"`
	VolumeConfirmation  bool             `json:"volumeConfirmation"`
	VolumeMultiplier    float64          `json:"volumeMultiplier"`

	// Targets are profit levels in opening-range-size multiples, ascending.
	// PartialPercents weights the share fraction closed at each target.
	Targets                   []float64 `json:"targets"`
	PartialProfits            bool      `json:"partialProfits"`
	PartialPercents           []float64 `json:"partialPercents"`
	BreakEvenAfterFirstTarget bool      `json:"breakEvenAfterFirstTarget"`

	// Trailing stops only activate when partial profits are disabled.
	// The two features are deliberately mutually exclusive; enabling both
	// silently prefers partials.
	TrailingStop       bool    `json:"trailingStop"`
	TrailingActivation float64 `json:"trailingActivation"`
	TrailingDistance   float64 `json:"trailingDistance"`

	Sizing       SizingMode `json:"sizing"`
	RiskFraction float64    `json:"riskFraction"`
	FixedShares  int64      `json:"fixedShares"`

	MaxTradesPerDay   int     `json:"maxTradesPerDay"`
	MaxHoldingMinutes int     `json:"maxHoldingMinutes"`
	StopBuffer        float64 `json:"stopBuffer"`
	AvoidFirstMinutes int     `json:"avoidFirstMinutes"`
}

// DefaultTradeConfig returns the documented strategy defaults.
func DefaultTradeConfig() TradeConfig {
	return TradeConfig{
		OpeningRangeMinutes:       15,
		ConfirmationType:          ConfirmClose,
		VolumeConfirmation:        true,
		VolumeMultiplier:          1.5,
		Targets:                   []float64{1.0, 2.0, 3.0},
		PartialProfits:            true,
		PartialPercents:           []float64{0.5, 0.3, 0.2},
		BreakEvenAfterFirstTarget: true,
		TrailingStop:              false,
		TrailingActivation:        1.0,
		TrailingDistance:          0.5,
		Sizing:                    SizingFixedRisk,
		RiskFraction:              0.01,
		FixedShares:               100,
		MaxTradesPerDay:           2,
		MaxHoldingMinutes:         120,
		StopBuffer:                0.10,
		AvoidFirstMinutes:         5,
	}
}

// TradeOverrides carries caller-supplied overrides. Only non-nil fields
// replace the defaults.
type TradeOverrides struct {
	OpeningRangeMinutes       *int              `json:"openingRangeMinutes,omitempty"`
	ConfirmationType          *ConfirmationType `json:"confirmationType,omitempty"`
	VolumeConfirmation        *bool             `json:"volumeConfirmation,omitempty"`
	VolumeMultiplier          *float64          `json:"volumeMultiplier,omitempty"`
	Targets                   []float64         `json:"targets,omitempty"`
	PartialProfits            *bool             `json:"partialProfits,omitempty"`
	PartialPercents           []float64         `json:"partialPercents,omitempty"`
	BreakEvenAfterFirstTarget *bool             `json:"breakEvenAfterFirstTarget,omitempty"`
	TrailingStop              *bool             `json:"trailingStop,omitempty"`
	TrailingActivation        *float64          `json:"trailingActivation,omitempty"`
	TrailingDistance          *float64          `json:"trailingDistance,omitempty"`
	Sizing                    *SizingMode       `json:"sizing,omitempty"`
	RiskFraction              *float64          `json:"riskFraction,omitempty"`
	FixedShares               *int64            `json:"fixedShares,omitempty"`
	MaxTradesPerDay           *int              `json:"maxTradesPerDay,omitempty"`
	MaxHoldingMinutes         *int              `json:"maxHoldingMinutes,omitempty"`
	StopBuffer                *float64          `json:"stopBuffer,omitempty"`
	AvoidFirstMinutes         *int              `json:"avoidFirstMinutes,omitempty"`
}

// Merge applies overrides to a copy of the receiver and returns it.
func (c TradeConfig) Merge(o *TradeOverrides) TradeConfig {
	if o == nil {
		return c
	}
	if o.OpeningRangeMinutes != nil {
		c.OpeningRangeMinutes = *o.OpeningRangeMinutes
	}
	if o.ConfirmationType != nil {
		c.ConfirmationType = *o.ConfirmationType
	}
	if o.VolumeConfirmation != nil {
		c.VolumeConfirmation = *o.VolumeConfirmation
	}
	if o.VolumeMultiplier != nil {
		c.VolumeMultiplier = *o.VolumeMultiplier
	}
	if o.Targets != nil {
		c.Targets = append([]float64(nil), o.Targets...)
	}
	if o.PartialProfits != nil {
		c.PartialProfits = *o.PartialProfits
	}
	if o.PartialPercents != nil {
		c.PartialPercents = append([]float64(nil), o.PartialPercents...)
	}
	if o.BreakEvenAfterFirstTarget != nil {
		c.BreakEvenAfterFirstTarget = *o.BreakEvenAfterFirstTarget
	}
	if o.TrailingStop != nil {
		c.TrailingStop = *o.TrailingStop
	}
	if o.TrailingActivation != nil {
		c.TrailingActivation = *o.TrailingActivation
	}
	if o.TrailingDistance != nil {
		c.TrailingDistance = *o.TrailingDistance
	}
	if o.Sizing != nil {
		c.Sizing = *o.Sizing
	}
	if o.RiskFraction != nil {
		c.RiskFraction = *o.RiskFraction
	}
	if o.FixedShares != nil {
		c.FixedShares = *o.FixedShares
	}
	if o.MaxTradesPerDay != nil {
		c.MaxTradesPerDay = *o.MaxTradesPerDay
	}
	if o.MaxHoldingMinutes != nil {
		c.MaxHoldingMinutes = *o.MaxHoldingMinutes
	}
	if o.StopBuffer != nil {
		c.StopBuffer = *o.StopBuffer
	}
	if o.AvoidFirstMinutes != nil {
		c.AvoidFirstMinutes = *o.AvoidFirstMinutes
	}
	return c
}

// Validate rejects configurations the state machine cannot dispatch on.
func (c TradeConfig) Validate() error {
	switch c.ConfirmationType {
	case ConfirmClose, ConfirmWick:
	default:
		return fmt.Errorf("invalid confirmation type %q", c.ConfirmationType)
	}
	switch c.Sizing {
	case SizingFixedRisk, SizingFixedShares:
	default:
		return fmt.Errorf("invalid sizing mode %q", c.Sizing)
	}
	if c.OpeningRangeMinutes <= 0 {
		return fmt.Errorf("opening range minutes must be positive, got %d", c.OpeningRangeMinutes)
	}
	if c.PartialProfits {
		if len(c.Targets) == 0 {
			return fmt.Errorf("partial profits enabled with no targets")
		}
		if len(c.PartialPercents) != len(c.Targets) {
			return fmt.Errorf("partial percents (%d) must match targets (%d)",
				len(c.PartialPercents), len(c.Targets))
		}
		for i := 1; i < len(c.Targets); i++ {
			if c.Targets[i] <= c.Targets[i-1] {
				return fmt.Errorf("targets must be strictly ascending")
			}
		}
	}
	return nil
}

// MonteCarloConfig configures the trade-outcome resampler.
type MonteCarloConfig struct {
	Simulations int   `json:"simulations"`
	Seed        int64 `json:"seed"`
}

// BacktestConfig is the invocation contract for one backtest run.
// Strategy fields left nil fall back to the documented defaults.
type BacktestConfig struct {
	ID                 string           `json:"id"`
	Ticker             string           `json:"ticker"`
	StartDate          time.Time        `json:"startDate"`
	Days               int              `json:"days"`
	StartingCapital    float64          `json:"startingCapital"`
	CommissionPerShare float64          `json:"commissionPerShare"`
	SlippagePerTrade   float64          `json:"slippagePerTrade"`
	Seed               int64            `json:"seed"`
	Strategy           *TradeOverrides  `json:"strategy,omitempty"`
	MonteCarlo         MonteCarloConfig `json:"monteCarlo"`
}

// ServerConfig represents API server configuration.
type ServerConfig struct {
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	ReadTimeout   time.Duration `json:"readTimeout"`
	WriteTimeout  time.Duration `json:"writeTimeout"`
	EnableMetrics bool          `json:"enableMetrics"`
}
