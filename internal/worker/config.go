// Package worker provides background job processing for RideWake.
package worker

import (
	"time"
)

// SweepConfig holds configuration for the schedule sweep job.
type SweepConfig struct {
	// Lookahead is how far ahead of departure the reminder fires. A trip
	// is due when it departs within this window. Default: 15 minutes.
	Lookahead time.Duration

	// Concurrency is the number of trips processed in parallel.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for processing one trip.
	// Default: 30 seconds
	Timeout time.Duration

	// RainThresholdPct is the chance-of-rain at or above which a weather
	// advisory is attached to the reminder. Default: 50.
	RainThresholdPct int

	// SendWeatherAdvisories enables advisory lookups for trips that opted
	// in. Default: true
	SendWeatherAdvisories bool
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Lookahead:             15 * time.Minute,
		Concurrency:           3,
		Timeout:               30 * time.Second,
		RainThresholdPct:      50,
		SendWeatherAdvisories: true,
	}
}

// withDefaults fills in zero-valued fields.
func (c SweepConfig) withDefaults() SweepConfig {
	if c.Lookahead == 0 {
		c.Lookahead = 15 * time.Minute
	}
	if c.Concurrency == 0 {
		c.Concurrency = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RainThresholdPct == 0 {
		c.RainThresholdPct = 50
	}
	return c
}
