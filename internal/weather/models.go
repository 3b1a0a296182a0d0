// Package weather provides current conditions and hourly forecasts for
// trip destinations.
package weather

import (
	"context"
	"errors"
	"time"

	"github.com/ridewake/ridewake/internal/geo"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	// ErrOutOfForecastRange indicates the requested date falls outside the
	// provider's window. Enforced before the provider is called.
	ErrOutOfForecastRange = errors.New("requested date out of forecast range")
)

// ForecastWindowDays bounds date-specific forecasts to this many days in
// either direction from today.
const ForecastWindowDays = 10

// RainLookaheadHours is how many upcoming hourly buckets feed the
// chance-of-rain figure on a snapshot.
const RainLookaheadHours = 4

// Provider defines the interface for weather providers.
type Provider interface {
	// CurrentAndHourly fetches current conditions plus today's hourly
	// forecast for a location.
	CurrentAndHourly(ctx context.Context, pt geo.Point) (*Bulletin, error)
	// HourlyForDate fetches the hourly forecast for a specific date.
	HourlyForDate(ctx context.Context, pt geo.Point, date time.Time) ([]Hourly, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Bulletin is the provider's raw report: current conditions plus hourly
// buckets for the rest of the day.
type Bulletin struct {
	Current   Conditions
	Hourly    []Hourly
	FetchedAt time.Time
}

// Conditions are the observed conditions at a location.
type Conditions struct {
	TemperatureC float64
	Condition    string
	WindKph      float64
	HumidityPct  int
}

// Hourly is the forecast for a single hour bucket.
type Hourly struct {
	Time            time.Time
	TemperatureC    float64
	Condition       string
	WindKph         float64
	ChanceOfRainPct int
}

// Snapshot is the trip-facing weather summary. ChanceOfRainPct is the
// maximum over the next RainLookaheadHours hourly buckets.
type Snapshot struct {
	TemperatureC    float64
	Condition       string
	WindKph         float64
	HumidityPct     int
	ChanceOfRainPct int
	FetchedAt       time.Time
}

// HourlyWindow is the hourly forecast for a scheduled trip's date.
type HourlyWindow struct {
	Date  time.Time
	Hours []Hourly
}

// At returns the hour bucket covering the given time, or nil when the
// window has no bucket for it.
func (w *HourlyWindow) At(t time.Time) *Hourly {
	for i := range w.Hours {
		h := &w.Hours[i]
		if !t.Before(h.Time) && t.Before(h.Time.Add(time.Hour)) {
			return h
		}
	}
	return nil
}

// Error provides detailed error information from the weather provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
