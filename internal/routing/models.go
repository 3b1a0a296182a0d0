// Package routing computes normalized routes between an origin position
// and a trip destination.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/ridewake/ridewake/internal/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrRouteUnavailable indicates the provider returned no routes or the
	// network call failed. The trip stays planned with no route attached
	// and the caller may retry.
	ErrRouteUnavailable = errors.New("route unavailable")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// AssumedSpeedKmh is the travel speed used for time estimates. The
// estimate is derived from distance alone so it stays consistent no
// matter which provider produced the route geometry.
const AssumedSpeedKmh = 30.0

// Provider defines the interface for routing providers.
type Provider interface {
	// GetRoute retrieves the raw route between origin and destination.
	GetRoute(ctx context.Context, req RouteRequest) (*RawRoute, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// RouteRequest is the request for computing a route.
type RouteRequest struct {
	Origin      geo.Point
	Destination geo.Point
}

// RawRoute is the provider's route before normalization. DurationSeconds
// carries the provider's own travel time; it is recorded but never used
// for the rider-facing estimate.
type RawRoute struct {
	Points          []geo.Point
	DistanceMeters  int
	DurationSeconds int
}

// Route is a normalized route attached to a trip.
type Route struct {
	Points           []geo.Point
	GeometryPolyline string // encoded at precision 5
	TotalDistanceKm  float64
	EstimatedMinutes int
	Provider         string
	FetchedAt        time.Time
}

// Error provides detailed error information from the routing provider.
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

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrRouteUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
