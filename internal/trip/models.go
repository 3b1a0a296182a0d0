// Package trip owns the trip lifecycle: destination selection, route
// planning, live proximity tracking, the wake/notify flow, and scheduled
// future trips.
package trip

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/routing"
	"github.com/ridewake/ridewake/internal/weather"
)

// Trip errors.
var (
	// ErrInvalidTransition indicates the event is not allowed in the
	// trip's current state.
	ErrInvalidTransition = errors.New("invalid trip state transition")
	// ErrUpdateLocked indicates the destination-change cool-down has not
	// elapsed yet.
	ErrUpdateLocked = errors.New("destination updates are locked")
	// ErrNoDestination indicates no destination has been set.
	ErrNoDestination = errors.New("no destination set")
	// ErrNoRoute indicates tracking cannot start because no route is
	// attached yet.
	ErrNoRoute = errors.New("no route computed yet")
	// ErrNoLabel indicates a scheduled trip needs a destination label.
	ErrNoLabel = errors.New("destination label required")
	// ErrTripNotFound indicates the scheduled trip does not exist.
	ErrTripNotFound = errors.New("trip not found")
	// ErrPastSchedule indicates the scheduled date/time is in the past.
	ErrPastSchedule = errors.New("scheduled time is in the past")
	// ErrNoActiveTrip indicates the user has no active trip session.
	ErrNoActiveTrip = errors.New("no active trip")
)

const (
	// ProximityThresholdKm is the arrival distance. Reaching it triggers
	// the wake flow exactly once per trip.
	ProximityThresholdKm = 2.0

	// UpdateLockDuration is the cool-down after scheduling during which
	// destination changes are rejected. Enforced by timestamp comparison,
	// never by a timer.
	UpdateLockDuration = 5 * time.Minute
)

// State is a trip lifecycle state.
type State string

const (
	// StateIdle: no destination chosen yet.
	StateIdle State = "IDLE"
	// StatePlanned: destination chosen, route computed or being computed.
	StatePlanned State = "PLANNED"
	// StateTracking: live positions are evaluated against the destination.
	StateTracking State = "TRACKING"
	// StateArrived: proximity reached, wake alarm ringing.
	StateArrived State = "ARRIVED"
	// StateNotified: rider confirmed awake, guardian SMS sent. Terminal.
	StateNotified State = "NOTIFIED"
	// StateCancelled: trip abandoned. Terminal.
	StateCancelled State = "CANCELLED"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateNotified || s == StateCancelled
}

// Destination is a chosen trip endpoint.
type Destination struct {
	Label string
	Point geo.Point
}

// Trip is the aggregate root for one tracked journey.
type Trip struct {
	ID          string
	UserID      string
	State       State
	Destination *Destination
	Route       *routing.Route
	Weather     *weather.Snapshot

	// DistanceKm is the last computed distance from the rider to the
	// destination. Negative until the first position arrives.
	DistanceKm float64

	// SMSSent guards the at-most-once guardian notification.
	SMSSent bool

	// UpdateLockUntil rejects destination changes until it elapses.
	// Zero when no lock is held.
	UpdateLockUntil time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTripID returns a prefixed unique trip id.
func NewTripID() string {
	return "trp_" + uuid.New().String()[:22]
}

// ScheduledTrip is a trip saved for a future date/time.
type ScheduledTrip struct {
	ID                     string
	UserID                 string
	Label                  string
	Lat                    float64
	Lon                    float64
	DepartAt               time.Time
	WeatherAdvisoryEnabled bool
	NotificationSent       bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewScheduledTripID returns a prefixed unique scheduled trip id.
func NewScheduledTripID() string {
	return "sch_" + uuid.New().String()[:22]
}
