package trip

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/routing"
	"github.com/ridewake/ridewake/internal/weather"
)

// ErrInvalidDestination indicates the destination coordinates are out of range.
var ErrInvalidDestination = errors.New("invalid destination coordinates")

// RouteComputer computes a normalized route. Satisfied by routing.Service.
type RouteComputer interface {
	ComputeRoute(ctx context.Context, origin, destination geo.Point) (*routing.Route, error)
}

// WeatherFetcher fetches the destination weather snapshot. Satisfied by
// weather.Service.
type WeatherFetcher interface {
	CurrentAndForecast(ctx context.Context, pt geo.Point) (*weather.Snapshot, error)
}

// Notifier drives the wake alarm and guardian SMS. Satisfied by
// notify.Service.
type Notifier interface {
	PlayAlarm(ctx context.Context, userID, tripID string) error
	StopAlarm(tripID string)
	SendGuardianSMS(ctx context.Context, to, message string) error
}

// GuardianLookup resolves the guardian contact for a user.
type GuardianLookup interface {
	GuardianFor(ctx context.Context, userID string) (phone, message string, err error)
}

// SessionConfig holds the collaborators for one trip session.
type SessionConfig struct {
	UserID    string
	Router    RouteComputer
	Weather   WeatherFetcher
	Notifier  Notifier
	Guardians GuardianLookup
	Store     ScheduleStore
	Logger    zerolog.Logger

	// Now returns the current time. Defaults to time.Now; overridden in
	// tests. The 5-minute update lock is a comparison against this clock,
	// never a timer.
	Now func() time.Time

	// FetchTimeout bounds background route/weather fetches (default: 15s).
	FetchTimeout time.Duration
}

// Session processes one user's trip events. All event handlers are
// serialized; route and weather fetches run outside the lock and their
// results are discarded when the trip has moved on (generation guard).
type Session struct {
	userID       string
	router       RouteComputer
	weather      WeatherFetcher
	notifier     Notifier
	guardians    GuardianLookup
	store        ScheduleStore
	logger       zerolog.Logger
	now          func() time.Time
	fetchTimeout time.Duration

	mu             sync.Mutex
	trip           *Trip
	lastPosition   *geo.Position
	generation     uint64
	routePending   bool
	confirmPending bool
}

// NewSession creates a session for one user.
func NewSession(cfg SessionConfig) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 15 * time.Second
	}

	return &Session{
		userID:       cfg.UserID,
		router:       cfg.Router,
		weather:      cfg.Weather,
		notifier:     cfg.Notifier,
		guardians:    cfg.Guardians,
		store:        cfg.Store,
		logger:       cfg.Logger.With().Str("user_id", cfg.UserID).Logger(),
		now:          now,
		fetchTimeout: fetchTimeout,
	}
}

// SetDestination chooses or re-chooses the destination. Allowed in Idle
// (creates the trip) and in Planned (marker drag re-plans the route).
// Route and weather are fetched in the background.
func (s *Session) SetDestination(dest Destination) error {
	if !dest.Point.Valid() {
		return ErrInvalidDestination
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trip == nil || s.trip.State.Terminal() {
		now := s.now()
		s.trip = &Trip{
			ID:         NewTripID(),
			UserID:     s.userID,
			State:      StateIdle,
			DistanceKm: -1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	if s.trip.State != StateIdle && s.trip.State != StatePlanned {
		return ErrInvalidTransition
	}

	s.trip.Destination = &dest
	s.trip.State = StatePlanned
	s.trip.Route = nil
	s.trip.Weather = nil
	s.trip.DistanceKm = -1
	s.trip.UpdatedAt = s.now()
	s.generation++
	s.routePending = false

	s.logger.Info().
		Str("trip_id", s.trip.ID).
		Str("label", dest.Label).
		Msg("destination set, trip planned")

	s.startFetchesLocked()
	return nil
}

// ScheduleNow starts live tracking. Requires a computed route and sets
// the 5-minute destination-change lock.
func (s *Session) ScheduleNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trip == nil || s.trip.State != StatePlanned {
		return ErrInvalidTransition
	}
	if s.trip.Route == nil {
		return ErrNoRoute
	}

	now := s.now()
	if !s.trip.UpdateLockUntil.IsZero() && now.Before(s.trip.UpdateLockUntil) {
		// Lock is monotonic: re-scheduling while still locked is rejected.
		return ErrUpdateLocked
	}

	s.trip.State = StateTracking
	s.trip.UpdateLockUntil = now.Add(UpdateLockDuration)
	s.trip.UpdatedAt = now

	s.logger.Info().
		Str("trip_id", s.trip.ID).
		Time("lock_until", s.trip.UpdateLockUntil).
		Msg("tracking started")

	return nil
}

// ScheduleLater persists the trip for a future departure and ends the
// session. Ownership of the trip passes to the stored record.
func (s *Session) ScheduleLater(ctx context.Context, departAt time.Time, weatherAdvisory bool) (*ScheduledTrip, error) {
	s.mu.Lock()

	if s.trip == nil || s.trip.State != StatePlanned {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	dest := s.trip.Destination
	if dest == nil {
		s.mu.Unlock()
		return nil, ErrNoDestination
	}
	if dest.Label == "" {
		s.mu.Unlock()
		return nil, ErrNoLabel
	}
	now := s.now()
	if !departAt.After(now) {
		s.mu.Unlock()
		return nil, ErrPastSchedule
	}

	scheduled := &ScheduledTrip{
		ID:                     NewScheduledTripID(),
		UserID:                 s.userID,
		Label:                  dest.Label,
		Lat:                    dest.Point.Lat,
		Lon:                    dest.Point.Lon,
		DepartAt:               departAt,
		WeatherAdvisoryEnabled: weatherAdvisory,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	// End the session before the store call: in-flight fetch results for
	// the old trip must be discarded either way.
	s.trip = nil
	s.generation++
	s.mu.Unlock()

	if err := s.store.Save(ctx, scheduled); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("scheduled_id", scheduled.ID).
		Time("depart_at", departAt).
		Msg("trip scheduled for later")

	return scheduled, nil
}

// UpdatePosition records a position fix. Proximity is evaluated only
// while Tracking with a destination and an unsent SMS; everything else is
// a no-op, which makes the arrival side effects at-most-once no matter
// how many fixes arrive inside the threshold.
func (s *Session) UpdatePosition(pos geo.Position) error {
	if !pos.Valid() {
		return nil // malformed fixes are dropped, not fatal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastPosition = &pos

	if s.trip == nil {
		return nil
	}

	// A plan made before the first fix could not fetch a route; do it now.
	if s.trip.State == StatePlanned && s.trip.Destination != nil &&
		s.trip.Route == nil && !s.routePending {
		s.routePending = true
		go s.fetchRoute(s.generation, pos.Point, s.trip.Destination.Point)
		return nil
	}

	if s.trip.State != StateTracking || s.trip.Destination == nil || s.trip.SMSSent {
		return nil
	}

	dist := geo.DistanceKm(pos.Point, s.trip.Destination.Point)
	s.trip.DistanceKm = dist
	s.trip.UpdatedAt = s.now()

	if dist > ProximityThresholdKm {
		return nil
	}

	s.trip.State = StateArrived

	s.logger.Info().
		Str("trip_id", s.trip.ID).
		Float64("distance_km", dist).
		Msg("proximity reached, waking rider")

	// The alarm push is network-bound; keep it off the position path.
	userID, tripID := s.userID, s.trip.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()
		if err := s.notifier.PlayAlarm(ctx, userID, tripID); err != nil {
			s.logger.Error().Err(err).Str("trip_id", tripID).Msg("alarm request failed")
		}
	}()

	return nil
}

// ConfirmAwake acknowledges the wake alarm: stops it, sends the guardian
// SMS, and closes the trip. A failed send leaves the trip Arrived with
// SMSSent false so the acknowledgement can be retried. Repeating the
// acknowledgement after the trip is Notified is a no-op; the SMS goes out
// at most once per trip.
func (s *Session) ConfirmAwake(ctx context.Context) error {
	s.mu.Lock()
	if s.trip != nil && s.trip.State == StateNotified {
		// The previous confirm already succeeded; a retry is benign.
		s.mu.Unlock()
		return nil
	}
	if s.trip == nil || s.trip.State != StateArrived {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	if s.confirmPending {
		// Another acknowledgement is already sending the SMS.
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.confirmPending = true
	gen := s.generation
	tripID := s.trip.ID
	s.mu.Unlock()

	s.notifier.StopAlarm(tripID)

	phone, message, err := s.guardians.GuardianFor(ctx, s.userID)
	var sendErr error
	if err == nil {
		sendErr = s.notifier.SendGuardianSMS(ctx, phone, message)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmPending = false

	if err != nil {
		return err
	}

	// The trip may have been cancelled while the SMS was in flight.
	if s.generation != gen || s.trip == nil || s.trip.State != StateArrived {
		return nil
	}

	if sendErr != nil {
		// Stay Arrived, SMSSent stays false: never silently mark as sent.
		return sendErr
	}

	s.trip.State = StateNotified
	s.trip.SMSSent = true
	s.trip.UpdatedAt = s.now()

	s.logger.Info().
		Str("trip_id", tripID).
		Msg("rider awake, guardian notified")

	return nil
}

// UpdateDestination moves the destination of a live trip. Rejected until
// the cool-down elapses; otherwise the trip returns to Planned with the
// route, weather, and distance cleared, and fresh fetches start.
func (s *Session) UpdateDestination(dest Destination) error {
	if !dest.Point.Valid() {
		return ErrInvalidDestination
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trip == nil || (s.trip.State != StateTracking && s.trip.State != StateArrived) {
		return ErrInvalidTransition
	}
	if s.now().Before(s.trip.UpdateLockUntil) {
		return ErrUpdateLocked
	}

	if s.trip.State == StateArrived {
		s.notifier.StopAlarm(s.trip.ID)
	}

	s.trip.Destination = &dest
	s.trip.State = StatePlanned
	s.trip.Route = nil
	s.trip.Weather = nil
	s.trip.DistanceKm = -1
	s.trip.UpdatedAt = s.now()
	s.generation++
	s.routePending = false

	s.logger.Info().
		Str("trip_id", s.trip.ID).
		Str("label", dest.Label).
		Msg("destination updated, re-planning")

	s.startFetchesLocked()
	return nil
}

// Cancel abandons the trip. The state flips synchronously even when
// fetches are outstanding; their results are discarded by the generation
// guard. The destination marker coordinates are retained.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trip == nil {
		return ErrNoActiveTrip
	}
	if s.trip.State.Terminal() {
		return ErrInvalidTransition
	}

	s.notifier.StopAlarm(s.trip.ID)

	s.trip.State = StateCancelled
	s.trip.Route = nil
	s.trip.Weather = nil
	s.trip.DistanceKm = -1
	s.trip.UpdateLockUntil = time.Time{}
	if s.trip.Destination != nil {
		s.trip.Destination = &Destination{Point: s.trip.Destination.Point}
	}
	s.trip.UpdatedAt = s.now()
	s.generation++

	s.logger.Info().
		Str("trip_id", s.trip.ID).
		Msg("trip cancelled")

	return nil
}

// Snapshot returns a copy of the current trip for display.
func (s *Session) Snapshot() (*Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trip == nil {
		return nil, ErrNoActiveTrip
	}

	copied := *s.trip
	if s.trip.Destination != nil {
		d := *s.trip.Destination
		copied.Destination = &d
	}
	return &copied, nil
}

// LastPosition returns the most recent position fix, or nil.
func (s *Session) LastPosition() *geo.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastPosition == nil {
		return nil
	}
	p := *s.lastPosition
	return &p
}

// startFetchesLocked launches the background route and weather fetches
// for the current generation. Caller holds the lock. The route fetch
// needs an origin; without a position fix it is deferred until the first
// fix arrives.
func (s *Session) startFetchesLocked() {
	dest := s.trip.Destination.Point
	gen := s.generation

	if s.lastPosition != nil {
		origin := s.lastPosition.Point
		s.routePending = true
		go s.fetchRoute(gen, origin, dest)
	}
	go s.fetchWeather(gen, dest)
}

// fetchRoute computes the route off the event path and applies it if the
// trip has not moved on.
func (s *Session) fetchRoute(gen uint64, origin, dest geo.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	route, err := s.router.ComputeRoute(ctx, origin, dest)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.trip == nil || s.trip.State != StatePlanned {
		s.logger.Debug().Msg("discarding stale route result")
		return
	}
	s.routePending = false

	if err != nil {
		// Trip stays Planned with no route; ScheduleNow keeps failing
		// with ErrNoRoute until a retry succeeds.
		s.logger.Warn().Err(err).
			Str("trip_id", s.trip.ID).
			Msg("route computation failed")
		return
	}

	s.trip.Route = route
	s.trip.DistanceKm = route.TotalDistanceKm
	s.trip.UpdatedAt = s.now()

	s.logger.Info().
		Str("trip_id", s.trip.ID).
		Float64("distance_km", route.TotalDistanceKm).
		Int("estimated_minutes", route.EstimatedMinutes).
		Msg("route attached")
}

// fetchWeather fetches the destination snapshot off the event path.
func (s *Session) fetchWeather(gen uint64, dest geo.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	snap, err := s.weather.CurrentAndForecast(ctx, dest)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen || s.trip == nil || s.trip.State.Terminal() {
		s.logger.Debug().Msg("discarding stale weather result")
		return
	}

	if err != nil {
		// Weather is advisory; the trip proceeds without it.
		s.logger.Warn().Err(err).
			Str("trip_id", s.trip.ID).
			Msg("weather fetch failed")
		return
	}

	s.trip.Weather = snap
	s.trip.UpdatedAt = s.now()
}

// RetryRoute re-attempts the route fetch for a Planned trip with no route.
func (s *Session) RetryRoute() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trip == nil || s.trip.State != StatePlanned {
		return ErrInvalidTransition
	}
	if s.trip.Route != nil || s.routePending {
		return nil
	}
	s.startFetchesLocked()
	return nil
}
