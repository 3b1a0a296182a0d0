package trip

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
)

// ServiceConfig holds configuration for the scheduled-trip service.
type ServiceConfig struct {
	// Store persists scheduled trips.
	Store ScheduleStore

	// Logger for service operations.
	Logger zerolog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service manages scheduled future trips.
type Service struct {
	store  ScheduleStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new scheduled-trip service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:  cfg.Store,
		logger: cfg.Logger,
		now:    now,
	}
}

// CreateInput describes a trip to schedule.
type CreateInput struct {
	Label                  string
	Point                  geo.Point
	DepartAt               time.Time
	WeatherAdvisoryEnabled bool
}

// Create schedules a trip. The departure must be in the future.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*ScheduledTrip, error) {
	if input.Label == "" {
		return nil, ErrNoLabel
	}
	if !input.Point.Valid() {
		return nil, ErrInvalidDestination
	}
	now := s.now()
	if !input.DepartAt.After(now) {
		return nil, ErrPastSchedule
	}

	t := &ScheduledTrip{
		ID:                     NewScheduledTripID(),
		UserID:                 userID,
		Label:                  input.Label,
		Lat:                    input.Point.Lat,
		Lon:                    input.Point.Lon,
		DepartAt:               input.DepartAt,
		WeatherAdvisoryEnabled: input.WeatherAdvisoryEnabled,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("scheduled_id", t.ID).
		Str("user_id", userID).
		Time("depart_at", t.DepartAt).
		Msg("scheduled trip created")

	return t, nil
}

// Get retrieves one scheduled trip.
func (s *Service) Get(ctx context.Context, userID, id string) (*ScheduledTrip, error) {
	return s.store.Get(ctx, userID, id)
}

// List retrieves the user's scheduled trips ordered by departure.
func (s *Service) List(ctx context.Context, userID string) ([]*ScheduledTrip, error) {
	return s.store.ListByUser(ctx, userID)
}

// UpdateInput describes the editable fields of a scheduled trip.
type UpdateInput struct {
	Label                  *string
	DepartAt               *time.Time
	WeatherAdvisoryEnabled *bool
}

// Update edits a scheduled trip. Moving the departure into the past is
// rejected; editing resets the notification flag so the sweep fires for
// the new time.
func (s *Service) Update(ctx context.Context, userID, id string, input UpdateInput) (*ScheduledTrip, error) {
	t, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Label != nil {
		if *input.Label == "" {
			return nil, ErrNoLabel
		}
		t.Label = *input.Label
	}
	if input.DepartAt != nil {
		if !input.DepartAt.After(s.now()) {
			return nil, ErrPastSchedule
		}
		t.DepartAt = *input.DepartAt
		t.NotificationSent = false
	}
	if input.WeatherAdvisoryEnabled != nil {
		t.WeatherAdvisoryEnabled = *input.WeatherAdvisoryEnabled
	}
	t.UpdatedAt = s.now()

	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Delete removes a scheduled trip.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("scheduled_id", id).
		Str("user_id", userID).
		Msg("scheduled trip deleted")

	return nil
}
