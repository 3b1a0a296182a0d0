package trip

import (
	"context"
	"time"
)

// ScheduleStore defines persistence for trips scheduled for a future
// departure.
type ScheduleStore interface {
	// Save creates or replaces a scheduled trip.
	Save(ctx context.Context, t *ScheduledTrip) error

	// Get retrieves a scheduled trip by id for a user.
	Get(ctx context.Context, userID, id string) (*ScheduledTrip, error)

	// ListByUser retrieves a user's scheduled trips ordered by departure.
	ListByUser(ctx context.Context, userID string) ([]*ScheduledTrip, error)

	// ListDueBefore retrieves unnotified trips departing before the cutoff,
	// across all users. Used by the sweep worker.
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]*ScheduledTrip, error)

	// MarkNotified sets the notification-sent flag. Returns ErrTripNotFound
	// if the trip does not exist; returns false when the flag was already
	// set, which makes the sweep at-most-once.
	MarkNotified(ctx context.Context, id string) (bool, error)

	// Delete removes a scheduled trip.
	Delete(ctx context.Context, userID, id string) error
}
