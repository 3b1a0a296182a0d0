package trip

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryScheduleStore is an in-memory implementation of ScheduleStore.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryScheduleStore struct {
	mu    sync.RWMutex
	trips map[string]*ScheduledTrip // keyed by trip ID
}

// NewInMemoryScheduleStore creates a new in-memory schedule store.
func NewInMemoryScheduleStore() *InMemoryScheduleStore {
	return &InMemoryScheduleStore{
		trips: make(map[string]*ScheduledTrip),
	}
}

// Save creates or replaces a scheduled trip.
func (r *InMemoryScheduleStore) Save(_ context.Context, t *ScheduledTrip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *t
	r.trips[t.ID] = &copied
	return nil
}

// Get retrieves a scheduled trip by id for a user.
func (r *InMemoryScheduleStore) Get(_ context.Context, userID, id string) (*ScheduledTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[id]
	if !ok || t.UserID != userID {
		return nil, ErrTripNotFound
	}

	copied := *t
	return &copied, nil
}

// ListByUser retrieves a user's scheduled trips ordered by departure.
func (r *InMemoryScheduleStore) ListByUser(_ context.Context, userID string) ([]*ScheduledTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*ScheduledTrip
	for _, t := range r.trips {
		if t.UserID == userID {
			copied := *t
			items = append(items, &copied)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].DepartAt.Before(items[j].DepartAt)
	})

	return items, nil
}

// ListDueBefore retrieves unnotified trips departing before the cutoff.
func (r *InMemoryScheduleStore) ListDueBefore(_ context.Context, cutoff time.Time) ([]*ScheduledTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*ScheduledTrip
	for _, t := range r.trips {
		if !t.NotificationSent && t.DepartAt.Before(cutoff) {
			copied := *t
			items = append(items, &copied)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].DepartAt.Before(items[j].DepartAt)
	})

	return items, nil
}

// MarkNotified sets the notification-sent flag.
func (r *InMemoryScheduleStore) MarkNotified(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[id]
	if !ok {
		return false, ErrTripNotFound
	}
	if t.NotificationSent {
		return false, nil
	}
	t.NotificationSent = true
	t.UpdatedAt = time.Now()
	return true, nil
}

// Delete removes a scheduled trip.
func (r *InMemoryScheduleStore) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trips[id]
	if !ok || t.UserID != userID {
		return ErrTripNotFound
	}
	delete(r.trips, id)
	return nil
}
