package account

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]*GuardianContact // keyed by user ID
}

// NewInMemoryRepository creates a new in-memory guardian repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		contacts: make(map[string]*GuardianContact),
	}
}

// Get retrieves the user's guardian contact.
func (r *InMemoryRepository) Get(_ context.Context, userID string) (*GuardianContact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contact, ok := r.contacts[userID]
	if !ok {
		return nil, ErrGuardianNotFound
	}

	copied := *contact
	return &copied, nil
}

// Upsert creates or replaces the user's guardian contact.
func (r *InMemoryRepository) Upsert(_ context.Context, contact *GuardianContact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *contact
	r.contacts[contact.UserID] = &copied
	return nil
}

// Delete removes the user's guardian contact.
func (r *InMemoryRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[userID]; !ok {
		return ErrGuardianNotFound
	}
	delete(r.contacts, userID)
	return nil
}
