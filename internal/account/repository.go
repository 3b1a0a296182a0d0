package account

import "context"

// Repository defines persistence for guardian contacts. One contact per
// user.
type Repository interface {
	// Get retrieves the user's guardian contact.
	Get(ctx context.Context, userID string) (*GuardianContact, error)

	// Upsert creates or replaces the user's guardian contact.
	Upsert(ctx context.Context, contact *GuardianContact) error

	// Delete removes the user's guardian contact.
	Delete(ctx context.Context, userID string) error
}
