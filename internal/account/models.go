// Package account manages the rider's guardian contact.
package account

import (
	"errors"
	"time"
)

// Account errors.
var (
	ErrGuardianNotFound = errors.New("guardian contact not found")
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrNameRequired     = errors.New("guardian name required")
)

// GuardianContact is the person notified when the rider arrives.
type GuardianContact struct {
	UserID string
	Name   string
	Phone  string

	// Message overrides the default arrival SMS text when set.
	Message string

	CreatedAt time.Time
	UpdatedAt time.Time
}
