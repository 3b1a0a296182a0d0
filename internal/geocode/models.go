// Package geocode resolves place names to coordinates and back for the
// destination picker.
package geocode

import (
	"context"
	"errors"

	"github.com/ridewake/ridewake/internal/geo"
)

// Geocoding errors.
var (
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	ErrNoResults           = errors.New("no places found")
	ErrInvalidQuery        = errors.New("invalid query")
)

// Place is a resolved location.
type Place struct {
	Name        string
	DisplayName string
	Point       geo.Point
	Category    string
}

// Provider defines the interface for geocoding providers.
type Provider interface {
	// Search resolves a free-text query to candidate places.
	Search(ctx context.Context, query string, limit int) ([]Place, error)
	// Reverse resolves coordinates to the nearest place.
	Reverse(ctx context.Context, pt geo.Point) (*Place, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Error provides detailed error information from the geocoding provider.
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
