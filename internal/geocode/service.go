package geocode

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
)

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the geocoding provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// MaxResults caps search results (default: 5).
	MaxResults int
}

// Service provides place search and reverse geocoding.
type Service struct {
	provider   Provider
	logger     zerolog.Logger
	maxResults int
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	maxResults := cfg.MaxResults
	if maxResults == 0 {
		maxResults = 5
	}

	return &Service{
		provider:   cfg.Provider,
		logger:     cfg.Logger,
		maxResults: maxResults,
	}
}

// Search resolves a free-text query to candidate places.
func (s *Service) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, ErrInvalidQuery
	}

	places, err := s.provider.Search(ctx, query, s.maxResults)
	if err != nil {
		s.logger.Error().Err(err).
			Str("query", query).
			Msg("place search failed")
		return nil, err
	}
	if len(places) == 0 {
		return nil, ErrNoResults
	}

	return places, nil
}

// Reverse resolves coordinates to the nearest place.
func (s *Service) Reverse(ctx context.Context, pt geo.Point) (*Place, error) {
	if !pt.Valid() {
		return nil, ErrInvalidQuery
	}

	place, err := s.provider.Reverse(ctx, pt)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", pt.Lat).
			Float64("lon", pt.Lon).
			Msg("reverse geocode failed")
		return nil, err
	}

	return place, nil
}
