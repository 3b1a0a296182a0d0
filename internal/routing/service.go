package routing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/pkg/polyline"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the routing data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache computed routes (default: 5 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.001 ~ 110m).
	// Origins within the same grid cell share a cached route to the same destination.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale routes on provider errors (default: 15 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 5 minutes).
	CleanupInterval time.Duration
}

// Service computes normalized routes with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedRoute
	lastCleanup time.Time
}

type cachedRoute struct {
	route     *Route
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.001 // ~110m at equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 15 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedRoute),
	}
}

// ComputeRoute returns the normalized route from origin to destination.
// Distance comes from the provider (meters, converted to km at 2 decimal
// places); the time estimate is always distance / AssumedSpeedKmh, rounded
// to the nearest minute. Uses cached data if available and not expired.
func (s *Service) ComputeRoute(ctx context.Context, origin, destination geo.Point) (*Route, error) {
	if !origin.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if !destination.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}

	cacheKey := s.cacheKey(origin, destination)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for route")
		return cached.route, nil
	}
	s.mu.RUnlock()

	return s.fetchRoute(ctx, origin, destination, cacheKey)
}

// fetchRoute fetches the route from the provider and updates the cache.
func (s *Service) fetchRoute(ctx context.Context, origin, destination geo.Point, cacheKey string) (*Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		return cached.route, nil
	}

	s.logger.Debug().
		Float64("origin_lat", origin.Lat).
		Float64("origin_lon", origin.Lon).
		Float64("dest_lat", destination.Lat).
		Float64("dest_lon", destination.Lon).
		Str("provider", s.provider.Name()).
		Msg("fetching route from provider")

	raw, err := s.provider.GetRoute(ctx, RouteRequest{Origin: origin, Destination: destination})
	if err != nil {
		s.logger.Error().Err(err).
			Float64("dest_lat", destination.Lat).
			Float64("dest_lon", destination.Lon).
			Msg("failed to fetch route")

		// Stale-if-error: a recently expired route is still usable.
		if cached, ok := s.cache[cacheKey]; ok {
			if time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("fetched_at", cached.fetchedAt).
					Str("cache_key", cacheKey).
					Msg("serving stale route due to provider error")
				return cached.route, nil
			}
		}

		return nil, err
	}

	route := Normalize(raw, s.provider.Name())

	now := time.Now()
	s.cache[cacheKey] = &cachedRoute{
		route:     route,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.logger.Debug().
		Str("cache_key", cacheKey).
		Float64("distance_km", route.TotalDistanceKm).
		Int("estimated_minutes", route.EstimatedMinutes).
		Msg("cached computed route")

	s.cleanupIfNeeded()

	return route, nil
}

// Normalize converts a provider route into the trip-facing Route.
func Normalize(raw *RawRoute, providerName string) *Route {
	distanceKm := math.Round(float64(raw.DistanceMeters)/1000*100) / 100
	estimatedMinutes := int(math.Round(distanceKm / AssumedSpeedKmh * 60))

	coords := make([]polyline.Coordinate, len(raw.Points))
	for i, p := range raw.Points {
		coords[i] = polyline.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}

	return &Route{
		Points:           raw.Points,
		GeometryPolyline: polyline.Encode(coords),
		TotalDistanceKm:  distanceKm,
		EstimatedMinutes: estimatedMinutes,
		Provider:         providerName,
		FetchedAt:        time.Now(),
	}
}

// cacheKey quantizes origin and destination onto the cache grid.
// Format: {gridOriginLat},{gridOriginLon}:{gridDestLat},{gridDestLon}.
func (s *Service) cacheKey(origin, destination geo.Point) string {
	gridOriginLat := math.Floor(origin.Lat/s.cacheGridSize) * s.cacheGridSize
	gridOriginLon := math.Floor(origin.Lon/s.cacheGridSize) * s.cacheGridSize
	gridDestLat := math.Floor(destination.Lat/s.cacheGridSize) * s.cacheGridSize
	gridDestLon := math.Floor(destination.Lon/s.cacheGridSize) * s.cacheGridSize

	return fmt.Sprintf("%.3f,%.3f:%.3f,%.3f",
		gridOriginLat, gridOriginLon,
		gridDestLat, gridDestLon,
	)
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired route cache entries")
	}
}

// InvalidateCache clears all cached routes.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedRoute)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
