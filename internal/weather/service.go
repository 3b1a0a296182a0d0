package weather

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache weather data (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.01 ~ 1.1km).
	// Points within the same grid cell share cached data.
	CacheGridSize float64

	// Now returns the current time. Defaults to time.Now; overridden in tests.
	Now func() time.Time
}

// Service provides weather data with caching.
type Service struct {
	provider      Provider
	logger        zerolog.Logger
	cacheTTL      time.Duration
	cacheGridSize float64
	now           func() time.Time

	mu    sync.RWMutex
	cache map[string]*cachedBulletin
}

type cachedBulletin struct {
	bulletin  *Bulletin
	expiresAt time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.01 // ~1.1km at equator
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:      cfg.Provider,
		logger:        cfg.Logger,
		cacheTTL:      cacheTTL,
		cacheGridSize: cacheGridSize,
		now:           now,
		cache:         make(map[string]*cachedBulletin),
	}
}

// CurrentAndForecast returns the weather snapshot for a location. The
// chance-of-rain figure is the maximum over the next RainLookaheadHours
// hourly buckets.
func (s *Service) CurrentAndForecast(ctx context.Context, pt geo.Point) (*Snapshot, error) {
	if !pt.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_COORDINATES",
			Message:  "invalid coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}

	bulletin, err := s.bulletin(ctx, pt)
	if err != nil {
		return nil, err
	}

	return s.toSnapshot(bulletin), nil
}

// ForecastForDateTime returns the hourly window for a scheduled trip's
// date. Dates more than ForecastWindowDays from today are rejected before
// the provider is contacted.
func (s *Service) ForecastForDateTime(ctx context.Context, pt geo.Point, when time.Time) (*HourlyWindow, error) {
	if !pt.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_COORDINATES",
			Message:  "invalid coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}

	if !s.InForecastWindow(when) {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "OUT_OF_RANGE",
			Message:  fmt.Sprintf("date %s is outside the %d-day forecast window", when.Format("2006-01-02"), ForecastWindowDays),
			Err:      ErrOutOfForecastRange,
		}
	}

	hours, err := s.provider.HourlyForDate(ctx, pt, when)
	if err != nil {
		s.logger.Error().Err(err).
			Time("date", when).
			Msg("failed to fetch hourly forecast")
		return nil, err
	}

	return &HourlyWindow{Date: when, Hours: hours}, nil
}

// InForecastWindow reports whether a date falls within ForecastWindowDays
// of today, in either direction. Compared at day granularity.
func (s *Service) InForecastWindow(when time.Time) bool {
	today := s.now().Truncate(24 * time.Hour)
	target := when.Truncate(24 * time.Hour)
	days := target.Sub(today).Hours() / 24
	return math.Abs(days) <= ForecastWindowDays
}

// bulletin returns today's bulletin for the grid cell, fetching from the
// provider on a cache miss.
func (s *Service) bulletin(ctx context.Context, pt geo.Point) (*Bulletin, error) {
	cacheKey := s.cacheKey(pt)

	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for weather bulletin")
		return cached.bulletin, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[cacheKey]; ok && s.now().Before(cached.expiresAt) {
		return cached.bulletin, nil
	}

	bulletin, err := s.provider.CurrentAndHourly(ctx, pt)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", pt.Lat).
			Float64("lon", pt.Lon).
			Msg("failed to fetch weather bulletin")
		return nil, err
	}

	s.cache[cacheKey] = &cachedBulletin{
		bulletin:  bulletin,
		expiresAt: s.now().Add(s.cacheTTL),
	}

	return bulletin, nil
}

// toSnapshot folds the bulletin into the trip-facing snapshot.
func (s *Service) toSnapshot(b *Bulletin) *Snapshot {
	now := s.now()

	maxRain := 0
	counted := 0
	for _, h := range b.Hourly {
		if h.Time.Add(time.Hour).Before(now) {
			continue // bucket already over
		}
		if h.ChanceOfRainPct > maxRain {
			maxRain = h.ChanceOfRainPct
		}
		counted++
		if counted == RainLookaheadHours {
			break
		}
	}

	return &Snapshot{
		TemperatureC:    b.Current.TemperatureC,
		Condition:       b.Current.Condition,
		WindKph:         b.Current.WindKph,
		HumidityPct:     b.Current.HumidityPct,
		ChanceOfRainPct: maxRain,
		FetchedAt:       b.FetchedAt,
	}
}

// cacheKey quantizes the point onto the cache grid.
func (s *Service) cacheKey(pt geo.Point) string {
	gridLat := math.Floor(pt.Lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(pt.Lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.2f,%.2f", gridLat, gridLon)
}

// InvalidateCache clears all cached bulletins.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedBulletin)
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
