package routing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ridewake/ridewake/internal/geo"
)

// mockProvider is a mock routing provider for testing.
type mockProvider struct {
	name      string
	route     *RawRoute
	err       error
	callCount atomic.Int32
}

func (m *mockProvider) GetRoute(_ context.Context, _ RouteRequest) (*RawRoute, error) {
	m.callCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.route, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func testRawRoute(meters int) *RawRoute {
	return &RawRoute{
		Points: []geo.Point{
			{Lat: 6.9271, Lon: 79.8612},
			{Lat: 6.9350, Lon: 79.8500},
		},
		DistanceMeters:  meters,
		DurationSeconds: 9999, // never used for the estimate
	}
}

func TestService_ComputeRoute_Normalization(t *testing.T) {
	provider := &mockProvider{name: "test-provider", route: testRawRoute(1500)}
	service := NewService(ServiceConfig{Provider: provider})

	route, err := service.ComputeRoute(context.Background(),
		geo.Point{Lat: 6.9271, Lon: 79.8612},
		geo.Point{Lat: 6.9350, Lon: 79.8500},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1500m at 30 km/h is exactly 1.50 km and 3 minutes.
	if route.TotalDistanceKm != 1.50 {
		t.Errorf("expected distance 1.50, got %v", route.TotalDistanceKm)
	}
	if route.EstimatedMinutes != 3 {
		t.Errorf("expected 3 minutes, got %d", route.EstimatedMinutes)
	}
	if route.Provider != "test-provider" {
		t.Errorf("expected provider test-provider, got %s", route.Provider)
	}
	if route.GeometryPolyline == "" {
		t.Error("expected encoded geometry")
	}
}

func TestService_ComputeRoute_DistanceRounding(t *testing.T) {
	tests := []struct {
		name        string
		meters      int
		wantKm      float64
		wantMinutes int
	}{
		{"rounds down", 12344, 12.34, 25},
		{"rounds up", 12345, 12.35, 25},
		{"short hop", 400, 0.4, 1},
		{"zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{name: "test-provider", route: testRawRoute(tt.meters)}
			service := NewService(ServiceConfig{Provider: provider})

			route, err := service.ComputeRoute(context.Background(),
				geo.Point{Lat: 6.9, Lon: 79.8},
				geo.Point{Lat: 7.0, Lon: 80.0},
			)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if route.TotalDistanceKm != tt.wantKm {
				t.Errorf("expected %v km, got %v", tt.wantKm, route.TotalDistanceKm)
			}
			if route.EstimatedMinutes != tt.wantMinutes {
				t.Errorf("expected %d minutes, got %d", tt.wantMinutes, route.EstimatedMinutes)
			}
		})
	}
}

func TestService_ComputeRoute_EstimateIgnoresProviderDuration(t *testing.T) {
	// Same distance, wildly different provider durations: the estimate
	// must not change.
	for _, duration := range []int{1, 600, 86400} {
		raw := testRawRoute(15000)
		raw.DurationSeconds = duration
		provider := &mockProvider{name: "test-provider", route: raw}
		service := NewService(ServiceConfig{Provider: provider})

		route, err := service.ComputeRoute(context.Background(),
			geo.Point{Lat: 6.9, Lon: 79.8},
			geo.Point{Lat: 7.0, Lon: 80.0},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if route.EstimatedMinutes != 30 {
			t.Errorf("duration %d: expected 30 minutes, got %d", duration, route.EstimatedMinutes)
		}
	}
}

func TestService_ComputeRoute_CacheHit(t *testing.T) {
	provider := &mockProvider{name: "test-provider", route: testRawRoute(1500)}
	service := NewService(ServiceConfig{Provider: provider, CacheTTL: 5 * time.Minute})

	origin := geo.Point{Lat: 6.9271, Lon: 79.8612}
	dest := geo.Point{Lat: 6.9350, Lon: 79.8500}

	for i := 0; i < 3; i++ {
		if _, err := service.ComputeRoute(context.Background(), origin, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.callCount.Load())
	}
}

func TestService_ComputeRoute_StaleIfError(t *testing.T) {
	provider := &mockProvider{name: "test-provider", route: testRawRoute(1500)}
	service := NewService(ServiceConfig{
		Provider:        provider,
		CacheTTL:        1 * time.Nanosecond,
		StaleIfErrorTTL: 15 * time.Minute,
	})

	origin := geo.Point{Lat: 6.9271, Lon: 79.8612}
	dest := geo.Point{Lat: 6.9350, Lon: 79.8500}

	if _, err := service.ComputeRoute(context.Background(), origin, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(time.Millisecond) // let the cache entry expire

	provider.err = ErrRouteUnavailable
	route, err := service.ComputeRoute(context.Background(), origin, dest)
	if err != nil {
		t.Fatalf("expected stale route, got error: %v", err)
	}
	if route.TotalDistanceKm != 1.50 {
		t.Errorf("expected stale route distance 1.50, got %v", route.TotalDistanceKm)
	}
}

func TestService_ComputeRoute_ProviderError(t *testing.T) {
	provider := &mockProvider{name: "test-provider", err: ErrRouteUnavailable}
	service := NewService(ServiceConfig{Provider: provider})

	_, err := service.ComputeRoute(context.Background(),
		geo.Point{Lat: 6.9, Lon: 79.8},
		geo.Point{Lat: 7.0, Lon: 80.0},
	)
	if !errors.Is(err, ErrRouteUnavailable) {
		t.Errorf("expected ErrRouteUnavailable, got %v", err)
	}
}

func TestService_ComputeRoute_InvalidCoordinates(t *testing.T) {
	provider := &mockProvider{name: "test-provider", route: testRawRoute(1500)}
	service := NewService(ServiceConfig{Provider: provider})

	_, err := service.ComputeRoute(context.Background(),
		geo.Point{Lat: 91, Lon: 0},
		geo.Point{Lat: 7.0, Lon: 80.0},
	)
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}

	if provider.callCount.Load() != 0 {
		t.Errorf("provider should not be called for invalid input, got %d calls", provider.callCount.Load())
	}
}
