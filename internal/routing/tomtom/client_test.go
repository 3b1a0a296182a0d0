package tomtom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/routing"
)

const routeResponse = `{
	"routes": [
		{
			"summary": {"lengthInMeters": 1500, "travelTimeInSeconds": 240},
			"legs": [
				{
					"points": [
						{"latitude": 6.9271, "longitude": 79.8612},
						{"latitude": 6.9310, "longitude": 79.8550},
						{"latitude": 6.9350, "longitude": 79.8500}
					]
				}
			]
		}
	]
}`

func testRequest() routing.RouteRequest {
	return routing.RouteRequest{
		Origin:      geo.Point{Lat: 6.9271, Lon: 79.8612},
		Destination: geo.Point{Lat: 6.9350, Lon: 79.8500},
	}
}

func TestClient_GetRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/routing/1/calculateRoute/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.Query().Get("key"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(routeResponse))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	raw, err := client.GetRoute(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if raw.DistanceMeters != 1500 {
		t.Errorf("expected 1500 meters, got %d", raw.DistanceMeters)
	}
	if raw.DurationSeconds != 240 {
		t.Errorf("expected 240 seconds, got %d", raw.DurationSeconds)
	}
	if len(raw.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(raw.Points))
	}
	if raw.Points[0].Lat != 6.9271 || raw.Points[0].Lon != 79.8612 {
		t.Errorf("unexpected first point: %+v", raw.Points[0])
	}
}

func TestClient_GetRoute_NoRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes": []}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.GetRoute(context.Background(), testRequest())
	if !errors.Is(err, routing.ErrRouteUnavailable) {
		t.Errorf("expected ErrRouteUnavailable, got %v", err)
	}
}

func TestClient_GetRoute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"rate limited", http.StatusTooManyRequests, routing.ErrRateLimitExceeded},
		{"forbidden", http.StatusForbidden, routing.ErrRouteUnavailable},
		{"bad request", http.StatusBadRequest, routing.ErrInvalidCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"detailedError": {"code": "X", "message": "nope"}}`))
			}))
			defer server.Close()

			client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})

			_, err := client.GetRoute(context.Background(), testRequest())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}

			var provErr *routing.Error
			if !errors.As(err, &provErr) {
				t.Fatal("expected *routing.Error")
			}
			if provErr.Provider != ProviderName {
				t.Errorf("expected provider %s, got %s", ProviderName, provErr.Provider)
			}
		})
	}
}

func TestClient_GetRoute_InvalidCoordinates(t *testing.T) {
	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: "http://unused"})

	req := testRequest()
	req.Origin.Lat = 95

	_, err := client.GetRoute(context.Background(), req)
	if !errors.Is(err, routing.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}
