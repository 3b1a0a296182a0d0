// Package tomtom provides a client for the TomTom Routing API.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/provider/resilience"
	"github.com/ridewake/ridewake/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "tomtom"

	// DefaultBaseURL is the TomTom Routing API base URL.
	DefaultBaseURL = "https://api.tomtom.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the TomTom client.
type ClientConfig struct {
	// APIKey is the TomTom API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the TomTom API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a TomTom Routing API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new TomTom client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetRoute retrieves the route between origin and destination. The first
// returned route's leg points become the route geometry.
func (c *Client) GetRoute(ctx context.Context, req routing.RouteRequest) (*routing.RawRoute, error) {
	if !req.Origin.Valid() {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}
	if !req.Destination.Valid() {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}

	locations := fmt.Sprintf("%f,%f:%f,%f",
		req.Origin.Lat, req.Origin.Lon,
		req.Destination.Lat, req.Destination.Lon,
	)

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("travelMode", "motorcycle")
	query.Set("routeRepresentation", "polyline")

	reqURL := fmt.Sprintf("%s/routing/1/calculateRoute/%s/json?%s",
		c.baseURL, locations, query.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Msg("requesting route from tomtom")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      routing.ErrRouteUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var ttResp calculateRouteResponse
	if err := json.Unmarshal(respBody, &ttResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(ttResp.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "no route found between the given points",
			Err:      routing.ErrRouteUnavailable,
		}
	}

	raw := toRawRoute(&ttResp.Routes[0])

	c.logger.Debug().
		Int("distance_meters", raw.DistanceMeters).
		Int("point_count", len(raw.Points)).
		Msg("received route from tomtom")

	return raw, nil
}

// handleErrorResponse maps TomTom error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var ttErr errorResponse
	message := fmt.Sprintf("routing provider returned status %d", statusCode)
	if err := json.Unmarshal(body, &ttErr); err == nil && ttErr.DetailedError.Message != "" {
		message = ttErr.DetailedError.Message
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      routing.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusForbidden:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "API access denied, check API key configuration",
			Err:      routing.ErrRouteUnavailable,
		}
	case statusCode == http.StatusBadRequest:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  message,
			Err:      routing.ErrInvalidCoordinates,
		}
	default:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  message,
			Err:      routing.ErrRouteUnavailable,
		}
	}
}

// toRawRoute flattens the route legs into the provider-neutral model.
func toRawRoute(r *ttRoute) *routing.RawRoute {
	var points []geo.Point
	for i := range r.Legs {
		for _, p := range r.Legs[i].Points {
			points = append(points, geo.Point{Lat: p.Latitude, Lon: p.Longitude})
		}
	}

	return &routing.RawRoute{
		Points:          points,
		DistanceMeters:  r.Summary.LengthInMeters,
		DurationSeconds: r.Summary.TravelTimeInSeconds,
	}
}
