// Package nominatim provides a client for the OSM Nominatim geocoding API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/geo"
	"github.com/ridewake/ridewake/internal/geocode"
	"github.com/ridewake/ridewake/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// UserAgent identifies the application, required by Nominatim's usage
	// policy.
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ridewake/1.0"
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
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Category    string `json:"category"`
}

// Search resolves a free-text query to candidate places.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]geocode.Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(limit))

	var results []nominatimPlace
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}

	places := make([]geocode.Place, 0, len(results))
	for _, r := range results {
		place, err := toPlace(&r)
		if err != nil {
			continue // skip entries with unparseable coordinates
		}
		places = append(places, *place)
	}

	c.logger.Debug().
		Str("query", query).
		Int("result_count", len(places)).
		Msg("place search completed")

	return places, nil
}

// Reverse resolves coordinates to the nearest place.
func (c *Client) Reverse(ctx context.Context, pt geo.Point) (*geocode.Place, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", pt.Lat))
	params.Set("lon", fmt.Sprintf("%f", pt.Lon))
	params.Set("format", "jsonv2")

	var result nominatimPlace
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return nil, err
	}

	if result.DisplayName == "" {
		return nil, &geocode.Error{
			Provider: ProviderName,
			Code:     "NO_RESULT",
			Message:  "no place at coordinates",
			Err:      geocode.ErrNoResults,
		}
	}

	return toPlace(&result)
}

// get executes a request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &geocode.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach geocoding provider",
			Err:      geocode.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &geocode.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocode.ErrProviderUnavailable,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// toPlace converts a Nominatim result to the domain model.
func toPlace(r *nominatimPlace) (*geocode.Place, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}

	name := r.Name
	if name == "" {
		name = r.DisplayName
	}

	return &geocode.Place{
		Name:        name,
		DisplayName: r.DisplayName,
		Point:       geo.Point{Lat: lat, Lon: lon},
		Category:    r.Category,
	}, nil
}
