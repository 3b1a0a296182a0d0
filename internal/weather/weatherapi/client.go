// Package weatherapi provides a client for the WeatherAPI.com forecast API.
package weatherapi

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
	"github.com/ridewake/ridewake/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "weatherapi"

	// DefaultBaseURL is the WeatherAPI base URL.
	DefaultBaseURL = "https://api.weatherapi.com/v1"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the WeatherAPI client.
type ClientConfig struct {
	// APIKey is the WeatherAPI key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
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

// Client is a WeatherAPI client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new WeatherAPI client.
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

// CurrentAndHourly fetches current conditions plus today's hourly forecast.
func (c *Client) CurrentAndHourly(ctx context.Context, pt geo.Point) (*weather.Bulletin, error) {
	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("q", fmt.Sprintf("%f,%f", pt.Lat, pt.Lon))
	query.Set("days", "1")
	query.Set("aqi", "no")
	query.Set("alerts", "no")

	resp, err := c.get(ctx, "/forecast.json", query)
	if err != nil {
		return nil, err
	}

	if resp.Current == nil {
		return nil, &weather.Error{
			Provider: ProviderName,
			Code:     "NO_DATA",
			Message:  "response missing current conditions",
			Err:      weather.ErrNoDataForLocation,
		}
	}

	bulletin := &weather.Bulletin{
		Current: weather.Conditions{
			TemperatureC: resp.Current.TempC,
			Condition:    resp.Current.Condition.Text,
			WindKph:      resp.Current.WindKph,
			HumidityPct:  resp.Current.Humidity,
		},
		FetchedAt: time.Now(),
	}
	if len(resp.Forecast.ForecastDay) > 0 {
		bulletin.Hourly = toHourly(resp.Forecast.ForecastDay[0].Hour)
	}

	c.logger.Debug().
		Float64("lat", pt.Lat).
		Float64("lon", pt.Lon).
		Int("hour_count", len(bulletin.Hourly)).
		Msg("received weather bulletin")

	return bulletin, nil
}

// HourlyForDate fetches the hourly forecast for a specific date. Past
// dates go to the history endpoint, today and future dates to forecast.
func (c *Client) HourlyForDate(ctx context.Context, pt geo.Point, date time.Time) ([]weather.Hourly, error) {
	endpoint := "/forecast.json"
	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		endpoint = "/history.json"
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("q", fmt.Sprintf("%f,%f", pt.Lat, pt.Lon))
	query.Set("dt", date.Format("2006-01-02"))

	resp, err := c.get(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	if len(resp.Forecast.ForecastDay) == 0 {
		return nil, &weather.Error{
			Provider: ProviderName,
			Code:     "NO_DATA",
			Message:  "no forecast for requested date",
			Err:      weather.ErrNoDataForLocation,
		}
	}

	return toHourly(resp.Forecast.ForecastDay[0].Hour), nil
}

// get executes a request and decodes the forecast envelope.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (*forecastResponse, error) {
	reqURL := c.baseURL + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &weather.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach weather provider",
			Err:      weather.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var waResp forecastResponse
	if err := json.Unmarshal(body, &waResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &waResp, nil
}

// handleErrorResponse maps WeatherAPI error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var waErr errorResponse
	message := fmt.Sprintf("weather provider returned status %d", statusCode)
	if err := json.Unmarshal(body, &waErr); err == nil && waErr.Error.Message != "" {
		message = waErr.Error.Message
	}

	if waErr.Error.Code == errCodeNoLocation {
		return &weather.Error{
			Provider: ProviderName,
			Code:     "NO_LOCATION",
			Message:  message,
			Err:      weather.ErrNoDataForLocation,
		}
	}

	return &weather.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", statusCode),
		Message:  message,
		Err:      weather.ErrProviderUnavailable,
	}
}

// toHourly converts provider hour buckets to the domain model.
func toHourly(hours []waHour) []weather.Hourly {
	out := make([]weather.Hourly, 0, len(hours))
	for _, h := range hours {
		out = append(out, weather.Hourly{
			Time:            time.Unix(h.TimeEpoch, 0),
			TemperatureC:    h.TempC,
			Condition:       h.Condition.Text,
			WindKph:         h.WindKph,
			ChanceOfRainPct: h.ChanceOfRain,
		})
	}
	return out
}
