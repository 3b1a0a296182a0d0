// Package smsgateway provides a client for an HTTP SMS gateway.
package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridewake/ridewake/internal/notify"
	"github.com/ridewake/ridewake/internal/provider/resilience"
)

const (
	// ProviderName identifies this SMS gateway.
	ProviderName = "smsgateway"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the SMS gateway client.
type ClientConfig struct {
	// BaseURL is the gateway base URL (required).
	BaseURL string

	// APIKey is the gateway bearer token (required).
	APIKey string

	// From is the sender identifier (optional).
	From string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with retries DISABLED: a guardian
	// SMS is made exactly once per attempt and never replayed by the
	// transport layer.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an HTTP SMS gateway client.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new SMS gateway client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.DisableRetry = true
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the gateway name.
func (c *Client) Name() string {
	return ProviderName
}

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// SendSMS dispatches one message through the gateway. One attempt only.
func (c *Client) SendSMS(ctx context.Context, msg notify.SMS) error {
	body, err := json.Marshal(sendRequest{To: msg.To, From: c.from, Message: msg.Message})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &notify.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach sms gateway",
			Err:      notify.ErrSendFailed,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Msg("sms gateway rejected message")
		return &notify.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("sms gateway returned status %d", resp.StatusCode),
			Err:      notify.ErrSendFailed,
		}
	}

	return nil
}
