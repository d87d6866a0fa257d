package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds configuration for the account service client.
type Config struct {
	// BaseURL is the account service endpoint. Required.
	BaseURL string

	// Token is the bearer token for authenticated calls. Optional at
	// construction; Login sets it.
	Token string

	// MaxRetries is the maximum number of retry attempts for retryable
	// errors. Defaults to 3 if zero.
	MaxRetries int

	// BaseRetryDelay is the initial delay before the first retry.
	// Defaults to 1 second if zero.
	BaseRetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff delay.
	// Defaults to 10 seconds if zero.
	MaxRetryDelay time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for
	// testing). Defaults to a client with 30s timeout.
	HTTPClient *http.Client
}

// Client talks to the remote account service.
type Client struct {
	config Config
	http   *http.Client
	mu     sync.RWMutex
}

// RemoteProfile is the account service's view of a player.
type RemoteProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

// AuthError indicates an authentication failure (token expired or
// invalid).
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("account: authentication failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// HTTPError represents a non-2xx response from the account service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("account: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for rate limits (429) and server errors (5xx).
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NewClient creates an account service client with the given
// configuration.
func NewClient(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseRetryDelay == 0 {
		cfg.BaseRetryDelay = time.Second
	}
	if cfg.MaxRetryDelay == 0 {
		cfg.MaxRetryDelay = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// SetToken updates the bearer token (thread-safe).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Token = token
}

// Token returns the current bearer token (thread-safe).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Token
}

// Login exchanges credentials for a token and installs it on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doRequestWithRetry(ctx, "POST", "auth/login", body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("account: login response missing token")
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// Profile fetches the authenticated player's remote profile.
func (c *Client) Profile(ctx context.Context) (*RemoteProfile, error) {
	var out RemoteProfile
	if err := c.doRequestWithRetry(ctx, "GET", "profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncBalance pushes the locally authoritative balance to the account
// service. The engine never pulls balance back; the local store wins.
func (c *Client) SyncBalance(ctx context.Context, balance int64) error {
	body := map[string]int64{"balance": balance}
	return c.doRequestWithRetry(ctx, "PUT", "profile/balance", body, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if base == "" {
		return fmt.Errorf("account: base URL is not configured")
	}
	url := fmt.Sprintf("%s/%s", base, strings.TrimPrefix(path, "/"))

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("account: marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("account: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("account: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("account: read response: %w", err)
	}

	if resp.StatusCode == 401 {
		return &AuthError{StatusCode: 401, Message: "token expired or invalid"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("account: invalid response JSON: %w", err)
		}
	}
	return nil
}

func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.doRequest(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if httpErr, ok := err.(*HTTPError); ok && httpErr.IsRetryable() {
			continue
		}
		// Auth errors and other non-retryable errors fail immediately.
		return err
	}

	return fmt.Errorf("account: max retries exceeded: %w", lastErr)
}

// retryDelay calculates the backoff delay for a given attempt number.
func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.config.BaseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > c.config.MaxRetryDelay {
		delay = c.config.MaxRetryDelay
	}
	return delay
}
