// Package httpclient is a client for the admin REST API, used by the CLI.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

// Preset timeout durations for common use cases.
const (
	// DefaultTimeout is the standard timeout for most HTTP requests (30s).
	DefaultTimeout = 30 * time.Second

	// DefaultPrefix is the route prefix of the admin API.
	DefaultPrefix = "/api/admin"

	headerAdminUser = "X-Admin-User"
)

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	Transport http.RoundTripper
	Prefix    string
	User      string
	Attempts  uint
}

// Option is a functional option for configuring the client.
type Option func(*Options)

// WithTimeout sets the client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithTransport sets a custom transport.
func WithTransport(t http.RoundTripper) Option {
	return func(o *Options) {
		o.Transport = t
	}
}

// WithPrefix overrides the API route prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithUser sets the name recorded as the author of changes.
func WithUser(user string) Option {
	return func(o *Options) {
		o.User = user
	}
}

// WithAttempts sets how many times idempotent requests are tried.
func WithAttempts(n uint) Option {
	return func(o *Options) {
		o.Attempts = n
	}
}

// APIError is a non-2xx answer of the admin API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d %s): %s", e.Message, e.Status, e.Code, e.Details)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

// Client calls the admin API of a running server.
type Client struct {
	baseURL string
	opts    Options
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8090".
func New(baseURL string, opts ...Option) *Client {
	cfg := Options{
		Timeout:  DefaultTimeout,
		Prefix:   DefaultPrefix,
		Attempts: 3,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}
	if cfg.Transport != nil {
		client.Transport = cfg.Transport
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    cfg,
		http:    client,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

// GetStatistics returns the statistics of one region, or of every region
// combined when regionID is empty.
func (c *Client) GetStatistics(ctx context.Context, regionID string) (*cachemgmt.StatisticsSnapshot, error) {
	query := url.Values{}
	if regionID != "" {
		query.Set("region", regionID)
	}

	var stats cachemgmt.StatisticsSnapshot
	if _, err := c.get(ctx, "/cache/statistics", query, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetTopCachedItems returns the most used key families.
func (c *Client) GetTopCachedItems(ctx context.Context) ([]cachemgmt.TopCachedItem, error) {
	var items []cachemgmt.TopCachedItem
	if _, err := c.get(ctx, "/cache/statistics/top", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetConfiguration returns the assembled cache configuration.
func (c *Client) GetConfiguration(ctx context.Context) (*cachemgmt.ConfigurationSnapshot, error) {
	var snapshot cachemgmt.ConfigurationSnapshot
	if _, err := c.get(ctx, "/cache/config", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ClearCache clears one region, or every region for "all", and returns the
// server's confirmation message.
func (c *Client) ClearCache(ctx context.Context, cacheID string) (string, error) {
	env, err := c.do(ctx, http.MethodDelete, "/cache/"+url.PathEscape(cacheID), nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (*envelope, error) {
	var env *envelope
	err := retry.Do(
		func() error {
			var err error
			env, err = c.do(ctx, http.MethodGet, path, query)
			return err
		},
		retry.Attempts(c.opts.Attempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values) (*envelope, error) {
	target := c.baseURL + c.opts.Prefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.User != "" {
		req.Header.Set(headerAdminUser, c.opts.User)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: "INVALID_RESPONSE", Message: "Unexpected response from server", Details: err.Error()}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return nil, apiErr
	}
	return &env, nil
}

// isRetryable retries transport failures and unavailable servers only.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusServiceUnavailable || apiErr.Status == http.StatusBadGateway
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
