package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"xplore/internal/auth"
	"xplore/pkg/logging"
)

// DefaultBaseURL is the X API v2 base URL.
const DefaultBaseURL = "https://api.x.com/2"

// DefaultHTTPTimeout bounds a single API request.
const DefaultHTTPTimeout = 30 * time.Second

// Request describes one GET against the API. The typed endpoint methods
// construct these; Execute turns them into classified results.
type Request struct {
	// Operation names the request for errors and logs ("home timeline").
	Operation string

	// Path is the endpoint path relative to the base URL ("/users/me").
	Path string

	// Query holds the query parameters.
	Query url.Values

	// RequiresUserContext marks endpoints that only work with an
	// authenticated user (home timeline, mentions, bookmarks).
	RequiresUserContext bool
}

// RateLimitInfo is the most recent rate-limit header snapshot.
// Remaining and Limit are -1 until the first response carries them.
type RateLimitInfo struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Client executes requests against the X API with the active auth
// strategy. It is safe for concurrent use; the dispatcher shares one
// Client across all in-flight request goroutines.
type Client struct {
	httpClient *http.Client
	baseURL    string

	// primary authorizes every request that needs user context, and
	// non-user-context requests too unless an app fallback is set.
	primary auth.Strategy

	// app, when set, authorizes non-user-context requests. Used when the
	// primary method is OAuth1 but a bearer token is also configured.
	app auth.Strategy

	rateMu sync.Mutex
	rate   RateLimitInfo

	userMu sync.Mutex
	userID string

	users *UsersCache
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithAppStrategy sets a fallback strategy for non-user-context requests.
func WithAppStrategy(app auth.Strategy) Option {
	return func(c *Client) { c.app = app }
}

// NewClient creates an API client bound to an auth strategy.
func NewClient(primary auth.Strategy, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		baseURL:    DefaultBaseURL,
		primary:    primary,
		rate:       RateLimitInfo{Remaining: -1, Limit: -1},
		users:      NewUsersCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Users returns the cache of user objects seen in response includes.
func (c *Client) Users() *UsersCache {
	return c.users
}

// RateLimit returns the latest rate-limit snapshot.
func (c *Client) RateLimit() RateLimitInfo {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	return c.rate
}

// Method returns the primary strategy's auth method.
func (c *Client) Method() auth.Method {
	return c.primary.Method()
}

// Execute runs one request: capability check, authorization, network
// call, classification. On 401 it forces a single token refresh and
// retries once; a 401 on the retry is returned as an APIError.
func (c *Client) Execute(ctx context.Context, req Request) ([]byte, error) {
	strategy := c.primary
	if req.RequiresUserContext {
		// Checked before any network I/O.
		if !strategy.SupportsUserContext() {
			return nil, &auth.CapabilityError{Method: strategy.Method(), Operation: req.Operation}
		}
	} else if c.app != nil {
		strategy = c.app
	}

	body, status, err := c.do(ctx, strategy, req)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		refresher, ok := strategy.(auth.Refresher)
		if !ok {
			return nil, &APIError{Status: status, Body: string(body)}
		}
		logging.Info("API", "401 on %s, forcing token refresh", req.Operation)
		if err := refresher.ForceRefresh(); err != nil {
			return nil, err
		}
		body, status, err = c.do(ctx, strategy, req)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case status == http.StatusTooManyRequests:
		return nil, &RateLimitedError{ResetAt: c.RateLimit().ResetAt}
	case status < 200 || status > 299:
		return nil, &APIError{Status: status, Body: string(body)}
	}

	return body, nil
}

// do performs one HTTP round trip and records rate-limit headers.
// Transport failures come back as NetworkError; status classification is
// left to the caller.
func (c *Client) do(ctx context.Context, strategy auth.Strategy, req Request) ([]byte, int, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request for %s: %w", req.Operation, err)
	}

	if err := strategy.Prepare(httpReq); err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	c.recordRateLimit(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &NetworkError{Err: err}
	}

	logging.Debug("API", "%s -> %d (%d bytes)", req.Operation, resp.StatusCode, len(body))
	return body, resp.StatusCode, nil
}

// recordRateLimit parses the x-rate-limit-* headers, best effort.
func (c *Client) recordRateLimit(h http.Header) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	if v := h.Get("x-rate-limit-remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rate.Remaining = n
		}
	}
	if v := h.Get("x-rate-limit-limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rate.Limit = n
		}
	}
	if v := h.Get("x-rate-limit-reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.rate.ResetAt = time.Unix(ts, 0)
		}
	}
	if c.rate.ResetAt.IsZero() {
		c.rate.ResetAt = time.Now()
	}
}

// execute runs a request and decodes the response envelope. Responses
// with includes feed the users cache.
func execute[T any](ctx context.Context, c *Client, req Request) (*Response[T], error) {
	body, err := c.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	var envelope Response[T]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", req.Operation, err)
	}

	if envelope.Includes != nil {
		c.users.AddAll(envelope.Includes.Users)
	}
	return &envelope, nil
}
