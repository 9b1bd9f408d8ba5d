package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the EODHD API root
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout bounds a single upstream request
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is requests per second across all endpoints
	DefaultRateLimit = 10

	dateLayout = "2006-01-02"
)

// Client calls the EODHD fundamentals, real-time and end-of-day endpoints.
// Every request carries the API token and asks for JSON.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the per-request timeout; it applies to a client given by WithHTTPClient too.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit sets requests per second, with an equal burst.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewClient creates an EODHD client for apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	c.httpClient.Timeout = c.timeout
	if c.logger == nil {
		c.logger = arbor.NewLogger()
	}
	return c
}

// fetch decodes GET {baseURL}/{endpoint}/{symbol}?query into out.
// Non-200 responses become *APIError, 429 becomes *RateLimitError.
func (c *Client) fetch(ctx context.Context, endpoint, symbol string, query url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("eodhd %s %s: waiting for rate limiter: %w", endpoint, symbol, err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_token", c.apiKey)
	query.Set("fmt", "json")

	path := "/" + endpoint + "/" + url.PathEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("eodhd %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("symbol", symbol).
		Int("status", resp.StatusCode).
		Int64("elapsed_ms", time.Since(started).Milliseconds()).
		Msg("EODHD request")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// retryAfter reads a Retry-After header in seconds, defaulting to a minute
func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Minute
}

// GetDailyBars returns daily bars for symbol (EODHD form, e.g. "BBCA.JK") between from and to,
// oldest first. Bars with an unparseable date are dropped.
func (c *Client) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]DailyBar, error) {
	query := url.Values{"period": {"d"}, "order": {"a"}}
	if !from.IsZero() {
		query.Set("from", from.Format(dateLayout))
	}
	if !to.IsZero() {
		query.Set("to", to.Format(dateLayout))
	}

	var raw []DailyBar
	if err := c.fetch(ctx, "eod", symbol, query, &raw); err != nil {
		return nil, err
	}

	bars := raw[:0]
	for _, bar := range raw {
		date, err := time.Parse(dateLayout, bar.DateStr)
		if err != nil {
			continue
		}
		bar.Date = date
		bars = append(bars, bar)
	}
	return bars, nil
}

// GetFundamentals returns the fundamentals document for symbol.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*FundamentalsResponse, error) {
	var result FundamentalsResponse
	if err := c.fetch(ctx, "fundamentals", symbol, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRealTimeQuote returns the latest (delayed) quote for symbol.
func (c *Client) GetRealTimeQuote(ctx context.Context, symbol string) (*RealTimeQuote, error) {
	var result RealTimeQuote
	if err := c.fetch(ctx, "real-time", symbol, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
