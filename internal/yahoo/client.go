package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL serves quoteSummary and the crumb endpoint.
	DefaultBaseURL = "https://query2.finance.yahoo.com"

	// DefaultChartURL serves the chart API.
	DefaultChartURL = "https://query1.finance.yahoo.com"

	// DefaultCookieURL hands out the session cookie the crumb is bound to.
	DefaultCookieURL = "https://fc.yahoo.com"

	// DefaultUserAgent is sent on every request; Yahoo rejects empty agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is a Yahoo Finance API client.
type Client struct {
	baseURL    string
	chartURL   string
	cookieURL  string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter

	crumbMu sync.Mutex
	crumb   string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom quoteSummary base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithChartURL sets a custom chart base URL.
func WithChartURL(chartURL string) ClientOption {
	return func(c *Client) {
		c.chartURL = strings.TrimRight(chartURL, "/")
	}
}

// WithCookieURL sets the URL visited to obtain the session cookie.
func WithCookieURL(cookieURL string) ClientOption {
	return func(c *Client) {
		c.cookieURL = cookieURL
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		chartURL:  DefaultChartURL,
		cookieURL: DefaultCookieURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	// The crumb only validates alongside its cookie
	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		hc := *c.httpClient
		hc.Jar = jar
		c.httpClient = &hc
	}

	return c
}

// fetch performs a rate-limited GET and returns the body of a 200 response.
func (c *Client) fetch(ctx context.Context, reqURL, endpoint string) ([]byte, error) {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RateLimitError{RetryAfter: time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Msg("Yahoo Finance API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: time.Minute}
	}
	if resp.StatusCode != http.StatusOK {
		return body, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			Endpoint:   endpoint,
		}
	}

	return body, nil
}

// errorMessage extracts the description from an error envelope, else the raw body
func errorMessage(body []byte) string {
	var envelope map[string]struct {
		Error *ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, v := range envelope {
			if v.Error != nil && v.Error.Description != "" {
				return v.Error.Description
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// getCrumb returns the cached crumb, fetching cookie and crumb on first use
func (c *Client) getCrumb(ctx context.Context) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The cookie endpoint answers 404 but still sets the cookie
	if _, err := c.fetch(ctx, c.cookieURL, "cookie"); err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return "", fmt.Errorf("failed to obtain session cookie: %w", err)
		}
	}

	body, err := c.fetch(ctx, c.baseURL+"/v1/test/getcrumb", "/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("failed to obtain crumb: %w", err)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fmt.Errorf("failed to obtain crumb: unexpected response")
	}

	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.crumbMu.Lock()
	c.crumb = ""
	c.crumbMu.Unlock()
}

// GetQuoteSummary retrieves the given quoteSummary modules for a symbol.
// A 401 invalidates the crumb and the request is retried once.
func (c *Client) GetQuoteSummary(ctx context.Context, symbol string, modules ...string) (*QuoteSummaryResult, error) {
	endpoint := "/v10/finance/quoteSummary/" + symbol

	var body []byte
	for attempt := 0; attempt < 2; attempt++ {
		crumb, err := c.getCrumb(ctx)
		if err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("modules", strings.Join(modules, ","))
		params.Set("crumb", crumb)
		reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

		body, err = c.fetch(ctx, reqURL, endpoint)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized && attempt == 0 {
			c.resetCrumb()
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	var resp QuoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: resp.QuoteSummary.Error.Description, Endpoint: endpoint}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "no result for " + symbol, Endpoint: endpoint}
	}

	return &resp.QuoteSummary.Result[0], nil
}

// chartURLFor builds a daily chart request URL
func (c *Client) chartURLFor(symbol, rangeName, interval string) string {
	params := url.Values{}
	params.Set("range", rangeName)
	params.Set("interval", interval)
	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.chartURL, url.PathEscape(symbol), params.Encode())
}

// GetChart retrieves price history for a symbol (e.g., range "6mo", interval "1d").
func (c *Client) GetChart(ctx context.Context, symbol, rangeName, interval string) (*ChartResult, error) {
	endpoint := "/v8/finance/chart/" + symbol
	body, err := c.fetch(ctx, c.chartURLFor(symbol, rangeName, interval), endpoint)
	if err != nil {
		return nil, err
	}

	var resp ChartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: resp.Chart.Error.Description, Endpoint: endpoint}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "no chart for " + symbol, Endpoint: endpoint}
	}

	return &resp.Chart.Result[0], nil
}

// GetChartDocument retrieves a chart as an untyped JSON document for path queries.
func (c *Client) GetChartDocument(ctx context.Context, symbol, rangeName, interval string) (any, error) {
	body, err := c.fetch(ctx, c.chartURLFor(symbol, rangeName, interval), "/v8/finance/chart/"+symbol)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}
