// Package alphavantage provides a client for the Alpha Vantage API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// barTimeLayout is the timestamp format of intraday series keys.
	// The feed reports exchange-local time; only the ordering matters here.
	barTimeLayout = "2006-01-02 15:04:05"
)

// flexFloat64 handles JSON values that may be either a number or a string.
// Alpha Vantage reports prices as quoted decimals.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// intradayResponse holds the pieces of the TIME_SERIES_INTRADAY payload we
// care about. The series key embeds the interval, so it is resolved after
// decoding into RawSeries. Errors and throttling notices arrive as 200
// responses with a message field instead of a series.
type intradayResponse struct {
	ErrorMessage string                              `json:"Error Message"`
	Note         string                              `json:"Note"`
	Information  string                              `json:"Information"`
	RawSeries    map[string]map[string]intradayEntry `json:"-"`
}

type intradayEntry struct {
	Close flexFloat64 `json:"4. close"`
}

func (r *intradayResponse) UnmarshalJSON(data []byte) error {
	type plain intradayResponse
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}

	r.RawSeries = make(map[string]map[string]intradayEntry)
	for key, raw := range keyed {
		if !strings.HasPrefix(key, "Time Series") {
			continue
		}
		var series map[string]intradayEntry
		if err := json.Unmarshal(raw, &series); err != nil {
			return fmt.Errorf("failed to parse %q: %w", key, err)
		}
		r.RawSeries[key] = series
	}
	return nil
}

// GetIntradaySeries retrieves recent intraday bars for a symbol, newest first.
func (c *Client) GetIntradaySeries(ctx context.Context, symbol, interval string) ([]models.IntradayBar, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_INTRADAY")
	params.Set("symbol", symbol)
	params.Set("interval", interval)

	var resp intradayResponse
	if err := c.get(ctx, "/query", params, &resp); err != nil {
		return nil, err
	}

	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("feed rejected request: %s", resp.ErrorMessage)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("feed throttled: %s", resp.Note)
	}
	if resp.Information != "" {
		return nil, fmt.Errorf("feed unavailable: %s", resp.Information)
	}

	seriesKey := fmt.Sprintf("Time Series (%s)", interval)
	series, ok := resp.RawSeries[seriesKey]
	if !ok || len(series) == 0 {
		return nil, fmt.Errorf("no %q in response for %s", seriesKey, symbol)
	}

	bars := make([]models.IntradayBar, 0, len(series))
	for ts, entry := range series {
		parsed, err := time.Parse(barTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("bad series timestamp %q: %w", ts, err)
		}
		bars = append(bars, models.IntradayBar{
			Timestamp: parsed,
			Close:     float64(entry.Close),
		})
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.After(bars[j].Timestamp)
	})

	c.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("Intraday series retrieved")
	return bars, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
