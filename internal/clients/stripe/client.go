// Package stripe provides a minimal client for the Stripe REST API
package stripe

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

	"golang.org/x/time/rate"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
)

const (
	DefaultBaseURL   = "https://api.stripe.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the PaymentClient interface
type Client struct {
	baseURL    string
	secretKey  string
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

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Stripe client
func NewClient(secretKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		secretKey: secretKey,
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
	return fmt.Sprintf("Stripe API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// do performs a rate-limited, authenticated request. Stripe takes
// form-encoded bodies and returns JSON.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	reqURL := c.baseURL + path
	if method == http.MethodGet {
		if len(form) > 0 {
			reqURL += "?" + form.Encode()
		}
	} else if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug().Str("method", method).Str("url", c.baseURL+path).Msg("Stripe API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// CreateCheckoutSession creates a hosted checkout page for a one-time payment.
// The username rides along as session and payment-intent metadata so the
// later verification poll can match the payment back to the account.
func (c *Client) CreateCheckoutSession(ctx context.Context, params models.CheckoutParams) (*models.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	form.Set("metadata[username]", params.Username)
	form.Set("payment_intent_data[metadata][username]", params.Username)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	var session models.CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("session_id", session.ID).Str("username", params.Username).Msg("Checkout session created")
	return &session, nil
}

// paymentIntentList is the Stripe list envelope.
type paymentIntentList struct {
	Data []models.PaymentIntent `json:"data"`
}

// ListPaymentIntents retrieves the most recent payment attempts, newest first.
func (c *Client) ListPaymentIntents(ctx context.Context, limit int) ([]models.PaymentIntent, error) {
	if limit <= 0 {
		limit = 20
	}

	form := url.Values{}
	form.Set("limit", strconv.Itoa(limit))

	var list paymentIntentList
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents", form, &list); err != nil {
		return nil, err
	}

	return list.Data, nil
}

// Ensure Client implements PaymentClient
var _ interfaces.PaymentClient = (*Client)(nil)
