package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.stripe.com/v1"
	RequestTimeout = 30 * time.Second
)

// Client talks to the Stripe Checkout Sessions API. Stripe takes
// form-encoded bodies and returns JSON.
type Client struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewClient(secretKey string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		secretKey: secretKey,
		baseURL:   DefaultBaseURL,
		client: &http.Client{
			Timeout:   RequestTimeout,
			Transport: transport,
		},
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SessionParams describes one hosted-checkout session.
type SessionParams struct {
	AmountPaise   int
	Currency      string
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CreateSession opens a hosted checkout session and returns it with
// the redirect URL populated.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("customer_email", params.CustomerEmail)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.Itoa(params.AmountPaise))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}

	log.Printf("Created Stripe checkout session %s for %d %s",
		session.ID, params.AmountPaise, params.Currency)
	return &session, nil
}

// FetchSession reads a session back for status polling.
func (c *Client) FetchSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.do(ctx, http.MethodGet, "/checkout/sessions/"+sessionID, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stripe response: %v", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe error: status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode stripe response: %v", err)
		}
	}
	return nil
}
