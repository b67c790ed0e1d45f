package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://api.razorpay.com/v1"
	RequestTimeout = 30 * time.Second
)

// Client talks to the Razorpay Orders API with basic auth
// (key id / key secret).
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewClient(keyID, keySecret string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
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

// KeyID is the publishable key the checkout widget needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// KeySecret is the signing key for callback verification.
func (c *Client) KeySecret() string {
	return c.keySecret
}

// CreateOrder mints a fresh gateway order for one checkout attempt.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int, currency, receipt string, notes map[string]string) (*Order, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %v", err)
	}

	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", body, &order); err != nil {
		return nil, err
	}

	log.Printf("Created Razorpay order %s for %d %s", order.ID, order.Amount, order.Currency)
	return &order, nil
}

// FetchOrder reads an order back, used when reconciling.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("razorpay request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read razorpay response: %v", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay error (%d): %s", resp.StatusCode, apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay error: status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode razorpay response: %v", err)
		}
	}
	return nil
}
