package checkout

import (
	"context"

	"urbane-subscription-api/models"
)

// CreateOrder asks the backend to mint a widget-protocol order. One
// network call, never retried here: a failed attempt requires the user
// to re-submit, which creates an entirely new order rather than
// reusing request state.
func (c *Client) CreateOrder(ctx context.Context, planID, email string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := c.postJSON(ctx, "/api/payments/create-order", models.CreateOrderRequest{
		PackageID: planID,
		UserEmail: email,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateSmartSubscription is the redirect-protocol initiator: the
// backend creates the account and a hosted checkout session in one
// call and hands back the URL to redirect to.
func (c *Client) CreateSmartSubscription(ctx context.Context, planID string, details models.CustomerDetails) (checkoutURL, sessionID string, err error) {
	var resp struct {
		CheckoutURL string `json:"checkout_url"`
		SessionID   string `json:"session_id"`
	}
	err = c.postJSON(ctx, "/api/subscriptions/smart", models.SmartSubscriptionRequest{
		PackageID:     planID,
		UserDetails:   details,
		CreateAccount: true,
	}, &resp)
	if err != nil {
		return "", "", err
	}
	return resp.CheckoutURL, resp.SessionID, nil
}
