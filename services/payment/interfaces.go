package payment

import (
	"context"

	"urbane-subscription-api/models"
)

// OrderCreator mints widget-protocol orders.
type OrderCreator interface {
	CreateOrder(ctx context.Context, plan *models.SubscriptionPlan, email string) (*models.PaymentOrder, error)
}

// PaymentVerifier proves a claimed widget payment is genuine.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (bool, error)
}

// SessionGateway drives the redirect protocol: hosted session out,
// status polled back.
type SessionGateway interface {
	CreateCheckoutSession(ctx context.Context, plan *models.SubscriptionPlan, email string) (*models.PaymentOrder, error)
	SessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error)
}
