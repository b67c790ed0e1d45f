package payment

import (
	"context"
	"fmt"
	"log"

	"urbane-subscription-api/models"
	"urbane-subscription-api/services/payment/razorpay"
	"urbane-subscription-api/services/payment/stripe"
	"urbane-subscription-api/utils"
)

// Service fronts both gateway clients behind one API. The widget
// protocol (Razorpay) is the primary path; the redirect protocol
// (Stripe) is the alternate.
type Service struct {
	razorpay   *razorpay.Client
	stripe     *stripe.Client
	successURL string
	cancelURL  string
}

func NewService(rz *razorpay.Client, st *stripe.Client, successURL, cancelURL string) *Service {
	return &Service{
		razorpay:   rz,
		stripe:     st,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateOrder mints a fresh Razorpay order for one checkout attempt.
func (s *Service) CreateOrder(ctx context.Context, plan *models.SubscriptionPlan, email string) (*models.PaymentOrder, error) {
	order, err := s.razorpay.CreateOrder(ctx,
		utils.RupeesToPaise(plan.Price), "INR", "sub_"+plan.ID,
		map[string]string{
			"package_id": plan.ID,
			"email":      email,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %v", err)
	}

	return &models.PaymentOrder{
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		KeyID:       s.razorpay.KeyID(),
		PackageID:   plan.ID,
		PackageName: plan.Name,
		Gateway:     models.GatewayRazorpay,
	}, nil
}

// VerifyPayment checks the callback signature against the key secret.
// A false return means the claimed payment is not genuine; an error
// means the check itself could not be made.
func (s *Service) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (bool, error) {
	ok := razorpay.VerifySignature(
		req.RazorpayOrderID,
		req.RazorpayPaymentID,
		req.RazorpaySignature,
		s.razorpay.KeySecret(),
	)
	if !ok {
		log.Printf("Signature mismatch for order %s payment %s",
			req.RazorpayOrderID, req.RazorpayPaymentID)
	}
	return ok, nil
}

// CreateCheckoutSession opens a Stripe hosted session for the redirect
// protocol.
func (s *Service) CreateCheckoutSession(ctx context.Context, plan *models.SubscriptionPlan, email string) (*models.PaymentOrder, error) {
	session, err := s.stripe.CreateSession(ctx, stripe.SessionParams{
		AmountPaise:   utils.RupeesToPaise(plan.Price),
		Currency:      "INR",
		ProductName:   plan.Name,
		CustomerEmail: email,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		Metadata: map[string]string{
			"package_id": plan.ID,
			"email":      email,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %v", err)
	}

	return &models.PaymentOrder{
		OrderID:     session.ID,
		Amount:      session.AmountTotal,
		Currency:    session.Currency,
		PackageID:   plan.ID,
		PackageName: plan.Name,
		CheckoutURL: session.URL,
		Gateway:     models.GatewayStripe,
	}, nil
}

// SessionStatus maps the gateway session state onto the polling
// contract: payment_status pending|paid|failed plus open|expired.
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error) {
	session, err := s.stripe.FetchSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session status: %v", err)
	}

	status := &models.SessionStatus{
		Amount:   session.AmountTotal,
		Currency: session.Currency,
		Metadata: session.Metadata,
	}

	switch session.Status {
	case "expired":
		status.Status = "expired"
	default:
		status.Status = "open"
	}

	switch {
	case session.PaymentStatus == "paid":
		status.PaymentStatus = "paid"
	case session.Status == "expired":
		status.PaymentStatus = "failed"
	default:
		status.PaymentStatus = "pending"
	}

	return status, nil
}
