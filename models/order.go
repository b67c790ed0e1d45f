package models

import "time"

// Gateway protocol used for a checkout attempt.
const (
	GatewayRazorpay = "razorpay"
	GatewayStripe   = "stripe"
)

// Order lifecycle states as stored in the orders table.
const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
	OrderStatusExpired = "expired"
)

// PaymentOrder is the server-issued transaction handle for one checkout
// attempt. Exactly one order is live per attempt; a retry must mint a
// fresh one.
type PaymentOrder struct {
	OrderID     string `json:"order_id"`
	Amount      int    `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id,omitempty"`
	PackageID   string `json:"package_id"`
	PackageName string `json:"package_name"`
	// CheckoutURL is set only for the redirect protocol.
	CheckoutURL string `json:"checkout_url,omitempty"`
	Gateway     string `json:"gateway,omitempty"`
}

// OrderRecord is the persisted form of a PaymentOrder.
type OrderRecord struct {
	GatewayOrderID string
	Gateway        string
	PackageID      string
	Email          string
	Amount         int
	Currency       string
	Status         string
	CreatedAt      time.Time
}

// CreateOrderRequest is the body of POST /api/payments/create-order.
type CreateOrderRequest struct {
	PackageID string `json:"package_id" validate:"required"`
	UserEmail string `json:"user_email,omitempty" validate:"omitempty,email"`
}

// VerifyPaymentRequest carries the identifiers the Razorpay widget
// hands to its success callback, forwarded for server-side signature
// verification.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	PackageID         string `json:"package_id" validate:"required"`
	UserEmail         string `json:"user_email" validate:"required,email"`
}

// SmartSubscriptionRequest is the redirect-protocol entry point: it
// bundles account creation with checkout session creation.
type SmartSubscriptionRequest struct {
	PackageID     string          `json:"package_id" validate:"required"`
	UserDetails   CustomerDetails `json:"user_details"`
	CreateAccount bool            `json:"create_account"`
}
