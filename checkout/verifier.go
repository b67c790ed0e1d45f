package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"urbane-subscription-api/models"
)

// ErrVerificationInFlight guards the exactly-once contract: a replayed
// callback while the first verification is pending or after it errored
// must not fire a second backend call, because funds may already be
// captured.
var ErrVerificationInFlight = errors.New("verification already attempted for this payment")

// Verifier forwards widget callback identifiers for server-side
// verification. Each payment id is verified at most once per process;
// a duplicate callback replays the cached terminal result instead of
// calling the backend again.
type Verifier struct {
	client *Client

	mu        sync.Mutex
	attempted map[string]bool
	results   map[string]*models.PaymentResult
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{
		client:    client,
		attempted: make(map[string]bool),
		results:   make(map[string]*models.PaymentResult),
	}
}

// Verify makes the single verification call. It is never retried: on a
// transport failure the outcome is a verification error, not a payment
// failure, since the gateway may have captured the charge.
func (v *Verifier) Verify(ctx context.Context, cb PaymentCallback, packageID, email string) (*models.PaymentResult, error) {
	v.mu.Lock()
	if result, ok := v.results[cb.PaymentID]; ok {
		v.mu.Unlock()
		return result, nil
	}
	if v.attempted[cb.PaymentID] {
		v.mu.Unlock()
		return nil, ErrVerificationInFlight
	}
	v.attempted[cb.PaymentID] = true
	v.mu.Unlock()

	var result models.PaymentResult
	err := v.client.postJSON(ctx, "/api/payments/verify", models.VerifyPaymentRequest{
		RazorpayOrderID:   cb.OrderID,
		RazorpayPaymentID: cb.PaymentID,
		RazorpaySignature: cb.Signature,
		PackageID:         packageID,
		UserEmail:         email,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("verification call failed: %w", err)
	}

	v.mu.Lock()
	v.results[cb.PaymentID] = &result
	v.mu.Unlock()

	return &result, nil
}
