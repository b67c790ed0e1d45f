package payment_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbane-subscription-api/models"
	"urbane-subscription-api/services/payment"
	"urbane-subscription-api/services/payment/razorpay"
	"urbane-subscription-api/services/payment/stripe"
)

func digitalPlan() *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		ID:         "digital-annual",
		Name:       "Digital Annual",
		Price:      499,
		HasDigital: true,
	}
}

func newService(t *testing.T, handler http.Handler) *payment.Service {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rz := razorpay.NewClient("rzp_test_id", "rzp_test_secret")
	rz.SetBaseURL(server.URL)
	st := stripe.NewClient("sk_test_123")
	st.SetBaseURL(server.URL)

	return payment.NewService(rz, st, "https://urbane.example/success", "https://urbane.example/cancel")
}

func TestServiceCreateOrder(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(49900), body["amount"], "rupee price converts to paise")

		json.NewEncoder(w).Encode(razorpay.Order{
			ID: "order_new", Amount: 49900, Currency: "INR", Status: "created",
		})
	}))

	order, err := svc.CreateOrder(context.Background(), digitalPlan(), "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "order_new", order.OrderID)
	assert.Equal(t, "rzp_test_id", order.KeyID, "widget needs the publishable key")
	assert.Equal(t, models.GatewayRazorpay, order.Gateway)
	assert.Empty(t, order.CheckoutURL)
}

func TestServiceVerifyPayment(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.NotFoundHandler())

	genuine := razorpay.SignPayment("order_1", "pay_1", "rzp_test_secret")
	ok, err := svc.VerifyPayment(context.Background(), &models.VerifyPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: genuine,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPayment(context.Background(), &models.VerifyPaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "forged",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceCreateCheckoutSession(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://urbane.example/success", r.PostForm.Get("success_url"))
		assert.Equal(t, "digital-annual", r.PostForm.Get("metadata[package_id]"))

		json.NewEncoder(w).Encode(stripe.CheckoutSession{
			ID:            "cs_test_42",
			URL:           "https://checkout.stripe.com/c/pay/cs_test_42",
			Status:        "open",
			PaymentStatus: "unpaid",
			AmountTotal:   49900,
			Currency:      "inr",
		})
	}))

	order, err := svc.CreateCheckoutSession(context.Background(), digitalPlan(), "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_42", order.OrderID)
	assert.Equal(t, models.GatewayStripe, order.Gateway)
	assert.NotEmpty(t, order.CheckoutURL)
}

func TestServiceSessionStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name              string
		gatewayStatus     string
		gatewayPayment    string
		wantStatus        string
		wantPaymentStatus string
	}{
		{"open unpaid is pending", "open", "unpaid", "open", "pending"},
		{"complete paid", "complete", "paid", "open", "paid"},
		{"expired unpaid fails", "expired", "unpaid", "expired", "failed"},
		{"expired but paid stays paid", "expired", "paid", "expired", "paid"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"id":"cs_1","status":%q,"payment_status":%q,"amount_total":49900,"currency":"inr"}`,
					tc.gatewayStatus, tc.gatewayPayment)
			}))

			status, err := svc.SessionStatus(context.Background(), "cs_1")
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, status.Status)
			assert.Equal(t, tc.wantPaymentStatus, status.PaymentStatus)
		})
	}
}
