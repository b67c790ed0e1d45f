package checkout_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbane-subscription-api/checkout"
	"urbane-subscription-api/models"
)

// fakeBackend is a scripted subscription API for driving the flow end
// to end over real HTTP.
type fakeBackend struct {
	mux *http.ServeMux

	orderCalls   int32
	verifyCalls  int32
	verifyResult models.PaymentResult
	statusQueue  []models.SessionStatus
	statusCalls  int32
	unauthorized bool
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{mux: http.NewServeMux()}

	b.mux.HandleFunc("/api/payments/create-order", func(w http.ResponseWriter, r *http.Request) {
		if b.unauthorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		n := atomic.AddInt32(&b.orderCalls, 1)
		json.NewEncoder(w).Encode(models.PaymentOrder{
			OrderID:   fmt.Sprintf("order_%d", n),
			Amount:    49900,
			Currency:  "INR",
			KeyID:     "rzp_test_key",
			PackageID: "digital-annual",
			Gateway:   models.GatewayRazorpay,
		})
	})

	b.mux.HandleFunc("/api/payments/verify", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.verifyCalls, 1)
		json.NewEncoder(w).Encode(b.verifyResult)
	})

	b.mux.HandleFunc("/api/subscriptions/smart", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"checkout_url": "https://checkout.stripe.com/c/pay/cs_test_42",
			"session_id":   "cs_test_42",
		})
	})

	b.mux.HandleFunc("/api/payments/status/", func(w http.ResponseWriter, r *http.Request) {
		i := int(atomic.AddInt32(&b.statusCalls, 1)) - 1
		if i >= len(b.statusQueue) {
			i = len(b.statusQueue) - 1
		}
		json.NewEncoder(w).Encode(b.statusQueue[i])
	})

	return b
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mux.ServeHTTP(w, r)
}

func newFlow(t *testing.T, backend *fakeBackend) (*checkout.Flow, *checkout.Session) {
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	session := checkout.NewSession("existing-token", &models.AuthUser{Email: "arjun@example.com"})
	client := checkout.NewClient(server.URL, session)
	return checkout.NewFlow(client, &countingScript{}), session
}

func completeWidget(t *testing.T) func(*checkout.WidgetSession) {
	return func(ws *checkout.WidgetSession) {
		go ws.Complete(checkout.PaymentCallback{
			OrderID:   ws.Order().OrderID,
			PaymentID: "pay_" + ws.Order().OrderID,
			Signature: "sig",
		})
	}
}

func digitalPlan() models.SubscriptionPlan {
	return models.SubscriptionPlan{
		ID:         "digital-annual",
		Name:       "Digital Annual",
		Price:      499,
		HasDigital: true,
	}
}

func TestFlowPurchaseWidgetPath(t *testing.T) {
	t.Parallel()

	t.Run("successful purchase activates the session", func(t *testing.T) {
		backend := newFakeBackend()
		backend.verifyResult = models.PaymentResult{
			Status:           "success",
			Message:          "Subscription activated",
			AccessToken:      "fresh-jwt",
			HasDigitalAccess: true,
			PackageID:        "digital-annual",
		}
		flow, session := newFlow(t, backend)

		result, err := flow.Purchase(context.Background(), digitalPlan(), validPurchaseDetails(), completeWidget(t))
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeSucceeded, result.Outcome)
		require.NotNil(t, result.Activation)
		assert.True(t, result.Activation.RouteToDigital)
		assert.False(t, result.Activation.ReloginRequired)

		assert.Equal(t, "fresh-jwt", session.Token())
		require.NotNil(t, session.User())
		assert.True(t, session.User().HasDigitalAccess)
		assert.Equal(t, "digital-annual", session.User().ActivePlanID)
	})

	t.Run("validation failure makes no network calls", func(t *testing.T) {
		backend := newFakeBackend()
		flow, _ := newFlow(t, backend)

		result, err := flow.Purchase(context.Background(), digitalPlan(), models.CustomerDetails{}, nil)
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeValidationError, result.Outcome)
		assert.NotEmpty(t, result.FieldErrors)
		assert.Zero(t, atomic.LoadInt32(&backend.orderCalls))
	})

	t.Run("declined payment does not touch the session", func(t *testing.T) {
		backend := newFakeBackend()
		backend.verifyResult = models.PaymentResult{Status: "failed", Message: "Payment declined by bank"}
		flow, session := newFlow(t, backend)

		result, err := flow.Purchase(context.Background(), digitalPlan(), validPurchaseDetails(), completeWidget(t))
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomePaymentFailed, result.Outcome)
		assert.Equal(t, "Payment declined by bank", result.Message)
		assert.Equal(t, "existing-token", session.Token())
	})

	t.Run("dismissed widget cancels without verification", func(t *testing.T) {
		backend := newFakeBackend()
		flow, _ := newFlow(t, backend)

		result, err := flow.Purchase(context.Background(), digitalPlan(), validPurchaseDetails(),
			func(ws *checkout.WidgetSession) { go ws.Dismiss() })
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeCancelled, result.Outcome)
		assert.Zero(t, atomic.LoadInt32(&backend.verifyCalls))
	})

	t.Run("401 invalidates the session", func(t *testing.T) {
		backend := newFakeBackend()
		backend.unauthorized = true
		flow, session := newFlow(t, backend)

		invalidated := false
		session.OnInvalidate(func() { invalidated = true })

		result, err := flow.Purchase(context.Background(), digitalPlan(), validPurchaseDetails(), nil)
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeAuthRequired, result.Outcome)
		assert.True(t, invalidated)
		assert.Empty(t, session.Token())
	})

	t.Run("each attempt mints a fresh order", func(t *testing.T) {
		backend := newFakeBackend()
		backend.verifyResult = models.PaymentResult{Status: "failed", Message: "declined"}
		flow, _ := newFlow(t, backend)

		_, err := flow.Purchase(context.Background(), digitalPlan(), validPurchaseDetails(), completeWidget(t))
		require.NoError(t, err)
		_, err = flow.Purchase(context.Background(), digitalPlan(), validPurchaseDetails(), completeWidget(t))
		require.NoError(t, err)

		assert.Equal(t, int32(2), atomic.LoadInt32(&backend.orderCalls))
		assert.Equal(t, int32(2), atomic.LoadInt32(&backend.verifyCalls))
	})

	t.Run("paid but tokenless means relogin, not failure", func(t *testing.T) {
		backend := newFakeBackend()
		backend.verifyResult = models.PaymentResult{Status: "success", Message: "activated"}
		flow, session := newFlow(t, backend)

		result, err := flow.Purchase(context.Background(), digitalPlan(), validPurchaseDetails(), completeWidget(t))
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeSucceeded, result.Outcome)
		require.NotNil(t, result.Activation)
		assert.True(t, result.Activation.ReloginRequired)
		assert.Equal(t, "existing-token", session.Token(), "a missing grant must not clobber the session")
	})
}

func TestFlowRedirectPath(t *testing.T) {
	t.Parallel()

	t.Run("begin validates before navigating", func(t *testing.T) {
		backend := newFakeBackend()
		flow, _ := newFlow(t, backend)

		_, err := flow.BeginRedirect(context.Background(), digitalPlan(), models.CustomerDetails{})
		var verr *checkout.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.Fields)
	})

	t.Run("begin hands back the hosted checkout", func(t *testing.T) {
		backend := newFakeBackend()
		flow, _ := newFlow(t, backend)

		start, err := flow.BeginRedirect(context.Background(), digitalPlan(), validPurchaseDetails())
		require.NoError(t, err)
		assert.Equal(t, "cs_test_42", start.SessionID)
		assert.Contains(t, start.CheckoutURL, "checkout.stripe.com")
	})

	t.Run("complete activates on paid", func(t *testing.T) {
		backend := newFakeBackend()
		backend.statusQueue = []models.SessionStatus{
			{Status: "open", PaymentStatus: "pending"},
			{Status: "open", PaymentStatus: "paid", Result: &models.PaymentResult{
				Status:           "success",
				AccessToken:      "redirect-jwt",
				HasDigitalAccess: true,
				PackageID:        "digital-annual",
			}},
		}
		flow, session := newFlow(t, backend)
		flow.Poller().WithClock(&immediateClock{})

		result, err := flow.CompleteRedirect(context.Background(), "cs_test_42")
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeSucceeded, result.Outcome)
		assert.Equal(t, "redirect-jwt", session.Token())
	})

	t.Run("expired session reports immediately", func(t *testing.T) {
		backend := newFakeBackend()
		backend.statusQueue = []models.SessionStatus{
			{Status: "expired", PaymentStatus: "pending"},
		}
		flow, _ := newFlow(t, backend)
		flow.Poller().WithClock(&immediateClock{})

		result, err := flow.CompleteRedirect(context.Background(), "cs_test_42")
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeSessionExpired, result.Outcome)
		assert.Equal(t, int32(1), atomic.LoadInt32(&backend.statusCalls))
	})

	t.Run("still pending after the budget is a timeout", func(t *testing.T) {
		backend := newFakeBackend()
		backend.statusQueue = []models.SessionStatus{
			{Status: "open", PaymentStatus: "pending"},
		}
		flow, _ := newFlow(t, backend)
		flow.Poller().WithClock(&immediateClock{})

		result, err := flow.CompleteRedirect(context.Background(), "cs_test_42")
		require.NoError(t, err)
		assert.Equal(t, checkout.OutcomeTimeout, result.Outcome)
	})
}

func validPurchaseDetails() models.CustomerDetails {
	return models.CustomerDetails{
		Name:            "Arjun Mehta",
		Email:           "arjun@example.com",
		Phone:           "9812345678",
		Password:        "hunter2x",
		ConfirmPassword: "hunter2x",
	}
}
