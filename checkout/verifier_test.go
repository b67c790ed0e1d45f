package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbane-subscription-api/checkout"
	"urbane-subscription-api/models"
)

func TestVerifierExactlyOnce(t *testing.T) {
	t.Parallel()

	t.Run("duplicate callback replays the cached result", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/payments/verify", r.URL.Path)
			atomic.AddInt32(&calls, 1)

			var req models.VerifyPaymentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "pay_once", req.RazorpayPaymentID)

			json.NewEncoder(w).Encode(models.PaymentResult{
				Status:           "success",
				AccessToken:      "jwt-token",
				HasDigitalAccess: true,
				PackageID:        "digital-annual",
			})
		}))
		defer server.Close()

		client := checkout.NewClient(server.URL, checkout.NewSession("", nil))
		verifier := checkout.NewVerifier(client)
		cb := checkout.PaymentCallback{OrderID: "order_1", PaymentID: "pay_once", Signature: "sig"}

		first, err := verifier.Verify(context.Background(), cb, "digital-annual", "a@b.com")
		require.NoError(t, err)
		assert.True(t, first.Succeeded())

		second, err := verifier.Verify(context.Background(), cb, "digital-annual", "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "backend must be hit exactly once per payment")
	})

	t.Run("failed verification is cached too", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			json.NewEncoder(w).Encode(models.PaymentResult{
				Status:  "failed",
				Message: "Invalid payment signature",
			})
		}))
		defer server.Close()

		client := checkout.NewClient(server.URL, checkout.NewSession("", nil))
		verifier := checkout.NewVerifier(client)
		cb := checkout.PaymentCallback{OrderID: "order_2", PaymentID: "pay_bad", Signature: "forged"}

		first, err := verifier.Verify(context.Background(), cb, "digital-annual", "a@b.com")
		require.NoError(t, err)
		assert.False(t, first.Succeeded())

		_, err = verifier.Verify(context.Background(), cb, "digital-annual", "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("transport error is never retried", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := checkout.NewClient(server.URL, checkout.NewSession("", nil))
		verifier := checkout.NewVerifier(client)
		cb := checkout.PaymentCallback{OrderID: "order_3", PaymentID: "pay_flaky", Signature: "sig"}

		_, err := verifier.Verify(context.Background(), cb, "digital-annual", "a@b.com")
		require.Error(t, err)

		_, err = verifier.Verify(context.Background(), cb, "digital-annual", "a@b.com")
		assert.ErrorIs(t, err, checkout.ErrVerificationInFlight,
			"a callback replay after an errored attempt must not re-call the backend")

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("distinct payments verify independently", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			json.NewEncoder(w).Encode(models.PaymentResult{Status: "success"})
		}))
		defer server.Close()

		client := checkout.NewClient(server.URL, checkout.NewSession("", nil))
		verifier := checkout.NewVerifier(client)

		_, err := verifier.Verify(context.Background(), checkout.PaymentCallback{PaymentID: "pay_a"}, "p", "a@b.com")
		require.NoError(t, err)
		_, err = verifier.Verify(context.Background(), checkout.PaymentCallback{PaymentID: "pay_b"}, "p", "a@b.com")
		require.NoError(t, err)

		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}
