package checkout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbane-subscription-api/checkout"
)

func TestFetchPlans(t *testing.T) {
	t.Parallel()

	t.Run("returns the catalog", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/plans", r.URL.Path)
			w.Write([]byte(`[
				{"id":"digital-annual","name":"Digital Annual","price":499,"has_digital":true},
				{"id":"print-annual","name":"Print Annual","price":1500,"requires_address":true,"popular":true}
			]`))
		}))
		defer server.Close()

		client := checkout.NewClient(server.URL, checkout.NewSession("", nil))
		plans, err := client.FetchPlans(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.True(t, plans[0].HasDigital)
		assert.True(t, plans[1].RequiresAddress)
	})

	t.Run("failure yields an empty slice, never nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := checkout.NewClient(server.URL, checkout.NewSession("", nil))
		plans, err := client.FetchPlans(context.Background())
		require.Error(t, err)
		assert.NotNil(t, plans)
		assert.Empty(t, plans)
	})

	t.Run("empty catalog decodes to empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := checkout.NewClient(server.URL, checkout.NewSession("", nil))
		plans, err := client.FetchPlans(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, plans)
		assert.Empty(t, plans)
	})
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "succeeded", checkout.OutcomeSucceeded.String())
	assert.Equal(t, "payment_failed", checkout.OutcomePaymentFailed.String())
	assert.Equal(t, "session_expired", checkout.OutcomeSessionExpired.String())
	assert.Equal(t, "verification_error", checkout.OutcomeVerificationError.String())
	assert.Equal(t, "timeout", checkout.OutcomeTimeout.String())

	assert.True(t, checkout.OutcomeVerificationError.Ambiguous())
	assert.True(t, checkout.OutcomeTimeout.Ambiguous())
	assert.False(t, checkout.OutcomePaymentFailed.Ambiguous())
	assert.False(t, checkout.OutcomeCancelled.Ambiguous())
}
