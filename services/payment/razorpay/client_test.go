package razorpay_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbane-subscription-api/services/payment/razorpay"
)

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("rzp_test_id:rzp_test_secret"))
		assert.Equal(t, auth, r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(49900), body["amount"], "amount must be sent in paise")
		assert.Equal(t, "INR", body["currency"])

		json.NewEncoder(w).Encode(razorpay.Order{
			ID:       "order_IluGWxBm9U8zJ8",
			Entity:   "order",
			Amount:   49900,
			Currency: "INR",
			Receipt:  body["receipt"].(string),
			Status:   "created",
		})
	}))
	defer server.Close()

	client := razorpay.NewClient("rzp_test_id", "rzp_test_secret")
	client.SetBaseURL(server.URL)

	order, err := client.CreateOrder(context.Background(), 49900, "INR", "rcpt_1", map[string]string{
		"package_id": "digital-annual",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_IluGWxBm9U8zJ8", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrderGatewayError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer server.Close()

	client := razorpay.NewClient("rzp_test_id", "rzp_test_secret")
	client.SetBaseURL(server.URL)

	_, err := client.CreateOrder(context.Background(), 1, "INR", "rcpt_2", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestFetchOrder(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/orders/order_abc", r.URL.Path)
		json.NewEncoder(w).Encode(razorpay.Order{ID: "order_abc", Status: "paid"})
	}))
	defer server.Close()

	client := razorpay.NewClient("rzp_test_id", "rzp_test_secret")
	client.SetBaseURL(server.URL)

	order, err := client.FetchOrder(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, "paid", order.Status)
}
