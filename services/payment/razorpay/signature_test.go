package razorpay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"urbane-subscription-api/services/payment/razorpay"
)

func TestSignatureRoundTrip(t *testing.T) {
	t.Parallel()

	const secret = "test_key_secret"

	sig := razorpay.SignPayment("order_IluGWxBm9U8zJ8", "pay_IluGWxBm9U8zJ8", secret)
	assert.Len(t, sig, 64, "hex-encoded sha256 digest")
	assert.True(t, razorpay.VerifySignature("order_IluGWxBm9U8zJ8", "pay_IluGWxBm9U8zJ8", sig, secret))
}

func TestVerifySignatureRejects(t *testing.T) {
	t.Parallel()

	const secret = "test_key_secret"
	sig := razorpay.SignPayment("order_a", "pay_a", secret)

	t.Run("wrong order id", func(t *testing.T) {
		assert.False(t, razorpay.VerifySignature("order_b", "pay_a", sig, secret))
	})
	t.Run("wrong payment id", func(t *testing.T) {
		assert.False(t, razorpay.VerifySignature("order_a", "pay_b", sig, secret))
	})
	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, razorpay.VerifySignature("order_a", "pay_a", sig, "other_secret"))
	})
	t.Run("forged signature", func(t *testing.T) {
		assert.False(t, razorpay.VerifySignature("order_a", "pay_a", "deadbeef", secret))
	})
	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, razorpay.VerifySignature("order_a", "pay_a", "", secret))
	})
}

func TestSignPaymentDeterministic(t *testing.T) {
	t.Parallel()

	a := razorpay.SignPayment("order_x", "pay_y", "s")
	b := razorpay.SignPayment("order_x", "pay_y", "s")
	assert.Equal(t, a, b)
}
