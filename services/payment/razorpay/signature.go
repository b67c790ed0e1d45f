package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayment computes the checkout signature Razorpay attaches to a
// successful widget callback: HMAC-SHA256 of "order_id|payment_id"
// keyed with the key secret, hex encoded.
func SignPayment(orderID, paymentID, keySecret string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a claimed payment in constant time. This is
// the server-side proof that the callback identifiers are genuine.
func VerifySignature(orderID, paymentID, signature, keySecret string) bool {
	expected := SignPayment(orderID, paymentID, keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
