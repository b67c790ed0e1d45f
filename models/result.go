package models

// PaymentResult is the terminal outcome of a verification or polling
// round, consumed exactly once by the activation step.
type PaymentResult struct {
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
	AccessToken      string `json:"access_token,omitempty"`
	HasDigitalAccess bool   `json:"has_digital_access,omitempty"`
	PackageID        string `json:"package_id,omitempty"`
}

// Succeeded reports whether the payment was verified as captured.
func (r *PaymentResult) Succeeded() bool {
	return r != nil && r.Status == "success"
}

// SessionStatus is the response of GET /api/payments/status/{session_id}
// for the redirect protocol.
type SessionStatus struct {
	PaymentStatus string            `json:"payment_status"` // pending | paid | failed
	Status        string            `json:"status"`         // open | expired
	Amount        int               `json:"amount"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Result        *PaymentResult    `json:"result,omitempty"`
}
