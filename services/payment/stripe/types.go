package stripe

// CheckoutSession is the subset of Stripe's checkout.session object the
// redirect flow needs: the hosted URL going out, payment status coming
// back.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url,omitempty"`
	Status        string            `json:"status"`         // open | complete | expired
	PaymentStatus string            `json:"payment_status"` // paid | unpaid | no_payment_required
	AmountTotal   int               `json:"amount_total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
