package checkout

// Outcome is the terminal state of a checkout attempt. The ambiguous
// members matter: VerificationError and Timeout both mean the client
// does not know whether money moved, and the UI must say so instead of
// reporting a plain failure.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota

	// OutcomeValidationError blocks submission; no network call was made.
	OutcomeValidationError

	// OutcomeAuthRequired means the backend wants a logged-in session
	// before it will create an order.
	OutcomeAuthRequired

	// OutcomeOrderError is a failed order creation; safe to retry with
	// a fresh submission.
	OutcomeOrderError

	// OutcomeCancelled is a user-dismissed widget; nothing was charged.
	OutcomeCancelled

	// OutcomePaymentFailed is a gateway decline; nothing was charged.
	OutcomePaymentFailed

	// OutcomeSessionExpired means the order lapsed before completion.
	OutcomeSessionExpired

	// OutcomeVerificationError means the payment may have been captured
	// but could not be confirmed.
	OutcomeVerificationError

	// OutcomeTimeout means the poll budget ran out while the gateway
	// still reported pending.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeValidationError:
		return "validation_error"
	case OutcomeAuthRequired:
		return "auth_required"
	case OutcomeOrderError:
		return "order_error"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomePaymentFailed:
		return "payment_failed"
	case OutcomeSessionExpired:
		return "session_expired"
	case OutcomeVerificationError:
		return "verification_error"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Ambiguous reports whether the true payment state is unknown to the
// client. These outcomes must steer the user to support or a recheck,
// never to a plain "not charged" message.
func (o Outcome) Ambiguous() bool {
	return o == OutcomeVerificationError || o == OutcomeTimeout
}
