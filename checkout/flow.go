package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"urbane-subscription-api/models"
)

// ValidationError reports per-field violations from a pre-payment
// details check.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("customer details failed validation (%d fields)", len(e.Fields))
}

// PurchaseResult is the terminal state of one purchase attempt,
// whichever protocol carried it.
type PurchaseResult struct {
	Outcome Outcome
	Message string

	// FieldErrors is populated only for OutcomeValidationError.
	FieldErrors map[string]string

	// Activation is populated only for OutcomeSucceeded.
	Activation *Activation
}

// RedirectStart is the handoff point of the hosted-page protocol: the
// caller navigates to CheckoutURL and resumes with CompleteRedirect
// after the gateway sends the user back.
type RedirectStart struct {
	CheckoutURL string
	SessionID   string
}

// Flow wires the purchase pipeline together: catalog, details
// validation, order creation, gateway invocation, verification and
// activation. One Flow serves the whole checkout surface; per-attempt
// state lives in the orders and widget sessions it creates.
type Flow struct {
	client    *Client
	widget    *WidgetInvoker
	verifier  *Verifier
	poller    *StatusPoller
	activator *Activator
}

func NewFlow(client *Client, script GatewayScript) *Flow {
	return &Flow{
		client:    client,
		widget:    NewWidgetInvoker(script),
		verifier:  NewVerifier(client),
		poller:    NewStatusPoller(client),
		activator: NewActivator(client.Session()),
	}
}

// Poller exposes the status poller so callers can rerun a polling
// round after a timeout.
func (f *Flow) Poller() *StatusPoller {
	return f.poller
}

// Purchase drives the embedded-widget protocol end to end. present is
// called with the open widget session so the UI can surface it; the
// flow then suspends on the widget result. Every attempt creates a
// fresh order, so retrying after any outcome is just calling Purchase
// again.
func (f *Flow) Purchase(ctx context.Context, plan models.SubscriptionPlan, details models.CustomerDetails, present func(*WidgetSession)) (*PurchaseResult, error) {
	validation := details.Validate(plan.RequiresAddress)
	if !validation.Valid {
		return &PurchaseResult{
			Outcome:     OutcomeValidationError,
			Message:     "Please correct the highlighted fields.",
			FieldErrors: validation.FieldErrors,
		}, nil
	}
	normalized := details.Normalized()

	order, err := f.client.CreateOrder(ctx, plan.ID, normalized.Email)
	if err != nil {
		if errors.Is(err, ErrAuthRequired) {
			return &PurchaseResult{
				Outcome: OutcomeAuthRequired,
				Message: "Please sign in to continue with your purchase.",
			}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Order creation failed for plan %s: %v", plan.ID, err)
		return &PurchaseResult{
			Outcome: OutcomeOrderError,
			Message: "Could not start the payment. Please try again.",
		}, nil
	}

	ws, err := f.widget.Open(ctx, order)
	if err != nil {
		return &PurchaseResult{
			Outcome: OutcomeOrderError,
			Message: "The payment service is unavailable. Please try again shortly.",
		}, nil
	}
	if present != nil {
		present(ws)
	}

	cb, err := ws.Await(ctx)
	if err != nil {
		if errors.Is(err, ErrWidgetCancelled) {
			return &PurchaseResult{
				Outcome: OutcomeCancelled,
				Message: "Payment cancelled. You have not been charged.",
			}, nil
		}
		return nil, err
	}

	result, err := f.verifier.Verify(ctx, *cb, plan.ID, normalized.Email)
	if err != nil {
		if errors.Is(err, ErrAuthRequired) {
			return &PurchaseResult{
				Outcome: OutcomeAuthRequired,
				Message: "Your session expired. Please sign in again.",
			}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Funds may already be captured, so this is never reported as
		// a payment failure and the call is never retried.
		log.Printf("Verification failed for payment %s: %v", cb.PaymentID, err)
		return &PurchaseResult{
			Outcome: OutcomeVerificationError,
			Message: "We could not confirm your payment. If you were charged, your subscription will be activated shortly. Please do not pay again.",
		}, nil
	}

	if !result.Succeeded() {
		message := result.Message
		if message == "" {
			message = "Payment was not completed. You can try again."
		}
		return &PurchaseResult{Outcome: OutcomePaymentFailed, Message: message}, nil
	}

	activation, err := f.activator.Activate(result)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{
		Outcome:    OutcomeSucceeded,
		Message:    activation.Message,
		Activation: activation,
	}, nil
}

// BeginRedirect starts the hosted-page protocol: account creation and
// checkout session in one backend call. Validation failures surface as
// *ValidationError so the form can highlight fields before any
// navigation happens.
func (f *Flow) BeginRedirect(ctx context.Context, plan models.SubscriptionPlan, details models.CustomerDetails) (*RedirectStart, error) {
	validation := details.Validate(plan.RequiresAddress)
	if !validation.Valid {
		return nil, &ValidationError{Fields: validation.FieldErrors}
	}

	checkoutURL, sessionID, err := f.client.CreateSmartSubscription(ctx, plan.ID, details.Normalized())
	if err != nil {
		return nil, err
	}
	return &RedirectStart{CheckoutURL: checkoutURL, SessionID: sessionID}, nil
}

// CompleteRedirect resumes the flow after the gateway redirects the
// user back. It runs one bounded polling round; a timeout leaves the
// user on the pending screen and another round can be started later.
func (f *Flow) CompleteRedirect(ctx context.Context, sessionID string) (*PurchaseResult, error) {
	poll, err := f.poller.Run(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch poll.Outcome {
	case OutcomeSucceeded:
		if poll.Status == nil || poll.Status.Result == nil {
			// Paid, but the status payload carried no access grant.
			// The subscription is active server-side.
			return &PurchaseResult{
				Outcome: OutcomeSucceeded,
				Message: "Subscription activated. Please sign in to continue.",
				Activation: &Activation{
					ReloginRequired: true,
					Message:         "Subscription activated. Please sign in to continue.",
				},
			}, nil
		}
		activation, err := f.activator.Activate(poll.Status.Result)
		if err != nil {
			return nil, err
		}
		return &PurchaseResult{
			Outcome:    OutcomeSucceeded,
			Message:    activation.Message,
			Activation: activation,
		}, nil
	case OutcomePaymentFailed:
		return &PurchaseResult{
			Outcome: OutcomePaymentFailed,
			Message: "Payment was not completed. You can try again.",
		}, nil
	case OutcomeSessionExpired:
		return &PurchaseResult{
			Outcome: OutcomeSessionExpired,
			Message: "The checkout session expired before payment. Please start again.",
		}, nil
	default:
		return &PurchaseResult{
			Outcome: OutcomeTimeout,
			Message: "Your payment is still being confirmed. Check back in a moment.",
		}, nil
	}
}
