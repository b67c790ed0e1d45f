package checkout

import (
	"errors"

	"urbane-subscription-api/models"
)

var ErrNoAccessGrant = errors.New("payment result carries no access grant")

// Activation is what the caller routes on after a successful payment.
type Activation struct {
	// RouteToDigital is true when the purchased plan unlocks the
	// digital library, so the post-payment destination is the reader
	// rather than the account page.
	RouteToDigital bool

	// ReloginRequired is set when the payment settled but no access
	// token could be attached to the session. The subscription is
	// active server-side; the user just has to sign in again.
	ReloginRequired bool

	Message string
}

// Activator is the only component that turns a verified payment into
// session entitlements. Session.activate is unexported, so token
// writes cannot happen from anywhere else.
type Activator struct {
	session *Session
}

func NewActivator(session *Session) *Activator {
	return &Activator{session: session}
}

// Activate applies a successful PaymentResult to the session. A result
// without a token is not a payment failure: the charge went through
// and the backend already activated the subscription, so the user gets
// a success with a relogin prompt instead of an error screen.
func (a *Activator) Activate(result *models.PaymentResult) (*Activation, error) {
	if result == nil || !result.Succeeded() {
		return nil, ErrNoAccessGrant
	}

	if result.AccessToken == "" {
		return &Activation{
			RouteToDigital:  false,
			ReloginRequired: true,
			Message:         "Subscription activated. Please sign in again to continue.",
		}, nil
	}

	user := a.session.User()
	if user == nil {
		user = &models.AuthUser{}
	}
	user.HasDigitalAccess = result.HasDigitalAccess
	user.ActivePlanID = result.PackageID
	a.session.activate(result.AccessToken, user)

	return &Activation{
		RouteToDigital: result.HasDigitalAccess,
		Message:        result.Message,
	}, nil
}
