package checkout

import (
	"context"
	"errors"
	"sync"

	"urbane-subscription-api/models"
)

// ErrWidgetCancelled is returned by Await when the user dismisses the
// payment widget without completing payment.
var ErrWidgetCancelled = errors.New("payment widget dismissed")

// ErrNoCheckoutURL means a redirect-protocol order arrived without a
// hosted checkout URL.
var ErrNoCheckoutURL = errors.New("order has no checkout url")

// WidgetState tracks the embedded-widget protocol:
// Idle -> AwaitingInput -> Completed | Cancelled.
type WidgetState int

const (
	WidgetIdle WidgetState = iota
	WidgetAwaitingInput
	WidgetCompleted
	WidgetCancelled
)

// PaymentCallback carries the signed identifiers the gateway passes to
// its success handler.
type PaymentCallback struct {
	OrderID   string
	PaymentID string
	Signature string
}

// GatewayScript stands in for the third-party checkout script tag. It
// is the one process-wide shared resource in the flow and must be
// loaded at most once per process.
type GatewayScript interface {
	Load(ctx context.Context) error
}

// WidgetInvoker opens embedded payment widgets. The script load is
// memoized: concurrent Open calls share a single load and its result.
type WidgetInvoker struct {
	script   GatewayScript
	loadOnce sync.Once
	loadErr  error
}

func NewWidgetInvoker(script GatewayScript) *WidgetInvoker {
	return &WidgetInvoker{script: script}
}

// Open ensures the gateway script is loaded, then starts a widget
// session for the order. The session resolves exactly once, via
// Complete or Dismiss.
func (i *WidgetInvoker) Open(ctx context.Context, order *models.PaymentOrder) (*WidgetSession, error) {
	i.loadOnce.Do(func() {
		i.loadErr = i.script.Load(ctx)
	})
	if i.loadErr != nil {
		return nil, i.loadErr
	}

	return &WidgetSession{
		order: order,
		state: WidgetAwaitingInput,
		done:  make(chan struct{}),
	}, nil
}

// WidgetSession is one user interaction with the payment widget,
// wrapped as a result resolved exactly once so downstream verification
// stays linear instead of nested in gateway callbacks.
type WidgetSession struct {
	order *models.PaymentOrder

	mu       sync.Mutex
	state    WidgetState
	callback *PaymentCallback

	resolveOnce sync.Once
	done        chan struct{}
}

func (s *WidgetSession) Order() *models.PaymentOrder {
	return s.order
}

func (s *WidgetSession) State() WidgetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Complete is the gateway's success handler. Later calls, including a
// replayed identical callback, are ignored.
func (s *WidgetSession) Complete(cb PaymentCallback) {
	s.resolveOnce.Do(func() {
		s.mu.Lock()
		s.state = WidgetCompleted
		s.callback = &cb
		s.mu.Unlock()
		close(s.done)
	})
}

// Dismiss is the gateway's modal-dismissed handler. A dismissal after
// Complete is ignored.
func (s *WidgetSession) Dismiss() {
	s.resolveOnce.Do(func() {
		s.mu.Lock()
		s.state = WidgetCancelled
		s.mu.Unlock()
		close(s.done)
	})
}

// Await suspends until the widget resolves. There is no client-imposed
// timeout; the gateway's own UI enforces session lifetime. Context
// cancellation covers the user navigating away.
func (s *WidgetSession) Await(ctx context.Context) (*PaymentCallback, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == WidgetCancelled {
		return nil, ErrWidgetCancelled
	}
	return s.callback, nil
}

// RedirectInvoker drives the hosted-page protocol: the entire
// invocation is a full-page redirect to the gateway URL.
type RedirectInvoker struct{}

// CheckoutURL extracts the destination for the redirect.
func (RedirectInvoker) CheckoutURL(order *models.PaymentOrder) (string, error) {
	if order == nil || order.CheckoutURL == "" {
		return "", ErrNoCheckoutURL
	}
	return order.CheckoutURL, nil
}
