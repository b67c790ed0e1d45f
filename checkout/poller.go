package checkout

import (
	"context"
	"log"
	"time"

	"urbane-subscription-api/models"
)

const (
	// DefaultPollInterval is the fixed delay between status polls
	// after a redirect-protocol return.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxAttempts bounds one polling round. Exhausting it is a
	// timeout, not a failure: the payment may still be processing.
	DefaultMaxAttempts = 5
)

// Clock abstracts the poll delay so the attempt bound and interval are
// testable without real timers.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// StatusSource is the polled endpoint, satisfied by *Client.
type StatusSource interface {
	SessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error)
}

// SessionStatus polls GET /api/payments/status/{session_id}.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error) {
	var status models.SessionStatus
	if err := c.get(ctx, "/api/payments/status/"+sessionID, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// pollDecision is the pure transition over one poll response.
type pollDecision int

const (
	decideContinue pollDecision = iota
	decidePaid
	decideFailed
	decideExpired
)

func decide(status *models.SessionStatus) pollDecision {
	switch {
	case status.Status == "expired":
		return decideExpired
	case status.PaymentStatus == "paid":
		return decidePaid
	case status.PaymentStatus == "failed":
		return decideFailed
	default:
		return decideContinue
	}
}

// PollResult is one polling round's terminal state.
type PollResult struct {
	Outcome Outcome
	// Status is the last response seen, nil if every poll errored.
	Status *models.SessionStatus
	// Attempts is how many polls actually fired.
	Attempts int
}

// StatusPoller is the bounded self-rescheduling poll loop. Each call
// to Run is one round with a fresh attempt budget, so the "check
// again" recovery path is simply running it again.
type StatusPoller struct {
	source      StatusSource
	interval    time.Duration
	maxAttempts int
	clock       Clock
}

func NewStatusPoller(source StatusSource) *StatusPoller {
	return &StatusPoller{
		source:      source,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
		clock:       systemClock{},
	}
}

// WithClock swaps the timer source, used by tests.
func (p *StatusPoller) WithClock(clock Clock) *StatusPoller {
	p.clock = clock
	return p
}

// Run polls until a terminal decision or the attempt budget runs out.
// Terminal statuses stop the loop immediately; no trailing polls fire
// after "paid". Cancellation via ctx covers the user navigating away
// mid-poll.
func (p *StatusPoller) Run(ctx context.Context, sessionID string) (*PollResult, error) {
	result := &PollResult{}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.source.SessionStatus(ctx, sessionID)
		result.Attempts = attempt

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Transient poll failures spend an attempt but do not
			// conclude anything; the budget converts persistent
			// failure into a timeout.
			log.Printf("Poll attempt %d for session %s failed: %v", attempt, sessionID, err)
		} else {
			result.Status = status

			switch decide(status) {
			case decidePaid:
				result.Outcome = OutcomeSucceeded
				return result, nil
			case decideFailed:
				result.Outcome = OutcomePaymentFailed
				return result, nil
			case decideExpired:
				result.Outcome = OutcomeSessionExpired
				return result, nil
			}
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.clock.After(p.interval):
		}
	}

	result.Outcome = OutcomeTimeout
	return result, nil
}
