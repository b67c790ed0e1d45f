package checkout

import (
	"sync"

	"urbane-subscription-api/models"
)

// Session is the explicit auth context threaded through the flow in
// place of a global token singleton. The only writer of a new token is
// the Activator; a 401 from any API call clears it.
type Session struct {
	mu           sync.RWMutex
	token        string
	user         *models.AuthUser
	onInvalidate func()
}

func NewSession(token string, user *models.AuthUser) *Session {
	return &Session{token: token, user: user}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the cached profile, or nil when anonymous.
func (s *Session) User() *models.AuthUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// OnInvalidate registers the hook run when the session is force
// cleared, typically a redirect to login.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = fn
}

// invalidate clears the stored token after a 401. The hook runs
// outside the lock so it may call back into the session.
func (s *Session) invalidate() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	fn := s.onInvalidate
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// activate swaps token and profile in one critical section so no
// reader can observe the new token with a stale profile. Unexported:
// only the Activator may grant entitlements.
func (s *Session) activate(token string, user *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

// refreshUser updates the cached profile without touching the token.
func (s *Session) refreshUser(user *models.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}
