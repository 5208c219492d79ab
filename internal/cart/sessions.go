package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession is returned for a cart operation outside an active session.
var ErrNoSession = errors.New("cart session not found")

type session struct {
	cart     *State
	lastSeen time.Time
}

// sweepDivisor sets how often idle sessions are purged: at most once per
// ttl/sweepDivisor.
const sweepDivisor = 10

// Sessions maps opaque session ids to carts. Idle sessions older than ttl are
// rejected on lookup and purged in periodic sweeps; a zero ttl keeps sessions
// until End.
type Sessions struct {
	mu        sync.Mutex
	sessions  map[string]*session
	ttl       time.Duration
	nextSweep time.Time
	now       func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start opens a new session with an empty cart.
func (s *Sessions) Start() (string, *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	id := uuid.NewString()
	c := New()
	s.sessions[id] = &session{cart: c, lastSeen: s.now()}
	return id, c
}

// Get returns the cart for id and refreshes its idle timer.
func (s *Sessions) Get(id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrNoSession
	}
	sess.lastSeen = now
	return sess.cart, nil
}

// End discards the session and its cart.
func (s *Sessions) End(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && sess.lastSeen.Before(now.Add(-s.ttl))
}

// sweepLocked purges idle sessions, skipping the scan until nextSweep.
func (s *Sessions) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(s.ttl / sweepDivisor)
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}
