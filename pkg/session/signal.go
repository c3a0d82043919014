// Package session carries the process-wide "session invalidated" broadcast.
// The request pipeline publishes, auth state and route guards subscribe; the
// pipeline itself never navigates or touches auth state directly.
package session

import "sync"

type Reason string

const (
	ReasonExpired Reason = "expired"
	ReasonBlocked Reason = "blocked"
)

type Signal struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Reason)
}

func NewSignal() *Signal {
	return &Signal{subs: make(map[int]func(Reason))}
}

// Subscribe registers fn and returns its unsubscribe function. Unsubscribing
// twice is a no-op.
func (s *Signal) Subscribe(fn func(Reason)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Publish delivers reason to every current subscriber. Publishing with zero
// subscribers is fine. Subscribers run outside the lock so they may
// re-subscribe or unsubscribe from within the callback.
func (s *Signal) Publish(reason Reason) {
	s.mu.Lock()
	fns := make([]func(Reason), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(reason)
	}
}
