// Package signal provides explicit change notification for view state.
//
// Mutators update their state first and then call Notify; readers that want
// to react to changes Subscribe a listener instead of being tracked
// implicitly. Listeners run synchronously on the notifying goroutine, after
// the mutation and outside any lock held by the signal.
package signal

import "sync"

// Signal fans a change notification out to registered listeners
type Signal struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]func()
}

// New creates an empty signal
func New() *Signal {
	return &Signal{listeners: make(map[uint64]func())}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (s *Signal) Subscribe(fn func()) func() {
	s.mu.Lock()
	key := s.next
	s.next++
	s.listeners[key] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
	}
}

// Notify calls every listener registered at the time of the call
func (s *Signal) Notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered listeners
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
