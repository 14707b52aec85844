package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifyCallsListeners(t *testing.T) {
	s := New()
	var a, b int
	s.Subscribe(func() { a++ })
	s.Subscribe(func() { b++ })

	s.Notify()
	s.Notify()

	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	calls := 0
	cancel := s.Subscribe(func() { calls++ })

	s.Notify()
	cancel()
	cancel()
	s.Notify()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Len())
}

func TestListenerMayUnsubscribeDuringNotify(t *testing.T) {
	s := New()
	calls := 0
	var cancel func()
	cancel = s.Subscribe(func() {
		calls++
		cancel()
	})

	s.Notify()
	s.Notify()

	assert.Equal(t, 1, calls)
}
