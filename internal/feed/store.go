package feed

import "sync"

// Store is a read-mostly observable value: current value plus change
// notification. Auth identity, stable selection, and the shared activities
// collection are all passed into the feed as Store references rather than
// reached through package globals, so each screen-scoped consumer owns its
// subscriptions and tears them down with the screen.
type Store[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[int]chan T
	next  int
}

// NewStore constructs a Store seeded with the initial value.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies every subscriber. Notification is
// latest-wins: a slow subscriber sees the newest value, not every
// intermediate one, and Set never blocks on a subscriber.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	for _, ch := range s.subs {
		select {
		case ch <- value:
		default:
			// Drop the stale buffered value, then publish the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- value:
			default:
			}
		}
	}
}

// Watch registers a subscription. The returned cancel func must be called
// when the consumer goes away; afterwards the channel is closed.
func (s *Store[T]) Watch() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan T, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
