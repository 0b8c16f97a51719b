package state

import (
	"sync"

	"bookfinder/internal/app/book"
)

// Listener is notified after every dispatch with the states before and after a.
// Listeners run synchronously inside Dispatch and must not dispatch themselves.
type Listener func(prev, next State, a Action)

type subscription struct {
	id uint64
	fn Listener
}

// Store owns the current State and serializes every change to it.
type Store struct {
	// dispatchMu orders dispatches and their notifications.
	dispatchMu sync.Mutex

	mu          sync.RWMutex
	state       State
	subscribers []subscription
	nextID      uint64
}

// NewStore returns a Store holding Initial().
func NewStore() *Store {
	return &Store{state: Initial()}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a and notifies subscribers in subscription order.
func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	return s.dispatchLocked(a)
}

func (s *Store) dispatchLocked(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	subscribers := append([]subscription(nil), s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub.fn(prev, next, a)
	}

	return next
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// ToggleFavorite adds b to the favorites, or removes it when a book with the same key is present.
// It reports whether b is a favorite afterwards.
func (s *Store) ToggleFavorite(b book.Book) bool {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if s.State().IsFavorite(b.Key) {
		s.dispatchLocked(RemoveFromFavorites(b))
		return false
	}

	s.dispatchLocked(AddToFavorites(b))
	return true
}
