// Package uistate holds small pieces of client UI state on the server,
// one container per browser session.
package uistate

import "sync"

// State is a snapshot of a Store.
type State struct {
	IsSearchModalOpen bool `json:"isSearchModalOpen"`
}

// Store holds the UI toggles for one session. The zero value is closed
// and ready to use.
type Store struct {
	// delivery orders transitions together with their notifications, so
	// subscribers see states in the order they were applied.
	delivery sync.Mutex

	mu   sync.Mutex
	open bool
	subs map[int]func(State)
	next int
}

// NewStore returns a store with the search modal closed.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) IsSearchModalOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// State returns the current snapshot.
func (s *Store) State() State {
	return State{IsSearchModalOpen: s.IsSearchModalOpen()}
}

func (s *Store) OpenSearchModal() State  { return s.set(func(bool) bool { return true }) }
func (s *Store) CloseSearchModal() State { return s.set(func(bool) bool { return false }) }

// ToggleSearchModal inverts the flag.
func (s *Store) ToggleSearchModal() State { return s.set(func(v bool) bool { return !v }) }

// set applies f and notifies subscribers with the resulting state. Every
// transition notifies, including ones that leave the value unchanged.
// Subscribers must not trigger transitions on the same store.
func (s *Store) set(f func(bool) bool) State {
	s.delivery.Lock()
	defer s.delivery.Unlock()

	s.mu.Lock()
	s.open = f(s.open)
	st := State{IsSearchModalOpen: s.open}
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return st
}

// Subscribe registers fn to receive the state after each transition.
// The returned func removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(State))
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
