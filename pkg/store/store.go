package store

import (
	"maps"
	"reflect"
	"sync"
)

// Store holds the authoritative snapshot and serializes dispatches
// against it. Each successful dispatch commits a complete new snapshot
// atomically; a failed dispatch leaves the previous snapshot current.
// Snapshots are immutable once committed, so readers never observe a
// half-applied transition.
type Store struct {
	mu      sync.Mutex
	state   State
	reducer reducer
	subs    map[int]func(State)
	nextSub int

	// notifyMu serializes listener delivery. It is acquired before mu is
	// released on commit, so listeners observe snapshots in commit order
	// and are never invoked concurrently with themselves.
	notifyMu sync.Mutex
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithSettings overlays persisted settings onto the default snapshot
// verbatim. This is the only path that bypasses reducer validation:
// malformed persisted data is tolerated rather than failing startup.
func WithSettings(persisted map[string]any) Option {
	return func(s *Store) {
		maps.Copy(s.state.Settings, persisted)
	}
}

// New constructs a store over the default snapshot. The policy supplies
// the drive-constraint predicates consulted during drive and image
// transitions.
func New(policy Policy, opts ...Option) *Store {
	s := &Store{
		state:   DefaultState(),
		reducer: reducer{policy: policy},
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies one action. It returns a *ValidationError when the
// payload violates its action contract, in which case the state is
// unchanged. Unknown action kinds are a no-op. Subscribers are notified
// after commit, and only when the snapshot actually changed. Delivery
// is serialized in commit order; listeners must not dispatch.
func (s *Store) Dispatch(a Action) error {
	if a == nil {
		return nil
	}

	s.mu.Lock()
	prev := s.state
	next, err := s.reducer.reduce(prev, a)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next

	var listeners []func(State)
	if !reflect.DeepEqual(prev, next) {
		listeners = make([]func(State), 0, len(s.subs))
		for _, fn := range s.subs {
			listeners = append(listeners, fn)
		}
	}
	if listeners == nil {
		s.mu.Unlock()
		return nil
	}

	// The notify lock is taken before the state lock is released so a
	// concurrent dispatch cannot overtake this commit's notifications.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range listeners {
		fn(next.clone())
	}
	return nil
}

// State returns the current snapshot. The copy is independent of the
// store; holding it across later dispatches is safe.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers a listener fired after every dispatch that changes
// state. The returned function removes the listener.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
