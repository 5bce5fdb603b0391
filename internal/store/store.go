package store

import (
	"sync"

	"quantsim/internal/models"
)

// SessionStore is the authoritative in-memory registry of live
// simulations, keyed by session id. Each entry carries its own mutex so
// the fetch-mutate-save sequence for one session is atomic without any
// cross-session locking. Sessions live until explicitly removed; there
// is no TTL or eviction.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu    sync.Mutex
	state *models.SimulationState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]*entry),
	}
}

func (s *SessionStore) getEntry(sessionID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{}
		s.entries[sessionID] = e
	}
	return e
}

// Update runs fn against the session's state with the session lock
// held. When the session has no state yet and create is non-nil, create
// builds it first (still under the lock). fn receives the live state
// and may mutate it freely; the mutation and the save are one atomic
// step from any other caller's point of view.
func (s *SessionStore) Update(sessionID string, create func() *models.SimulationState, fn func(state *models.SimulationState) error) error {
	e := s.getEntry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		if create == nil {
			return ErrNoSession
		}
		e.state = create()
	}
	return fn(e.state)
}

// Swap locks the session and replaces its state wholesale with the
// result of fn, which receives the previous state (nil when absent).
func (s *SessionStore) Swap(sessionID string, fn func(old *models.SimulationState) (*models.SimulationState, error)) (*models.SimulationState, error) {
	e := s.getEntry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.state)
	if err != nil {
		return nil, err
	}
	e.state = next
	return next, nil
}

// Get returns the session's state without creating one.
func (s *SessionStore) Get(sessionID string) (*models.SimulationState, bool) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, false
	}
	return e.state, true
}

// Remove runs fn against the session's state and then deletes it, all
// under the session lock: no other mutation can slip in between the
// final mutation and the removal. fn returning an error leaves the
// state in place. Removal is permanent; there is no archival of live
// state. The entry itself is retained so concurrent creates for the
// same id keep serializing on its lock.
func (s *SessionStore) Remove(sessionID string, fn func(state *models.SimulationState) error) error {
	e := s.getEntry(sessionID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return ErrNoSession
	}
	if err := fn(e.state); err != nil {
		return err
	}
	e.state = nil
	return nil
}

// Len reports the number of sessions currently holding state.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		e.mu.Lock()
		if e.state != nil {
			n++
		}
		e.mu.Unlock()
	}
	return n
}
