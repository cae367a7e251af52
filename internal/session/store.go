package session

import "sync"

// Store holds session state keyed by session id.
//
// Store is safe for concurrent use. Operations on a single session are
// serialized through that session's own mutex, so two requests racing on the
// same id cannot interleave or lose history entries. Operations on distinct
// sessions do not contend beyond the map lookup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*state
}

// state is the mutable record behind one session id.
type state struct {
	mu      sync.Mutex
	history []Exchange
	reserve []string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*state)}
}

// lookup returns the state for id, creating it on first use.
func (s *Store) lookup(id string) *state {
	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.sessions[id]; ok {
		return st
	}
	st = &state{}
	s.sessions[id] = st
	return st
}

// Get returns a copy of the session's current state. An unseen id yields an
// empty session without creating one.
func (s *Store) Get(id string) Session {
	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	out := Session{
		History: make([]Exchange, len(st.history)),
		Reserve: make([]string, len(st.reserve)),
	}
	copy(out.History, st.history)
	copy(out.Reserve, st.reserve)
	return out
}

// AppendExchange appends one exchange to the session's history, evicting
// from the front once the window exceeds MaxHistory.
func (s *Store) AppendExchange(id string, ex Exchange) {
	st := s.lookup(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.history = append(st.history, ex)
	if n := len(st.history); n > MaxHistory {
		st.history = append(st.history[:0], st.history[n-MaxHistory:]...)
	}
}

// SetReserve replaces the session's reserve wholesale. Each turn's reserve
// supersedes the previous turn's; nothing is appended.
func (s *Store) SetReserve(id string, reserve []string) {
	st := s.lookup(id)
	cp := make([]string, len(reserve))
	copy(cp, reserve)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.reserve = cp
}

// Delete removes the session entirely. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
