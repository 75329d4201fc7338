package live

import (
	"context"
	"sync"
)

// Store keeps the live sessions keyed by connection id.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	maxHistory int
}

func NewStore(maxHistory int) *Store {
	return &Store{
		sessions:   make(map[string]*Session),
		maxHistory: maxHistory,
	}
}

// Open creates a fresh session for id. An existing session with the same id
// is closed and replaced.
func (st *Store) Open(parent context.Context, id string, emit Emitter) *Session {
	s := newSession(parent, id, st.maxHistory, emit)

	st.mu.Lock()
	old := st.sessions[id]
	st.sessions[id] = s
	st.mu.Unlock()

	if old != nil {
		old.close()
	}
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete closes and removes the session. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if s != nil {
		s.close()
	}
}

func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// CloseAll closes every session and empties the store.
func (st *Store) CloseAll() int {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	return len(sessions)
}
