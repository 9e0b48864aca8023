package session

import "sync"

// Store is the sole authority for session lifecycles. Sessions live for the
// process lifetime; there is no expiry. For multi-node deployments only the
// report ledger is shared (pkg/report), never session state.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// onCreate, when set, is invoked once per newly created session
	// outside the store lock. Used for gauge instrumentation.
	onCreate func(*Session)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithOnCreate registers a hook called for every newly created session.
func WithOnCreate(fn func(*Session)) StoreOption {
	return func(s *Store) { s.onCreate = fn }
}

// NewStore creates an empty in-memory session store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{sessions: make(map[string]*Session)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the session registered under id, creating and
// registering a zero-initialized one on first reference. Creation is total:
// there is no error path. Two calls with the same id always observe the
// same underlying instance.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	sess, ok = s.sessions[id]
	if !ok {
		sess = newSession(id)
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	if !ok && s.onCreate != nil {
		s.onCreate(sess)
	}
	return sess
}

// Get returns the session for id, or nil if it was never seen.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Stats summarizes the store for health endpoints and logging.
type Stats struct {
	SessionCount  int `json:"session_count"`
	TotalMessages int `json:"total_messages"`
	Reported      int `json:"reported"`
}

// Stats returns current store statistics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{SessionCount: len(s.sessions)}
	for _, sess := range s.sessions {
		sess.Lock()
		st.TotalMessages += len(sess.Messages)
		if sess.CallbackSent {
			st.Reported++
		}
		sess.Unlock()
	}
	return st
}
