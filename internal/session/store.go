package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pmr-generator/internal/pmr"
)

// ErrNotFound means the session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session holds one loaded dataset for the lifetime of a user interaction.
// The raw table and resolution never change after load; normalized datasets
// are cached per period because every derived field is recomputed when the
// active period changes.
type Session struct {
	ID         string
	Table      pmr.Table
	Resolution pmr.Resolution
	CreatedAt  time.Time

	mu       sync.Mutex
	datasets map[pmr.Period]*pmr.Dataset
	lastUsed time.Time
}

// DatasetFor returns the normalized dataset for a period, building and
// caching it on first use. The period must come from the session's
// resolution; anything else is rejected before normalization runs.
func (s *Session) DatasetFor(p pmr.Period) (*pmr.Dataset, error) {
	if !s.Resolution.Contains(p) {
		return nil, pmr.SchemaMismatchf("period %s not present in dataset", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	if ds, ok := s.datasets[p]; ok {
		return ds, nil
	}
	ds, err := pmr.Normalize(s.Table, p)
	if err != nil {
		return nil, err
	}
	s.datasets[p] = ds
	return ds, nil
}

// Store keeps sessions in process memory. Nothing is persisted: the dataset
// is transient and re-loaded per session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
}

// Create registers a new session for a loaded table.
func (st *Store) Create(t pmr.Table, res pmr.Resolution) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		Table:      t,
		Resolution: res,
		CreatedAt:  time.Now(),
		datasets:   make(map[pmr.Period]*pmr.Dataset),
		lastUsed:   time.Now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by ID and bumps its last-used time.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
	return s, nil
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// StartSweeper runs the expiry loop until Stop is called.
func (st *Store) StartSweeper() {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				st.sweep()
			case <-st.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper.
func (st *Store) Stop() {
	close(st.stop)
}

func (st *Store) sweep() {
	cutoff := time.Now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.mu.Lock()
		expired := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if expired {
			delete(st.sessions, id)
			log.Printf("[Session] expired session %s", id)
		}
	}
}
