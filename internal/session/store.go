// Package session keeps the active payment plan of each browser session in
// memory. It is the only place a schedule outlives a request.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"go.uber.org/zap"
)

type entry struct {
	schedule *schedule.Schedule
	touched  time.Time
}

// Store maps session ids to their current schedule. Writes replace the whole
// schedule, so the last write wins.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	logger  *zap.Logger
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  logger,
	}
}

// Create opens a new session with no schedule and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry{touched: s.now()}
	return id
}

// Valid reports whether id is a well formed session id.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns a copy of the session's schedule. The second result is false
// when the session is unknown or holds no schedule yet.
func (s *Store) Get(id string) (*schedule.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.schedule == nil {
		return nil, false
	}
	e.touched = s.now()
	return e.schedule.Clone(), true
}

// Put makes sched the session's schedule, discarding the previous one. An
// unknown id opens the session.
func (s *Store) Put(id string, sched *schedule.Schedule) {
	stored := sched.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry{schedule: stored, touched: s.now()}
}

// Delete forgets a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions untouched for longer than maxIdle and returns how
// many were dropped.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	dropped := 0
	for id, e := range s.entries {
		if e.touched.Before(cutoff) {
			delete(s.entries, id)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Debug("idle sessions dropped",
			zap.String("op", "session.Sweep"),
			zap.Int("dropped", dropped),
			zap.Int("remaining", len(s.entries)),
		)
	}
	return dropped
}
