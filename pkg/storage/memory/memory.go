// Package memory provides an in-memory implementation of server.Store for
// testing and lightweight deployments. All data is lost when the process
// restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fitpulse-dev/fitpulse/pkg/server"
	"github.com/fitpulse-dev/fitpulse/pkg/storage"
)

// Store is an in-memory server.Store. A single mutex serializes writes,
// which is what makes the duplicate-username race guarantee hold: two
// concurrent CreateUser calls for the same username are checked and
// inserted one at a time.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]*storage.User
	byUsername map[string]string // username -> user ID
	byEmail    map[string]string // email -> user ID
	records    []*storage.FitnessRecord
	reports    []*storage.FitnessReport
}

// Ensure Store implements server.Store at compile time.
var _ server.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byID:       make(map[string]*storage.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// CreateUser persists a new user. Returns storage.ErrDuplicate if the
// username or email is already taken.
func (s *Store) CreateUser(_ context.Context, u *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[u.Username]; exists {
		return storage.ErrDuplicate
	}
	if _, exists := s.byEmail[u.Email]; exists {
		return storage.ErrDuplicate
	}

	cp := *u
	s.byID[cp.ID] = &cp
	s.byUsername[cp.Username] = cp.ID
	s.byEmail[cp.Email] = cp.ID
	return nil
}

// GetUserByUsername returns the user with the given username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// SetActive flips a user's active flag. Used by tests and administrative
// tooling; there is no HTTP endpoint for it.
func (s *Store) SetActive(_ context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.IsActive = active
	return nil
}

// CreateRecord persists a fitness record.
func (s *Store) CreateRecord(_ context.Context, r *storage.FitnessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.records = append(s.records, &cp)
	return nil
}

// ListRecords returns the user's most recent records, newest first.
func (s *Store) ListRecords(_ context.Context, userID string, limit int) ([]*storage.FitnessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.FitnessRecord
	for _, r := range s.records {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateReport persists a generated report.
func (s *Store) CreateReport(_ context.Context, rep *storage.FitnessReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rep
	s.reports = append(s.reports, &cp)
	return nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
