// Package memory provides an in-process store implementation. It is used
// for tests and for single-node deployments with store.driver "memory".
package memory

import (
	"context"
	"sync"

	"schedrouter/pkg/store"
)

// Store is a mutex-guarded, insertion-ordered store
type Store struct {
	mu sync.Mutex

	schedulers  []*store.Scheduler // creation order, mirrors registry iteration order
	assignments map[string]*store.Assignment

	nextSchedulerID  int64
	nextAssignmentID int64
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		assignments:      make(map[string]*store.Assignment),
		nextSchedulerID:  1,
		nextAssignmentID: 1,
	}
}

// GetSchedulerByURL gets a scheduler by its url
func (s *Store) GetSchedulerByURL(_ context.Context, url string) (*store.Scheduler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sched := range s.schedulers {
		if sched.URL == url {
			return copyScheduler(sched), nil
		}
	}
	return nil, store.ErrNotFound
}

// SaveScheduler creates a new scheduler record and returns its id
func (s *Store) SaveScheduler(_ context.Context, sched *store.Scheduler) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := copyScheduler(sched)
	rec.ID = s.nextSchedulerID
	s.nextSchedulerID++
	s.schedulers = append(s.schedulers, rec)
	return rec.ID, nil
}

// UpdateScheduler persists the mutable fields of an existing scheduler
func (s *Store) UpdateScheduler(_ context.Context, sched *store.Scheduler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.schedulers {
		if existing.ID == sched.ID {
			rec := copyScheduler(sched)
			rec.ID = existing.ID
			s.schedulers[i] = rec
			return nil
		}
	}
	return store.ErrNotFound
}

// GetAllSchedulers lists the registry in creation order
func (s *Store) GetAllSchedulers(_ context.Context) ([]*store.Scheduler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Scheduler, 0, len(s.schedulers))
	for _, sched := range s.schedulers {
		out = append(out, copyScheduler(sched))
	}
	return out, nil
}

// GetScheduler gets a scheduler by id
func (s *Store) GetScheduler(_ context.Context, id int64) (*store.Scheduler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sched := range s.schedulers {
		if sched.ID == id {
			return copyScheduler(sched), nil
		}
	}
	return nil, store.ErrNotFound
}

// GetAssignment gets the assignment for a process id
func (s *Store) GetAssignment(_ context.Context, processID string) (*store.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[processID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// SaveAssignment creates a new assignment record and returns its id
func (s *Store) SaveAssignment(_ context.Context, a *store.Assignment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := *a
	rec.ID = s.nextAssignmentID
	s.nextAssignmentID++
	s.assignments[rec.ProcessID] = &rec
	return rec.ID, nil
}

func copyScheduler(s *store.Scheduler) *store.Scheduler {
	cp := *s
	return &cp
}
