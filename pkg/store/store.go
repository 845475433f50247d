// Package store defines the routing data records and the capability
// contract their backing store must satisfy. The routing engine is
// polymorphic over any backend implementing Store; pkg/store/mysql is the
// persistent implementation and pkg/store/memory the in-process one.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist. Callers match on it
// with errors.Is; every other store error is propagated opaquely.
var ErrNotFound = errors.New("record not found")

// Scheduler is one backend scheduler node in the registry.
//
// ID is assigned by the store on first save (zero means unsaved) and is
// immutable afterwards. URL is unique across the registry. ProcessCount only
// increases within a process lifetime; assignments are never rebalanced.
type Scheduler struct {
	ID            int64
	URL           string
	ProcessCount  int
	NoRoute       bool   // excluded from new-assignment selection
	OwnerAffinity string // comma-separated owner addresses preferring this scheduler
	AffinityOnly  bool   // eligible via affinity match only, never via least-load
}

// Assignment is the sticky binding between a process and its scheduler.
// Once saved it is never modified or deleted.
type Assignment struct {
	ID          int64
	ProcessID   string
	SchedulerID int64
}

// Store is the set of operations the routing engine requires. Backends must
// provide per-record atomicity for saves and updates; no cross-record
// transactions are assumed.
type Store interface {
	// GetSchedulerByURL returns the scheduler with the given url, or
	// ErrNotFound.
	GetSchedulerByURL(ctx context.Context, url string) (*Scheduler, error)
	// SaveScheduler creates a new scheduler record and returns its id.
	SaveScheduler(ctx context.Context, s *Scheduler) (int64, error)
	// UpdateScheduler persists the mutable fields of an existing record.
	UpdateScheduler(ctx context.Context, s *Scheduler) error
	// GetAllSchedulers lists the registry in creation order. Selection
	// tie-breaks depend on this ordering.
	GetAllSchedulers(ctx context.Context) ([]*Scheduler, error)
	// GetScheduler returns the scheduler with the given id, or ErrNotFound.
	GetScheduler(ctx context.Context, id int64) (*Scheduler, error)
	// GetAssignment returns the assignment for a process id, or ErrNotFound.
	GetAssignment(ctx context.Context, processID string) (*Assignment, error)
	// SaveAssignment creates a new assignment record and returns its id.
	SaveAssignment(ctx context.Context, a *Assignment) (int64, error)
}
