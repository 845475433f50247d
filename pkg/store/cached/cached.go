// Package cached wraps a store.Store with a Redis read-through cache. The
// read path of the routing engine dominates, and an assignment never changes
// once written, so assignments are cached without expiry. Scheduler records
// can be reconciled or have their load bumped, so they are cached with a
// short TTL only.
package cached

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"schedrouter/pkg/logger"
	"schedrouter/pkg/store"

	"github.com/go-redis/redis/v8"
)

const (
	assignmentKeyPrefix = "route:assignment:"
	schedulerKeyPrefix  = "route:scheduler:"
)

// DefaultSchedulerTTL is the scheduler cache expiry used when the config
// does not set one.
const DefaultSchedulerTTL = 30 * time.Second

// Store decorates another store with a Redis cache
type Store struct {
	next         store.Store
	redis        *redis.Client
	schedulerTTL time.Duration
}

var _ store.Store = (*Store)(nil)

// New creates a cached store over next
func New(next store.Store, client *redis.Client, schedulerTTL time.Duration) *Store {
	if schedulerTTL <= 0 {
		schedulerTTL = DefaultSchedulerTTL
	}
	return &Store{next: next, redis: client, schedulerTTL: schedulerTTL}
}

// GetSchedulerByURL delegates; url lookups only happen during bootstrap
func (s *Store) GetSchedulerByURL(ctx context.Context, url string) (*store.Scheduler, error) {
	return s.next.GetSchedulerByURL(ctx, url)
}

// SaveScheduler delegates to the underlying store
func (s *Store) SaveScheduler(ctx context.Context, sched *store.Scheduler) (int64, error) {
	return s.next.SaveScheduler(ctx, sched)
}

// UpdateScheduler writes through and drops the cached record
func (s *Store) UpdateScheduler(ctx context.Context, sched *store.Scheduler) error {
	if err := s.next.UpdateScheduler(ctx, sched); err != nil {
		return err
	}
	if err := s.redis.Del(ctx, schedulerKey(sched.ID)).Err(); err != nil {
		logger.WarnCtx(ctx, "failed to invalidate cached scheduler %d: %v", sched.ID, err)
	}
	return nil
}

// GetAllSchedulers delegates; the selection scan needs fresh load counts
func (s *Store) GetAllSchedulers(ctx context.Context) ([]*store.Scheduler, error) {
	return s.next.GetAllSchedulers(ctx)
}

// GetScheduler reads through the scheduler cache
func (s *Store) GetScheduler(ctx context.Context, id int64) (*store.Scheduler, error) {
	key := schedulerKey(id)
	var cachedSched store.Scheduler
	if ok := s.lookup(ctx, key, &cachedSched); ok {
		return &cachedSched, nil
	}

	sched, err := s.next.GetScheduler(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, sched, s.schedulerTTL)
	return sched, nil
}

// GetAssignment reads through the assignment cache
func (s *Store) GetAssignment(ctx context.Context, processID string) (*store.Assignment, error) {
	key := assignmentKey(processID)
	var cachedAssignment store.Assignment
	if ok := s.lookup(ctx, key, &cachedAssignment); ok {
		return &cachedAssignment, nil
	}

	a, err := s.next.GetAssignment(ctx, processID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, a, 0)
	return a, nil
}

// SaveAssignment writes through and primes the cache
func (s *Store) SaveAssignment(ctx context.Context, a *store.Assignment) (int64, error) {
	id, err := s.next.SaveAssignment(ctx, a)
	if err != nil {
		return 0, err
	}
	primed := *a
	primed.ID = id
	s.fill(ctx, assignmentKey(a.ProcessID), &primed, 0)
	return id, nil
}

// lookup fetches and decodes a cached record. Cache failures are treated as
// misses so the store stays authoritative.
func (s *Store) lookup(ctx context.Context, key string, out interface{}) bool {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.WarnCtx(ctx, "cache lookup failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.WarnCtx(ctx, "dropping undecodable cache entry %s: %v", key, err)
		s.redis.Del(ctx, key)
		return false
	}
	return true
}

func (s *Store) fill(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.WarnCtx(ctx, "cache fill failed for %s: %v", key, err)
	}
}

func assignmentKey(processID string) string {
	return assignmentKeyPrefix + processID
}

func schedulerKey(id int64) string {
	return fmt.Sprintf("%s%d", schedulerKeyPrefix, id)
}
