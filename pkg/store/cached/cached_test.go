package cached

import (
	"context"
	"testing"
	"time"

	"schedrouter/pkg/store"
	"schedrouter/pkg/store/memory"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *memory.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	next := memory.New()
	return New(next, client, DefaultSchedulerTTL), next, mr
}

func TestGetAssignmentReadsThrough(t *testing.T) {
	st, next, _ := newTestStore(t)
	ctx := context.Background()

	id, err := next.SaveAssignment(ctx, &store.Assignment{ProcessID: "process-1", SchedulerID: 3})
	require.NoError(t, err)

	// First read populates the cache from the underlying store.
	a, err := st.GetAssignment(ctx, "process-1")
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, int64(3), a.SchedulerID)

	// Replace the backing store; the cached copy must still answer.
	st.next = memory.New()
	a, err = st.GetAssignment(ctx, "process-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.SchedulerID)
}

func TestGetAssignmentMissIsNotCached(t *testing.T) {
	st, next, _ := newTestStore(t)
	ctx := context.Background()

	_, err := st.GetAssignment(ctx, "process-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The record appearing later must be visible on the next read.
	_, err = next.SaveAssignment(ctx, &store.Assignment{ProcessID: "process-1", SchedulerID: 3})
	require.NoError(t, err)

	a, err := st.GetAssignment(ctx, "process-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.SchedulerID)
}

func TestSaveAssignmentPrimesCache(t *testing.T) {
	st, _, _ := newTestStore(t)
	ctx := context.Background()

	id, err := st.SaveAssignment(ctx, &store.Assignment{ProcessID: "process-1", SchedulerID: 3})
	require.NoError(t, err)
	require.NotZero(t, id)

	// Drop the backing store to prove the save populated the cache.
	st.next = memory.New()

	a, err := st.GetAssignment(ctx, "process-1")
	require.NoError(t, err)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, int64(3), a.SchedulerID)
}

func TestGetSchedulerCacheExpires(t *testing.T) {
	st, next, mr := newTestStore(t)
	ctx := context.Background()

	id, err := next.SaveScheduler(ctx, &store.Scheduler{URL: "https://sched-1.example.com"})
	require.NoError(t, err)

	sched, err := st.GetScheduler(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, sched.ProcessCount)

	// Bump the load behind the cache's back.
	sched.ProcessCount = 4
	require.NoError(t, next.UpdateScheduler(ctx, sched))

	// Still within TTL, the stale record is served.
	stale, err := st.GetScheduler(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, stale.ProcessCount)

	// Past the TTL the fresh record comes back.
	mr.FastForward(DefaultSchedulerTTL + time.Second)
	fresh, err := st.GetScheduler(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.ProcessCount)
}

func TestUpdateSchedulerInvalidatesCache(t *testing.T) {
	st, next, _ := newTestStore(t)
	ctx := context.Background()

	id, err := next.SaveScheduler(ctx, &store.Scheduler{URL: "https://sched-1.example.com"})
	require.NoError(t, err)

	sched, err := st.GetScheduler(ctx, id)
	require.NoError(t, err)

	sched.ProcessCount = 9
	require.NoError(t, st.UpdateScheduler(ctx, sched))

	fresh, err := st.GetScheduler(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 9, fresh.ProcessCount)
}

func TestRedisFailureFallsBackToStore(t *testing.T) {
	st, next, mr := newTestStore(t)
	ctx := context.Background()

	_, err := next.SaveAssignment(ctx, &store.Assignment{ProcessID: "process-1", SchedulerID: 3})
	require.NoError(t, err)

	mr.Close()

	a, err := st.GetAssignment(ctx, "process-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.SchedulerID)
}

func TestUndecodableCacheEntryIsDropped(t *testing.T) {
	st, next, mr := newTestStore(t)
	ctx := context.Background()

	_, err := next.SaveAssignment(ctx, &store.Assignment{ProcessID: "process-1", SchedulerID: 3})
	require.NoError(t, err)

	require.NoError(t, mr.Set(assignmentKey("process-1"), "{corrupt"))

	a, err := st.GetAssignment(ctx, "process-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.SchedulerID)

	// The corrupt entry has been replaced with a decodable one.
	cachedValue, err := mr.Get(assignmentKey("process-1"))
	require.NoError(t, err)
	assert.Contains(t, cachedValue, `"process-1"`)
}
