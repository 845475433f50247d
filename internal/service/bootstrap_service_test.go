package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"schedrouter/pkg/config"
	"schedrouter/pkg/store"
	"schedrouter/pkg/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCreatesSchedulers(t *testing.T) {
	st := memory.New()
	svc := NewBootstrapService(st, &config.RouterConfig{Mode: ModeRouter})
	ctx := context.Background()

	entries := []SchedulerEntry{
		{URL: "https://sched-1.example.com"},
		{URL: "https://sched-2.example.com", NoRoute: true},
		{URL: "https://sched-3.example.com", OwnerAffinity: "addr-1,addr-2", AffinityOnly: true},
	}
	require.NoError(t, svc.Reconcile(ctx, entries))

	schedulers, err := st.GetAllSchedulers(ctx)
	require.NoError(t, err)
	require.Len(t, schedulers, 3)

	// Registry order follows the list order.
	assert.Equal(t, "https://sched-1.example.com", schedulers[0].URL)
	assert.Equal(t, "https://sched-2.example.com", schedulers[1].URL)
	assert.True(t, schedulers[1].NoRoute)
	assert.Equal(t, "addr-1,addr-2", schedulers[2].OwnerAffinity)
	assert.True(t, schedulers[2].AffinityOnly)

	for _, sched := range schedulers {
		assert.NotZero(t, sched.ID)
		assert.Zero(t, sched.ProcessCount)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	st := memory.New()
	svc := NewBootstrapService(st, &config.RouterConfig{Mode: ModeRouter})
	ctx := context.Background()

	entries := []SchedulerEntry{
		{URL: "https://sched-1.example.com"},
		{URL: "https://sched-2.example.com", OwnerAffinity: "addr-1"},
	}
	require.NoError(t, svc.Reconcile(ctx, entries))

	before, err := st.GetAllSchedulers(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Reconcile(ctx, entries))

	after, err := st.GetAllSchedulers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReconcileRefreshesFlagsWithoutResettingLoad(t *testing.T) {
	st := memory.New()
	svc := NewBootstrapService(st, &config.RouterConfig{Mode: ModeRouter})
	ctx := context.Background()

	require.NoError(t, svc.Reconcile(ctx, []SchedulerEntry{{URL: "https://sched-1.example.com"}}))

	// Simulate routed work accumulating on the scheduler.
	sched, err := st.GetSchedulerByURL(ctx, "https://sched-1.example.com")
	require.NoError(t, err)
	sched.ProcessCount = 12
	require.NoError(t, st.UpdateScheduler(ctx, sched))

	// An updated list drains the scheduler; the count must survive.
	require.NoError(t, svc.Reconcile(ctx, []SchedulerEntry{
		{URL: "https://sched-1.example.com", NoRoute: true, OwnerAffinity: "addr-9"},
	}))

	sched, err = st.GetSchedulerByURL(ctx, "https://sched-1.example.com")
	require.NoError(t, err)
	assert.True(t, sched.NoRoute)
	assert.Equal(t, "addr-9", sched.OwnerAffinity)
	assert.Equal(t, 12, sched.ProcessCount)
}

func TestInitReadsSchedulerList(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "schedulers.json")
	listJSON := `[
		{"url": "https://sched-1.example.com"},
		{"url": "https://sched-2.example.com", "no_route": true, "owner_affinity": "addr-1", "affinity_only": true}
	]`
	require.NoError(t, os.WriteFile(listPath, []byte(listJSON), 0644))

	st := memory.New()
	svc := NewBootstrapService(st, &config.RouterConfig{Mode: ModeRouter, SchedulerList: listPath})
	require.NoError(t, svc.Init(context.Background()))

	sched, err := st.GetSchedulerByURL(context.Background(), "https://sched-2.example.com")
	require.NoError(t, err)
	assert.True(t, sched.NoRoute)
	assert.Equal(t, "addr-1", sched.OwnerAffinity)
	assert.True(t, sched.AffinityOnly)
}

func TestInitFailsOnBadList(t *testing.T) {
	st := memory.New()

	t.Run("missing file", func(t *testing.T) {
		svc := NewBootstrapService(st, &config.RouterConfig{Mode: ModeRouter, SchedulerList: "does/not/exist.json"})
		assert.Error(t, svc.Init(context.Background()))
	})

	t.Run("malformed json", func(t *testing.T) {
		listPath := filepath.Join(t.TempDir(), "schedulers.json")
		require.NoError(t, os.WriteFile(listPath, []byte("{not json"), 0644))

		svc := NewBootstrapService(st, &config.RouterConfig{Mode: ModeRouter, SchedulerList: listPath})
		assert.Error(t, svc.Init(context.Background()))
	})
}

// failingStore fails url lookups with an opaque error to prove reconciliation
// aborts instead of treating it as a missing record.
type failingStore struct {
	store.Store
}

func (s *failingStore) GetSchedulerByURL(context.Context, string) (*store.Scheduler, error) {
	return nil, assert.AnError
}

func TestReconcileAbortsOnStoreFailure(t *testing.T) {
	svc := NewBootstrapService(&failingStore{Store: memory.New()}, &config.RouterConfig{Mode: ModeRouter})
	err := svc.Reconcile(context.Background(), []SchedulerEntry{{URL: "https://sched-1.example.com"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
