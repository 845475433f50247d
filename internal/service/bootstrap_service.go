package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"schedrouter/pkg/config"
	"schedrouter/pkg/logger"
	"schedrouter/pkg/store"
)

// SchedulerEntry is one entry of the declarative scheduler list
type SchedulerEntry struct {
	URL           string `json:"url"`
	NoRoute       bool   `json:"no_route"`
	OwnerAffinity string `json:"owner_affinity"`
	AffinityOnly  bool   `json:"affinity_only"`
}

// BootstrapService reconciles the declarative scheduler list into the
// registry at process start. It runs once, before request traffic is
// accepted; any failure is fatal for router mode.
type BootstrapService struct {
	store store.Store
	cfg   *config.RouterConfig
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(st store.Store, cfg *config.RouterConfig) *BootstrapService {
	return &BootstrapService{store: st, cfg: cfg}
}

// Init loads the scheduler list from the configured path and reconciles it
func (s *BootstrapService) Init(ctx context.Context) error {
	data, err := os.ReadFile(s.cfg.SchedulerList)
	if err != nil {
		return fmt.Errorf("failed to read scheduler list: %w", err)
	}

	var entries []SchedulerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse scheduler list: %w", err)
	}

	return s.Reconcile(ctx, entries)
}

// Reconcile converges the registry to match the given entries. Unknown urls
// are created with a zero process count; existing records keep their count
// but have their routing flags overwritten, so re-running with an updated
// list always wins. Entries are applied in order and the first store error
// aborts the whole run.
func (s *BootstrapService) Reconcile(ctx context.Context, entries []SchedulerEntry) error {
	for _, entry := range entries {
		_, err := s.store.GetSchedulerByURL(ctx, entry.URL)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to look up scheduler %s: %w", entry.URL, err)
			}
			if _, err := s.store.SaveScheduler(ctx, &store.Scheduler{
				URL:           entry.URL,
				ProcessCount:  0,
				NoRoute:       entry.NoRoute,
				OwnerAffinity: entry.OwnerAffinity,
				AffinityOnly:  entry.AffinityOnly,
			}); err != nil {
				return fmt.Errorf("failed to save scheduler %s: %w", entry.URL, err)
			}
			logger.InfoCtx(ctx, "saved new scheduler: %s", entry.URL)
		}

		// Refresh the flags on every run so an updated list can disable
		// routing to a scheduler or change its affinity set.
		sched, err := s.store.GetSchedulerByURL(ctx, entry.URL)
		if err != nil {
			return fmt.Errorf("failed to reload scheduler %s: %w", entry.URL, err)
		}
		sched.NoRoute = entry.NoRoute
		sched.OwnerAffinity = entry.OwnerAffinity
		sched.AffinityOnly = entry.AffinityOnly
		if err := s.store.UpdateScheduler(ctx, sched); err != nil {
			return fmt.Errorf("failed to update scheduler %s: %w", entry.URL, err)
		}
	}

	logger.InfoCtx(ctx, "schedulers initialized")
	return nil
}
