package service

import (
	"context"
	"errors"
	"strings"

	"schedrouter/pkg/address"
	"schedrouter/pkg/config"
	"schedrouter/pkg/envelope"
	"schedrouter/pkg/logger"
	"schedrouter/pkg/store"
)

// ModeRouter is the operating mode in which routing decisions are active
const ModeRouter = "router"

// Payload type tags
const (
	TypeProcess = "Process"
	TypeMessage = "Message"
)

// RouterService decides which scheduler receives a unit of work and keeps
// the sticky process-to-scheduler assignment. Every entry point returns
// (url, routed, err): routed is false when the process is not in router
// mode, in which case the caller handles the request locally.
//
// The read-modify-write over a scheduler's process count is not atomic
// across concurrent spawn requests; two requests may pick the same
// least-loaded scheduler before either persists its increment. That skews
// load transiently but never duplicates an assignment, since each request
// carries a distinct process id.
type RouterService struct {
	store store.Store
	cfg   *config.RouterConfig
}

// NewRouterService creates a new router service
func NewRouterService(st store.Store, cfg *config.RouterConfig) *RouterService {
	return &RouterService{store: st, cfg: cfg}
}

func (s *RouterService) active() bool {
	return s.cfg.Mode == ModeRouter
}

// RouteProcess resolves the scheduler url for an already-assigned process id.
func (s *RouterService) RouteProcess(ctx context.Context, processID string) (string, bool, error) {
	if !s.active() {
		return "", false, nil
	}
	if processID == "" {
		return "", false, missingParameter("no process-id query parameter provided")
	}
	url, err := s.resolve(ctx, processID)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// RouteTransaction resolves the scheduler url for a transaction id,
// treating it as a process id first. When no assignment exists under the
// transaction id the supplied process id is used instead; message id
// queries must carry one.
func (s *RouterService) RouteTransaction(ctx context.Context, txID string, processID string) (string, bool, error) {
	if !s.active() {
		return "", false, nil
	}

	target := txID
	if _, err := s.store.GetAssignment(ctx, txID); err != nil {
		if processID == "" {
			return "", false, missingParameter("unable to locate process, if this is a message id query be sure to pass the process-id query parameter")
		}
		target = processID
	}

	url, err := s.resolve(ctx, target)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// RoutePayload routes a raw payload. processID and assign form an explicit
// pinning request and must be supplied together; when present the payload
// is not parsed at all. Otherwise the payload's Type tag decides: a
// "Process" payload is assigned a scheduler, a "Message" payload follows
// its target's existing assignment.
func (s *RouterService) RoutePayload(ctx context.Context, payload []byte, processID string, assign string) (string, bool, error) {
	if !s.active() {
		return "", false, nil
	}

	// XOR, if we have one of these, we must have both.
	if (processID != "") != (assign != "") {
		return "", false, badRequest("if sending assign or process-id, you must send both")
	}
	if processID != "" && assign != "" {
		a, err := s.store.GetAssignment(ctx, processID)
		if err != nil {
			return "", false, notFound("unable to locate scheduler for process-id")
		}
		url, err := s.schedulerURL(ctx, a.SchedulerID)
		if err != nil {
			return "", false, err
		}
		return url, true, nil
	}

	item, err := envelope.Parse(payload)
	if err != nil {
		return "", false, badRequest(err.Error())
	}

	typeValue, ok := item.Tag("Type", "type")
	if !ok {
		return "", false, badRequest("cannot redirect data item, invalid Type Tag")
	}

	ownerAddress, err := address.FromOwner(item.Owner)
	if err != nil {
		return "", false, badRequest("failed to parse owner")
	}

	switch typeValue {
	case TypeProcess:
		url, err := s.assignProcess(ctx, item.ID, ownerAddress)
		if err != nil {
			return "", false, err
		}
		return url, true, nil
	case TypeMessage:
		a, err := s.store.GetAssignment(ctx, item.Target)
		if err != nil {
			return "", false, notFound("unable to locate scheduler for message target")
		}
		url, err := s.schedulerURL(ctx, a.SchedulerID)
		if err != nil {
			return "", false, err
		}
		return url, true, nil
	default:
		return "", false, badRequest("cannot redirect data item, invalid Type Tag")
	}
}

// assignProcess selects a scheduler for a new process and records the
// assignment. Owner affinity wins over load: the first registry entry
// listing the owner's address takes the process regardless of its count.
// Otherwise the least-loaded unrestricted scheduler is chosen, first
// minimum in registry order on ties.
func (s *RouterService) assignProcess(ctx context.Context, processID string, ownerAddress string) (string, error) {
	all, err := s.store.GetAllSchedulers(ctx)
	if err != nil {
		return "", storeFailure("failed to list schedulers", err)
	}

	candidates := all[:0]
	for _, sched := range all {
		if !sched.NoRoute {
			candidates = append(candidates, sched)
		}
	}

	for _, sched := range candidates {
		if sched.OwnerAffinity == "" {
			continue
		}
		for _, owner := range strings.Split(sched.OwnerAffinity, ",") {
			if strings.TrimSpace(owner) == ownerAddress {
				return s.commitAssignment(ctx, sched, processID)
			}
		}
	}

	var selected *store.Scheduler
	for _, sched := range candidates {
		if sched.AffinityOnly {
			continue
		}
		if selected == nil || sched.ProcessCount < selected.ProcessCount {
			selected = sched
		}
	}
	if selected == nil {
		return "", noSchedulerAvailable("could not find a scheduler to assign")
	}
	return s.commitAssignment(ctx, selected, processID)
}

// commitAssignment bumps the scheduler's load, persists it and creates the
// sticky assignment record.
func (s *RouterService) commitAssignment(ctx context.Context, sched *store.Scheduler, processID string) (string, error) {
	sched.ProcessCount++
	if err := s.store.UpdateScheduler(ctx, sched); err != nil {
		return "", storeFailure("failed to update scheduler", err)
	}

	// Should be unreachable, but keep the router serving instead of
	// crashing on a corrupt record.
	if sched.ID == 0 {
		return "", storeFailure("missing id on scheduler", nil)
	}

	if _, err := s.store.SaveAssignment(ctx, &store.Assignment{
		ProcessID:   processID,
		SchedulerID: sched.ID,
	}); err != nil {
		return "", storeFailure("failed to save assignment", err)
	}

	logger.InfoCtx(ctx, "assigned process %s to scheduler %s", processID, sched.URL)
	return sched.URL, nil
}

// resolve follows an existing assignment to its scheduler's url
func (s *RouterService) resolve(ctx context.Context, processID string) (string, error) {
	a, err := s.store.GetAssignment(ctx, processID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", notFound("no scheduler assigned to process " + processID)
		}
		return "", storeFailure("failed to look up assignment", err)
	}
	return s.schedulerURL(ctx, a.SchedulerID)
}

func (s *RouterService) schedulerURL(ctx context.Context, id int64) (string, error) {
	sched, err := s.store.GetScheduler(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", notFound("assigned scheduler no longer exists")
		}
		return "", storeFailure("failed to look up scheduler", err)
	}
	return sched.URL, nil
}
