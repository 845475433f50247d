package handler

import (
	"errors"
	"net/http"

	"schedrouter/pkg/store"

	"github.com/gin-gonic/gin"
)

// RegistryHandler exposes a read-only admin view of the scheduler registry
// and the assignment table.
type RegistryHandler struct {
	store store.Store
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(st store.Store) *RegistryHandler {
	return &RegistryHandler{store: st}
}

type schedulerView struct {
	ID            int64  `json:"id"`
	URL           string `json:"url"`
	ProcessCount  int    `json:"process_count"`
	NoRoute       bool   `json:"no_route"`
	OwnerAffinity string `json:"owner_affinity,omitempty"`
	AffinityOnly  bool   `json:"affinity_only"`
}

type assignmentView struct {
	ProcessID   string `json:"process_id"`
	SchedulerID int64  `json:"scheduler_id"`
	URL         string `json:"url"`
}

// ListSchedulers lists the registry in iteration order
func (h *RegistryHandler) ListSchedulers(c *gin.Context) {
	schedulers, err := h.store.GetAllSchedulers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]schedulerView, 0, len(schedulers))
	for _, s := range schedulers {
		views = append(views, schedulerView{
			ID:            s.ID,
			URL:           s.URL,
			ProcessCount:  s.ProcessCount,
			NoRoute:       s.NoRoute,
			OwnerAffinity: s.OwnerAffinity,
			AffinityOnly:  s.AffinityOnly,
		})
	}
	c.JSON(http.StatusOK, gin.H{"schedulers": views})
}

// GetAssignment shows where a process is assigned
func (h *RegistryHandler) GetAssignment(c *gin.Context) {
	ctx := c.Request.Context()
	processID := c.Param("process_id")

	a, err := h.store.GetAssignment(ctx, processID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no assignment for process " + processID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	view := assignmentView{ProcessID: a.ProcessID, SchedulerID: a.SchedulerID}
	if sched, err := h.store.GetScheduler(ctx, a.SchedulerID); err == nil {
		view.URL = sched.URL
	}
	c.JSON(http.StatusOK, view)
}
