package mysql

import (
	"schedrouter/pkg/store"
	"schedrouter/pkg/store/mysql/model"
)

func toStoreScheduler(m *model.Scheduler) *store.Scheduler {
	return &store.Scheduler{
		ID:            m.ID,
		URL:           m.URL,
		ProcessCount:  m.ProcessCount,
		NoRoute:       m.NoRoute,
		OwnerAffinity: m.OwnerAffinity,
		AffinityOnly:  m.AffinityOnly,
	}
}

func toStoreAssignment(m *model.Assignment) *store.Assignment {
	return &store.Assignment{
		ID:          m.ID,
		ProcessID:   m.ProcessID,
		SchedulerID: m.SchedulerID,
	}
}
