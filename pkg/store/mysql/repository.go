package mysql

import (
	"context"
	"errors"
	"time"

	"schedrouter/pkg/store"
	"schedrouter/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// Repository implements the store contract on MySQL
type Repository struct {
	ds *Datastore
}

var _ store.Store = (*Repository)(nil)

// NewRepository creates a new MySQL repository
func NewRepository(dsn string) (*Repository, error) {
	ds, err := NewDatastore(dsn)
	if err != nil {
		return nil, err
	}
	return &Repository{ds: ds}, nil
}

// Migrate creates the schedulers and assignments tables
func (r *Repository) Migrate(ctx context.Context) error {
	return r.ds.DB(ctx).AutoMigrate(&model.Scheduler{}, &model.Assignment{})
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}

// GetSchedulerByURL gets a scheduler by its url
func (r *Repository) GetSchedulerByURL(ctx context.Context, url string) (*store.Scheduler, error) {
	var m model.Scheduler
	err := r.ds.DB(ctx).Where("url = ?", url).First(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return toStoreScheduler(&m), nil
}

// SaveScheduler creates a new scheduler record and returns its id
func (r *Repository) SaveScheduler(ctx context.Context, s *store.Scheduler) (int64, error) {
	now := time.Now()
	m := &model.Scheduler{
		URL:           s.URL,
		ProcessCount:  s.ProcessCount,
		NoRoute:       s.NoRoute,
		OwnerAffinity: s.OwnerAffinity,
		AffinityOnly:  s.AffinityOnly,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.ds.DB(ctx).Create(m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

// UpdateScheduler persists the mutable fields of an existing scheduler
func (r *Repository) UpdateScheduler(ctx context.Context, s *store.Scheduler) error {
	return r.ds.DB(ctx).Model(&model.Scheduler{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"process_count":  s.ProcessCount,
			"no_route":       s.NoRoute,
			"owner_affinity": s.OwnerAffinity,
			"affinity_only":  s.AffinityOnly,
			"updated_at":     time.Now(),
		}).Error
}

// GetAllSchedulers lists the registry in creation order
func (r *Repository) GetAllSchedulers(ctx context.Context) ([]*store.Scheduler, error) {
	var ms []*model.Scheduler
	if err := r.ds.DB(ctx).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	schedulers := make([]*store.Scheduler, 0, len(ms))
	for _, m := range ms {
		schedulers = append(schedulers, toStoreScheduler(m))
	}
	return schedulers, nil
}

// GetScheduler gets a scheduler by id
func (r *Repository) GetScheduler(ctx context.Context, id int64) (*store.Scheduler, error) {
	var m model.Scheduler
	err := r.ds.DB(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return toStoreScheduler(&m), nil
}

// GetAssignment gets the assignment for a process id
func (r *Repository) GetAssignment(ctx context.Context, processID string) (*store.Assignment, error) {
	var m model.Assignment
	err := r.ds.DB(ctx).Where("process_id = ?", processID).First(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return toStoreAssignment(&m), nil
}

// SaveAssignment creates a new assignment record and returns its id
func (r *Repository) SaveAssignment(ctx context.Context, a *store.Assignment) (int64, error) {
	m := &model.Assignment{
		ProcessID:   a.ProcessID,
		SchedulerID: a.SchedulerID,
		CreatedAt:   time.Now(),
	}
	if err := r.ds.DB(ctx).Create(m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
