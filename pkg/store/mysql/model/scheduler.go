package model

import "time"

// Scheduler represents a scheduler record in database
type Scheduler struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	URL           string    `gorm:"column:url;not null;uniqueIndex"`
	ProcessCount  int       `gorm:"column:process_count;not null;default:0"`
	NoRoute       bool      `gorm:"column:no_route;not null;default:false"`
	OwnerAffinity string    `gorm:"column:owner_affinity;type:text"`
	AffinityOnly  bool      `gorm:"column:affinity_only;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
}

func (Scheduler) TableName() string {
	return "schedulers"
}
