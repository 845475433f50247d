package model

import "time"

// Assignment represents a process-to-scheduler assignment record in database
type Assignment struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProcessID   string    `gorm:"column:process_id;not null;uniqueIndex"`
	SchedulerID int64     `gorm:"column:scheduler_id;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (Assignment) TableName() string {
	return "assignments"
}
