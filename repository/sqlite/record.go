package sqlite

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

// taskRecord is the gorm mapping of domain.Task.
type taskRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"size:120;not null;check:chk_tasks_title,trim(title) <> ''"`
	Description string    `gorm:"size:500;not null;check:chk_tasks_description,trim(description) <> ''"`
	Owner       string    `gorm:"size:80;not null;index;check:chk_tasks_owner,trim(owner) <> ''"`
	Priority    string    `gorm:"size:10;not null;check:chk_tasks_priority,priority IN ('HIGH','MEDIUM','LOW')"`
	DueDate     time.Time `gorm:"not null"`
	Status      string    `gorm:"size:20;not null;index;check:chk_tasks_status,status IN ('IN_PROGRESS','DONE')"`
}

// TableName returns the table name for the task model.
func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(t domain.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Owner:       t.Owner,
		Priority:    string(t.Priority),
		DueDate:     domain.DateOf(t.DueDate),
		Status:      string(t.Status),
	}
}

func (r taskRecord) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Owner:       r.Owner,
		Priority:    domain.Priority(r.Priority),
		DueDate:     domain.DateOf(r.DueDate),
		Status:      domain.Status(r.Status),
	}
}

// Models lists the gorm models owned by this package, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{&taskRecord{}}
}
