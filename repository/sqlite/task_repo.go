package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a gorm-backed TaskRepository for the local database.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if !task.IsNew() {
		return domain.ErrTaskAlreadySaved
	}
	if err := domain.CheckStorable(*task); err != nil {
		return err
	}

	record := toRecord(*task)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	task.ID = record.ID
	return nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.IsNew() {
		return domain.ErrTaskNotSaved
	}
	if err := domain.CheckStorable(*task); err != nil {
		return err
	}

	record := toRecord(*task)
	columns := map[string]interface{}{
		"title":       record.Title,
		"description": record.Description,
		"owner":       record.Owner,
		"priority":    record.Priority,
		"due_date":    record.DueDate,
		"status":      record.Status,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&taskRecord{}).Where("id = ?", record.ID).Updates(columns).Error
	})
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return nil
}

func (r *taskRepository) Remove(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record taskRecord
		err := tx.First(&record, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		return fmt.Errorf("remove task %d: %w", id, err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	var record taskRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	task := record.toDomain()
	return &task, nil
}

func (r *taskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *taskRepository) Filter(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	return r.find(applyFilter(r.db.WithContext(ctx), filter))
}

func (r *taskRepository) find(q *gorm.DB) ([]domain.Task, error) {
	var records []taskRecord
	if err := q.Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]domain.Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, record.toDomain())
	}
	return tasks, nil
}

// applyFilter chains a Where clause for each criterion present in filter.
func applyFilter(q *gorm.DB, filter domain.TaskFilter) *gorm.DB {
	f := filter.Normalized()
	if f.ID != 0 {
		q = q.Where("id = ?", f.ID)
	}
	if f.Text != "" {
		like := "%" + f.Text + "%"
		q = q.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))", like, like)
	}
	if f.Owner != "" {
		q = q.Where("LOWER(owner) = LOWER(?)", f.Owner)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	return q
}
