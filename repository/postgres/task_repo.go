package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
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

	const query = `
	INSERT INTO tasks (title, description, owner, priority, due_date, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
	`

	var id int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query,
			task.Title,
			task.Description,
			task.Owner,
			string(task.Priority),
			domain.DateOf(task.DueDate),
			string(task.Status),
		).Scan(&id)
	})
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	task.ID = id
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

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		owner = $4,
		priority = $5,
		due_date = $6,
		status = $7
	WHERE id = $1
	`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			task.ID,
			task.Title,
			task.Description,
			task.Owner,
			string(task.Priority),
			domain.DateOf(task.DueDate),
			string(task.Status),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return nil
}

func (r *taskRepository) Remove(ctx context.Context, id int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var found int64
		err := tx.QueryRow(ctx, `SELECT id FROM tasks WHERE id = $1 FOR UPDATE`, id).Scan(&found)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, found)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove task %d: %w", id, err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, selectTasks+` WHERE id = $1`, id)
	return scanTask(row)
}

func (r *taskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	return r.query(ctx, selectTasks+` ORDER BY id`)
}

func (r *taskRepository) Filter(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	query, args := buildFilterQuery(filter)
	return r.query(ctx, query, args...)
}

func (r *taskRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		priority string
		status   string
		due      time.Time
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Owner,
		&priority,
		&due,
		&status,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	task.DueDate = domain.DateOf(due)

	return &task, nil
}
