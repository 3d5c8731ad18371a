package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	const query = `
	SELECT id, user_id, group_id, name, extra_info, streak_id, created_at, updated_at
	FROM tasks
	WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanTask(row)
}

func (r *taskRepository) GetByName(ctx context.Context, userID, groupID int64, name string) (*domain.Task, error) {
	const query = `
	SELECT id, user_id, group_id, name, extra_info, streak_id, created_at, updated_at
	FROM tasks
	WHERE user_id = $1 AND group_id = $2 AND name = $3
	`
	row := r.pool.QueryRow(ctx, query, userID, groupID, name)
	return scanTask(row)
}

func (r *taskRepository) ListByGroup(ctx context.Context, userID, groupID int64) ([]domain.Task, error) {
	const query = `
	SELECT id, user_id, group_id, name, extra_info, streak_id, created_at, updated_at
	FROM tasks
	WHERE user_id = $1 AND group_id = $2
	ORDER BY name, id
	`
	rows, err := r.pool.Query(ctx, query, userID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (user_id, group_id, name, extra_info, streak_id)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.UserID,
		task.GroupID,
		task.Name,
		task.ExtraInfo,
		task.StreakID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "task name already used in this group")
		}
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET group_id = $3,
		name = $4,
		extra_info = $5,
		streak_id = $6,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.GroupID,
		task.Name,
		task.ExtraInfo,
		task.StreakID,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrCodeDuplicate, "task name already used in this group")
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.GroupID,
		&task.Name,
		&task.ExtraInfo,
		&task.StreakID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	return &task, nil
}
