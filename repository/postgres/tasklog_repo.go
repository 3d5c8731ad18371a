package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type taskLogRepository struct {
	pool *pgxpool.Pool
}

// NewTaskLogRepository returns a Postgres-backed implementation of TaskLogRepository.
func NewTaskLogRepository(pool *pgxpool.Pool) repository.TaskLogRepository {
	return &taskLogRepository{pool: pool}
}

func (r *taskLogRepository) GetByID(ctx context.Context, userID, id int64) (*domain.TaskLog, error) {
	const query = `
	SELECT id, user_id, task_id, log_date, done, extra_info, sort_order, created_at, updated_at
	FROM task_logs
	WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanTaskLog(row)
}

func (r *taskLogRepository) GetByTaskDate(ctx context.Context, taskID int64, date domain.Date) (*domain.TaskLog, error) {
	const query = `
	SELECT id, user_id, task_id, log_date, done, extra_info, sort_order, created_at, updated_at
	FROM task_logs
	WHERE task_id = $1 AND log_date = $2
	`
	row := r.pool.QueryRow(ctx, query, taskID, date.Time())
	return scanTaskLog(row)
}

func (r *taskLogRepository) ListRange(ctx context.Context, filter repository.LogFilter) ([]domain.TaskLog, error) {
	const query = `
	SELECT l.id, l.user_id, l.task_id, l.log_date, l.done, l.extra_info, l.sort_order, l.created_at, l.updated_at
	FROM task_logs l
	JOIN tasks t ON t.id = l.task_id
	WHERE l.user_id = $1
	  AND l.log_date >= $2 AND l.log_date <= $3
	  AND ($4 = 0 OR t.group_id = $4)
	ORDER BY l.log_date, l.done, l.sort_order, l.id
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.From.Time(), filter.To.Time(), filter.GroupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.TaskLog
	for rows.Next() {
		log, err := scanTaskLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func (r *taskLogRepository) ListForTask(ctx context.Context, taskID int64) ([]domain.TaskLog, error) {
	const query = `
	SELECT id, user_id, task_id, log_date, done, extra_info, sort_order, created_at, updated_at
	FROM task_logs
	WHERE task_id = $1
	ORDER BY log_date
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.TaskLog
	for rows.Next() {
		log, err := scanTaskLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func (r *taskLogRepository) Create(ctx context.Context, log *domain.TaskLog) (*domain.TaskLog, error) {
	if log == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO task_logs (user_id, task_id, log_date, done, extra_info, sort_order)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		log.UserID,
		log.TaskID,
		log.Date.Time(),
		log.Done,
		log.ExtraInfo,
		log.SortOrder,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "task already has a log on this date")
		}
		return nil, err
	}

	return log, nil
}

func (r *taskLogRepository) Update(ctx context.Context, log *domain.TaskLog) error {
	if log == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE task_logs
	SET log_date = $3,
		done = $4,
		extra_info = $5,
		sort_order = $6,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		log.ID,
		log.UserID,
		log.Date.Time(),
		log.Done,
		log.ExtraInfo,
		log.SortOrder,
	).Scan(&log.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskLogNotFound
		}
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrCodeDuplicate, "task already has a log on this date")
		}
		return err
	}

	return nil
}

func (r *taskLogRepository) Delete(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM task_logs WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskLogNotFound
	}
	return nil
}

func (r *taskLogRepository) CountForTask(ctx context.Context, taskID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM task_logs WHERE task_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, taskID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *taskLogRepository) PartitionIDs(ctx context.Context, userID int64, date domain.Date, done bool) ([]int64, error) {
	const query = `
	SELECT id
	FROM task_logs
	WHERE user_id = $1 AND log_date = $2 AND done = $3
	ORDER BY sort_order, id
	`
	rows, err := r.pool.Query(ctx, query, userID, date.Time(), done)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *taskLogRepository) NextSortOrder(ctx context.Context, userID int64, date domain.Date, done bool) (int, error) {
	const query = `
	SELECT COALESCE(MAX(sort_order), 0) + 1
	FROM task_logs
	WHERE user_id = $1 AND log_date = $2 AND done = $3
	`
	var next int
	if err := r.pool.QueryRow(ctx, query, userID, date.Time(), done).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *taskLogRepository) Repack(ctx context.Context, userID int64, date domain.Date, done bool, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	const query = `
	UPDATE task_logs
	SET sort_order = $5, updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND log_date = $3 AND done = $4
	`

	batch := &pgx.Batch{}
	for i, id := range orderedIDs {
		batch.Queue(query, id, userID, date.Time(), done, i+1)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range orderedIDs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *taskLogRepository) DoneTaskRefsOnDate(ctx context.Context, streakID int64, date domain.Date) ([]domain.BlockingTask, error) {
	const query = `
	SELECT t.id, t.name, g.id, g.name
	FROM task_logs l
	JOIN tasks t ON t.id = l.task_id
	JOIN groups g ON g.id = t.group_id
	WHERE t.streak_id = $1 AND l.log_date = $2 AND l.done = TRUE
	ORDER BY g.name, t.name
	`
	rows, err := r.pool.Query(ctx, query, streakID, date.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.BlockingTask
	for rows.Next() {
		var ref domain.BlockingTask
		if err := rows.Scan(&ref.TaskID, &ref.TaskName, &ref.GroupID, &ref.GroupName); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanTaskLog(row rowScanner) (*domain.TaskLog, error) {
	var (
		log     domain.TaskLog
		logDate time.Time
	)

	if err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.TaskID,
		&logDate,
		&log.Done,
		&log.ExtraInfo,
		&log.SortOrder,
		&log.CreatedAt,
		&log.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskLogNotFound
		}
		return nil, err
	}

	log.Date = domain.DateOf(logDate)
	return &log, nil
}
