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

type streakRepository struct {
	pool *pgxpool.Pool
}

// NewStreakRepository returns a Postgres-backed implementation of StreakRepository.
func NewStreakRepository(pool *pgxpool.Pool) repository.StreakRepository {
	return &streakRepository{pool: pool}
}

func (r *streakRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Streak, error) {
	const query = `
	SELECT id, user_id, name, notify, created_at, updated_at
	FROM streaks
	WHERE id = $1 AND user_id = $2
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanStreak(row)
}

func (r *streakRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Streak, error) {
	const query = `
	SELECT id, user_id, name, notify, created_at, updated_at
	FROM streaks
	WHERE user_id = $1
	ORDER BY name, id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streaks []domain.Streak
	for rows.Next() {
		streak, err := scanStreak(rows)
		if err != nil {
			return nil, err
		}
		streaks = append(streaks, *streak)
	}
	return streaks, rows.Err()
}

func (r *streakRepository) Create(ctx context.Context, streak *domain.Streak) (*domain.Streak, error) {
	if streak == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO streaks (user_id, name, notify)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		streak.UserID,
		streak.Name,
		streak.Notify,
	).Scan(&streak.ID, &streak.CreatedAt, &streak.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "streak with this name already exists")
		}
		return nil, err
	}

	return streak, nil
}

func (r *streakRepository) Update(ctx context.Context, streak *domain.Streak) error {
	if streak == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE streaks
	SET name = $3,
		notify = $4,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		streak.ID,
		streak.UserID,
		streak.Name,
		streak.Notify,
	).Scan(&streak.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrStreakNotFound
		}
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrCodeDuplicate, "streak with this name already exists")
		}
		return err
	}

	return nil
}

func (r *streakRepository) Delete(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM streaks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStreakNotFound
	}
	return nil
}

func (r *streakRepository) GetLogByDate(ctx context.Context, streakID int64, date domain.Date) (*domain.StreakLog, error) {
	const query = `
	SELECT id, user_id, streak_id, log_date, done, note, created_at, updated_at
	FROM streak_logs
	WHERE streak_id = $1 AND log_date = $2
	`
	row := r.pool.QueryRow(ctx, query, streakID, date.Time())
	return scanStreakLog(row)
}

func (r *streakRepository) ListLogsRange(ctx context.Context, userID, streakID int64, from, to domain.Date) ([]domain.StreakLog, error) {
	const query = `
	SELECT id, user_id, streak_id, log_date, done, note, created_at, updated_at
	FROM streak_logs
	WHERE user_id = $1
	  AND ($2 = 0 OR streak_id = $2)
	  AND log_date >= $3 AND log_date <= $4
	ORDER BY log_date, streak_id
	`
	rows, err := r.pool.Query(ctx, query, userID, streakID, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.StreakLog
	for rows.Next() {
		log, err := scanStreakLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func (r *streakRepository) DoneDates(ctx context.Context, streakID int64) ([]domain.Date, error) {
	const query = `
	SELECT log_date
	FROM streak_logs
	WHERE streak_id = $1 AND done = TRUE
	ORDER BY log_date
	`
	rows, err := r.pool.Query(ctx, query, streakID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []domain.Date
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		dates = append(dates, domain.DateOf(day))
	}
	return dates, rows.Err()
}

func (r *streakRepository) CreateLog(ctx context.Context, log *domain.StreakLog) (*domain.StreakLog, error) {
	if log == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO streak_logs (user_id, streak_id, log_date, done, note)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		log.UserID,
		log.StreakID,
		log.Date.Time(),
		log.Done,
		log.Note,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "streak already has a log on this date")
		}
		return nil, err
	}

	return log, nil
}

func (r *streakRepository) UpdateLog(ctx context.Context, log *domain.StreakLog) error {
	if log == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE streak_logs
	SET done = $3,
		note = $4,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		log.ID,
		log.UserID,
		log.Done,
		log.Note,
	).Scan(&log.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrStreakLogNotFound
		}
		return err
	}

	return nil
}

func (r *streakRepository) UsersWithNotify(ctx context.Context) ([]int64, error) {
	const query = `SELECT DISTINCT user_id FROM streaks WHERE notify = TRUE`

	rows, err := r.pool.Query(ctx, query)
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

func scanStreak(row rowScanner) (*domain.Streak, error) {
	var streak domain.Streak

	if err := row.Scan(
		&streak.ID,
		&streak.UserID,
		&streak.Name,
		&streak.Notify,
		&streak.CreatedAt,
		&streak.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStreakNotFound
		}
		return nil, err
	}

	return &streak, nil
}

func scanStreakLog(row rowScanner) (*domain.StreakLog, error) {
	var (
		log     domain.StreakLog
		logDate time.Time
	)

	if err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.StreakID,
		&logDate,
		&log.Done,
		&log.Note,
		&log.CreatedAt,
		&log.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStreakLogNotFound
		}
		return nil, err
	}

	log.Date = domain.DateOf(logDate)
	return &log, nil
}
