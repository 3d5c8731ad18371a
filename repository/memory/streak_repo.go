package memory

import (
	"context"
	"sort"
	"time"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type streakRepository struct {
	s *Store
}

// NewStreakRepository returns a map-backed StreakRepository over the store.
func NewStreakRepository(s *Store) repository.StreakRepository {
	return &streakRepository{s: s}
}

func (r *streakRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Streak, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	streak, ok := r.s.streaks[id]
	if !ok || streak.UserID != userID {
		return nil, domain.ErrStreakNotFound
	}
	out := streak
	return &out, nil
}

func (r *streakRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Streak, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var streaks []domain.Streak
	for _, streak := range r.s.streaks {
		if streak.UserID == userID {
			streaks = append(streaks, streak)
		}
	}
	sort.Slice(streaks, func(i, j int) bool {
		if streaks[i].Name != streaks[j].Name {
			return streaks[i].Name < streaks[j].Name
		}
		return streaks[i].ID < streaks[j].ID
	})
	return streaks, nil
}

func (r *streakRepository) Create(ctx context.Context, streak *domain.Streak) (*domain.Streak, error) {
	if streak == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.streaks {
		if existing.UserID == streak.UserID && existing.Name == streak.Name {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "streak with this name already exists")
		}
	}

	streak.ID = r.s.id()
	streak.CreatedAt = time.Now()
	streak.UpdatedAt = streak.CreatedAt
	r.s.streaks[streak.ID] = *streak
	return streak, nil
}

func (r *streakRepository) Update(ctx context.Context, streak *domain.Streak) error {
	if streak == nil {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.streaks[streak.ID]
	if !ok || current.UserID != streak.UserID {
		return domain.ErrStreakNotFound
	}
	for _, existing := range r.s.streaks {
		if existing.ID != streak.ID && existing.UserID == streak.UserID && existing.Name == streak.Name {
			return domain.NewError(domain.ErrCodeDuplicate, "streak with this name already exists")
		}
	}

	streak.CreatedAt = current.CreatedAt
	streak.UpdatedAt = time.Now()
	r.s.streaks[streak.ID] = *streak
	return nil
}

func (r *streakRepository) Delete(ctx context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	streak, ok := r.s.streaks[id]
	if !ok || streak.UserID != userID {
		return domain.ErrStreakNotFound
	}
	delete(r.s.streaks, id)

	// Matches the FK behavior: logs cascade, linked tasks detach.
	for logID, log := range r.s.streakLogs {
		if log.StreakID == id {
			delete(r.s.streakLogs, logID)
		}
	}
	for taskID, task := range r.s.tasks {
		if task.StreakID != nil && *task.StreakID == id {
			task.StreakID = nil
			r.s.tasks[taskID] = task
		}
	}
	return nil
}

func (r *streakRepository) GetLogByDate(ctx context.Context, streakID int64, date domain.Date) (*domain.StreakLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, log := range r.s.streakLogs {
		if log.StreakID == streakID && log.Date == date {
			out := log
			return &out, nil
		}
	}
	return nil, domain.ErrStreakLogNotFound
}

func (r *streakRepository) ListLogsRange(ctx context.Context, userID, streakID int64, from, to domain.Date) ([]domain.StreakLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var logs []domain.StreakLog
	for _, log := range r.s.streakLogs {
		if log.UserID != userID {
			continue
		}
		if streakID != 0 && log.StreakID != streakID {
			continue
		}
		if log.Date.Before(from) || log.Date.After(to) {
			continue
		}
		logs = append(logs, log)
	}
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Date != logs[j].Date {
			return logs[i].Date.Before(logs[j].Date)
		}
		return logs[i].StreakID < logs[j].StreakID
	})
	return logs, nil
}

func (r *streakRepository) DoneDates(ctx context.Context, streakID int64) ([]domain.Date, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var dates []domain.Date
	for _, log := range r.s.streakLogs {
		if log.StreakID == streakID && log.Done {
			dates = append(dates, log.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (r *streakRepository) CreateLog(ctx context.Context, log *domain.StreakLog) (*domain.StreakLog, error) {
	if log == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.streakLogs {
		if existing.StreakID == log.StreakID && existing.Date == log.Date {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "streak already has a log on this date")
		}
	}

	log.ID = r.s.id()
	log.CreatedAt = time.Now()
	log.UpdatedAt = log.CreatedAt
	r.s.streakLogs[log.ID] = *log
	return log, nil
}

func (r *streakRepository) UpdateLog(ctx context.Context, log *domain.StreakLog) error {
	if log == nil {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.streakLogs[log.ID]
	if !ok || current.UserID != log.UserID {
		return domain.ErrStreakLogNotFound
	}

	log.CreatedAt = current.CreatedAt
	log.UpdatedAt = time.Now()
	r.s.streakLogs[log.ID] = *log
	return nil
}

func (r *streakRepository) UsersWithNotify(ctx context.Context) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[int64]bool)
	var ids []int64
	for _, streak := range r.s.streaks {
		if streak.Notify && !seen[streak.UserID] {
			seen[streak.UserID] = true
			ids = append(ids, streak.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
