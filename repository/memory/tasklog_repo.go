package memory

import (
	"context"
	"sort"
	"time"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type taskLogRepository struct {
	s *Store
}

// NewTaskLogRepository returns a map-backed TaskLogRepository over the store.
func NewTaskLogRepository(s *Store) repository.TaskLogRepository {
	return &taskLogRepository{s: s}
}

func (r *taskLogRepository) GetByID(ctx context.Context, userID, id int64) (*domain.TaskLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	log, ok := r.s.taskLogs[id]
	if !ok || log.UserID != userID {
		return nil, domain.ErrTaskLogNotFound
	}
	out := log
	return &out, nil
}

func (r *taskLogRepository) GetByTaskDate(ctx context.Context, taskID int64, date domain.Date) (*domain.TaskLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, log := range r.s.taskLogs {
		if log.TaskID == taskID && log.Date == date {
			out := log
			return &out, nil
		}
	}
	return nil, domain.ErrTaskLogNotFound
}

func (r *taskLogRepository) ListRange(ctx context.Context, filter repository.LogFilter) ([]domain.TaskLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var logs []domain.TaskLog
	for _, log := range r.s.taskLogs {
		if log.UserID != filter.UserID {
			continue
		}
		if log.Date.Before(filter.From) || log.Date.After(filter.To) {
			continue
		}
		if filter.GroupID != 0 {
			task, ok := r.s.tasks[log.TaskID]
			if !ok || task.GroupID != filter.GroupID {
				continue
			}
		}
		logs = append(logs, log)
	}
	sort.Slice(logs, func(i, j int) bool {
		a, b := logs[i], logs[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Done != b.Done {
			return !a.Done
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.ID < b.ID
	})
	return logs, nil
}

func (r *taskLogRepository) ListForTask(ctx context.Context, taskID int64) ([]domain.TaskLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var logs []domain.TaskLog
	for _, log := range r.s.taskLogs {
		if log.TaskID == taskID {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})
	return logs, nil
}

func (r *taskLogRepository) Create(ctx context.Context, log *domain.TaskLog) (*domain.TaskLog, error) {
	if log == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.taskLogs {
		if existing.TaskID == log.TaskID && existing.Date == log.Date {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "task already has a log on this date")
		}
	}

	log.ID = r.s.id()
	log.CreatedAt = time.Now()
	log.UpdatedAt = log.CreatedAt
	r.s.taskLogs[log.ID] = *log
	return log, nil
}

func (r *taskLogRepository) Update(ctx context.Context, log *domain.TaskLog) error {
	if log == nil {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.taskLogs[log.ID]
	if !ok || current.UserID != log.UserID {
		return domain.ErrTaskLogNotFound
	}
	for _, existing := range r.s.taskLogs {
		if existing.ID != log.ID && existing.TaskID == log.TaskID && existing.Date == log.Date {
			return domain.NewError(domain.ErrCodeDuplicate, "task already has a log on this date")
		}
	}

	log.CreatedAt = current.CreatedAt
	log.UpdatedAt = time.Now()
	r.s.taskLogs[log.ID] = *log
	return nil
}

func (r *taskLogRepository) Delete(ctx context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	log, ok := r.s.taskLogs[id]
	if !ok || log.UserID != userID {
		return domain.ErrTaskLogNotFound
	}
	delete(r.s.taskLogs, id)
	return nil
}

func (r *taskLogRepository) CountForTask(ctx context.Context, taskID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, log := range r.s.taskLogs {
		if log.TaskID == taskID {
			count++
		}
	}
	return count, nil
}

func (r *taskLogRepository) PartitionIDs(ctx context.Context, userID int64, date domain.Date, done bool) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type member struct {
		id    int64
		order int
	}
	var members []member
	for _, log := range r.s.taskLogs {
		if log.UserID == userID && log.Date == date && log.Done == done {
			members = append(members, member{id: log.ID, order: log.SortOrder})
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].order != members[j].order {
			return members[i].order < members[j].order
		}
		return members[i].id < members[j].id
	})

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.id)
	}
	return ids, nil
}

func (r *taskLogRepository) NextSortOrder(ctx context.Context, userID int64, date domain.Date, done bool) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	max := 0
	for _, log := range r.s.taskLogs {
		if log.UserID == userID && log.Date == date && log.Done == done && log.SortOrder > max {
			max = log.SortOrder
		}
	}
	return max + 1, nil
}

func (r *taskLogRepository) Repack(ctx context.Context, userID int64, date domain.Date, done bool, orderedIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, id := range orderedIDs {
		log, ok := r.s.taskLogs[id]
		if !ok || log.UserID != userID || log.Date != date || log.Done != done {
			continue
		}
		log.SortOrder = i + 1
		log.UpdatedAt = time.Now()
		r.s.taskLogs[id] = log
	}
	return nil
}

func (r *taskLogRepository) DoneTaskRefsOnDate(ctx context.Context, streakID int64, date domain.Date) ([]domain.BlockingTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var refs []domain.BlockingTask
	for _, log := range r.s.taskLogs {
		if !log.Done || log.Date != date {
			continue
		}
		task, ok := r.s.tasks[log.TaskID]
		if !ok || task.StreakID == nil || *task.StreakID != streakID {
			continue
		}
		ref := domain.BlockingTask{TaskID: task.ID, TaskName: task.Name, GroupID: task.GroupID}
		if group, ok := r.s.groups[task.GroupID]; ok {
			ref.GroupName = group.Name
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].GroupName != refs[j].GroupName {
			return refs[i].GroupName < refs[j].GroupName
		}
		return refs[i].TaskName < refs[j].TaskName
	})
	return refs, nil
}
