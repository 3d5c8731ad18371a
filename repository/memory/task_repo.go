package memory

import (
	"context"
	"sort"
	"time"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type taskRepository struct {
	s *Store
}

// NewTaskRepository returns a map-backed TaskRepository over the store.
func NewTaskRepository(s *Store) repository.TaskRepository {
	return &taskRepository{s: s}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (r *taskRepository) GetByName(ctx context.Context, userID, groupID int64, name string) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, task := range r.s.tasks {
		if task.UserID == userID && task.GroupID == groupID && task.Name == name {
			return cloneTask(task), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *taskRepository) ListByGroup(ctx context.Context, userID, groupID int64) ([]domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var tasks []domain.Task
	for _, task := range r.s.tasks {
		if task.UserID == userID && task.GroupID == groupID {
			tasks = append(tasks, *cloneTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Name != tasks[j].Name {
			return tasks[i].Name < tasks[j].Name
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tasks {
		if existing.GroupID == task.GroupID && existing.Name == task.Name {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "task name already used in this group")
		}
	}

	task.ID = r.s.id()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.s.tasks[task.ID] = *cloneTask(*task)
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.tasks[task.ID]
	if !ok || current.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	for _, existing := range r.s.tasks {
		if existing.ID != task.ID && existing.GroupID == task.GroupID && existing.Name == task.Name {
			return domain.NewError(domain.ErrCodeDuplicate, "task name already used in this group")
		}
	}

	task.CreatedAt = current.CreatedAt
	task.UpdatedAt = time.Now()
	r.s.tasks[task.ID] = *cloneTask(*task)
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok || task.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)

	// Mirrors the ON DELETE CASCADE on task_logs.
	for logID, log := range r.s.taskLogs {
		if log.TaskID == id {
			delete(r.s.taskLogs, logID)
		}
	}
	for pinID, pin := range r.s.pins {
		if pin.TaskID == id {
			delete(r.s.pins, pinID)
		}
	}
	return nil
}
