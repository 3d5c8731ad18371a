// Package task owns task metadata: rename, default extra info, streak
// linking. Tasks are born from log writes and normally die with their
// last log; deleting one here removes its remaining logs as well.
package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
	"github.com/daykeep/backend/usecase"
)

type UseCase struct {
	tasks   repository.TaskRepository
	logs    repository.TaskLogRepository
	groups  repository.GroupRepository
	streaks repository.StreakRepository
	mirror  usecase.StreakMirror
	events  usecase.EventPublisher
	locks   usecase.UserLocker
	logger  *zap.Logger
}

func New(tasks repository.TaskRepository, logs repository.TaskLogRepository, groups repository.GroupRepository, streaks repository.StreakRepository, mirror usecase.StreakMirror, events usecase.EventPublisher, locks usecase.UserLocker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:   tasks,
		logs:    logs,
		groups:  groups,
		streaks: streaks,
		mirror:  mirror,
		events:  events,
		locks:   locks,
		logger:  logger,
	}
}

func (uc *UseCase) GetTask(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, userID, id)
}

func (uc *UseCase) ListByGroup(ctx context.Context, userID, groupID int64) ([]domain.Task, error) {
	if _, err := uc.groups.GetByID(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return uc.tasks.ListByGroup(ctx, userID, groupID)
}

// UpdateTaskInput is a partial update; nil fields stay untouched.
// StreakID zero clears the link, any other value links after an
// ownership check.
type UpdateTaskInput struct {
	Name      *string
	ExtraInfo *string
	StreakID  *int64
}

// UpdateTask patches task metadata. Linking a streak takes effect from
// the next log write on; history already recorded is not re-mirrored.
func (uc *UseCase) UpdateTask(ctx context.Context, userID, id int64, input UpdateTaskInput) (*domain.Task, error) {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "task name is required")
		}
		task.Name = *input.Name
	}
	if input.ExtraInfo != nil {
		task.ExtraInfo = *input.ExtraInfo
	}
	if input.StreakID != nil {
		if *input.StreakID == 0 {
			task.StreakID = nil
		} else {
			if _, err := uc.streaks.GetByID(ctx, userID, *input.StreakID); err != nil {
				return nil, err
			}
			streakID := *input.StreakID
			task.StreakID = &streakID
		}
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{
		Type:    domain.EventTaskMeta,
		GroupID: task.GroupID,
		TaskID:  task.ID,
	})

	return task, nil
}

// DeleteTask removes a task with all its logs and pins. Days the task
// had marked done are re-mirrored so a linked streak does not keep
// credit from rows that no longer exist.
func (uc *UseCase) DeleteTask(ctx context.Context, userID, id int64) error {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	logs, err := uc.logs.ListForTask(ctx, task.ID)
	if err != nil {
		return err
	}

	if err := uc.tasks.Delete(ctx, userID, task.ID); err != nil {
		return err
	}

	if task.Linked() {
		for _, log := range logs {
			if !log.Done {
				continue
			}
			if err := uc.mirror.SyncDone(ctx, userID, *task.StreakID, log.Date, false); err != nil {
				return err
			}
		}
	}

	for _, log := range logs {
		uc.events.Publish(userID, domain.Event{
			Type:     domain.EventTaskLogDeleted,
			GroupID:  task.GroupID,
			TaskID:   task.ID,
			LogID:    log.ID,
			Date:     log.Date.String(),
			TaskGone: true,
		})
	}
	uc.events.Publish(userID, domain.Event{
		Type:     domain.EventTaskMeta,
		GroupID:  task.GroupID,
		TaskID:   task.ID,
		TaskGone: true,
	})

	uc.logger.Debug("task deleted",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", task.ID),
		zap.Int("logs_removed", len(logs)),
	)
	return nil
}
