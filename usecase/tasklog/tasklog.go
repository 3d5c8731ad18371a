// Package tasklog is the single authority over task log rows: every
// create, edit, move and delete funnels through here, along with the
// ordering bookkeeping and the streak mirroring those changes trigger.
package tasklog

import (
	"context"

	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/internal/metrics"
	"github.com/daykeep/backend/internal/ordering"
	"github.com/daykeep/backend/repository"
	"github.com/daykeep/backend/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	logs   repository.TaskLogRepository
	groups repository.GroupRepository
	mirror usecase.StreakMirror
	events usecase.EventPublisher
	locks  usecase.UserLocker
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logs repository.TaskLogRepository, groups repository.GroupRepository, mirror usecase.StreakMirror, events usecase.EventPublisher, locks usecase.UserLocker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logs:   logs,
		groups: groups,
		mirror: mirror,
		events: events,
		locks:  locks,
		logger: logger,
	}
}

// TaskSelector names the task a write applies to: an existing task by
// id, or a task to find or create by (group, name).
type TaskSelector struct {
	ID        *int64
	GroupID   int64
	Name      string
	ExtraInfo string
}

func (s TaskSelector) validate() error {
	if s.ID != nil {
		return nil
	}
	if s.GroupID == 0 || s.Name == "" {
		return domain.NewError(domain.ErrCodeInvalid, "task id or group and name required")
	}
	return nil
}

type SetLogInput struct {
	Task  TaskSelector
	LogID *int64
	Date  domain.Date
	Done  bool
	// ExtraInfo nil leaves an existing row's text untouched.
	ExtraInfo *string
}

type SetLogResult struct {
	Log         *domain.TaskLog
	Task        *domain.Task
	TaskCreated bool
}

// SetLog writes one (task, date) cell. A row whose done state is
// unchanged keeps its sort order; a state change or a new row appends
// to the destination partition. The linked streak, if any, is mirrored
// afterward.
func (uc *UseCase) SetLog(ctx context.Context, userID int64, input SetLogInput) (*SetLogResult, error) {
	if input.Date.IsZero() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "date is required")
	}
	if err := input.Task.validate(); err != nil {
		return nil, err
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	task, created, err := uc.resolveTask(ctx, userID, input.Task)
	if err != nil {
		return nil, err
	}

	log, err := uc.resolveLog(ctx, userID, task.ID, input)
	if err != nil {
		return nil, err
	}

	switch {
	case log == nil:
		order, err := uc.logs.NextSortOrder(ctx, userID, input.Date, input.Done)
		if err != nil {
			return nil, err
		}
		log = &domain.TaskLog{
			UserID:    userID,
			TaskID:    task.ID,
			Date:      input.Date,
			Done:      input.Done,
			SortOrder: order,
		}
		if input.ExtraInfo != nil {
			log.ExtraInfo = *input.ExtraInfo
		}
		if log, err = uc.logs.Create(ctx, log); err != nil {
			return nil, err
		}

	case log.Done == input.Done:
		// Same column; only the text may change, order stays put.
		if input.ExtraInfo != nil && *input.ExtraInfo != log.ExtraInfo {
			log.ExtraInfo = *input.ExtraInfo
			if err := uc.logs.Update(ctx, log); err != nil {
				return nil, err
			}
		}

	default:
		order, err := uc.logs.NextSortOrder(ctx, userID, input.Date, input.Done)
		if err != nil {
			return nil, err
		}
		log.Done = input.Done
		log.SortOrder = order
		if input.ExtraInfo != nil {
			log.ExtraInfo = *input.ExtraInfo
		}
		if err := uc.logs.Update(ctx, log); err != nil {
			return nil, err
		}
	}

	if task.Linked() {
		if err := uc.mirror.SyncDone(ctx, userID, *task.StreakID, input.Date, input.Done); err != nil {
			return nil, err
		}
	}

	metrics.LogMutations.WithLabelValues("set").Inc()

	event := domain.Event{
		Type:    domain.EventTaskLogUpdated,
		GroupID: task.GroupID,
		TaskID:  task.ID,
		LogID:   log.ID,
		Date:    log.Date.String(),
		Done:    &log.Done,
	}
	if created {
		event.Task = task
	}
	uc.events.Publish(userID, event)

	return &SetLogResult{Log: log, Task: task, TaskCreated: created}, nil
}

type MoveLogInput struct {
	LogID       int64
	FromDate    domain.Date
	ToDate      domain.Date
	ToDone      bool
	TargetLogID *int64
	Position    ordering.Position
	// ExtraInfo nil leaves the row's text untouched.
	ExtraInfo *string
}

// MoveLog relocates a row inside or across (date, done) partitions and
// places it relative to a target row. The vacated partition is repacked
// on cross-partition moves, then the destination, then streak state is
// re-mirrored for both ends.
func (uc *UseCase) MoveLog(ctx context.Context, userID int64, input MoveLogInput) (*domain.TaskLog, error) {
	if input.FromDate.IsZero() || input.ToDate.IsZero() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "from and to dates are required")
	}
	if input.Position == "" {
		input.Position = ordering.After
	}
	if !ordering.ValidPosition(input.Position) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "position must be before or after")
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	log, err := uc.logs.GetByID(ctx, userID, input.LogID)
	if err != nil {
		return nil, err
	}
	if log.Date != input.FromDate {
		return nil, domain.NewError(domain.ErrCodeInvalid, "log is not on the given source date")
	}

	task, err := uc.tasks.GetByID(ctx, userID, log.TaskID)
	if err != nil {
		return nil, err
	}

	var (
		fromDate = log.Date
		wasDone  = log.Done
		sameDate = log.Date == input.ToDate
		sameDone = log.Done == input.ToDone
	)

	if sameDate && sameDone {
		if input.ExtraInfo != nil && *input.ExtraInfo != log.ExtraInfo {
			log.ExtraInfo = *input.ExtraInfo
			if err := uc.logs.Update(ctx, log); err != nil {
				return nil, err
			}
		}
		if err := uc.placeInPartition(ctx, userID, input.ToDate, input.ToDone, log.ID, input.TargetLogID, input.Position); err != nil {
			return nil, err
		}
	} else {
		log.Date = input.ToDate
		log.Done = input.ToDone
		if input.ExtraInfo != nil {
			log.ExtraInfo = *input.ExtraInfo
		}
		if err := uc.logs.Update(ctx, log); err != nil {
			return nil, err
		}

		// The row's key already changed, so the vacated partition no
		// longer contains it; repacking closes the gap it left.
		vacated, err := uc.logs.PartitionIDs(ctx, userID, fromDate, wasDone)
		if err != nil {
			return nil, err
		}
		if err := uc.logs.Repack(ctx, userID, fromDate, wasDone, vacated); err != nil {
			return nil, err
		}

		if err := uc.placeInPartition(ctx, userID, input.ToDate, input.ToDone, log.ID, input.TargetLogID, input.Position); err != nil {
			return nil, err
		}
	}

	if task.Linked() {
		if err := uc.mirror.SyncDone(ctx, userID, *task.StreakID, input.ToDate, input.ToDone); err != nil {
			return nil, err
		}
		if !sameDate && wasDone {
			if err := uc.mirror.SyncDone(ctx, userID, *task.StreakID, fromDate, false); err != nil {
				return nil, err
			}
		}
	}

	// Re-read so the caller sees the repacked sort order.
	log, err = uc.logs.GetByID(ctx, userID, log.ID)
	if err != nil {
		return nil, err
	}

	metrics.LogMutations.WithLabelValues("move").Inc()

	uc.events.Publish(userID, domain.Event{
		Type:     domain.EventTaskLogMoved,
		GroupID:  task.GroupID,
		TaskID:   task.ID,
		LogID:    log.ID,
		FromDate: fromDate.String(),
		Date:     log.Date.String(),
		Done:     &log.Done,
	})

	return log, nil
}

type DeleteLogResult struct {
	LogID    int64
	TaskID   int64
	TaskGone bool
}

// DeleteLog removes one row. A task left with no logs at all is
// orphaned and collected together with any pins referencing it.
func (uc *UseCase) DeleteLog(ctx context.Context, userID, logID int64) (*DeleteLogResult, error) {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	log, err := uc.logs.GetByID(ctx, userID, logID)
	if err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, userID, log.TaskID)
	if err != nil {
		return nil, err
	}

	if err := uc.logs.Delete(ctx, userID, logID); err != nil {
		return nil, err
	}

	if log.Done && task.Linked() {
		if err := uc.mirror.SyncDone(ctx, userID, *task.StreakID, log.Date, false); err != nil {
			return nil, err
		}
	}

	result := &DeleteLogResult{LogID: logID, TaskID: task.ID}

	remaining, err := uc.logs.CountForTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		if err := uc.groups.DeletePinsForTask(ctx, task.ID); err != nil {
			return nil, err
		}
		if err := uc.tasks.Delete(ctx, userID, task.ID); err != nil {
			return nil, err
		}
		result.TaskGone = true
	}

	metrics.LogMutations.WithLabelValues("delete").Inc()

	uc.events.Publish(userID, domain.Event{
		Type:     domain.EventTaskLogDeleted,
		GroupID:  task.GroupID,
		TaskID:   task.ID,
		LogID:    logID,
		Date:     log.Date.String(),
		TaskGone: result.TaskGone,
	})

	return result, nil
}

// GetLog returns one row, ownership checked.
func (uc *UseCase) GetLog(ctx context.Context, userID, logID int64) (*domain.TaskLog, error) {
	return uc.logs.GetByID(ctx, userID, logID)
}

// ListLogs returns the rows in the filter's date range ordered the way
// boards render them: date, then column, then sort order.
func (uc *UseCase) ListLogs(ctx context.Context, filter repository.LogFilter) ([]domain.TaskLog, error) {
	if filter.From.IsZero() || filter.To.IsZero() || filter.To.Before(filter.From) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid date range")
	}
	return uc.logs.ListRange(ctx, filter)
}

// resolveTask maps the selector to a task row, creating one when the
// selector names a group and a name with no existing match.
func (uc *UseCase) resolveTask(ctx context.Context, userID int64, sel TaskSelector) (*domain.Task, bool, error) {
	if sel.ID != nil {
		task, err := uc.tasks.GetByID(ctx, userID, *sel.ID)
		return task, false, err
	}

	if _, err := uc.groups.GetByID(ctx, userID, sel.GroupID); err != nil {
		return nil, false, err
	}

	task, err := uc.tasks.GetByName(ctx, userID, sel.GroupID, sel.Name)
	if err == nil {
		return task, false, nil
	}
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, false, err
	}

	task, err = uc.tasks.Create(ctx, &domain.Task{
		UserID:    userID,
		GroupID:   sel.GroupID,
		Name:      sel.Name,
		ExtraInfo: sel.ExtraInfo,
	})
	if err != nil {
		return nil, false, err
	}

	uc.logger.Debug("task created from log write",
		zap.Int64("user_id", userID),
		zap.Int64("task_id", task.ID),
	)
	return task, true, nil
}

// resolveLog finds the row SetLog targets. With an explicit log id the
// row must belong to the resolved task and sit on the requested date.
// Without one, the (task, date) pair decides; a missing row means insert.
func (uc *UseCase) resolveLog(ctx context.Context, userID, taskID int64, input SetLogInput) (*domain.TaskLog, error) {
	if input.LogID != nil {
		log, err := uc.logs.GetByID(ctx, userID, *input.LogID)
		if err != nil {
			return nil, err
		}
		if log.TaskID != taskID {
			return nil, domain.ErrTaskLogNotFound
		}
		if log.Date != input.Date {
			return nil, domain.NewError(domain.ErrCodeInvalid, "log is not on the given date")
		}
		return log, nil
	}

	log, err := uc.logs.GetByTaskDate(ctx, taskID, input.Date)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return log, nil
}

// placeInPartition runs the placeRelative/repack pair over one
// partition's current members.
func (uc *UseCase) placeInPartition(ctx context.Context, userID int64, date domain.Date, done bool, movingID int64, targetID *int64, pos ordering.Position) error {
	ids, err := uc.logs.PartitionIDs(ctx, userID, date, done)
	if err != nil {
		return err
	}
	ordered := ordering.PlaceRelative(ids, movingID, targetID, pos)
	return uc.logs.Repack(ctx, userID, date, done, ordered)
}
