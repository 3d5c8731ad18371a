package repository

import (
	"context"

	"github.com/daykeep/backend/domain"
)

// LogFilter bounds a task-log range query.
type LogFilter struct {
	UserID  int64
	GroupID int64
	From    domain.Date
	To      domain.Date
}

// TaskLogRepository persists task logs and owns the sort-order partition
// primitives. A partition is keyed by (user, date, done); NextSortOrder and
// Repack are the storage half of the ordered partition store, paired with
// the pure placement in internal/ordering.
type TaskLogRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.TaskLog, error)
	GetByTaskDate(ctx context.Context, taskID int64, date domain.Date) (*domain.TaskLog, error)
	ListRange(ctx context.Context, filter LogFilter) ([]domain.TaskLog, error)
	ListForTask(ctx context.Context, taskID int64) ([]domain.TaskLog, error)
	Create(ctx context.Context, log *domain.TaskLog) (*domain.TaskLog, error)
	Update(ctx context.Context, log *domain.TaskLog) error
	Delete(ctx context.Context, userID, id int64) error
	CountForTask(ctx context.Context, taskID int64) (int, error)

	// PartitionIDs returns the partition's member ids in sort order.
	// An unknown partition is an empty list, never an error.
	PartitionIDs(ctx context.Context, userID int64, date domain.Date, done bool) ([]int64, error)
	// NextSortOrder returns one past the partition's maximum order, or 1
	// for an empty partition.
	NextSortOrder(ctx context.Context, userID int64, date domain.Date, done bool) (int, error)
	// Repack rewrites each listed member's sort order to its 1-based
	// position, leaving the partition dense.
	Repack(ctx context.Context, userID int64, date domain.Date, done bool, orderedIDs []int64) error

	// DoneTaskRefsOnDate lists tasks linked to the streak that hold a done
	// log on the date, with the names needed for a conflict message.
	DoneTaskRefsOnDate(ctx context.Context, streakID int64, date domain.Date) ([]domain.BlockingTask, error)
}
