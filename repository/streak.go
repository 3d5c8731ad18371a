package repository

import (
	"context"

	"github.com/daykeep/backend/domain"
)

// StreakRepository persists streaks and their per-date logs. Streak names
// are unique per user (DUPLICATE on collision); streak logs are unique per
// (streak, date).
type StreakRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.Streak, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Streak, error)
	Create(ctx context.Context, streak *domain.Streak) (*domain.Streak, error)
	Update(ctx context.Context, streak *domain.Streak) error
	Delete(ctx context.Context, userID, id int64) error

	GetLogByDate(ctx context.Context, streakID int64, date domain.Date) (*domain.StreakLog, error)
	ListLogsRange(ctx context.Context, userID, streakID int64, from, to domain.Date) ([]domain.StreakLog, error)
	DoneDates(ctx context.Context, streakID int64) ([]domain.Date, error)
	CreateLog(ctx context.Context, log *domain.StreakLog) (*domain.StreakLog, error)
	UpdateLog(ctx context.Context, log *domain.StreakLog) error

	// UsersWithNotify lists owners of at least one notification-enabled
	// streak, for the reminder sweep.
	UsersWithNotify(ctx context.Context) ([]int64, error)
}
