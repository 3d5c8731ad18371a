package usecase

import (
	"context"

	"github.com/daykeep/backend/domain"
)

// EventPublisher abstracts the fan-out hub. Publishing is fire and
// forget; implementations must never block the calling mutation.
type EventPublisher interface {
	Publish(userID int64, event domain.Event)
}

// StreakMirror is the slice of the streak use case that task writes
// drive. Implementations expect the caller to hold the user lock.
type StreakMirror interface {
	SyncDone(ctx context.Context, userID, streakID int64, date domain.Date, done bool) error
}

// UserLocker serializes mutations per user. Operations for one user run
// one at a time; different users proceed in parallel.
type UserLocker interface {
	Lock(userID int64)
	Unlock(userID int64)
}
