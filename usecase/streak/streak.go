// Package streak owns streak metadata, direct day toggles and the run
// length computation. It is also the single writer of streak logs: task
// driven changes enter through SyncDone so the "any linked done task
// keeps the day done" rule is enforced in one place.
package streak

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/internal/metrics"
	"github.com/daykeep/backend/repository"
	"github.com/daykeep/backend/usecase"
)

type UseCase struct {
	streaks repository.StreakRepository
	logs    repository.TaskLogRepository
	events  usecase.EventPublisher
	locks   usecase.UserLocker
	logger  *zap.Logger
	now     func() time.Time
}

func New(streaks repository.StreakRepository, logs repository.TaskLogRepository, events usecase.EventPublisher, locks usecase.UserLocker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		streaks: streaks,
		logs:    logs,
		events:  events,
		locks:   locks,
		logger:  logger,
		now:     time.Now,
	}
}

// StreakWithCount pairs a streak with its live run length.
type StreakWithCount struct {
	domain.Streak
	Count int `json:"count"`
}

// ListStreaks returns the user's streaks with run lengths relative to
// today. Clients pass their local today; a zero date falls back to the
// server clock.
func (uc *UseCase) ListStreaks(ctx context.Context, userID int64, today domain.Date) ([]StreakWithCount, error) {
	streaks, err := uc.streaks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if today.IsZero() {
		today = domain.DateOf(uc.now())
	}
	out := make([]StreakWithCount, 0, len(streaks))
	for _, s := range streaks {
		dates, err := uc.streaks.DoneDates(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, StreakWithCount{Streak: s, Count: domain.StreakCount(dates, today)})
	}
	return out, nil
}

func (uc *UseCase) GetStreak(ctx context.Context, userID, id int64, today domain.Date) (*StreakWithCount, error) {
	streak, err := uc.streaks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	dates, err := uc.streaks.DoneDates(ctx, id)
	if err != nil {
		return nil, err
	}
	if today.IsZero() {
		today = domain.DateOf(uc.now())
	}
	return &StreakWithCount{Streak: *streak, Count: domain.StreakCount(dates, today)}, nil
}

func (uc *UseCase) CreateStreak(ctx context.Context, userID int64, name string, notify bool) (*domain.Streak, error) {
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "streak name is required")
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	streak, err := uc.streaks.Create(ctx, &domain.Streak{
		UserID: userID,
		Name:   name,
		Notify: notify,
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{Type: domain.EventStreakMeta, StreakID: streak.ID})
	return streak, nil
}

// UpdateStreakInput is a partial update; nil fields stay untouched.
type UpdateStreakInput struct {
	Name   *string
	Notify *bool
}

func (uc *UseCase) UpdateStreak(ctx context.Context, userID, id int64, input UpdateStreakInput) (*domain.Streak, error) {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	streak, err := uc.streaks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "streak name is required")
		}
		streak.Name = *input.Name
	}
	if input.Notify != nil {
		streak.Notify = *input.Notify
	}
	if err := uc.streaks.Update(ctx, streak); err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{Type: domain.EventStreakMeta, StreakID: streak.ID})
	return streak, nil
}

// DeleteStreak removes the streak with its logs. Tasks that pointed at
// it stay behind, unlinked.
func (uc *UseCase) DeleteStreak(ctx context.Context, userID, id int64) error {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	if err := uc.streaks.Delete(ctx, userID, id); err != nil {
		return err
	}

	uc.events.Publish(userID, domain.Event{Type: domain.EventStreakMeta, StreakID: id})
	return nil
}

func (uc *UseCase) ListLogs(ctx context.Context, userID, streakID int64, from, to domain.Date) ([]domain.StreakLog, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid date range")
	}
	if streakID != 0 {
		if _, err := uc.streaks.GetByID(ctx, userID, streakID); err != nil {
			return nil, err
		}
	}
	return uc.streaks.ListLogsRange(ctx, userID, streakID, from, to)
}

// Toggle flips the streak's state on one day from the streak surface
// itself. Turning a day off is refused while a linked task still holds
// a done log on that date; the offending tasks ride along on the error.
func (uc *UseCase) Toggle(ctx context.Context, userID, streakID int64, date domain.Date, note string) (*domain.StreakLog, error) {
	if date.IsZero() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "date is required")
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	streak, err := uc.streaks.GetByID(ctx, userID, streakID)
	if err != nil {
		return nil, err
	}

	log, err := uc.streaks.GetLogByDate(ctx, streakID, date)
	switch {
	case err == nil && log.Done:
		blockers, berr := uc.logs.DoneTaskRefsOnDate(ctx, streakID, date)
		if berr != nil {
			return nil, berr
		}
		if len(blockers) > 0 {
			return nil, domain.NewError(domain.ErrCodeConflict, "day is kept done by linked tasks").WithDetails(blockers)
		}
		log.Done = false
		if note != "" {
			log.Note = note
		}
		if err := uc.streaks.UpdateLog(ctx, log); err != nil {
			return nil, err
		}
	case err == nil:
		log.Done = true
		if note != "" {
			log.Note = note
		}
		if err := uc.streaks.UpdateLog(ctx, log); err != nil {
			return nil, err
		}
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		log, err = uc.streaks.CreateLog(ctx, &domain.StreakLog{
			UserID:   userID,
			StreakID: streakID,
			Date:     date,
			Done:     true,
			Note:     note,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	uc.publishLog(userID, streak.ID, date, log.Done)
	return log, nil
}

// SyncDone mirrors a linked task's day state onto the streak. Callers
// must already hold the user lock. Turning a day on always lands; turning
// it off is skipped while any other linked task still holds a done log on
// that date. The day's row is re-read here, after the task change, so the
// check sees current state rather than the caller's.
func (uc *UseCase) SyncDone(ctx context.Context, userID, streakID int64, date domain.Date, done bool) error {
	log, err := uc.streaks.GetLogByDate(ctx, streakID, date)
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return err
	}
	missing := err != nil

	if done {
		switch {
		case missing:
			if _, err := uc.streaks.CreateLog(ctx, &domain.StreakLog{
				UserID:   userID,
				StreakID: streakID,
				Date:     date,
				Done:     true,
			}); err != nil {
				return err
			}
		case !log.Done:
			log.Done = true
			if err := uc.streaks.UpdateLog(ctx, log); err != nil {
				return err
			}
		default:
			return nil
		}

		metrics.StreakSyncs.Inc()
		uc.publishLog(userID, streakID, date, true)
		return nil
	}

	if missing || !log.Done {
		return nil
	}

	blockers, err := uc.logs.DoneTaskRefsOnDate(ctx, streakID, date)
	if err != nil {
		return err
	}
	if len(blockers) > 0 {
		return nil
	}

	log.Done = false
	if err := uc.streaks.UpdateLog(ctx, log); err != nil {
		return err
	}

	metrics.StreakSyncs.Inc()
	uc.publishLog(userID, streakID, date, false)
	return nil
}

func (uc *UseCase) publishLog(userID, streakID int64, date domain.Date, done bool) {
	uc.events.Publish(userID, domain.Event{
		Type:     domain.EventStreakLogUpdated,
		StreakID: streakID,
		Date:     date.String(),
		Done:     &done,
	})
}
