package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/internal/infrastructure/marker"
	"github.com/daykeep/backend/internal/metrics"
	"github.com/daykeep/backend/repository"
	"github.com/daykeep/backend/usecase"
)

// ReminderConfig controls the reminder sweep.
type ReminderConfig struct {
	// Schedule is a cron spec; sweeps before Hour (local time) are no-ops.
	Schedule      string
	Hour          int
	RetentionDays int
}

// Reminder periodically nudges users about streaks still open today.
// A marker per (user, day) keeps each user at one reminder sweep a day,
// survives restarts, and ages out after the retention window.
type Reminder struct {
	streaks repository.StreakRepository
	markers *marker.Store
	events  usecase.EventPublisher
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ReminderConfig
}

func NewReminder(
	streaks repository.StreakRepository,
	markers *marker.Store,
	events usecase.EventPublisher,
	cfg ReminderConfig,
	logger *zap.Logger,
) *Reminder {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 10m"
	}
	if cfg.Hour <= 0 || cfg.Hour > 23 {
		cfg.Hour = 18
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reminder{
		streaks: streaks,
		markers: markers,
		events:  events,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	_, _ = r.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := r.Sweep(ctx, time.Now()); err != nil {
			r.logger.Error("reminder sweep failed", zap.Error(err))
		}
	})

	return r
}

// Start launches the cron scheduler.
func (r *Reminder) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("reminder service started", zap.String("schedule", r.cfg.Schedule), zap.Int("hour", r.cfg.Hour))
}

// Stop gracefully stops the scheduler.
func (r *Reminder) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("reminder service stopped")
}

// Sweep evaluates every notification-enabled streak once per user per
// day, publishing a reminder event for each streak still open today.
func (r *Reminder) Sweep(ctx context.Context, now time.Time) error {
	if now.Hour() < r.cfg.Hour {
		return nil
	}
	today := domain.DateOf(now)

	userIDs, err := r.streaks.UsersWithNotify(ctx)
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		seen, err := r.markers.Seen(userID, today)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		sent, err := r.remindUser(ctx, userID, today)
		if err != nil {
			r.logger.Error("reminder evaluation failed", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if err := r.markers.Mark(userID, today); err != nil {
			return err
		}
		if sent > 0 {
			r.logger.Info("reminders published", zap.Int64("user_id", userID), zap.Int("count", sent))
		}
	}

	return r.markers.Cleanup(today.AddDays(-r.cfg.RetentionDays))
}

func (r *Reminder) remindUser(ctx context.Context, userID int64, today domain.Date) (int, error) {
	streaks, err := r.streaks.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, streak := range streaks {
		if !streak.Notify {
			continue
		}
		dates, err := r.streaks.DoneDates(ctx, streak.ID)
		if err != nil {
			return sent, err
		}
		if doneOn(dates, today) {
			continue
		}

		r.events.Publish(userID, domain.Event{
			Type:     domain.EventStreakReminder,
			StreakID: streak.ID,
			Date:     today.String(),
			Count:    domain.StreakCount(dates, today),
		})
		metrics.RemindersSent.Inc()
		sent++
	}
	return sent, nil
}

func doneOn(dates []domain.Date, day domain.Date) bool {
	for _, d := range dates {
		if d == day {
			return true
		}
	}
	return false
}
