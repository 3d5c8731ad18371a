package domain

import "time"

// Event types delivered over the fan-out stream. Payloads carry identifiers
// and dates only; subscribers re-fetch detail on receipt. The one exception
// is an implicitly created task, whose record rides along on the event that
// created it.
const (
	EventTaskLogUpdated = "task.log.updated"
	EventTaskLogMoved   = "task.log.moved"
	EventTaskLogDeleted = "task.log.deleted"
	EventTaskMeta       = "task.meta.updated"

	EventStreakLogUpdated = "streak.log.updated"
	EventStreakMeta       = "streak.meta.updated"
	EventStreakReminder   = "streak.reminder"

	EventGroupCreated   = "group.created"
	EventGroupUpdated   = "group.updated"
	EventGroupDeleted   = "group.deleted"
	EventGroupReordered = "group.reordered"

	EventPinGroupCreated = "pins.group.created"
	EventPinGroupUpdated = "pins.group.updated"
	EventPinGroupDeleted = "pins.group.deleted"
	EventPinAdded        = "pins.pin.added"
	EventPinRemoved      = "pins.pin.removed"
	EventPinMoved        = "pins.pin.moved"

	EventKeepalive = "keepalive"
)

// Event is a change notification published to a user's live subscribers.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	GroupID    int64     `json:"group_id,omitempty"`
	PinGroupID int64     `json:"pin_group_id,omitempty"`
	PinID      int64     `json:"pin_id,omitempty"`
	TaskID     int64     `json:"task_id,omitempty"`
	LogID      int64     `json:"log_id,omitempty"`
	StreakID   int64     `json:"streak_id,omitempty"`
	Date       string    `json:"date,omitempty"`
	FromDate   string    `json:"from_date,omitempty"`
	Done       *bool     `json:"done,omitempty"`
	Count      int       `json:"count,omitempty"`
	TaskGone   bool      `json:"task_gone,omitempty"`
	Task       *Task     `json:"task,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
