package domain

import "time"

// Task represents a named to-do item owned by a user and scoped to a group.
// A task has no date of its own; it materializes on specific dates through
// TaskLog rows. StreakID, when set, links completions to a streak.
type Task struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	GroupID   int64     `json:"group_id"`
	Name      string    `json:"name"`
	ExtraInfo string    `json:"extra_info,omitempty"`
	StreakID  *int64    `json:"streak_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Linked reports whether the task mirrors its completions into a streak.
func (t *Task) Linked() bool {
	return t != nil && t.StreakID != nil
}

// TaskLog is the per-date completion record of a task. At most one row
// exists per (task, date). SortOrder positions the log inside its
// (date, done) partition and has no meaning across partitions.
type TaskLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	TaskID    int64     `json:"task_id"`
	Date      Date      `json:"date"`
	Done      bool      `json:"done"`
	ExtraInfo string    `json:"extra_info,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlockingTask identifies a task log that prevents a direct streak undo.
// It carries the names needed to render an actionable client message.
type BlockingTask struct {
	TaskID    int64  `json:"task_id"`
	TaskName  string `json:"task_name"`
	GroupID   int64  `json:"group_id"`
	GroupName string `json:"group_name"`
}
