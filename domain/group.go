package domain

import "time"

// View modes a group can be rendered in.
const (
	ViewTable    = "table"
	ViewKanban   = "kanban"
	ViewCalendar = "calendar"
)

// ValidViewMode reports whether mode names a known group view.
func ValidViewMode(mode string) bool {
	switch mode {
	case ViewTable, ViewKanban, ViewCalendar:
		return true
	}
	return false
}

// Group is a user-owned container of tasks with a display order and a
// preferred view mode.
type Group struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	ViewMode  string    `json:"view_mode"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PinGroup is a named subdivision of a group holding pinned tasks.
type PinGroup struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	GroupID   int64     `json:"group_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupPin places a task inside a pin group. A task appears at most once
// per pin group; pins are removed when their task disappears.
type GroupPin struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	PinGroupID int64     `json:"pin_group_id"`
	TaskID     int64     `json:"task_id"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}
