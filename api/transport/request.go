package transport

// Request bodies. Dates travel as YYYY-MM-DD strings and are parsed
// strictly in the handler layer; pointer fields distinguish "absent"
// from zero values on partial updates.

type AuthLoginRequest struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	Email       string `json:"email" validate:"omitempty,email"`
	DisplayName string `json:"display_name" validate:"omitempty,max=120"`
	TTL         int    `json:"ttl_seconds" validate:"omitempty,gte=0"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TTL       int    `json:"ttl_seconds" validate:"omitempty,gte=0"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type ProfileUpdateRequest struct {
	Email       string            `json:"email" validate:"omitempty,email"`
	DisplayName string            `json:"display_name" validate:"omitempty,max=120"`
	Status      string            `json:"status" validate:"omitempty,oneof=active disabled"`
	Metadata    map[string]string `json:"metadata"`
}

type GroupCreateRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	ViewMode string `json:"view_mode" validate:"omitempty,oneof=table kanban calendar"`
}

type GroupUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	ViewMode *string `json:"view_mode" validate:"omitempty,oneof=table kanban calendar"`
}

type GroupReorderRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type PinGroupCreateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type PinGroupUpdateRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type PinCreateRequest struct {
	TaskID int64 `json:"task_id" validate:"required,gt=0"`
}

type PinMoveRequest struct {
	TargetPinID *int64 `json:"target_pin_id" validate:"omitempty,gt=0"`
	Position    string `json:"position" validate:"omitempty,oneof=before after"`
}

type TaskUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	ExtraInfo *string `json:"extra_info"`
	// StreakID zero unlinks; a positive id links.
	StreakID *int64 `json:"streak_id" validate:"omitempty,gte=0"`
}

// TaskRef names the task a log write targets: either an existing task
// by id, or a (group, name) pair that is created on first use.
type TaskRef struct {
	ID        *int64 `json:"id" validate:"omitempty,gt=0"`
	GroupID   int64  `json:"group_id" validate:"omitempty,gt=0"`
	Name      string `json:"name" validate:"omitempty,min=1,max=200"`
	ExtraInfo string `json:"extra_info"`
}

type WriteLogRequest struct {
	Task      TaskRef `json:"task"`
	LogID     *int64  `json:"log_id" validate:"omitempty,gt=0"`
	Date      string  `json:"date" validate:"required"`
	Done      bool    `json:"done"`
	ExtraInfo *string `json:"extra_info"`
}

type MoveLogRequest struct {
	FromDate    string  `json:"from_date" validate:"required"`
	ToDate      string  `json:"to_date" validate:"required"`
	ToDone      bool    `json:"to_done"`
	TargetLogID *int64  `json:"target_log_id" validate:"omitempty,gt=0"`
	Position    string  `json:"position" validate:"omitempty,oneof=before after"`
	ExtraInfo   *string `json:"extra_info"`
}

type StreakCreateRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	Notify bool   `json:"notify"`
}

type StreakUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=120"`
	Notify *bool   `json:"notify"`
}

type StreakToggleRequest struct {
	Date string `json:"date" validate:"required"`
	Note string `json:"note" validate:"omitempty,max=500"`
}
