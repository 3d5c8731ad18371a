package repository

import (
	"context"

	"github.com/daykeep/backend/domain"
)

// GroupRepository persists groups, pin groups and pins. Group names are
// unique per user, pin group names per (user, group), and a task pins at
// most once per pin group; collisions surface as DUPLICATE domain errors.
type GroupRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.Group, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Group, error)
	Create(ctx context.Context, group *domain.Group) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, userID, id int64) error
	// Reorder rewrites the listed groups' sort orders to their 1-based
	// positions.
	Reorder(ctx context.Context, userID int64, orderedIDs []int64) error

	GetPinGroup(ctx context.Context, userID, id int64) (*domain.PinGroup, error)
	ListPinGroups(ctx context.Context, userID, groupID int64) ([]domain.PinGroup, error)
	CreatePinGroup(ctx context.Context, pg *domain.PinGroup) (*domain.PinGroup, error)
	UpdatePinGroup(ctx context.Context, pg *domain.PinGroup) error
	DeletePinGroup(ctx context.Context, userID, id int64) error

	GetPin(ctx context.Context, userID, id int64) (*domain.GroupPin, error)
	ListPins(ctx context.Context, userID, pinGroupID int64) ([]domain.GroupPin, error)
	PinIDs(ctx context.Context, pinGroupID int64) ([]int64, error)
	NextPinSortOrder(ctx context.Context, pinGroupID int64) (int, error)
	RepackPins(ctx context.Context, pinGroupID int64, orderedIDs []int64) error
	CreatePin(ctx context.Context, pin *domain.GroupPin) (*domain.GroupPin, error)
	DeletePin(ctx context.Context, userID, id int64) error
	// DeletePinsForTask removes every pin referencing the task, ahead of
	// the task row itself going away.
	DeletePinsForTask(ctx context.Context, taskID int64) error
}
