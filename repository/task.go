package repository

import (
	"context"

	"github.com/daykeep/backend/domain"
)

// TaskRepository persists tasks. Name uniqueness within (user, group) is
// enforced by the implementation and surfaced as a DUPLICATE domain error.
type TaskRepository interface {
	GetByID(ctx context.Context, userID, id int64) (*domain.Task, error)
	GetByName(ctx context.Context, userID, groupID int64, name string) (*domain.Task, error)
	ListByGroup(ctx context.Context, userID, groupID int64) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id int64) error
}
