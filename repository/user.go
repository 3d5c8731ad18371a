package repository

import (
	"context"

	"github.com/daykeep/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
}
