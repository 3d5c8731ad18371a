package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.ID == 0 {
		return nil, domain.ErrInvalidPayload
	}
	if user.Status == "" {
		user.Status = "active"
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
