package admin

import (
	"context"

	"rentals/internal/domain"
	"rentals/internal/repository"
)

type UserRepository interface {
	List(ctx context.Context, f repository.UserFilter, limit, offset int) ([]domain.User, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
