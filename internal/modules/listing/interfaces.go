package listing

import (
	"context"

	"rentals/internal/domain"
	"rentals/internal/repository"
)

type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	Update(ctx context.Context, l *domain.Listing) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repository.ListingFilter) ([]domain.Listing, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	Exists(ctx context.Context, id int64) (bool, error)
}
