package review

import (
	"context"

	"rentals/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	ListByListing(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, int64, error)
	UpdateComment(ctx context.Context, id int64, comment string) error
	Delete(ctx context.Context, id int64) error
}

type ListingGate interface {
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
}

type ReservationGate interface {
	HasReserved(ctx context.Context, userID, listingID int64) (bool, error)
}
