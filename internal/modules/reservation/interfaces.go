package reservation

import (
	"context"

	"rentals/internal/domain"
)

// ReservationRepository defines the persistence the service relies on.
type ReservationRepository interface {
	CreateLocked(ctx context.Context, res *domain.Reservation, check func(*domain.Listing, []domain.Reservation) error) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
	ListByListing(ctx context.Context, listingID int64, blockingOnly bool) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error
}

// EventPublisher delivers live events to a connected user. Delivery is best
// effort.
type EventPublisher interface {
	PublishToUser(userID int64, event string, payload any)
}
