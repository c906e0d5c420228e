package stats

import (
	"context"
	"time"

	"rentals/internal/domain"
	"rentals/internal/repository"
)

type Repository interface {
	CountUsersByRole(ctx context.Context, role domain.UserRole) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	TopLessors(ctx context.Context, limit int) ([]repository.LessorListingCount, error)
	ListingsPerCategory(ctx context.Context) ([]repository.CategoryListingCount, error)
	CountListingsByOwner(ctx context.Context, ownerID int64) (int64, error)
	CountReservationsByOwner(ctx context.Context, ownerID int64) (int64, error)
	RevenuePerListing(ctx context.Context, ownerID int64) ([]repository.ListingRevenue, error)
	CountDistinctClients(ctx context.Context, ownerID int64) (int64, error)
	ListingActivity(ctx context.Context, ownerID int64) ([]repository.ListingActivity, error)
	LastReservationDates(ctx context.Context, ownerID int64) (map[int64]time.Time, error)
	ReservationsInWindow(ctx context.Context, ownerID int64, from, to time.Time) ([]domain.Reservation, error)
	TopClients(ctx context.Context, ownerID int64, limit int) ([]repository.ClientActivity, error)
}
