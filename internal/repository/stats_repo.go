package repository

import (
	"context"
	"time"

	"rentals/internal/domain"

	"gorm.io/gorm"
)

// StatsRepository runs the read-only aggregates behind the BI endpoints.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type LessorListingCount struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Listings int64  `json:"listings"`
}

type CategoryListingCount struct {
	CategoryID int64  `json:"category_id"`
	Title      string `json:"title"`
	Count      int64  `json:"count"`
}

type ListingRevenue struct {
	ListingID   int64   `json:"listing_id"`
	ListingName string  `json:"listing_name"`
	Revenue     float64 `json:"revenue"`
}

func (r *StatsRepository) CountUsersByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

func (r *StatsRepository) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error
	return n, err
}

func (r *StatsRepository) TopLessors(ctx context.Context, limit int) ([]LessorListingCount, error) {
	var out []LessorListingCount
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.name AS name, COUNT(listings.id) AS listings").
		Joins("LEFT JOIN listings ON listings.user_id = users.id").
		Where("users.role = ?", domain.RoleLessor).
		Group("users.id, users.name").
		Order("listings DESC, users.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *StatsRepository) ListingsPerCategory(ctx context.Context) ([]CategoryListingCount, error) {
	var out []CategoryListingCount
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.id AS category_id, categories.title AS title, COUNT(listings.id) AS count").
		Joins("LEFT JOIN listings ON listings.category_id = categories.id").
		Group("categories.id, categories.title").
		Order("count DESC, categories.id ASC").
		Scan(&out).Error
	return out, err
}

func (r *StatsRepository) CountListingsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("user_id = ?", ownerID).Count(&n).Error
	return n, err
}

func (r *StatsRepository) CountReservationsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Joins("JOIN listings ON listings.id = reservations.listing_id").
		Where("listings.user_id = ?", ownerID).
		Count(&n).Error
	return n, err
}

// RevenuePerListing sums non-cancelled reservation prices for every listing
// the owner has, including listings with no reservations.
func (r *StatsRepository) RevenuePerListing(ctx context.Context, ownerID int64) ([]ListingRevenue, error) {
	var out []ListingRevenue
	err := r.db.WithContext(ctx).
		Table("listings").
		Select("listings.id AS listing_id, listings.name AS listing_name, COALESCE(SUM(reservations.price), 0) AS revenue").
		Joins("LEFT JOIN reservations ON reservations.listing_id = listings.id AND reservations.status <> ?", domain.ReservationCancelled).
		Where("listings.user_id = ?", ownerID).
		Group("listings.id, listings.name").
		Order("listings.id ASC").
		Scan(&out).Error
	return out, err
}

func (r *StatsRepository) CountDistinctClients(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Joins("JOIN listings ON listings.id = reservations.listing_id").
		Where("listings.user_id = ?", ownerID).
		Distinct("reservations.user_id").
		Count(&n).Error
	return n, err
}

// ListingActivity is the non-cancelled booking volume of one listing.
type ListingActivity struct {
	ListingID    int64   `json:"listing_id"`
	ListingName  string  `json:"listing_name"`
	Reservations int64   `json:"reservation_count" gorm:"column:reservation_count"`
	Revenue      float64 `json:"total_revenue"`
}

type ClientActivity struct {
	ClientID     int64   `json:"client_id"`
	ClientName   string  `json:"client_name"`
	Reservations int64   `json:"reservation_count" gorm:"column:reservation_count"`
	TotalSpent   float64 `json:"total_spent"`
}

// ListingActivity returns every listing of the owner with its non-cancelled
// reservation count and revenue, most booked first.
func (r *StatsRepository) ListingActivity(ctx context.Context, ownerID int64) ([]ListingActivity, error) {
	var out []ListingActivity
	err := r.db.WithContext(ctx).
		Table("listings").
		Select("listings.id AS listing_id, listings.name AS listing_name, "+
			"COUNT(reservations.id) AS reservation_count, COALESCE(SUM(reservations.price), 0) AS revenue").
		Joins("LEFT JOIN reservations ON reservations.listing_id = listings.id AND reservations.status <> ?", domain.ReservationCancelled).
		Where("listings.user_id = ?", ownerID).
		Group("listings.id, listings.name").
		Order("reservation_count DESC, listings.id ASC").
		Scan(&out).Error
	return out, err
}

// LastReservationDates maps each of the owner's listings to the creation
// time of its newest non-cancelled reservation. Listings never booked are
// absent.
func (r *StatsRepository) LastReservationDates(ctx context.Context, ownerID int64) (map[int64]time.Time, error) {
	var rows []struct {
		ListingID int64
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Select("reservations.listing_id, reservations.created_at").
		Joins("JOIN listings ON listings.id = reservations.listing_id").
		Where("listings.user_id = ? AND reservations.status <> ?", ownerID, domain.ReservationCancelled).
		Order("reservations.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]time.Time)
	for _, row := range rows {
		if _, seen := out[row.ListingID]; !seen {
			out[row.ListingID] = row.CreatedAt
		}
	}
	return out, nil
}

// ReservationsInWindow returns the owner's non-cancelled reservations whose
// inclusive range touches [from, to].
func (r *StatsRepository) ReservationsInWindow(ctx context.Context, ownerID int64, from, to time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Joins("JOIN listings ON listings.id = reservations.listing_id").
		Where("listings.user_id = ? AND reservations.status <> ?", ownerID, domain.ReservationCancelled).
		Where("reservations.start_date <= ? AND reservations.end_date >= ?", to, from).
		Order("reservations.start_date ASC").
		Find(&out).Error
	return out, err
}

// TopClients ranks the renters of the owner's listings by reservation count.
func (r *StatsRepository) TopClients(ctx context.Context, ownerID int64, limit int) ([]ClientActivity, error) {
	var out []ClientActivity
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select("users.id AS client_id, users.name AS client_name, "+
			"COUNT(reservations.id) AS reservation_count, COALESCE(SUM(reservations.price), 0) AS total_spent").
		Joins("JOIN listings ON listings.id = reservations.listing_id").
		Joins("JOIN users ON users.id = reservations.user_id").
		Where("listings.user_id = ? AND reservations.status <> ?", ownerID, domain.ReservationCancelled).
		Group("users.id, users.name").
		Order("reservation_count DESC, total_spent DESC, users.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
