package repository

import (
	"context"
	"time"

	"rentals/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// CreateLocked locks the listing row, loads the listing's reservations and
// hands both to check. The reservation is inserted only when check returns nil,
// all inside one transaction, so concurrent creations for a listing serialize.
func (r *ReservationRepository) CreateLocked(
	ctx context.Context,
	res *domain.Reservation,
	check func(listing *domain.Listing, existing []domain.Reservation) error,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&listing, res.ListingID).Error; err != nil {
			return err
		}

		var existing []domain.Reservation
		if err := tx.Where("listing_id = ?", res.ListingID).Order("start_date ASC").Find(&existing).Error; err != nil {
			return err
		}

		if err := check(&listing, existing); err != nil {
			return err
		}

		return tx.Omit(clause.Associations).Create(res).Error
	})
	return translate(err)
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).Preload("Listing").First(&res, id).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

// ListForUser returns reservations made by userID or made on listings userID
// owns, newest first.
func (r *ReservationRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Joins("JOIN listings ON listings.id = reservations.listing_id").
		Where("reservations.user_id = ? OR listings.user_id = ?", userID, userID).
		Order("reservations.created_at DESC, reservations.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByListing returns the listing's reservations ordered by start date.
func (r *ReservationRepository) ListByListing(ctx context.Context, listingID int64, blockingOnly bool) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Where("listing_id = ?", listingID)
	if blockingOnly {
		q = q.Where("status <> ?", domain.ReservationCancelled)
	}

	var out []domain.Reservation
	if err := q.Order("start_date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// HasReserved reports whether userID holds a non-cancelled reservation on
// the listing.
func (r *ReservationRepository) HasReserved(ctx context.Context, userID, listingID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("user_id = ? AND listing_id = ? AND status <> ?", userID, listingID, domain.ReservationCancelled).
		Count(&n).Error
	return n > 0, err
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Reservation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReminderCandidates returns non-cancelled reservations starting within
// [from, to] that were never reminded or were reminded before sentBefore.
// Renter and listing are preloaded; a missing listing leaves Listing nil.
func (r *ReservationRepository) ReminderCandidates(ctx context.Context, from, to, sentBefore time.Time) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Listing").
		Where("start_date >= ? AND start_date <= ?", from.UTC(), to.UTC()).
		Where("status <> ?", domain.ReservationCancelled).
		Where("reminder_sent = ? OR reminder_sent_at IS NULL OR reminder_sent_at < ?", false, sentBefore.UTC()).
		Order("start_date ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkReminderSent records a delivered (or abandoned) reminder and resets the
// retry counter.
func (r *ReservationRepository) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reminder_sent":     true,
			"reminder_sent_at":  at.UTC(),
			"reminder_attempts": 0,
		}).Error
}

// IncrementReminderAttempts bumps the retry counter and returns its new value.
func (r *ReservationRepository) IncrementReminderAttempts(ctx context.Context, id int64) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Reservation{}).
			Where("id = ?", id).
			Update("reminder_attempts", gorm.Expr("reminder_attempts + 1")).Error
		if err != nil {
			return err
		}
		return tx.Model(&domain.Reservation{}).
			Select("reminder_attempts").
			Where("id = ?", id).
			Scan(&attempts).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return attempts, nil
}
