package repository

import (
	"context"

	"rentals/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(rv).Error)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).Preload("User").First(&rv, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

// ListByListing returns the newest reviews of a listing first, with the
// authors preloaded, and the total count.
func (r *ReviewRepository) ListByListing(ctx context.Context, listingID int64, limit, offset int) ([]domain.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Review{}).Where("listing_id = ?", listingID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Review
	err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, total, err
}

func (r *ReviewRepository) UpdateComment(ctx context.Context, id int64, comment string) error {
	res := r.db.WithContext(ctx).Model(&domain.Review{}).Where("id = ?", id).Update("comment", comment)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
