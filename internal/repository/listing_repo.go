package repository

import (
	"context"

	"rentals/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// ListingFilter narrows List. Zero values mean "no constraint".
type ListingFilter struct {
	CategoryID   int64
	OwnerID      int64
	MinPrice     *float64
	MaxPrice     *float64
	ActiveOnly   bool
	WithLocation bool
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	var l domain.Listing
	if err := r.db.WithContext(ctx).Preload("Category").First(&l, id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error)
}

// Delete removes the listing; its reservations go with it through the
// foreign key cascade.
func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Listing{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) List(ctx context.Context, f ListingFilter) ([]domain.Listing, error) {
	q := r.db.WithContext(ctx).Model(&domain.Listing{}).Preload("Category")

	if f.CategoryID > 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.OwnerID > 0 {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.ActiveOnly {
		q = q.Where("status = ?", true)
	}
	if f.WithLocation {
		q = q.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}

	var out []domain.Listing
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
