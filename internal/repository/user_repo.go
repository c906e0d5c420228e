package repository

import (
	"context"
	"strings"

	"rentals/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	email = strings.TrimSpace(strings.ToLower(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UserFilter narrows the admin user list. Query matches name or email.
type UserFilter struct {
	Role  domain.UserRole
	Query string
}

// List returns one page of users, newest first, and the total matching count.
func (r *UserRepository) List(ctx context.Context, f UserFilter, limit, offset int) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if v := strings.TrimSpace(f.Query); v != "" {
		like := "%" + strings.ToLower(v) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.User
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

// Delete removes the user. Listings, reservations and reviews go with it
// through the foreign key cascades.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDeviceToken stores token for the user. An empty token clears it.
func (r *UserRepository) SetDeviceToken(ctx context.Context, userID int64, token string) error {
	var value any
	if token = strings.TrimSpace(token); token != "" {
		value = token
	}

	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("device_token", value)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearDeviceToken removes the stored token only while it still equals token,
// so a token registered after a failed push is kept.
func (r *UserRepository) ClearDeviceToken(ctx context.Context, userID int64, token string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND device_token = ?", userID, token).
		Update("device_token", nil).Error
}
