package admin

import (
	"time"

	"rentals/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserListFilter struct {
	Role  string `form:"role"`
	Query string `form:"q"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

// UserView is a user as administrators see it.
type UserView struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        domain.UserRole `json:"role"`
	PushEnabled bool            `json:"push_enabled"`
	CreatedAt   time.Time       `json:"created_at"`
}

type UserListResponse struct {
	Users []UserView `json:"users"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

func toView(u *domain.User) UserView {
	return UserView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		PushEnabled: u.HasDeviceToken(),
		CreatedAt:   u.CreatedAt,
	}
}
