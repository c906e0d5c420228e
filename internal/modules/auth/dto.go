package auth

import "rentals/internal/domain"

// RegisterRequest creates a client or lessor account. Admins are seeded.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=client lessor"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserPublic struct {
	ID    int64  `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// PushEnabled tells the app whether a device token is registered.
	PushEnabled bool `json:"push_enabled"`
}

func toPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:          u.ID,
		Role:        string(u.Role),
		Name:        u.Name,
		Email:       u.Email,
		PushEnabled: u.HasDeviceToken(),
	}
}
