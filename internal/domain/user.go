package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleLessor UserRole = "lessor"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleClient, RoleLessor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;index"`
	DeviceToken  *string   `json:"-" gorm:"size:512"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// HasDeviceToken reports whether the user can receive push messages.
func (u *User) HasDeviceToken() bool {
	return u != nil && u.DeviceToken != nil && strings.TrimSpace(*u.DeviceToken) != ""
}

// Token returns the stored device token or an empty string.
func (u *User) Token() string {
	if !u.HasDeviceToken() {
		return ""
	}
	return strings.TrimSpace(*u.DeviceToken)
}
