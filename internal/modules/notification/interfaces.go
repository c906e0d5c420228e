package notification

import (
	"context"

	"rentals/internal/domain"
)

// DeviceTokenStore is implemented by repository.UserRepository.
type DeviceTokenStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	SetDeviceToken(ctx context.Context, userID int64, token string) error
	ClearDeviceToken(ctx context.Context, userID int64, token string) error
}
