package notification

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNoDeviceToken  = errors.New("no device token registered")
	ErrTokenRejected  = errors.New("device token rejected by the push provider")
	ErrDeliveryFailed = errors.New("push delivery failed")
)
