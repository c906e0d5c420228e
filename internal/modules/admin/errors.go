package admin

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidRole      = errors.New("invalid role filter")
	ErrCannotDeleteSelf = errors.New("admins cannot delete their own account")
)
