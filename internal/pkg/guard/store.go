// Package guard keeps reminder runs from pushing the same notification twice.
package guard

import (
	"context"
	"errors"
	"time"
)

// ErrGuardUnavailable wraps any failure of the backing store.
var ErrGuardUnavailable = errors.New("guard store unavailable")

// Store is a key-value store with expiring keys.
type Store interface {
	// SetNX stores value under key only if key is absent. It reports whether
	// the value was stored.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// CompareAndDelete deletes key only while it still holds value.
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
	Delete(ctx context.Context, key string) error
}
