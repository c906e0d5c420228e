package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RunLockKey     = "reminders:lock"
	RunLockTTL     = 30 * time.Second
	ClaimTTL       = time.Hour
	claimKeyLayout = "2006-01-02"
)

type Guard struct {
	store Store
}

func New(store Store) *Guard {
	return &Guard{store: store}
}

// RunLock is a held run lock. Release is safe to call once the lock expired
// or was taken over; it only deletes the key while it still carries our token.
type RunLock struct {
	store Store
	token string
}

func (l *RunLock) Token() string { return l.token }

func (l *RunLock) Release(ctx context.Context) error {
	_, err := l.store.CompareAndDelete(ctx, RunLockKey, l.token)
	return err
}

// AcquireRunLock returns the lock, or nil without error when another run holds it.
func (g *Guard) AcquireRunLock(ctx context.Context) (*RunLock, error) {
	token := uuid.NewString()
	ok, err := g.store.SetNX(ctx, RunLockKey, token, RunLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &RunLock{store: g.store, token: token}, nil
}

// ClaimKey is the per-reservation-per-day marker key.
func ClaimKey(reservationID int64, day time.Time) string {
	return fmt.Sprintf("reminders:sent:%d:%s", reservationID, day.UTC().Format(claimKeyLayout))
}

// ClaimReservation marks the reservation as being reminded today. It reports
// false when the marker already exists.
func (g *Guard) ClaimReservation(ctx context.Context, reservationID int64, day time.Time) (bool, error) {
	return g.store.SetNX(ctx, ClaimKey(reservationID, day), "1", ClaimTTL)
}

// ReleaseReservation drops the marker so a later run may retry.
func (g *Guard) ReleaseReservation(ctx context.Context, reservationID int64, day time.Time) error {
	return g.store.Delete(ctx, ClaimKey(reservationID, day))
}
