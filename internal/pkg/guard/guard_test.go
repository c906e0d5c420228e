package guard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemoryStore_SetNXAndExpiry(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore().WithClock(c.now)
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "k", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "k", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	c.advance(time.Minute)
	ok, err = s.SetNX(ctx, "k", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key can be claimed again")
}

func TestMemoryStore_CompareAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _ = s.SetNX(ctx, "k", "mine", time.Minute)

	ok, err := s.CompareAndDelete(ctx, "k", "theirs")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndDelete(ctx, "k", "mine")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndDelete(ctx, "k", "mine")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGuard_RunLock(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := New(NewMemoryStore().WithClock(c.now))
	ctx := context.Background()

	first, err := g.AcquireRunLock(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := g.AcquireRunLock(ctx)
	require.NoError(t, err)
	assert.Nil(t, second, "lock is held")

	c.advance(RunLockTTL)
	third, err := g.AcquireRunLock(ctx)
	require.NoError(t, err)
	require.NotNil(t, third, "lock expired")

	// the stale holder must not release the new holder's lock
	require.NoError(t, first.Release(ctx))
	again, err := g.AcquireRunLock(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, third.Release(ctx))
	again, err = g.AcquireRunLock(ctx)
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestGuard_ClaimReservation(t *testing.T) {
	g := New(NewMemoryStore())
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)

	assert.Equal(t, "reminders:sent:7:2025-03-01", ClaimKey(7, day))

	ok, err := g.ClaimReservation(ctx, 7, day)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.ClaimReservation(ctx, 7, day.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "same reservation, same day")

	ok, err = g.ClaimReservation(ctx, 7, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok, "next day is a new marker")

	require.NoError(t, g.ReleaseReservation(ctx, 7, day))
	ok, err = g.ClaimReservation(ctx, 7, day)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_ConcurrentClaims(t *testing.T) {
	g := New(NewMemoryStore())
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := g.ClaimReservation(ctx, 1, day); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins)
}

func TestNewRedisClient(t *testing.T) {
	c, err := NewRedisClient("redis://:pw@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)
	assert.Equal(t, "pw", c.Options().Password)

	c, err = NewRedisClient("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", c.Options().Addr)

	_, err = NewRedisClient("redis://host:notaport/x")
	assert.Error(t, err)
}
