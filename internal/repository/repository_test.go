package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentals/internal/database/dbtest"
	"rentals/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	db      *gorm.DB
	lessor  *domain.User
	client  *domain.User
	listing *domain.Listing
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	lessor := &domain.User{Name: "Lena", Email: "Lena@Example.com", PasswordHash: "x", Role: domain.RoleLessor}
	client := &domain.User{Name: "Carl", Email: "carl@example.com", PasswordHash: "x", Role: domain.RoleClient}
	require.NoError(t, users.Create(ctx, lessor))
	require.NoError(t, users.Create(ctx, client))

	cat := &domain.Category{Title: "Tools"}
	require.NoError(t, NewCategoryRepository(db).Create(ctx, cat))

	listing := &domain.Listing{UserID: lessor.ID, CategoryID: cat.ID, Name: "Drill", Price: 100, Active: true}
	require.NoError(t, NewListingRepository(db).Create(ctx, listing))

	return &fixture{db: db, lessor: lessor, client: client, listing: listing}
}

func (f *fixture) reserve(t *testing.T, start, end string, status domain.ReservationStatus) *domain.Reservation {
	t.Helper()
	res := &domain.Reservation{
		ListingID: f.listing.ID,
		UserID:    f.client.ID,
		StartDate: day(start),
		EndDate:   day(end),
		Price:     100,
		Status:    status,
	}
	require.NoError(t, f.db.Create(res).Error)
	return res
}

func TestUserRepository_EmailIsLowercased(t *testing.T) {
	f := newFixture(t)
	users := NewUserRepository(f.db)

	u, err := users.GetByEmail(context.Background(), "  LENA@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, f.lessor.ID, u.ID)

	dup := &domain.User{Name: "Other", Email: "lena@example.com", PasswordHash: "x", Role: domain.RoleClient}
	assert.ErrorIs(t, users.Create(context.Background(), dup), ErrDuplicate)
}

func TestUserRepository_DeviceToken(t *testing.T) {
	f := newFixture(t)
	users := NewUserRepository(f.db)
	ctx := context.Background()

	require.NoError(t, users.SetDeviceToken(ctx, f.client.ID, "token-a"))

	// stale token does not clear the current one
	require.NoError(t, users.ClearDeviceToken(ctx, f.client.ID, "token-old"))
	u, err := users.GetByID(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-a", u.Token())

	require.NoError(t, users.ClearDeviceToken(ctx, f.client.ID, "token-a"))
	u, err = users.GetByID(ctx, f.client.ID)
	require.NoError(t, err)
	assert.False(t, u.HasDeviceToken())

	assert.ErrorIs(t, users.SetDeviceToken(ctx, 9999, "x"), ErrNotFound)
}

func TestReservationRepository_CreateLocked(t *testing.T) {
	f := newFixture(t)
	repo := NewReservationRepository(f.db)
	ctx := context.Background()
	f.reserve(t, "2025-01-01", "2025-01-05", domain.ReservationPending)

	var seen []domain.Reservation
	var seenListing *domain.Listing
	res := &domain.Reservation{ListingID: f.listing.ID, UserID: f.client.ID, StartDate: day("2025-01-06"), EndDate: day("2025-01-10"), Status: domain.ReservationPending}
	err := repo.CreateLocked(ctx, res, func(l *domain.Listing, existing []domain.Reservation) error {
		seenListing = l
		seen = existing
		return nil
	})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	require.NotNil(t, seenListing)
	assert.Equal(t, "Drill", seenListing.Name)
	assert.Len(t, seen, 1)

	rejected := errors.New("rejected")
	other := &domain.Reservation{ListingID: f.listing.ID, UserID: f.client.ID, StartDate: day("2025-02-01"), EndDate: day("2025-02-02"), Status: domain.ReservationPending}
	err = repo.CreateLocked(ctx, other, func(*domain.Listing, []domain.Reservation) error { return rejected })
	assert.ErrorIs(t, err, rejected)

	all, err := repo.ListByListing(ctx, f.listing.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing := &domain.Reservation{ListingID: 9999, UserID: f.client.ID, StartDate: day("2025-02-01"), EndDate: day("2025-02-02")}
	err = repo.CreateLocked(ctx, missing, func(*domain.Listing, []domain.Reservation) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepository_ListForUser(t *testing.T) {
	f := newFixture(t)
	repo := NewReservationRepository(f.db)
	ctx := context.Background()
	f.reserve(t, "2025-01-01", "2025-01-02", domain.ReservationPending)
	f.reserve(t, "2025-01-03", "2025-01-04", domain.ReservationCancelled)

	asClient, err := repo.ListForUser(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Len(t, asClient, 2)

	asLessor, err := repo.ListForUser(ctx, f.lessor.ID)
	require.NoError(t, err)
	require.Len(t, asLessor, 2)
	require.NotNil(t, asLessor[0].Listing)
	assert.Equal(t, f.listing.ID, asLessor[0].Listing.ID)

	nobody, err := repo.ListForUser(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, nobody)

	blocking, err := repo.ListByListing(ctx, f.listing.ID, true)
	require.NoError(t, err)
	assert.Len(t, blocking, 1)
}

func TestReservationRepository_ReminderBookkeeping(t *testing.T) {
	f := newFixture(t)
	repo := NewReservationRepository(f.db)
	ctx := context.Background()

	due := f.reserve(t, "2025-03-02", "2025-03-03", domain.ReservationPending)
	f.reserve(t, "2025-03-02", "2025-03-03", domain.ReservationCancelled)
	f.reserve(t, "2025-04-01", "2025-04-02", domain.ReservationPending)

	now := day("2025-03-01")
	list, err := repo.ReminderCandidates(ctx, now, now.Add(48*time.Hour), now.Add(-12*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, due.ID, list[0].ID)
	require.NotNil(t, list[0].User)
	assert.Equal(t, f.client.ID, list[0].User.ID)

	n, err := repo.IncrementReminderAttempts(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.IncrementReminderAttempts(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.MarkReminderSent(ctx, due.ID, now))
	got, err := repo.GetByID(ctx, due.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
	require.NotNil(t, got.ReminderSentAt)
	assert.Equal(t, 0, got.ReminderAttempts)

	list, err = repo.ReminderCandidates(ctx, now, now.Add(48*time.Hour), now.Add(-12*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListingRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.reserve(t, "2025-01-01", "2025-01-02", domain.ReservationPending)

	require.NoError(t, NewListingRepository(f.db).Delete(ctx, f.listing.ID))

	left, err := NewReservationRepository(f.db).ListByListing(ctx, f.listing.ID, false)
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.ErrorIs(t, NewListingRepository(f.db).Delete(ctx, f.listing.ID), ErrNotFound)
}

func TestStatsRepository(t *testing.T) {
	f := newFixture(t)
	stats := NewStatsRepository(f.db)
	ctx := context.Background()
	f.reserve(t, "2025-01-01", "2025-01-02", domain.ReservationPayed)
	f.reserve(t, "2025-01-05", "2025-01-06", domain.ReservationCancelled)

	clients, err := stats.CountUsersByRole(ctx, domain.RoleClient)
	require.NoError(t, err)
	assert.EqualValues(t, 1, clients)

	top, err := stats.TopLessors(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.EqualValues(t, 1, top[0].Listings)

	perCat, err := stats.ListingsPerCategory(ctx)
	require.NoError(t, err)
	require.Len(t, perCat, 1)
	assert.Equal(t, "Tools", perCat[0].Title)

	revenue, err := stats.RevenuePerListing(ctx, f.lessor.ID)
	require.NoError(t, err)
	require.Len(t, revenue, 1)
	assert.InDelta(t, 100.0, revenue[0].Revenue, 0.001)

	distinct, err := stats.CountDistinctClients(ctx, f.lessor.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, distinct)

	count, err := stats.CountReservationsByOwner(ctx, f.lessor.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
