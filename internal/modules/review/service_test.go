package review

import (
	"context"
	"testing"
	"time"

	"rentals/internal/database/dbtest"
	"rentals/internal/domain"
	"rentals/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	svc      *Service
	lessor   *domain.User
	renter   *domain.User
	stranger *domain.User
	listing  *domain.Listing
}

func setup(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)

	mk := func(name, email string, role domain.UserRole) *domain.User {
		u := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: role}
		require.NoError(t, db.Create(u).Error)
		return u
	}
	lessor := mk("Lena", "lena@example.com", domain.RoleLessor)
	renter := mk("Rita", "rita@example.com", domain.RoleClient)
	stranger := mk("Sam", "sam@example.com", domain.RoleClient)

	cat := &domain.Category{Title: "Tents"}
	require.NoError(t, db.Create(cat).Error)
	listing := &domain.Listing{UserID: lessor.ID, CategoryID: cat.ID, Name: "Tent", Price: 12, Active: true}
	require.NoError(t, db.Create(listing).Error)

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&domain.Reservation{
		ListingID: listing.ID, UserID: renter.ID, StartDate: start, EndDate: start.AddDate(0, 0, 2),
		Price: 36, Status: domain.ReservationActive,
	}).Error)

	svc := NewService(
		repository.NewReviewRepository(db),
		repository.NewListingRepository(db),
		repository.NewReservationRepository(db),
	)
	return &env{db: db, svc: svc, lessor: lessor, renter: renter, stranger: stranger, listing: listing}
}

func (e *env) review(t *testing.T, comment string) *domain.Review {
	t.Helper()
	rv, err := e.svc.Create(context.Background(), e.renter.ID, CreateReviewRequest{ListingID: e.listing.ID, Comment: comment})
	require.NoError(t, err)
	return rv
}

func TestCreate_RenterCanReviewOnce(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	rv := e.review(t, "  Dry and easy to pitch. ")
	assert.NotZero(t, rv.ID)
	assert.Equal(t, "Dry and easy to pitch.", rv.Comment)

	_, err := e.svc.Create(ctx, e.renter.ID, CreateReviewRequest{ListingID: e.listing.ID, Comment: "Again"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestCreate_Rules(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, e.stranger.ID, CreateReviewRequest{ListingID: e.listing.ID, Comment: "Nice"})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	_, err = e.svc.Create(ctx, e.lessor.ID, CreateReviewRequest{ListingID: e.listing.ID, Comment: "Mine is great"})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)

	_, err = e.svc.Create(ctx, e.renter.ID, CreateReviewRequest{ListingID: 9999, Comment: "Nice"})
	assert.ErrorIs(t, err, ErrListingNotFound)

	_, err = e.svc.Create(ctx, e.renter.ID, CreateReviewRequest{ListingID: e.listing.ID, Comment: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "notblank", verr.Fields["Comment"])
}

func TestCreate_CancelledReservationDoesNotCount(t *testing.T) {
	e := setup(t)
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, e.db.Create(&domain.Reservation{
		ListingID: e.listing.ID, UserID: e.stranger.ID, StartDate: start, EndDate: start,
		Price: 12, Status: domain.ReservationCancelled,
	}).Error)

	_, err := e.svc.Create(context.Background(), e.stranger.ID, CreateReviewRequest{ListingID: e.listing.ID, Comment: "Nice"})
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestListByListing(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	empty, total, err := e.svc.ListByListing(ctx, e.listing.ID, ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Zero(t, total)

	e.review(t, "Good tent")
	list, total, err := e.svc.ListByListing(ctx, e.listing.ID, ListQuery{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].User)
	assert.Equal(t, "Rita", list[0].User.Name)

	_, _, err = e.svc.ListByListing(ctx, 9999, ListQuery{})
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestUpdate_AuthorOnly(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	rv := e.review(t, "Good tent")

	_, err := e.svc.Update(ctx, rv.ID, e.stranger.ID, UpdateReviewRequest{Comment: "Bad tent"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := e.svc.Update(ctx, rv.ID, e.renter.ID, UpdateReviewRequest{Comment: "Great tent"})
	require.NoError(t, err)
	assert.Equal(t, "Great tent", updated.Comment)

	_, err = e.svc.Update(ctx, 9999, e.renter.ID, UpdateReviewRequest{Comment: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_AuthorOrAdmin(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	rv := e.review(t, "Good tent")

	assert.ErrorIs(t, e.svc.Delete(ctx, rv.ID, e.stranger.ID, domain.RoleClient), ErrForbidden)
	assert.ErrorIs(t, e.svc.Delete(ctx, rv.ID, e.lessor.ID, domain.RoleLessor), ErrForbidden)
	require.NoError(t, e.svc.Delete(ctx, rv.ID, e.stranger.ID, domain.RoleAdmin))
	assert.ErrorIs(t, e.svc.Delete(ctx, rv.ID, e.renter.ID, domain.RoleClient), ErrNotFound)

	again := e.review(t, "Second thoughts")
	require.NoError(t, e.svc.Delete(ctx, again.ID, e.renter.ID, domain.RoleClient))
}

func TestReviewsGoWithListing(t *testing.T) {
	e := setup(t)
	e.review(t, "Good tent")

	require.NoError(t, repository.NewListingRepository(e.db).Delete(context.Background(), e.listing.ID))

	var n int64
	require.NoError(t, e.db.Model(&domain.Review{}).Count(&n).Error)
	assert.Zero(t, n)
}
