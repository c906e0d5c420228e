package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentals/internal/database/dbtest"
	"rentals/internal/domain"
	"rentals/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB) (lessorA, lessorB *domain.User) {
	t.Helper()
	mk := func(name, email string, role domain.UserRole) *domain.User {
		u := &domain.User{Name: name, Email: email, PasswordHash: "x", Role: role}
		require.NoError(t, db.Create(u).Error)
		return u
	}
	lessorA = mk("Anna", "anna@example.com", domain.RoleLessor)
	lessorB = mk("Boris", "boris@example.com", domain.RoleLessor)
	c1 := mk("C1", "c1@example.com", domain.RoleClient)
	c2 := mk("C2", "c2@example.com", domain.RoleClient)
	mk("C3", "c3@example.com", domain.RoleClient)
	mk("Root", "root@example.com", domain.RoleAdmin)

	bikes := &domain.Category{Title: "Bikes"}
	boats := &domain.Category{Title: "Boats"}
	require.NoError(t, db.Create(bikes).Error)
	require.NoError(t, db.Create(boats).Error)

	listing := func(owner *domain.User, cat *domain.Category, name string) *domain.Listing {
		l := &domain.Listing{UserID: owner.ID, CategoryID: cat.ID, Name: name, Price: 10, Active: true}
		require.NoError(t, db.Create(l).Error)
		return l
	}
	bike1 := listing(lessorA, bikes, "Bike 1")
	bike2 := listing(lessorA, bikes, "Bike 2")
	listing(lessorB, boats, "Boat")

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	reserve := func(l *domain.Listing, client *domain.User, offset int, price float64, status domain.ReservationStatus) {
		start := day.AddDate(0, 0, offset)
		r := &domain.Reservation{ListingID: l.ID, UserID: client.ID, StartDate: start, EndDate: start, Price: price, Status: status}
		require.NoError(t, db.Create(r).Error)
	}
	reserve(bike1, c1, 0, 100, domain.ReservationPayed)
	reserve(bike1, c1, 5, 50.5, domain.ReservationPending)
	reserve(bike1, c2, 10, 70, domain.ReservationCancelled)
	reserve(bike2, c2, 0, 20, domain.ReservationActive)
	return lessorA, lessorB
}

func TestPlatform(t *testing.T) {
	db := dbtest.Open(t)
	lessorA, lessorB := seed(t, db)
	svc := NewService(repository.NewStatsRepository(db))

	st, err := svc.Platform(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.TotalClients)
	assert.Equal(t, int64(2), st.TotalLessors)
	assert.Equal(t, int64(2), st.TotalCategories)

	require.Len(t, st.TopLessors, 2)
	assert.Equal(t, lessorA.ID, st.TopLessors[0].UserID)
	assert.Equal(t, int64(2), st.TopLessors[0].Listings)
	assert.Equal(t, lessorB.ID, st.TopLessors[1].UserID)

	require.Len(t, st.ListingsPerCategory, 2)
	assert.Equal(t, "Bikes", st.ListingsPerCategory[0].Title)
	assert.Equal(t, int64(2), st.ListingsPerCategory[0].Count)
}

func TestLessor(t *testing.T) {
	db := dbtest.Open(t)
	lessorA, lessorB := seed(t, db)
	svc := NewService(repository.NewStatsRepository(db))

	st, err := svc.Lessor(context.Background(), lessorA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Listings)
	assert.Equal(t, int64(4), st.Reservations)
	assert.Equal(t, int64(2), st.DistinctClients)
	assert.InDelta(t, 170.5, st.Revenue, 0.001)
	require.Len(t, st.RevenuePerListing, 2)
	assert.InDelta(t, 150.5, st.RevenuePerListing[0].Revenue, 0.001)

	empty, err := svc.Lessor(context.Background(), lessorB.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Revenue)
	assert.Zero(t, empty.Reservations)
	require.Len(t, empty.RevenuePerListing, 1)
}

func TestLessor_KPIs(t *testing.T) {
	db := dbtest.Open(t)
	lessorA, lessorB := seed(t, db)
	june := func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	svc := NewService(repository.NewStatsRepository(db)).WithClock(june)

	st, err := svc.Lessor(context.Background(), lessorA.ID)
	require.NoError(t, err)

	assert.InDelta(t, 85.25, st.AverageRevenuePerListing, 0.001)
	require.Len(t, st.ListingsDetail, 2)
	assert.Equal(t, "Bike 1", st.ListingsDetail[0].ListingName)
	assert.Equal(t, int64(2), st.ListingsDetail[0].ReservationCount)
	assert.InDelta(t, 150.5, st.ListingsDetail[0].TotalRevenue, 0.001)
	assert.InDelta(t, 75.25, st.ListingsDetail[0].AveragePerReservation, 0.001)

	require.Len(t, st.PopularItems, 2)
	assert.Equal(t, "Bike 1", st.PopularItems[0].ListingName)
	assert.Equal(t, int64(2), st.PopularItems[0].ReservationCount)
	assert.NotNil(t, st.PopularItems[0].LastReservation)
	assert.Equal(t, int64(1), st.PopularItems[1].ReservationCount)

	assert.Equal(t, "2025-06", st.Occupancy.Month)
	require.Len(t, st.Occupancy.Listings, 2)
	assert.Equal(t, 2, st.Occupancy.Listings[0].OccupiedDays)
	assert.Equal(t, 30, st.Occupancy.Listings[0].AvailableDays)
	assert.InDelta(t, 6.67, st.Occupancy.Listings[0].Rate, 0.001)
	assert.InDelta(t, 5.0, st.Occupancy.OverallRate, 0.001)

	require.Len(t, st.TopClients, 2)
	assert.Equal(t, "C1", st.TopClients[0].ClientName)
	assert.Equal(t, int64(2), st.TopClients[0].Reservations)
	assert.InDelta(t, 150.5, st.TopClients[0].TotalSpent, 0.001)
	assert.Equal(t, "C2", st.TopClients[1].ClientName)
	assert.InDelta(t, 20.0, st.TopClients[1].TotalSpent, 0.001)

	july := func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) }
	st, err = NewService(repository.NewStatsRepository(db)).WithClock(july).Lessor(context.Background(), lessorA.ID)
	require.NoError(t, err)
	assert.Equal(t, 31, st.Occupancy.Listings[0].AvailableDays)
	assert.Zero(t, st.Occupancy.OverallRate)

	empty, err := svc.Lessor(context.Background(), lessorB.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.AverageRevenuePerListing)
	assert.NotNil(t, empty.TopClients)
	require.Len(t, empty.PopularItems, 1)
	assert.Nil(t, empty.PopularItems[0].LastReservation)
}

func TestOccupancy_ClipsToMonth(t *testing.T) {
	d := func(s string) time.Time {
		v, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return v
	}
	from, to := monthBounds(d("2024-02-10"))
	assert.Equal(t, d("2024-02-29"), to)

	activity := []repository.ListingActivity{{ListingID: 1, ListingName: "A"}, {ListingID: 2, ListingName: "B"}}
	got := occupancy(activity, []domain.Reservation{
		{ListingID: 1, StartDate: d("2024-01-28"), EndDate: d("2024-02-02")},
		{ListingID: 1, StartDate: d("2024-02-27"), EndDate: d("2024-03-05")},
		{ListingID: 2, StartDate: d("2024-02-01"), EndDate: d("2024-02-29")},
	}, from, to)

	assert.Equal(t, "2024-02", got.Month)
	assert.Equal(t, 5, got.Listings[0].OccupiedDays)
	assert.Equal(t, 29, got.Listings[1].OccupiedDays)
	assert.InDelta(t, 100.0, got.Listings[1].Rate, 0.001)
	assert.InDelta(t, 58.62, got.OverallRate, 0.001)
}

type mockRepo struct {
	mock.Mock
	Repository
}

func (m *mockRepo) CountListingsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) CountReservationsByOwner(ctx context.Context, ownerID int64) (int64, error) {
	return 0, nil
}

func (m *mockRepo) RevenuePerListing(ctx context.Context, ownerID int64) ([]repository.ListingRevenue, error) {
	return nil, nil
}

func (m *mockRepo) CountDistinctClients(ctx context.Context, ownerID int64) (int64, error) {
	return 0, nil
}

func (m *mockRepo) ListingActivity(ctx context.Context, ownerID int64) ([]repository.ListingActivity, error) {
	return nil, nil
}

func (m *mockRepo) LastReservationDates(ctx context.Context, ownerID int64) (map[int64]time.Time, error) {
	return nil, nil
}

func (m *mockRepo) ReservationsInWindow(ctx context.Context, ownerID int64, from, to time.Time) ([]domain.Reservation, error) {
	return nil, nil
}

func (m *mockRepo) TopClients(ctx context.Context, ownerID int64, limit int) ([]repository.ClientActivity, error) {
	return nil, nil
}

func TestLessor_PropagatesErrors(t *testing.T) {
	repo := new(mockRepo)
	boom := errors.New("db down")
	repo.On("CountListingsByOwner", mock.Anything, int64(1)).Return(int64(0), boom)

	_, err := NewService(repo).Lessor(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "count listings")
}
