// Package stats serves the admin and lessor dashboards.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"rentals/internal/domain"
	"rentals/internal/repository"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock replaces the clock used to pick the occupancy month.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Platform collects the admin dashboard. The queries are independent and run
// in parallel.
func (s *Service) Platform(ctx context.Context) (*PlatformStats, error) {
	out := &PlatformStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalClients, err = s.repo.CountUsersByRole(gctx, domain.RoleClient)
		return wrap("count clients", err)
	})
	g.Go(func() (err error) {
		out.TotalLessors, err = s.repo.CountUsersByRole(gctx, domain.RoleLessor)
		return wrap("count lessors", err)
	})
	g.Go(func() (err error) {
		out.TotalCategories, err = s.repo.CountCategories(gctx)
		return wrap("count categories", err)
	})
	g.Go(func() (err error) {
		out.TopLessors, err = s.repo.TopLessors(gctx, topLessorsLimit)
		return wrap("top lessors", err)
	})
	g.Go(func() (err error) {
		out.ListingsPerCategory, err = s.repo.ListingsPerCategory(gctx)
		return wrap("listings per category", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.TopLessors == nil {
		out.TopLessors = []repository.LessorListingCount{}
	}
	if out.ListingsPerCategory == nil {
		out.ListingsPerCategory = []repository.CategoryListingCount{}
	}
	return out, nil
}

// Lessor collects the dashboard of one lessor. Occupancy covers the current
// calendar month in UTC.
func (s *Service) Lessor(ctx context.Context, ownerID int64) (*LessorStats, error) {
	out := &LessorStats{}
	monthStart, monthEnd := monthBounds(s.now())

	var (
		activity []repository.ListingActivity
		last     map[int64]time.Time
		inMonth  []domain.Reservation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Listings, err = s.repo.CountListingsByOwner(gctx, ownerID)
		return wrap("count listings", err)
	})
	g.Go(func() (err error) {
		out.Reservations, err = s.repo.CountReservationsByOwner(gctx, ownerID)
		return wrap("count reservations", err)
	})
	g.Go(func() (err error) {
		out.RevenuePerListing, err = s.repo.RevenuePerListing(gctx, ownerID)
		return wrap("revenue per listing", err)
	})
	g.Go(func() (err error) {
		out.DistinctClients, err = s.repo.CountDistinctClients(gctx, ownerID)
		return wrap("count clients", err)
	})
	g.Go(func() (err error) {
		activity, err = s.repo.ListingActivity(gctx, ownerID)
		return wrap("listing activity", err)
	})
	g.Go(func() (err error) {
		last, err = s.repo.LastReservationDates(gctx, ownerID)
		return wrap("last reservations", err)
	})
	g.Go(func() (err error) {
		inMonth, err = s.repo.ReservationsInWindow(gctx, ownerID, monthStart, monthEnd)
		return wrap("reservations this month", err)
	})
	g.Go(func() (err error) {
		out.TopClients, err = s.repo.TopClients(gctx, ownerID, topClientsLimit)
		return wrap("top clients", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.RevenuePerListing == nil {
		out.RevenuePerListing = []repository.ListingRevenue{}
	}
	if out.TopClients == nil {
		out.TopClients = []repository.ClientActivity{}
	}
	var total float64
	for _, r := range out.RevenuePerListing {
		total += r.Revenue
	}
	out.Revenue = round2(total)

	out.ListingsDetail, out.AverageRevenuePerListing = revenueDetail(activity)
	out.PopularItems = popularItems(activity, last)
	out.Occupancy = occupancy(activity, inMonth, monthStart, monthEnd)
	return out, nil
}

// revenueDetail returns per listing revenue with the average per reservation,
// and the mean revenue across all listings.
func revenueDetail(activity []repository.ListingActivity) ([]ListingRevenueDetail, float64) {
	detail := make([]ListingRevenueDetail, 0, len(activity))
	var total float64
	for _, a := range activity {
		d := ListingRevenueDetail{
			ListingID:        a.ListingID,
			ListingName:      a.ListingName,
			TotalRevenue:     round2(a.Revenue),
			ReservationCount: a.Reservations,
		}
		if a.Reservations > 0 {
			d.AveragePerReservation = round2(a.Revenue / float64(a.Reservations))
		}
		detail = append(detail, d)
		total += a.Revenue
	}
	if len(activity) == 0 {
		return detail, 0
	}
	return detail, round2(total / float64(len(activity)))
}

// popularItems keeps the repository order, most booked first.
func popularItems(activity []repository.ListingActivity, last map[int64]time.Time) []PopularItem {
	out := make([]PopularItem, 0, len(activity))
	for _, a := range activity {
		item := PopularItem{ListingID: a.ListingID, ListingName: a.ListingName, ReservationCount: a.Reservations}
		if at, ok := last[a.ListingID]; ok {
			day := at.UTC().Format("2006-01-02")
			item.LastReservation = &day
		}
		out = append(out, item)
	}
	return out
}

func occupancy(activity []repository.ListingActivity, reservations []domain.Reservation, from, to time.Time) Occupancy {
	available := daysInclusive(from, to)
	occupied := make(map[int64]int, len(activity))
	for _, r := range reservations {
		start, end := r.StartDate.UTC(), r.EndDate.UTC()
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if !end.Before(start) {
			occupied[r.ListingID] += daysInclusive(start, end)
		}
	}

	out := Occupancy{Month: from.Format("2006-01"), Listings: make([]ListingOccupancy, 0, len(activity))}
	totalOccupied := 0
	for _, a := range activity {
		days := min(occupied[a.ListingID], available)
		out.Listings = append(out.Listings, ListingOccupancy{
			ListingID:     a.ListingID,
			ListingName:   a.ListingName,
			OccupiedDays:  days,
			AvailableDays: available,
			Rate:          percent(days, available),
		})
		totalOccupied += days
	}
	out.OverallRate = percent(totalOccupied, available*len(activity))
	return out
}

// monthBounds returns the first and last calendar day of now's UTC month.
func monthBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func daysInclusive(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
