package reservation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"rentals/internal/domain"
	"rentals/internal/repository"

	"github.com/rs/zerolog/log"
)

type Service struct {
	reservations ReservationRepository
	events       EventPublisher
	platformFee  float64
}

func NewService(reservations ReservationRepository, events EventPublisher, platformFee float64) *Service {
	return &Service{
		reservations: reservations,
		events:       events,
		platformFee:  platformFee,
	}
}

// CreateReservation books a listing for an inclusive date range. The overlap
// check and the insert happen under the listing row lock.
func (s *Service) CreateReservation(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if req.ListingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: listing and user are required", ErrValidation)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}

	start, end := Day(req.StartDate), Day(req.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrValidation)
	}

	res := &domain.Reservation{
		ListingID: req.ListingID,
		UserID:    req.UserID,
		StartDate: start,
		EndDate:   end,
		Status:    domain.ReservationPending,
	}
	candidate := DateRange{Start: start, End: end}

	var ownerID int64
	err := s.reservations.CreateLocked(ctx, res, func(listing *domain.Listing, existing []domain.Reservation) error {
		if !listing.Active {
			return ErrNotFound
		}
		if listing.UserID == req.UserID {
			return fmt.Errorf("%w: cannot reserve your own listing", ErrForbidden)
		}
		if other := FindConflict(candidate, existing); other != nil {
			log.Debug().
				Int64("listing_id", req.ListingID).
				Int64("conflicting_id", other.ID).
				Msg("reservation rejected: dates overlap")
			return ErrConflict
		}
		ownerID = listing.UserID
		res.Price = s.price(listing.Price, start, end)
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if s.events != nil {
		s.events.PublishToUser(ownerID, EventReservationCreated, res)
	}
	return res, nil
}

func (s *Service) price(perDay float64, start, end time.Time) float64 {
	days := daysBetween(start, end)
	if days < 1 {
		days = 1
	}
	total := perDay*float64(days) + s.platformFee
	return math.Round(total*100) / 100
}

// ListReservationsForUser returns what userID booked plus what was booked on
// userID's listings, newest first.
func (s *Service) ListReservationsForUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	out, err := s.reservations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Reservation{}
	}
	return out, nil
}

// ListReservedDates returns the occupied spans of a listing for calendars.
func (s *Service) ListReservedDates(ctx context.Context, listingID int64) ([]ReservedRange, error) {
	list, err := s.reservations.ListByListing(ctx, listingID, true)
	if err != nil {
		return nil, err
	}

	out := make([]ReservedRange, 0, len(list))
	for _, r := range list {
		out = append(out, ReservedRange{
			ReservationID: r.ID,
			StartDate:     r.StartDate.Format(dateLayout),
			EndDate:       r.EndDate.Format(dateLayout),
			Status:        string(r.Status),
		})
	}
	return out, nil
}

// GetReservation is visible to the renter and to the listing owner.
func (s *Service) GetReservation(ctx context.Context, id, actorID int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if res.UserID != actorID && ownerOf(res) != actorID {
		return nil, ErrForbidden
	}
	return res, nil
}

// UpdateStatus moves a reservation along its lifecycle. The listing owner
// accepts or declines; the renter pays or cancels.
func (s *Service) UpdateStatus(ctx context.Context, id, actorID int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	res, err := s.GetReservation(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	asOwner := ownerOf(res) == actorID && ownerTransitions[res.Status][status]
	asRenter := res.UserID == actorID && renterTransitions[res.Status][status]
	if !asOwner && !asRenter {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.reservations.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapRepoErr(err)
	}
	res.Status = status

	if s.events != nil {
		payload := map[string]any{"reservation_id": res.ID, "listing_id": res.ListingID, "status": status}
		s.events.PublishToUser(ownerOf(res), EventReservationStatusChanged, payload)
		if res.UserID != ownerOf(res) {
			s.events.PublishToUser(res.UserID, EventReservationStatusChanged, payload)
		}
	}
	return res, nil
}

// FindConflicts audits stored reservations of a listing and reports every
// overlapping pair of blocking reservations.
func (s *Service) FindConflicts(ctx context.Context, listingID int64) ([]ConflictPair, error) {
	list, err := s.reservations.ListByListing(ctx, listingID, true)
	if err != nil {
		return nil, err
	}

	out := []ConflictPair{}
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if FindConflict(RangeOf(list[i]), list[j:j+1]) != nil {
				out = append(out, ConflictPair{First: list[i].ID, Second: list[j].ID})
			}
		}
	}
	return out, nil
}

var ownerTransitions = map[domain.ReservationStatus]map[domain.ReservationStatus]bool{
	domain.ReservationPending: {domain.ReservationActive: true, domain.ReservationCancelled: true},
	domain.ReservationPayed:   {domain.ReservationActive: true, domain.ReservationCancelled: true},
}

var renterTransitions = map[domain.ReservationStatus]map[domain.ReservationStatus]bool{
	domain.ReservationPending: {domain.ReservationPayed: true, domain.ReservationCancelled: true},
	domain.ReservationPayed:   {domain.ReservationCancelled: true},
}

func ownerOf(res *domain.Reservation) int64 {
	if res.Listing == nil {
		return 0
	}
	return res.Listing.UserID
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrOverlap):
		return ErrConflict
	}
	return err
}
