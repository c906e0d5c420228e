// Package review lets renters comment on the listings they reserved.
package review

import (
	"context"
	"errors"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/pkg/validator"
	"rentals/internal/repository"
)

type Service struct {
	reviews      ReviewRepository
	listings     ListingGate
	reservations ReservationGate
}

func NewService(reviews ReviewRepository, listings ListingGate, reservations ReservationGate) *Service {
	return &Service{reviews: reviews, listings: listings, reservations: reservations}
}

// Create stores a review. The author must hold a non-cancelled reservation
// on the listing and may review it only once.
func (s *Service) Create(ctx context.Context, userID int64, req CreateReviewRequest) (*domain.Review, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.listings.GetByID(ctx, req.ListingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	ok, err := s.reservations.HasReserved(ctx, userID, req.ListingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReviewNotAllowed
	}

	rv := &domain.Review{
		ListingID: req.ListingID,
		UserID:    userID,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	return rv, nil
}

// ListByListing pages through a listing's reviews. Limit defaults to 20 and
// is capped at 100.
func (s *Service) ListByListing(ctx context.Context, listingID int64, q ListQuery) ([]domain.Review, int64, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrListingNotFound
		}
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := max(q.Offset, 0)

	list, total, err := s.reviews.ListByListing(ctx, listingID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if list == nil {
		list = []domain.Review{}
	}
	return list, total, nil
}

// Update changes the comment. Only the author may do it.
func (s *Service) Update(ctx context.Context, id, actorID int64, req UpdateReviewRequest) (*domain.Review, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	rv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != actorID {
		return nil, ErrForbidden
	}

	comment := strings.TrimSpace(req.Comment)
	if err := s.reviews.UpdateComment(ctx, id, comment); err != nil {
		return nil, mapRepoErr(err)
	}
	rv.Comment = comment
	return rv, nil
}

// Delete removes a review. Authors delete their own; admins delete any.
func (s *Service) Delete(ctx context.Context, id, actorID int64, role domain.UserRole) error {
	rv, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if rv.UserID != actorID && role != domain.RoleAdmin {
		return ErrForbidden
	}
	return mapRepoErr(s.reviews.Delete(ctx, id))
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return rv, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
