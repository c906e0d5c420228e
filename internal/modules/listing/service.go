package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"rentals/internal/domain"
	"rentals/internal/pkg/geo"
	"rentals/internal/pkg/validator"
	"rentals/internal/repository"
)

type Service struct {
	listings   ListingRepository
	categories CategoryRepository
}

func NewService(listings ListingRepository, categories CategoryRepository) *Service {
	return &Service{listings: listings, categories: categories}
}

func (s *Service) Create(ctx context.Context, ownerID int64, req CreateListingRequest) (*domain.Listing, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if err := validatePosition(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	l := &domain.Listing{
		UserID:      ownerID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Images:      normalizeImages(req.Images),
		Active:      active,
	}
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Get returns one listing. With a position the distance to it is filled in.
func (s *Service) Get(ctx context.Context, id int64, lat, lng *float64) (*View, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	v := &View{Listing: *l}
	if lat != nil && lng != nil && l.HasLocation() {
		d := round1(geo.DistanceKm(*lat, *lng, *l.Latitude, *l.Longitude))
		v.DistanceKm = &d
	}
	return v, nil
}

// Update applies a partial update. Only the owner may change a listing.
func (s *Service) Update(ctx context.Context, id, actorID int64, req UpdateListingRequest) (*domain.Listing, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	l, err := s.owned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil && *req.CategoryID != l.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		l.CategoryID = *req.CategoryID
		l.Category = nil
	}
	if req.Name != nil {
		l.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		l.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Latitude != nil {
		l.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		l.Longitude = req.Longitude
	}
	if req.Images != nil {
		l.Images = normalizeImages(req.Images)
	}
	if req.Active != nil {
		l.Active = *req.Active
	}
	if err := validatePosition(l.Latitude, l.Longitude); err != nil {
		return nil, err
	}

	if err := s.listings.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes an owned listing together with its reservations.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	if _, err := s.owned(ctx, id, actorID); err != nil {
		return err
	}
	return mapRepoErr(s.listings.Delete(ctx, id))
}

// List filters the catalog. With a position, listings without coordinates or
// farther than the distance are dropped and the rest are sorted nearest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]View, error) {
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return nil, &ValidationError{Fields: map[string]string{"min_price": "lte_max_price"}}
	}
	if q.Lat != nil || q.Lng != nil {
		if !q.hasGeo() {
			return nil, &ValidationError{Fields: map[string]string{"lat,lng": "required_together"}}
		}
		if !geo.ValidCoordinates(*q.Lat, *q.Lng) {
			return nil, &ValidationError{Fields: map[string]string{"lat,lng": "range"}}
		}
	}

	list, err := s.listings.List(ctx, repository.ListingFilter{
		CategoryID:   q.CategoryID,
		OwnerID:      q.OwnerID,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		ActiveOnly:   !q.All,
		WithLocation: q.hasGeo(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(list))
	if !q.hasGeo() {
		for _, l := range list {
			out = append(out, View{Listing: l})
		}
		return out, nil
	}

	maxKm := defaultDistanceKm
	if q.DistanceKm != nil && *q.DistanceKm > 0 {
		maxKm = *q.DistanceKm
	}
	for _, l := range list {
		if !l.HasLocation() {
			continue
		}
		d := geo.DistanceKm(*q.Lat, *q.Lng, *l.Latitude, *l.Longitude)
		if d > maxKm {
			continue
		}
		d = round1(d)
		out = append(out, View{Listing: l, DistanceKm: &d})
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	return out, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Category{}
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*domain.Category, error) {
	if fields := validator.Validate(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	c := &domain.Category{Title: req.Title}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryDuplicate
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) owned(ctx context.Context, id, actorID int64) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if l.UserID != actorID {
		return nil, ErrForbidden
	}
	return l, nil
}

func (s *Service) ensureCategory(ctx context.Context, id int64) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

// validatePosition requires latitude and longitude to be set together.
func validatePosition(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return &ValidationError{Fields: map[string]string{"latitude,longitude": "required_together"}}
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
