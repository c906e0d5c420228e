package listing

import "rentals/internal/domain"

const defaultDistanceKm = 50.0

type CreateListingRequest struct {
	CategoryID  int64    `json:"category_id" validate:"required,gt=0"`
	Name        string   `json:"name" validate:"required,notblank,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	Price       float64  `json:"price" validate:"gte=0"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Images      []string `json:"images" validate:"max=20"`
	Active      *bool    `json:"active"`
}

// UpdateListingRequest is a partial update; nil fields are left as is.
type UpdateListingRequest struct {
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
	Name        *string  `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Images      []string `json:"images" validate:"omitempty,max=20"`
	Active      *bool    `json:"active"`
}

// ListQuery holds the catalog filters. A geo filter applies only when both
// Lat and Lng are set.
type ListQuery struct {
	CategoryID int64    `form:"category_id"`
	OwnerID    int64    `form:"owner_id"`
	MinPrice   *float64 `form:"min_price"`
	MaxPrice   *float64 `form:"max_price"`
	Lat        *float64 `form:"lat"`
	Lng        *float64 `form:"lng"`
	DistanceKm *float64 `form:"distance"`
	All        bool     `form:"all"`
}

func (q ListQuery) hasGeo() bool {
	return q.Lat != nil && q.Lng != nil
}

type CreateCategoryRequest struct {
	Title string `json:"title" validate:"required,notblank,max=255"`
}

// View is a listing as returned by the API, with the distance from the
// searcher when a position was given.
type View struct {
	domain.Listing
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
