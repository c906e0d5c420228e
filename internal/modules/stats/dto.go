package stats

import "rentals/internal/repository"

const (
	topLessorsLimit = 5
	topClientsLimit = 10
)

// PlatformStats is the admin dashboard.
type PlatformStats struct {
	TotalClients        int64                             `json:"total_clients"`
	TotalLessors        int64                             `json:"total_lessors"`
	TotalCategories     int64                             `json:"total_categories"`
	TopLessors          []repository.LessorListingCount   `json:"top_lessors"`
	ListingsPerCategory []repository.CategoryListingCount `json:"listings_per_category"`
}

// LessorStats is the dashboard of one lessor. Revenue ignores cancelled
// reservations.
type LessorStats struct {
	Listings          int64                       `json:"listings"`
	Reservations      int64                       `json:"reservations"`
	Revenue           float64                     `json:"revenue"`
	RevenuePerListing []repository.ListingRevenue `json:"revenue_per_listing"`
	DistinctClients   int64                       `json:"distinct_clients"`

	AverageRevenuePerListing float64                     `json:"average_revenue_per_listing"`
	ListingsDetail           []ListingRevenueDetail      `json:"listings_detail"`
	Occupancy                Occupancy                   `json:"occupancy"`
	PopularItems             []PopularItem               `json:"popular_items"`
	TopClients               []repository.ClientActivity `json:"top_clients"`
}

type ListingRevenueDetail struct {
	ListingID             int64   `json:"listing_id"`
	ListingName           string  `json:"listing_name"`
	TotalRevenue          float64 `json:"total_revenue"`
	ReservationCount      int64   `json:"reservation_count"`
	AveragePerReservation float64 `json:"average_per_reservation"`
}

// Occupancy compares reserved days with calendar days in the current month.
// Rates are percentages.
type Occupancy struct {
	Month       string             `json:"month"`
	OverallRate float64            `json:"overall_occupancy_rate"`
	Listings    []ListingOccupancy `json:"listings_occupancy"`
}

type ListingOccupancy struct {
	ListingID     int64   `json:"listing_id"`
	ListingName   string  `json:"listing_name"`
	OccupiedDays  int     `json:"occupied_days"`
	AvailableDays int     `json:"available_days"`
	Rate          float64 `json:"occupancy_rate"`
}

type PopularItem struct {
	ListingID        int64   `json:"listing_id"`
	ListingName      string  `json:"listing_name"`
	ReservationCount int64   `json:"reservation_count"`
	LastReservation  *string `json:"last_reservation"`
}
