package reservation

import "time"

const dateLayout = "2006-01-02"

type CreateReservationRequest struct {
	ListingID int64
	UserID    int64
	StartDate time.Time
	EndDate   time.Time
}

type createReservationBody struct {
	ListingID int64  `json:"listing_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type updateStatusBody struct {
	Status string `json:"status" binding:"required"`
}

// ReservedRange is one occupied span of a listing calendar.
type ReservedRange struct {
	ReservationID int64  `json:"reservation_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Status        string `json:"status"`
}

// ConflictPair names two stored blocking reservations that overlap.
type ConflictPair struct {
	First  int64 `json:"first_id"`
	Second int64 `json:"second_id"`
}

// Event names pushed to the lessor live feed.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
)
