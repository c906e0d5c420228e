package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationPayed     ReservationStatus = "payed"
	ReservationActive    ReservationStatus = "active"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Blocking reports whether a reservation in this status occupies its dates.
func (s ReservationStatus) Blocking() bool {
	switch s {
	case ReservationPending, ReservationPayed, ReservationActive:
		return true
	}
	return false
}

func (s ReservationStatus) Valid() bool {
	return s.Blocking() || s == ReservationCancelled
}

// Reservation holds calendar dates as UTC midnight; EndDate is inclusive.
type Reservation struct {
	ID               int64             `json:"id" gorm:"primaryKey"`
	ListingID        int64             `json:"listing_id" gorm:"not null;index"`
	UserID           int64             `json:"user_id" gorm:"not null;index"`
	StartDate        time.Time         `json:"start_date" gorm:"type:date;not null;index"`
	EndDate          time.Time         `json:"end_date" gorm:"type:date;not null"`
	Price            float64           `json:"price" gorm:"type:decimal(10,2);not null"`
	Status           ReservationStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	ReminderSent     bool              `json:"reminder_sent" gorm:"not null;default:false"`
	ReminderSentAt   *time.Time        `json:"reminder_sent_at,omitempty"`
	ReminderAttempts int               `json:"-" gorm:"not null;default:0"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Reservation) TableName() string { return "reservations" }

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&Category{},
		&Listing{},
		&Reservation{},
		&Review{},
	}
}
