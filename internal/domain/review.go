package domain

import "time"

// Review is a renter's comment on a listing. A user reviews a listing once.
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ListingID int64     `json:"listing_id" gorm:"not null;uniqueIndex:idx_reviews_listing_user"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_reviews_listing_user;index"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Listing *Listing `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Review) TableName() string { return "reviews" }
