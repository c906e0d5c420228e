package domain

import "time"

type Category struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Listing is an item a lessor rents out, priced per day.
type Listing struct {
	ID          int64    `json:"id" gorm:"primaryKey"`
	UserID      int64    `json:"user_id" gorm:"not null;index"`
	CategoryID  int64    `json:"category_id" gorm:"not null;index"`
	Name        string   `json:"name" gorm:"size:255;not null"`
	Description string   `json:"description,omitempty" gorm:"type:text"`
	Price       float64  `json:"price" gorm:"type:decimal(10,2);not null"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Images      []string `json:"images" gorm:"serializer:json"`
	// Active is stored in the "status" column.
	Active    bool      `json:"active" gorm:"column:status;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner    *User     `json:"owner,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

func (Listing) TableName() string { return "listings" }

func (l *Listing) HasLocation() bool {
	return l.Latitude != nil && l.Longitude != nil
}
