package models

import "time"

// RentPrices holds the price for each rental duration tier. The struct is
// embedded so the prices persist as flat rent_price_* columns while the JSON
// representation stays a nested mapping keyed by tier.
type RentPrices struct {
	TwoWeeks    float64 `json:"2weeks" gorm:"column:rent_price_2weeks" validate:"gte=0"`
	OneMonth    float64 `json:"1month" gorm:"column:rent_price_1month" validate:"gte=0"`
	ThreeMonths float64 `json:"3months" gorm:"column:rent_price_3months" validate:"gte=0"`
}

// ForDuration returns the price of the given tier.
func (p RentPrices) ForDuration(d RentDuration) float64 {
	switch d {
	case Rent2Weeks:
		return p.TwoWeeks
	case Rent1Month:
		return p.OneMonth
	case Rent3Months:
		return p.ThreeMonths
	}
	return 0
}

// Book represents a catalog entry.
type Book struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string     `json:"title" gorm:"type:varchar(255)" validate:"required"`
	Author      string     `json:"author" gorm:"type:varchar(255)" validate:"required"`
	Category    string     `json:"category" gorm:"type:varchar(100)"`
	Year        int        `json:"year"`
	Price       float64    `json:"price" validate:"gte=0"`
	RentPrice   RentPrices `json:"rentPrice" gorm:"embedded"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl" gorm:"column:image_url"`
	ISBN        string     `json:"isbn" gorm:"column:isbn;type:varchar(20)"`
	Available   bool       `json:"available"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
