package models

import "time"

// OrderType discriminates purchases from rentals.
type OrderType string

const (
	OrderTypePurchase OrderType = "purchase"
	OrderTypeRent     OrderType = "rent"
)

// Valid reports whether t is a recognized order type.
func (t OrderType) Valid() bool {
	return t == OrderTypePurchase || t == OrderTypeRent
}

// RentDuration is one of the three fixed rental tiers.
type RentDuration string

const (
	Rent2Weeks  RentDuration = "2weeks"
	Rent1Month  RentDuration = "1month"
	Rent3Months RentDuration = "3months"
)

// Days returns the fixed day count of the tier. Tiers are flat day counts
// (14/30/90), not calendar arithmetic.
func (d RentDuration) Days() (int, bool) {
	switch d {
	case Rent2Weeks:
		return 14, true
	case Rent1Month:
		return 30, true
	case Rent3Months:
		return 90, true
	}
	return 0, false
}

type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order links one user to one book. TotalPrice and ExpiresAt are snapshots
// taken at creation time and never recomputed.
type Order struct {
	ID         string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string       `json:"userId" gorm:"index;type:varchar(36)"`
	BookID     string       `json:"bookId" gorm:"type:varchar(36)"`
	Type       OrderType    `json:"type" gorm:"type:varchar(16)"`
	Duration   RentDuration `json:"duration,omitempty" gorm:"type:varchar(16)"`
	TotalPrice float64      `json:"totalPrice"`
	Status     OrderStatus  `json:"status" gorm:"type:varchar(16)"`
	CreatedAt  time.Time    `json:"createdAt"`
	ExpiresAt  *time.Time   `json:"expiresAt,omitempty"`
}

// OrderBookInfo is the slice of book fields joined into an order listing.
type OrderBookInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl"`
}

// OrderWithBook is an order together with display fields of its book.
type OrderWithBook struct {
	Order
	Book OrderBookInfo `json:"book"`
}
