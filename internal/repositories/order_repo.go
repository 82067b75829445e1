package repositories

import (
	"bookstore/internal/models"

	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access. The tx-taking
// methods are the pieces of the order-creation sequence; the service runs
// them inside a single transaction so the availability check and the order
// insert commit or roll back together.
type OrderRepository interface {
	GetBookForOrder(tx *gorm.DB, bookID string) (*models.Book, error)
	// MarkBookUnavailable flips the availability flag only if it is still
	// set. The returned bool reports whether the flip happened; false means
	// a concurrent order won the race.
	MarkBookUnavailable(tx *gorm.DB, bookID string) (bool, error)
	Insert(tx *gorm.DB, order *models.Order) error
	ListByUser(userID string) ([]models.OrderWithBook, error)
}
