package repositories

import (
	"fmt"
	"time"

	"bookstore/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetBookForOrder reads the target book inside the caller's transaction.
func (r *GORMOrderRepository) GetBookForOrder(tx *gorm.DB, bookID string) (*models.Book, error) {
	var book models.Book
	if err := tx.First(&book, "id = ?", bookID).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// MarkBookUnavailable performs a guarded update: the WHERE clause re-checks
// the flag, so of two transactions racing on the same book only one can see
// a row affected.
func (r *GORMOrderRepository) MarkBookUnavailable(tx *gorm.DB, bookID string) (bool, error) {
	res := tx.Model(&models.Book{}).
		Where("id = ? AND available = ?", bookID, true).
		Update("available", false)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark book %s unavailable: %w", bookID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Insert persists the order inside the caller's transaction.
func (r *GORMOrderRepository) Insert(tx *gorm.DB, order *models.Order) error {
	if err := tx.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// orderRow is the flat shape of the order/book join.
type orderRow struct {
	ID         string
	UserID     string
	BookID     string
	Type       models.OrderType
	Duration   models.RentDuration
	TotalPrice float64
	Status     models.OrderStatus
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	Title      string
	Author     string
	ImageURL   string
}

// ListByUser retrieves the user's orders joined with display fields of each
// order's book, newest first.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.OrderWithBook, error) {
	var rows []orderRow
	err := r.db.Table("orders").
		Select("orders.id, orders.user_id, orders.book_id, orders.type, orders.duration, orders.total_price, orders.status, orders.created_at, orders.expires_at, books.title, books.author, books.image_url").
		Joins("JOIN books ON books.id = orders.book_id").
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}

	orders := make([]models.OrderWithBook, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, models.OrderWithBook{
			Order: models.Order{
				ID:         row.ID,
				UserID:     row.UserID,
				BookID:     row.BookID,
				Type:       row.Type,
				Duration:   row.Duration,
				TotalPrice: row.TotalPrice,
				Status:     row.Status,
				CreatedAt:  row.CreatedAt,
				ExpiresAt:  row.ExpiresAt,
			},
			Book: models.OrderBookInfo{
				ID:       row.BookID,
				Title:    row.Title,
				Author:   row.Author,
				ImageURL: row.ImageURL,
			},
		})
	}
	return orders, nil
}
