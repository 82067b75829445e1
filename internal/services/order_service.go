package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/pkg/rabbitmq"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService is the order engine: it validates orderability, snapshots
// price and expiry, persists the order and applies the availability side
// effect.
type OrderService struct {
	db        *gorm.DB
	orderRepo repositories.OrderRepository
	mqClient  *rabbitmq.Client // optional; nil skips event publication
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *gorm.DB, orderRepo repositories.OrderRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: orderRepo,
		mqClient:  mqClient,
	}
}

// CreateOrder creates a purchase or rental order for the given user. The
// read-check-insert-flip sequence runs inside one transaction: the
// availability flip is a guarded update, so two concurrent rentals of the
// same book cannot both commit.
//
// Price and expiry are snapshots of the book at creation time. Rentals mark
// the book unavailable; purchases never touch availability.
func (s *OrderService) CreateOrder(userID, bookID string, orderType models.OrderType, duration models.RentDuration) (*models.Order, error) {
	if !orderType.Valid() {
		return nil, ErrInvalidOrderType
	}

	var days int
	if orderType == models.OrderTypeRent {
		var ok bool
		if days, ok = duration.Days(); !ok {
			return nil, ErrInvalidDuration
		}
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		book, err := s.orderRepo.GetBookForOrder(tx, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return fmt.Errorf("failed to read book %s: %w", bookID, err)
		}
		if !book.Available {
			return ErrBookUnavailable
		}

		now := time.Now()
		o := &models.Order{
			ID:        uuid.New().String(),
			UserID:    userID,
			BookID:    book.ID,
			Type:      orderType,
			Status:    models.OrderStatusActive,
			CreatedAt: now,
		}
		switch orderType {
		case models.OrderTypePurchase:
			o.TotalPrice = book.Price
		case models.OrderTypeRent:
			o.Duration = duration
			o.TotalPrice = book.RentPrice.ForDuration(duration)
			expiresAt := now.Add(time.Duration(days) * 24 * time.Hour)
			o.ExpiresAt = &expiresAt
		}

		if err := s.orderRepo.Insert(tx, o); err != nil {
			return err
		}

		if orderType == models.OrderTypeRent {
			flipped, err := s.orderRepo.MarkBookUnavailable(tx, book.ID)
			if err != nil {
				return err
			}
			if !flipped {
				// A concurrent order took the book between our read and the
				// guarded update; roll the whole thing back.
				return ErrBookUnavailable
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderCreated(order)
	return order, nil
}

// ListUserOrders retrieves the orders owned by the given user, each joined
// with its book's display fields.
func (s *OrderService) ListUserOrders(userID string) ([]models.OrderWithBook, error) {
	return s.orderRepo.ListByUser(userID)
}

// publishOrderCreated emits an order-created event. Publication is best
// effort: the order is already committed, so a broker failure is only
// logged.
func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}

	event := rabbitmq.OrderEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		BookID:     order.BookID,
		Type:       string(order.Type),
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	}
	if err := s.mqClient.PublishOrderCreated(event); err != nil {
		log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Successfully published order created event for order %s", order.ID)
	}
}
