package handlers

import (
	"errors"
	"log"

	"bookstore/internal/middleware"
	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service     *services.OrderService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, authService *services.AuthService) *OrderHandler {
	return &OrderHandler{
		service:     service,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app. All order
// routes require an authenticated principal.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.AuthRequired(h.authService))
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetMyOrders)
}

// CreateOrderRequest represents the request body for order creation.
type CreateOrderRequest struct {
	BookID   string `json:"bookId" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Duration string `json:"duration"`
}

// HandleCreateOrder creates a new order for the requesting principal.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Некорректный запрос",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	userID, _ := c.Locals("user_id").(string)

	order, err := h.service.CreateOrder(userID, req.BookID, models.OrderType(req.Type), models.RentDuration(req.Duration))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Книга не найдена",
			})
		case errors.Is(err, services.ErrBookUnavailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Книга недоступна",
			})
		case errors.Is(err, services.ErrInvalidDuration):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Неверный срок аренды",
			})
		case errors.Is(err, services.ErrInvalidOrderType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Неверный тип заказа",
			})
		}
		log.Printf("Error creating order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Ошибка создания заказа",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":   order,
		"message": "Заказ успешно создан",
	})
}

// HandleGetMyOrders retrieves the requesting principal's orders, each joined
// with its book's display fields.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	orders, err := h.service.ListUserOrders(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Ошибка получения заказов",
		})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
	})
}
