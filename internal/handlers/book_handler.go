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

// BookHandler handles HTTP requests for the catalog.
type BookHandler struct {
	service     *services.BookService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.BookService, authService *services.AuthService) *BookHandler {
	return &BookHandler{
		service:     service,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app. Listing is
// public; mutation requires an administrator.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	bookRoutes := router.Group("/books")
	bookRoutes.Get("/", h.HandleGetBooks)

	auth := middleware.AuthRequired(h.authService)
	admin := middleware.AdminRequired()
	bookRoutes.Post("/", auth, admin, h.HandleCreateBook)
	bookRoutes.Put("/:id", auth, admin, h.HandleUpdateBook)
	bookRoutes.Delete("/:id", auth, admin, h.HandleDeleteBook)
}

// HandleGetBooks retrieves the whole catalog, newest first.
func (h *BookHandler) HandleGetBooks(c *fiber.Ctx) error {
	books, err := h.service.GetAllBooks()
	if err != nil {
		log.Printf("Error getting all books: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Ошибка получения книг",
		})
	}
	return c.JSON(fiber.Map{
		"books": books,
	})
}

// HandleCreateBook creates a new catalog entry.
func (h *BookHandler) HandleCreateBook(c *fiber.Ctx) error {
	var book models.Book
	if err := c.BodyParser(&book); err != nil {
		log.Printf("Error parsing book request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Некорректный запрос",
		})
	}

	if err := h.validate.Struct(book); err != nil {
		return validationError(c, err)
	}

	if err := h.service.CreateBook(&book); err != nil {
		log.Printf("Error creating book: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Ошибка добавления книги",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"book": book,
	})
}

// HandleUpdateBook replaces the fields of an existing catalog entry.
func (h *BookHandler) HandleUpdateBook(c *fiber.Ctx) error {
	var book models.Book
	if err := c.BodyParser(&book); err != nil {
		log.Printf("Error parsing book request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Некорректный запрос",
		})
	}
	book.ID = c.Params("id")

	if err := h.validate.Struct(book); err != nil {
		return validationError(c, err)
	}

	if err := h.service.UpdateBook(&book); err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Книга не найдена",
			})
		}
		log.Printf("Error updating book %s: %v", book.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Ошибка обновления книги",
		})
	}

	return c.JSON(fiber.Map{
		"book": book,
	})
}

// HandleDeleteBook deletes a catalog entry.
func (h *BookHandler) HandleDeleteBook(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteBook(id); err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Книга не найдена",
			})
		}
		log.Printf("Error deleting book %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Ошибка удаления книги",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Книга успешно удалена",
	})
}
