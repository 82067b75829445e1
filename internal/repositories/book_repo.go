package repositories

import (
	"bookstore/internal/models"
)

// BookRepository defines the interface for catalog data access.
type BookRepository interface {
	GetAll() ([]models.Book, error)
	GetByID(id string) (*models.Book, error)
	Create(book *models.Book) error
	Update(book *models.Book) error
	Delete(id string) error
}
