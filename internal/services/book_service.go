package services

import (
	"errors"

	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"gorm.io/gorm"
)

// BookService handles business logic related to the catalog.
type BookService struct {
	repo repositories.BookRepository
}

// NewBookService creates a new BookService.
func NewBookService(repo repositories.BookRepository) *BookService {
	return &BookService{
		repo: repo,
	}
}

// GetAllBooks retrieves all books, newest first.
func (s *BookService) GetAllBooks() ([]models.Book, error) {
	return s.repo.GetAll()
}

// GetBookByID retrieves a single book by its ID.
func (s *BookService) GetBookByID(id string) (*models.Book, error) {
	book, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// CreateBook creates a new catalog entry.
func (s *BookService) CreateBook(book *models.Book) error {
	return s.repo.Create(book)
}

// UpdateBook replaces the fields of an existing catalog entry.
func (s *BookService) UpdateBook(book *models.Book) error {
	if err := s.repo.Update(book); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}

// DeleteBook deletes a catalog entry by its ID.
func (s *BookService) DeleteBook(id string) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}
