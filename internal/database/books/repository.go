// Package books provides database operations for book management.
//
// Loan status transitions are owned by the loans package; this
// repository never touches the status column beyond reads.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(id)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrOwnerNotFound = errors.New("owner not found")
	ErrNotOwner      = errors.New("user does not own this book")
	ErrTitleRequired = errors.New("title is required")
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook adds a book owned by the given user.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.Title == "" {
		return ErrTitleRequired
	}

	var owner entities.User
	if err := r.db.First(&owner, book.OwnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}

	book.Status = entities.BookStatusAvailable
	return r.db.Create(book).Error
}

// GetBookByID retrieves a book by ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ListBooksForOwner returns all books owned by a user.
func (r *Repository) ListBooksForOwner(ownerID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("owner_id = ?", ownerID).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// ListBooks returns books with pagination, optionally filtered by
// status, together with the total count.
func (r *Repository) ListBooks(status entities.BookStatus, limit, offset int) ([]entities.Book, int64, error) {
	query := r.db.Model(&entities.Book{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var books []entities.Book
	err := query.Order("title ASC").Find(&books).Error
	return books, total, err
}

// UpdateBook changes a book's descriptive fields. Only the owner may
// update; the loan status column is deliberately left alone.
func (r *Repository) UpdateBook(id, ownerID uint, updates map[string]any) (*entities.Book, error) {
	book, err := r.GetBookByID(id)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	delete(updates, "status")
	delete(updates, "owner_id")
	if len(updates) > 0 {
		if err := r.db.Model(book).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return book, nil
}

// DeleteBook removes a book. Only the owner may delete.
func (r *Repository) DeleteBook(id, ownerID uint) error {
	book, err := r.GetBookByID(id)
	if err != nil {
		return err
	}
	if book.OwnerID != ownerID {
		return ErrNotOwner
	}
	return r.db.Delete(&entities.Book{}, id).Error
}
