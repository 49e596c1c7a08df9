// Package loans implements the loan state machine for books.
//
// A book is either available or loaned; at most one active loan exists
// per book. Transitions run inside a transaction and flip the book's
// status with a conditional update checked by affected-row count, so
// two concurrent borrowers can never both win.
//
// # Usage
//
//	repo := loans.NewRepository(db)
//	loan, err := repo.Loan(bookID, borrowerID)
package loans

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBorrowerNotFound  = errors.New("borrower not found")
	ErrBookAlreadyLoaned = errors.New("book is already loaned")
	ErrBookNotLoaned     = errors.New("book is not currently loaned")
	ErrOwnBook           = errors.New("owner cannot borrow their own book")
	ErrLoanNotFound      = errors.New("loan not found")
)

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Loan lends a book to a borrower and returns the created loan record.
// Fails with ErrBookAlreadyLoaned when the book is not available; with
// concurrent callers exactly one succeeds.
func (r *Repository) Loan(bookID, borrowerID uint) (*entities.Loan, error) {
	var loan *entities.Loan

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		var borrower entities.User
		if err := tx.First(&borrower, borrowerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBorrowerNotFound
			}
			return err
		}

		if book.OwnerID == borrowerID {
			return ErrOwnBook
		}

		// Conditional flip of the status column; zero affected rows
		// means another loan got there first.
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND status = ?", bookID, entities.BookStatusAvailable).
			Update("status", entities.BookStatusLoaned)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookAlreadyLoaned
		}

		loan = &entities.Loan{
			BookID:     bookID,
			BorrowerID: borrowerID,
			Status:     entities.LoanStatusActive,
			LoanedAt:   time.Now(),
		}
		return tx.Create(loan).Error
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return closes the active loan for a book and makes it available
// again. Fails with ErrBookNotLoaned when no active loan exists; the
// book is left untouched in that case.
func (r *Repository) Return(bookID uint) (*entities.Loan, error) {
	var loan entities.Loan

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if err := tx.Where("book_id = ? AND status = ?", bookID, entities.LoanStatusActive).
			First(&loan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotLoaned
			}
			return err
		}

		now := time.Now()
		result := tx.Model(&entities.Loan{}).
			Where("id = ? AND status = ?", loan.ID, entities.LoanStatusActive).
			Updates(map[string]any{
				"status":      entities.LoanStatusReturned,
				"returned_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookNotLoaned
		}
		loan.Status = entities.LoanStatusReturned
		loan.ReturnedAt = &now

		return tx.Model(&entities.Book{}).
			Where("id = ?", bookID).
			Update("status", entities.BookStatusAvailable).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetActiveLoan returns the active loan for a book, or ErrBookNotLoaned.
func (r *Repository) GetActiveLoan(bookID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Where("book_id = ? AND status = ?", bookID, entities.LoanStatusActive).
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotLoaned
		}
		return nil, err
	}
	return &loan, nil
}

// GetLoanByID retrieves a loan by ID.
func (r *Repository) GetLoanByID(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// ListLoansForBook returns a book's full loan history, newest first.
func (r *Repository) ListLoansForBook(bookID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Where("book_id = ?", bookID).
		Order("loaned_at DESC, id DESC").
		Find(&loans).Error
	return loans, err
}

// ListLoansForBorrower returns loans held by a user, optionally only
// the active ones.
func (r *Repository) ListLoansForBorrower(borrowerID uint, activeOnly bool) ([]entities.Loan, error) {
	var loans []entities.Loan
	query := r.db.Where("borrower_id = ?", borrowerID)
	if activeOnly {
		query = query.Where("status = ?", entities.LoanStatusActive)
	}
	err := query.Order("loaned_at DESC, id DESC").Find(&loans).Error
	return loans, err
}

// CountActiveLoans reports how many loans are currently active for a
// book. Used by tests to verify the at-most-one invariant.
func (r *Repository) CountActiveLoans(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("book_id = ? AND status = ?", bookID, entities.LoanStatusActive).
		Count(&count).Error
	return count, err
}
