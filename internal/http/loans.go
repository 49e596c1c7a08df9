package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/entities"
)

// LoanStore defines database operations for the loan lifecycle.
type LoanStore interface {
	Loan(bookID, borrowerID uint) (*entities.Loan, error)
	Return(bookID uint) (*entities.Loan, error)
	GetActiveLoan(bookID uint) (*entities.Loan, error)
	GetLoanByID(id uint) (*entities.Loan, error)
	ListLoansForBook(bookID uint) ([]entities.Loan, error)
	ListLoansForBorrower(borrowerID uint, activeOnly bool) ([]entities.Loan, error)
}

type LoansController struct {
	store LoanStore
}

func NewLoansController(store LoanStore) *LoansController {
	return &LoansController{store: store}
}

// LoanBook marks a book as loaned to a borrower. Fails if the book
// already has an active loan.
// POST /api/loans/loan?book_id=&borrower_id=
func (lc *LoansController) LoanBook(c *gin.Context) {
	bookID, ok := parseQueryID(c, "book_id")
	if !ok {
		return
	}
	borrowerID, ok := parseQueryID(c, "borrower_id")
	if !ok {
		return
	}

	loan, err := lc.store.Loan(bookID, borrowerID)
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, loans.ErrBorrowerNotFound):
			respondNotFound(c, "borrower")
		case errors.Is(err, loans.ErrBookAlreadyLoaned):
			respondBadRequest(c, "book is already loaned")
		case errors.Is(err, loans.ErrOwnBook):
			respondBadRequest(c, "cannot borrow your own book")
		default:
			respondInternalError(c, err, "loan book")
		}
		return
	}

	c.JSON(http.StatusOK, loan)
}

// ReturnBook ends the active loan on a book.
// POST /api/loans/return?book_id=
func (lc *LoansController) ReturnBook(c *gin.Context) {
	bookID, ok := parseQueryID(c, "book_id")
	if !ok {
		return
	}

	loan, err := lc.store.Return(bookID)
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, loans.ErrBookNotLoaned):
			respondBadRequest(c, "book is not currently loaned")
		default:
			respondInternalError(c, err, "return book")
		}
		return
	}

	c.JSON(http.StatusOK, loan)
}

// GetLoan returns a single loan by ID.
// GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := lc.store.GetLoanByID(id)
	if err != nil {
		if errors.Is(err, loans.ErrLoanNotFound) {
			respondNotFound(c, "loan")
			return
		}
		respondInternalError(c, err, "get loan")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// ListLoans returns loan history for a book or a borrower.
// GET /api/loans?book_id= | GET /api/loans?borrower_id=&active=
func (lc *LoansController) ListLoans(c *gin.Context) {
	if c.Query("book_id") != "" {
		bookID, ok := parseQueryID(c, "book_id")
		if !ok {
			return
		}
		list, err := lc.store.ListLoansForBook(bookID)
		if err != nil {
			respondInternalError(c, err, "list loans for book")
			return
		}
		c.JSON(http.StatusOK, gin.H{"loans": list, "count": len(list)})
		return
	}

	if c.Query("borrower_id") != "" {
		borrowerID, ok := parseQueryID(c, "borrower_id")
		if !ok {
			return
		}
		activeOnly := c.Query("active") == "true"
		list, err := lc.store.ListLoansForBorrower(borrowerID, activeOnly)
		if err != nil {
			respondInternalError(c, err, "list loans for borrower")
			return
		}
		c.JSON(http.StatusOK, gin.H{"loans": list, "count": len(list)})
		return
	}

	respondBadRequest(c, "book_id or borrower_id is required")
}

// GetActiveLoan returns the currently active loan for a book, if any.
// GET /api/books/:id/loan
func (lc *LoansController) GetActiveLoan(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := lc.store.GetActiveLoan(bookID)
	if err != nil {
		switch {
		case errors.Is(err, loans.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, loans.ErrBookNotLoaned):
			respondNotFound(c, "active loan")
		default:
			respondInternalError(c, err, "get active loan")
		}
		return
	}

	c.JSON(http.StatusOK, loan)
}
