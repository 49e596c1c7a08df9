package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
)

// BookStore defines database operations for book management.
type BookStore interface {
	CreateBook(book *entities.Book) error
	GetBookByID(id uint) (*entities.Book, error)
	ListBooksForOwner(ownerID uint) ([]entities.Book, error)
	ListBooks(status entities.BookStatus, limit, offset int) ([]entities.Book, int64, error)
	UpdateBook(id, ownerID uint, updates map[string]any) (*entities.Book, error)
	DeleteBook(id, ownerID uint) error
}

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

type createBookRequest struct {
	OwnerID uint   `json:"owner_id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	ISBN    string `json:"isbn"`
	Genre   string `json:"genre"`
	Type    string `json:"type"`
}

// CreateBook registers a new book owned by a user.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	ownerID := req.OwnerID
	if ownerID == 0 {
		ownerID = GetUserID(c)
	}

	book := &entities.Book{
		OwnerID:  ownerID,
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Genre:    req.Genre,
		BookType: req.Type,
	}

	if err := bc.store.CreateBook(book); err != nil {
		switch {
		case errors.Is(err, books.ErrTitleRequired):
			respondBadRequest(c, "title is required")
		case errors.Is(err, books.ErrOwnerNotFound):
			respondNotFound(c, "owner")
		default:
			respondInternalError(c, err, "create book")
		}
		return
	}

	respondCreated(c, book)
}

// GetBook returns a single book by ID.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// ListBooks returns books, optionally filtered by status or owner.
// GET /api/books?status=&owner_id=&limit=&offset=
func (bc *BooksController) ListBooks(c *gin.Context) {
	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		ownerID, ok := parseQueryID(c, "owner_id")
		if !ok {
			return
		}
		list, err := bc.store.ListBooksForOwner(ownerID)
		if err != nil {
			respondInternalError(c, err, "list books for owner")
			return
		}
		c.JSON(http.StatusOK, gin.H{"books": list, "count": len(list)})
		return
	}

	status := entities.BookStatus(c.Query("status"))
	if status != "" && status != entities.BookStatusAvailable && status != entities.BookStatusLoaned {
		respondBadRequest(c, "invalid status filter")
		return
	}

	limit, offset := parsePagination(c, 50, 200)

	list, total, err := bc.store.ListBooks(status, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    list,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(list)) < total,
	})
}

type updateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	ISBN   *string `json:"isbn"`
	Genre  *string `json:"genre"`
	Type   *string `json:"type"`
}

// UpdateBook modifies book metadata. Only the owner may update a book.
// PATCH /api/books/:id?owner_id=
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ownerID := GetUserID(c)
	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		ownerID, ok = parseQueryID(c, "owner_id")
		if !ok {
			return
		}
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.ISBN != nil {
		updates["isbn"] = *req.ISBN
	}
	if req.Genre != nil {
		updates["genre"] = *req.Genre
	}
	if req.Type != nil {
		updates["book_type"] = *req.Type
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	book, err := bc.store.UpdateBook(id, ownerID, updates)
	if err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrNotOwner):
			respondForbidden(c, "only the owner can update a book")
		default:
			respondInternalError(c, err, "update book")
		}
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book. Only the owner may delete a book.
// DELETE /api/books/:id?owner_id=
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ownerID := GetUserID(c)
	if ownerStr := c.Query("owner_id"); ownerStr != "" {
		ownerID, ok = parseQueryID(c, "owner_id")
		if !ok {
			return
		}
	}

	if err := bc.store.DeleteBook(id, ownerID); err != nil {
		switch {
		case errors.Is(err, books.ErrBookNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrNotOwner):
			respondForbidden(c, "only the owner can delete a book")
		default:
			respondInternalError(c, err, "delete book")
		}
		return
	}

	respondSuccess(c, "book deleted")
}
