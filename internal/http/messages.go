package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/messages"
	"github.com/openshelf/openshelf/internal/entities"
)

// MessageStore defines database operations for per-loan messaging.
type MessageStore interface {
	Post(loanID, senderID uint, content string) (*entities.Message, error)
	ListForLoan(loanID uint, limit, offset int) ([]entities.Message, int64, error)
}

type MessagesController struct {
	store MessageStore
}

func NewMessagesController(store MessageStore) *MessagesController {
	return &MessagesController{store: store}
}

type postMessageRequest struct {
	SenderID uint   `json:"sender_id"`
	Content  string `json:"content"`
}

// PostMessage appends a message to a loan's conversation.
// POST /api/loans/:id/messages
func (mc *MessagesController) PostMessage(c *gin.Context) {
	loanID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	senderID := req.SenderID
	if senderID == 0 {
		senderID = GetUserID(c)
	}

	message, err := mc.store.Post(loanID, senderID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, messages.ErrLoanNotFound):
			respondNotFound(c, "loan")
		case errors.Is(err, messages.ErrSenderNotFound):
			respondNotFound(c, "sender")
		case errors.Is(err, messages.ErrEmptyContent):
			respondBadRequest(c, "content must not be empty")
		default:
			respondInternalError(c, err, "post message")
		}
		return
	}

	respondCreated(c, message)
}

// ListMessages returns a loan's messages in posting order.
// GET /api/loans/:id/messages?limit=&offset=
func (mc *MessagesController) ListMessages(c *gin.Context) {
	loanID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	limit, offset := parsePagination(c, 50, 200)

	list, total, err := mc.store.ListForLoan(loanID, limit, offset)
	if err != nil {
		if errors.Is(err, messages.ErrLoanNotFound) {
			respondNotFound(c, "loan")
			return
		}
		respondInternalError(c, err, "list messages")
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
