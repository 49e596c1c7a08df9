package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/invitations"
	"github.com/openshelf/openshelf/internal/entities"
)

// InvitationStore defines database operations for group invitations.
type InvitationStore interface {
	Create(groupID, inviterID uint) (*entities.Invitation, error)
	Redeem(code string, userID uint) (*entities.Invitation, error)
	GetByCode(code string) (*entities.Invitation, error)
	ListForGroup(groupID uint) ([]entities.Invitation, error)
}

type InvitationsController struct {
	store InvitationStore
}

func NewInvitationsController(store InvitationStore) *InvitationsController {
	return &InvitationsController{store: store}
}

type createInvitationRequest struct {
	InviterID uint `json:"inviter_id"`
}

// CreateInvitation issues a single-use invitation code for a group.
// POST /api/groups/:id/invitations
func (ic *InvitationsController) CreateInvitation(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createInvitationRequest
	// Body is optional; the inviter defaults to the authenticated user.
	_ = c.ShouldBindJSON(&req)

	inviterID := req.InviterID
	if inviterID == 0 {
		inviterID = GetUserID(c)
	}

	invitation, err := ic.store.Create(groupID, inviterID)
	if err != nil {
		switch {
		case errors.Is(err, invitations.ErrGroupNotFound):
			respondNotFound(c, "group")
		case errors.Is(err, invitations.ErrInviterNotFound):
			respondNotFound(c, "inviter")
		default:
			respondInternalError(c, err, "create invitation")
		}
		return
	}

	respondCreated(c, invitation)
}

// ListInvitations returns the invitations issued for a group.
// GET /api/groups/:id/invitations
func (ic *InvitationsController) ListInvitations(c *gin.Context) {
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := ic.store.ListForGroup(groupID)
	if err != nil {
		if errors.Is(err, invitations.ErrGroupNotFound) {
			respondNotFound(c, "group")
			return
		}
		respondInternalError(c, err, "list invitations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": list, "count": len(list)})
}

type redeemInvitationRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID uint   `json:"user_id"`
}

// RedeemInvitation consumes an invitation code and enrolls the user
// in the group. Codes are single-use.
// POST /api/invitations/redeem
func (ic *InvitationsController) RedeemInvitation(c *gin.Context) {
	var req redeemInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "code is required")
		return
	}

	userID := req.UserID
	if userID == 0 {
		userID = GetUserID(c)
	}

	invitation, err := ic.store.Redeem(req.Code, userID)
	if err != nil {
		switch {
		case errors.Is(err, invitations.ErrInvitationNotFound):
			respondNotFound(c, "invitation")
		case errors.Is(err, invitations.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, invitations.ErrInvitationAlreadyUsed):
			respondBadRequest(c, "invitation code has already been used")
		case errors.Is(err, invitations.ErrInvitationExpired):
			respondBadRequest(c, "invitation code has expired")
		case errors.Is(err, invitations.ErrAlreadyMember):
			respondBadRequest(c, "user is already a member of the group")
		default:
			respondInternalError(c, err, "redeem invitation")
		}
		return
	}

	c.JSON(http.StatusOK, invitation)
}
