package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/groups"
	"github.com/openshelf/openshelf/internal/entities"
)

// GroupStore defines database operations for group management.
type GroupStore interface {
	CreateGroup(name, description string, creatorID uint) (*entities.Group, error)
	GetGroupByID(id uint) (*entities.Group, error)
	ListGroupsForUser(userID uint) ([]entities.Group, error)
	IsMember(groupID, userID uint) (bool, error)
}

type GroupsController struct {
	store GroupStore
}

func NewGroupsController(store GroupStore) *GroupsController {
	return &GroupsController{store: store}
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorID   uint   `json:"creator_id"`
}

// CreateGroup creates a sharing group. The creator becomes the first member.
// POST /api/groups
func (gc *GroupsController) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	creatorID := req.CreatorID
	if creatorID == 0 {
		creatorID = GetUserID(c)
	}

	group, err := gc.store.CreateGroup(req.Name, req.Description, creatorID)
	if err != nil {
		switch {
		case errors.Is(err, groups.ErrNameRequired):
			respondBadRequest(c, "name is required")
		case errors.Is(err, groups.ErrCreatorNotFound):
			respondNotFound(c, "creator")
		default:
			respondInternalError(c, err, "create group")
		}
		return
	}

	respondCreated(c, group)
}

// GetGroup returns a group with its members.
// GET /api/groups/:id
func (gc *GroupsController) GetGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, err := gc.store.GetGroupByID(id)
	if err != nil {
		if errors.Is(err, groups.ErrGroupNotFound) {
			respondNotFound(c, "group")
			return
		}
		respondInternalError(c, err, "get group")
		return
	}

	c.JSON(http.StatusOK, group)
}

// ListGroups returns the groups a user belongs to.
// GET /api/groups?user_id=
func (gc *GroupsController) ListGroups(c *gin.Context) {
	userID := GetUserID(c)
	if c.Query("user_id") != "" {
		var ok bool
		userID, ok = parseQueryID(c, "user_id")
		if !ok {
			return
		}
	}

	list, err := gc.store.ListGroupsForUser(userID)
	if err != nil {
		respondInternalError(c, err, "list groups")
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": list, "count": len(list)})
}
