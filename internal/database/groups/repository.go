// Package groups provides database operations for reading groups and
// their membership. Membership grows through redeemed invitations; the
// creator is enrolled automatically.
package groups

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrCreatorNotFound = errors.New("creator not found")
	ErrNameRequired    = errors.New("group name is required")
)

// Repository handles all group database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new groups repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateGroup creates a group and enrolls the creator as its first
// member, atomically.
func (r *Repository) CreateGroup(name, description string, creatorID uint) (*entities.Group, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	var group *entities.Group
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var creator entities.User
		if err := tx.First(&creator, creatorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCreatorNotFound
			}
			return err
		}

		group = &entities.Group{
			Name:        name,
			Description: description,
			CreatorID:   creatorID,
		}
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		return tx.Create(&entities.GroupMember{
			GroupID:  group.ID,
			UserID:   creatorID,
			JoinedAt: time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// GetGroupByID retrieves a group with its members preloaded.
func (r *Repository) GetGroupByID(id uint) (*entities.Group, error) {
	var group entities.Group
	err := r.db.Preload("Members").Preload("Members.User").First(&group, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

// ListGroupsForUser returns the groups a user belongs to.
func (r *Repository) ListGroupsForUser(userID uint) ([]entities.Group, error) {
	var groups []entities.Group
	err := r.db.
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.name ASC").
		Find(&groups).Error
	return groups, err
}

// IsMember reports whether a user belongs to a group.
func (r *Repository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
