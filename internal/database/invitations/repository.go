// Package invitations manages group invitation codes.
//
// Codes are random, globally unique, and single-use: redemption flips
// the invitation from pending to accepted with a conditional update, so
// two concurrent redemptions of the same code cannot both succeed.
package invitations

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrGroupNotFound         = errors.New("group not found")
	ErrInviterNotFound       = errors.New("inviter not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrInvitationAlreadyUsed = errors.New("invitation has already been used")
	ErrInvitationExpired     = errors.New("invitation has expired")
	ErrAlreadyMember         = errors.New("user is already a member of the group")
)

// codeAttempts bounds the collision retry loop when generating codes.
// A uuid collision is practically impossible; the loop exists so a
// duplicate surfaces as a retry instead of a failed request.
const codeAttempts = 3

// Repository handles all invitation database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new invitations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create issues a pending invitation for a group with a fresh unique code.
func (r *Repository) Create(groupID, inviterID uint) (*entities.Invitation, error) {
	var group entities.Group
	if err := r.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	var inviter entities.User
	if err := r.db.First(&inviter, inviterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviterNotFound
		}
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := uuid.NewString()
		invitation := &entities.Invitation{
			GroupID:   groupID,
			InviterID: inviterID,
			Code:      &code,
			Status:    entities.InvitationStatusPending,
		}

		err := r.db.Create(invitation).Error
		if err == nil {
			return invitation, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// Redeem consumes a pending invitation code and adds the user to the
// group. The pending→accepted flip is conditional, so of two concurrent
// redemptions exactly one succeeds; the loser sees
// ErrInvitationAlreadyUsed.
func (r *Repository) Redeem(code string, userID uint) (*entities.Invitation, error) {
	var invitation entities.Invitation

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", code).First(&invitation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}

		var user entities.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		switch invitation.Status {
		case entities.InvitationStatusAccepted:
			return ErrInvitationAlreadyUsed
		case entities.InvitationStatusExpired:
			return ErrInvitationExpired
		}

		var members int64
		if err := tx.Model(&entities.GroupMember{}).
			Where("group_id = ? AND user_id = ?", invitation.GroupID, userID).
			Count(&members).Error; err != nil {
			return err
		}
		if members > 0 {
			return ErrAlreadyMember
		}

		result := tx.Model(&entities.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, entities.InvitationStatusPending).
			Update("status", entities.InvitationStatusAccepted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvitationAlreadyUsed
		}
		invitation.Status = entities.InvitationStatusAccepted

		return tx.Create(&entities.GroupMember{
			GroupID:  invitation.GroupID,
			UserID:   userID,
			JoinedAt: time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// GetByCode retrieves an invitation by its code.
func (r *Repository) GetByCode(code string) (*entities.Invitation, error) {
	var invitation entities.Invitation
	err := r.db.Where("code = ?", code).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// ListForGroup returns all invitations issued for a group.
func (r *Repository) ListForGroup(groupID uint) ([]entities.Invitation, error) {
	var invitations []entities.Invitation
	err := r.db.Where("group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Find(&invitations).Error
	return invitations, err
}

// ExpireOlderThan marks pending invitations created before the cutoff
// as expired and reports how many were swept.
func (r *Repository) ExpireOlderThan(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	result := r.db.Model(&entities.Invitation{}).
		Where("status = ? AND created_at < ?", entities.InvitationStatusPending, cutoff).
		Update("status", entities.InvitationStatusExpired)
	return result.RowsAffected, result.Error
}
