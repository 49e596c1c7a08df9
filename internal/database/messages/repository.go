// Package messages provides the append-only conversation log attached
// to loans. Messages are never updated or deleted by the application;
// they only disappear when their loan or sender is removed (cascade).
package messages

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrLoanNotFound   = errors.New("loan not found")
	ErrSenderNotFound = errors.New("sender not found")
	ErrEmptyContent   = errors.New("message content must not be empty")
)

// Repository handles all message database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new messages repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Post appends a message to a loan's conversation.
func (r *Repository) Post(loanID, senderID uint, content string) (*entities.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	var message *entities.Message
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var loan entities.Loan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		var sender entities.User
		if err := tx.First(&sender, senderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSenderNotFound
			}
			return err
		}

		message = &entities.Message{
			LoanID:   loanID,
			SenderID: senderID,
			Content:  content,
		}
		return tx.Create(message).Error
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

// ListForLoan returns a loan's messages in creation order (ties broken
// by id for determinism) together with the total count.
func (r *Repository) ListForLoan(loanID uint, limit, offset int) ([]entities.Message, int64, error) {
	var loan entities.Loan
	if err := r.db.First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrLoanNotFound
		}
		return nil, 0, err
	}

	var total int64
	if err := r.db.Model(&entities.Message{}).
		Where("loan_id = ?", loanID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Where("loan_id = ?", loanID).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var messages []entities.Message
	err := query.Find(&messages).Error
	return messages, total, err
}
