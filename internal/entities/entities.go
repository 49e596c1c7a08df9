package entities

import (
	"time"
)

type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusLoaned    BookStatus = "loaned"
)

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
)

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"uniqueIndex;size:100" json:"username"`
	Email            string     `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash     string     `gorm:"size:255" json:"-"`
	TokenHash        *string    `gorm:"uniqueIndex;size:64" json:"-"` // SHA-256 of the API token
	TokenCreatedAt   *time.Time `json:"-"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Book struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OwnerID   uint       `gorm:"index" json:"owner_id"`
	Title     string     `gorm:"size:512" json:"title"`
	Author    string     `gorm:"size:256" json:"author,omitempty"`
	ISBN      string     `gorm:"size:20" json:"isbn,omitempty"`
	Genre     string     `gorm:"size:100" json:"genre,omitempty"`
	BookType  string     `gorm:"size:50" json:"type,omitempty"`
	Status    BookStatus `gorm:"size:20;index;default:'available'" json:"status"`
	Owner     User       `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Group struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:256" json:"name"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	CreatorID   uint          `gorm:"index" json:"creator_id"`
	Creator     User          `gorm:"foreignKey:CreatorID" json:"-"`
	Members     []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type GroupMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	GroupID  uint      `gorm:"uniqueIndex:idx_group_member;index" json:"group_id"`
	UserID   uint      `gorm:"uniqueIndex:idx_group_member" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// Invitation joins a user to a group once its code is redeemed.
// Code is nullable until assigned and globally unique when set.
type Invitation struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	GroupID   uint             `gorm:"index" json:"group_id"`
	InviterID uint             `json:"inviter_id"`
	Code      *string          `gorm:"size:64;uniqueIndex" json:"code,omitempty"`
	Status    InvitationStatus `gorm:"size:20;default:'pending'" json:"status"`
	Group     Group            `gorm:"foreignKey:GroupID" json:"-"`
	Inviter   User             `gorm:"foreignKey:InviterID" json:"-"`
	CreatedAt time.Time        `json:"created_at"`
}

// Loan records a book being out with a borrower. At most one loan per
// book may be active at any time.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index:idx_loans_book_status" json:"book_id"`
	BorrowerID uint       `gorm:"index" json:"borrower_id"`
	Status     LoanStatus `gorm:"size:20;index:idx_loans_book_status;default:'active'" json:"status"`
	LoanedAt   time.Time  `json:"loaned_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Book       Book       `gorm:"foreignKey:BookID" json:"-"`
	Borrower   User       `gorm:"foreignKey:BorrowerID" json:"-"`
}

// Message is an append-only conversation entry attached to a loan.
// Rows cascade away with their loan or sender.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LoanID    uint      `gorm:"index" json:"loan_id"`
	SenderID  uint      `gorm:"index" json:"sender_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (Group) TableName() string {
	return "groups"
}

func (GroupMember) TableName() string {
	return "group_members"
}

func (Invitation) TableName() string {
	return "invitations"
}

func (Loan) TableName() string {
	return "loans"
}

func (Message) TableName() string {
	return "messages"
}
