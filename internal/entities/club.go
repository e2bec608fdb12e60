package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleSuper UserRole = "super"
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// IsAdmin reports whether the role carries administrative privileges.
func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin || r == UserRoleSuper
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	Name         string         `gorm:"size:200" json:"name"`
	Email        string         `gorm:"index;size:255" json:"email,omitempty"`
	Avatar       string         `gorm:"size:2048" json:"avatar,omitempty"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         UserRole       `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// DisplayName returns the member-facing name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

type BookStatus string

const (
	BookStatusToRead    BookStatus = "to-read"
	BookStatusReading   BookStatus = "reading"
	BookStatusCompleted BookStatus = "completed"
)

// Book is the canonical work the club reads. TotalPages is the page count
// of the club's reference edition; members may read editions with
// different counts (see ReaderSession.BookTotalPages).
type Book struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"index;size:512" json:"title"`
	Author     string         `gorm:"index;size:256" json:"author"`
	CoverURL   string         `gorm:"size:2048" json:"cover_url,omitempty"`
	TotalPages int            `json:"total_pages"`
	Status     BookStatus     `gorm:"size:20;default:'to-read'" json:"status"`
	CreatedBy  uint           `gorm:"index" json:"created_by"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type SessionStatus string

const (
	SessionStatusUninitialized SessionStatus = "uninitialized"
	SessionStatusActive        SessionStatus = "active"
	SessionStatusCompleted     SessionStatus = "completed"
	SessionStatusDropped       SessionStatus = "dropped"
)

// BookSession is the club-wide schedule for a book. At most one exists per
// book; a book without one is rendered as a synthetic uninitialized session.
type BookSession struct {
	ID                uint          `gorm:"primaryKey" json:"id"`
	BookID            uint          `gorm:"uniqueIndex" json:"book_id"`
	Status            SessionStatus `gorm:"size:20;default:'active'" json:"status"`
	CurrentPage       int           `json:"current_page"`
	TargetPage        int           `json:"target_page"`
	ReadingPacePerDay int           `json:"reading_pace_per_day"`
	EstimatedEndDate  time.Time     `json:"estimated_end_date"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (BookSession) TableName() string {
	return "book_sessions"
}

type ReaderStatus string

const (
	ReaderStatusActive    ReaderStatus = "active"
	ReaderStatusCompleted ReaderStatus = "completed"
	ReaderStatusDropped   ReaderStatus = "dropped"
)

// ReaderSession is one member's personal progress through a book.
// BookTotalPages is the page count of the member's own edition, which may
// differ from the book's canonical count.
type ReaderSession struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	BookID         uint         `gorm:"index;uniqueIndex:idx_reader_book_user" json:"book_id"`
	UserID         uint         `gorm:"index;uniqueIndex:idx_reader_book_user" json:"user_id"`
	User           User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CurrentPage    int          `json:"current_page"`
	BookTotalPages int          `json:"book_total_pages"`
	ReadingPace    int          `json:"reading_pace"`
	Rating         int          `json:"rating"` // 0-5, 0 = unrated
	Review         string       `gorm:"type:text" json:"review,omitempty"`
	Status         ReaderStatus `gorm:"size:20;default:'active'" json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (ReaderSession) TableName() string {
	return "reader_sessions"
}
