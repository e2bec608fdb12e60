// Package sessions provides database operations for club sessions and
// reader sessions.
//
// Reader session reads expand the owning user (GORM Preload) because the
// aggregate needs each member's display name and avatar.
package sessions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nawfay/bookclub/internal/entities"
)

// Repository handles all session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Book sessions (club schedule) ---

// GetAllBookSessions retrieves every club session.
func (r *Repository) GetAllBookSessions(ctx context.Context) ([]entities.BookSession, error) {
	var sessions []entities.BookSession
	err := r.db.WithContext(ctx).Find(&sessions).Error
	return sessions, err
}

// GetBookSessionByBook retrieves the club session for a book, or
// (nil, nil) when the book has none yet.
func (r *Repository) GetBookSessionByBook(ctx context.Context, bookID uint) (*entities.BookSession, error) {
	var session entities.BookSession
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveBookSessions retrieves club sessions with status active.
func (r *Repository) GetActiveBookSessions(ctx context.Context) ([]entities.BookSession, error) {
	var sessions []entities.BookSession
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.SessionStatusActive).
		Find(&sessions).Error
	return sessions, err
}

// CreateBookSession inserts a new club session.
func (r *Repository) CreateBookSession(ctx context.Context, session *entities.BookSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// UpdateBookSessionByID applies a partial update to a club session.
func (r *Repository) UpdateBookSessionByID(ctx context.Context, id uint, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entities.BookSession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book session %d not found", id)
	}
	return nil
}

// --- Reader sessions (per-member progress) ---

// GetAllReaderSessions retrieves every reader session with its user
// expanded.
func (r *Repository) GetAllReaderSessions(ctx context.Context) ([]entities.ReaderSession, error) {
	var sessions []entities.ReaderSession
	err := r.db.WithContext(ctx).Preload("User").Find(&sessions).Error
	return sessions, err
}

// GetReaderSessionsByBook retrieves a book's reader sessions with their
// users expanded.
func (r *Repository) GetReaderSessionsByBook(ctx context.Context, bookID uint) ([]entities.ReaderSession, error) {
	var sessions []entities.ReaderSession
	err := r.db.WithContext(ctx).Preload("User").
		Where("book_id = ?", bookID).
		Find(&sessions).Error
	return sessions, err
}

// GetReaderSessionsByUser retrieves one member's sessions across all
// books.
func (r *Repository) GetReaderSessionsByUser(ctx context.Context, userID uint) ([]entities.ReaderSession, error) {
	var sessions []entities.ReaderSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&sessions).Error
	return sessions, err
}

// GetReaderSessionByBookAndUser retrieves a member's session for one
// book, or (nil, nil) when the member has not joined it.
func (r *Repository) GetReaderSessionByBookAndUser(ctx context.Context, bookID, userID uint) (*entities.ReaderSession, error) {
	var session entities.ReaderSession
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateReaderSession inserts a new reader session. The unique index on
// (book, user) rejects a second join by the same member.
func (r *Repository) CreateReaderSession(ctx context.Context, session *entities.ReaderSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// UpdateReaderSessionByID applies a partial update to a reader session.
func (r *Repository) UpdateReaderSessionByID(ctx context.Context, id uint, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entities.ReaderSession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("reader session %d not found", id)
	}
	return nil
}
