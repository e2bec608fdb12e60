// Package books provides database operations for the club's canonical
// book records.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 123)
package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nawfay/bookclub/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID. Returns (nil, nil) when no
// such book exists; errors are reserved for store failures.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks retrieves all books, newest first.
func (r *Repository) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	var records []entities.Book
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error
	return records, err
}

// CreateBook inserts a new book record.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// UpdateBook applies a partial update to a book record.
func (r *Repository) UpdateBook(ctx context.Context, id uint, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d not found", id)
	}
	return nil
}

// DeleteBook removes a book and cascades to its session, reader
// sessions, notes and files in a single transaction.
func (r *Repository) DeleteBook(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.ReaderSession{}).Error; err != nil {
			return fmt.Errorf("delete reader sessions: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookSession{}).Error; err != nil {
			return fmt.Errorf("delete book session: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Note{}).Error; err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookFile{}).Error; err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("book %d not found", id)
		}
		return nil
	})
}
