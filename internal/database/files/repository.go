// Package files provides database operations for uploaded book files.
package files

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nawfay/bookclub/internal/entities"
)

// Repository handles all book file database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new files repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ByBook returns a book's files, newest first.
func (r *Repository) ByBook(ctx context.Context, bookID uint) ([]entities.BookFile, error) {
	var records []entities.BookFile
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// GetByID retrieves a file record, or (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.BookFile, error) {
	var record entities.BookFile
	err := r.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetPrimaryFile returns the book's primary file, or (nil, nil) when the
// book has none.
func (r *Repository) GetPrimaryFile(ctx context.Context, bookID uint) (*entities.BookFile, error) {
	var record entities.BookFile
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND primary_file = ?", bookID, true).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new file record.
func (r *Repository) Create(ctx context.Context, file *entities.BookFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// SetPrimary marks one of a book's files as primary, clearing the flag
// on the others.
func (r *Repository) SetPrimary(ctx context.Context, bookID, fileID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.BookFile{}).
			Where("book_id = ?", bookID).
			Update("primary_file", false).Error; err != nil {
			return err
		}
		result := tx.Model(&entities.BookFile{}).
			Where("id = ? AND book_id = ?", fileID, bookID).
			Update("primary_file", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("file %d not found for book %d", fileID, bookID)
		}
		return nil
	})
}

// Delete removes a file record.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.BookFile{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("file %d not found", id)
	}
	return nil
}
