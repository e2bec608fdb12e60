// Package notes provides database operations for page-anchored
// annotations.
package notes

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nawfay/bookclub/internal/entities"
)

// Repository handles all note database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListOptions controls pagination and search for note listings.
type ListOptions struct {
	Page    int    // 1-based
	PerPage int
	Search  string // matches note content or book text, case-insensitive
}

// NotesPage is one page of a book's note listing.
type NotesPage struct {
	Items      []entities.Note `json:"items"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalItems int64           `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
}

// ListByBook returns a paginated listing of a book's notes ordered by
// page then creation time, optionally filtered by a search term.
func (r *Repository) ListByBook(ctx context.Context, bookID uint, opts ListOptions) (*NotesPage, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 10
	}

	query := r.db.WithContext(ctx).Model(&entities.Note{}).Where("book_id = ?", bookID)
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("LOWER(content) LIKE LOWER(?) OR LOWER(book_text) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []entities.Note
	err := query.Preload("User").
		Order("page ASC, created_at ASC").
		Limit(opts.PerPage).
		Offset((opts.Page - 1) * opts.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(opts.PerPage) - 1) / int64(opts.PerPage))

	return &NotesPage{
		Items:      items,
		Page:       opts.Page,
		PerPage:    opts.PerPage,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// ByBookAndPage returns the notes anchored to one page of a book, oldest
// first, with users expanded.
func (r *Repository) ByBookAndPage(ctx context.Context, bookID uint, page int) ([]entities.Note, error) {
	var items []entities.Note
	err := r.db.WithContext(ctx).Preload("User").
		Where("book_id = ? AND page = ?", bookID, page).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// Create inserts a new note.
func (r *Repository) Create(ctx context.Context, note *entities.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// UnmatchedByBook returns a book's notes still carrying the sentinel
// "could not be matched" page, for re-anchoring.
func (r *Repository) UnmatchedByBook(ctx context.Context, bookID uint) ([]entities.Note, error) {
	var items []entities.Note
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND page = ?", bookID, entities.UnmatchedPage).
		Find(&items).Error
	return items, err
}

// SetPage re-anchors a note to a page.
func (r *Repository) SetPage(ctx context.Context, id uint, page int) error {
	result := r.db.WithContext(ctx).Model(&entities.Note{}).Where("id = ?", id).Update("page", page)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("note %d not found", id)
	}
	return nil
}
