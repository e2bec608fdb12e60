// Package invites provides database operations for single-use
// membership invite codes.
package invites

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nawfay/bookclub/internal/entities"
)

// Repository handles all invite database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new invites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new invite.
func (r *Repository) Create(ctx context.Context, invite *entities.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

// List returns all invites, newest first.
func (r *Repository) List(ctx context.Context) ([]entities.Invite, error) {
	var records []entities.Invite
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error
	return records, err
}

// GetUnusedByCode retrieves an unused invite by its code, or (nil, nil)
// when the code is unknown or already consumed.
func (r *Repository) GetUnusedByCode(ctx context.Context, code string) (*entities.Invite, error) {
	var invite entities.Invite
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_used = ?", code, false).
		First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// MarkUsed consumes an invite for the given user. Fails when the invite
// is already used, which keeps a code single-use even under a race.
func (r *Repository) MarkUsed(ctx context.Context, id, usedByID uint) error {
	result := r.db.WithContext(ctx).Model(&entities.Invite{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{"is_used": true, "used_by_id": usedByID})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("invite %d not available", id)
	}
	return nil
}

// Delete removes an invite.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.Invite{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("invite %d not found", id)
	}
	return nil
}
