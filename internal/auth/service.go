package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nawfay/bookclub/internal/config"
	"github.com/Nawfay/bookclub/internal/database/invites"
	"github.com/Nawfay/bookclub/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrAuthRequired     = errors.New("authentication required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidInvite    = errors.New("invite code is invalid or already used")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service handles authentication and membership management.
type Service struct {
	db      *gorm.DB
	invites *invites.Repository
	config  config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, invitesRepo *invites.Repository, cfg config.Auth) *Service {
	return &Service{
		db:      db,
		invites: invitesRepo,
		config:  cfg,
	}
}

// CreateUser creates a new member with password authentication.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	// Email is optional; validate only when given (RFC 5321 limit is 254)
	if email != "" && (len(email) > 254 || !emailPattern.MatchString(email)) {
		return nil, ErrEmailInvalid
	}

	switch role {
	case entities.UserRoleSuper, entities.UserRoleAdmin, entities.UserRoleUser:
		// Valid
	default:
		return nil, ErrInvalidRole
	}

	var existing entities.User
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// SignupWithInvite creates a member from a single-use invite code. The
// new account gets the role the invite carries, and the invite is
// consumed so it cannot be reused.
func (s *Service) SignupWithInvite(ctx context.Context, code, username, email, password string) (*entities.User, error) {
	invite, err := s.invites.GetUnusedByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite: %w", err)
	}
	if invite == nil {
		return nil, ErrInvalidInvite
	}

	user, err := s.CreateUser(username, email, password, invite.Role)
	if err != nil {
		return nil, err
	}

	if err := s.invites.MarkUsed(ctx, invite.ID, user.ID); err != nil {
		// The code was consumed concurrently; roll the account back.
		s.db.Unscoped().Delete(user)
		return nil, ErrInvalidInvite
	}

	return user, nil
}

// CreateInvite mints a new single-use invite code granting the given role.
func (s *Service) CreateInvite(ctx context.Context, inviterID uint, role entities.UserRole) (*entities.Invite, error) {
	switch role {
	case entities.UserRoleAdmin, entities.UserRoleUser:
		// Valid; super accounts are only created via the CLI
	default:
		return nil, ErrInvalidRole
	}

	invite := &entities.Invite{
		Code:      uuid.NewString(),
		Role:      role,
		InviterID: inviterID,
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return invite, nil
}

// Authenticate validates credentials and returns the member.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	var user entities.User
	err := s.db.Where("username = ? OR email = ?", username, username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}

	s.db.Model(&user).Update("updated_at", time.Now())

	return &user, nil
}

// GetUserByID retrieves a member by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword updates a member's password.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}

	return s.db.Model(user).Update("password_hash", newHash).Error
}

// HasUsers returns true if any members exist in the database.
func (s *Service) HasUsers() (bool, error) {
	var count int64
	err := s.db.Model(&entities.User{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUsers returns every member, oldest first.
func (s *Service) ListUsers() ([]entities.User, error) {
	var users []entities.User
	err := s.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// GetAuthMode returns the current authentication mode.
func (s *Service) GetAuthMode() config.AuthMode {
	return s.config.Mode
}
