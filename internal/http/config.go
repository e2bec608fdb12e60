package http

import (
	"github.com/Nawfay/bookclub/internal/auth"
	"github.com/Nawfay/bookclub/internal/club"
	"github.com/Nawfay/bookclub/internal/config"
	"github.com/Nawfay/bookclub/internal/content"
	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/database/invites"
	"github.com/Nawfay/bookclub/internal/database/notes"
	"github.com/Nawfay/bookclub/internal/highlight"
	"github.com/Nawfay/bookclub/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Assembler *club.Assembler
	Catalog   BookCatalog
	NotesRepo *notes.Repository
	Files     FileStore
	Provider  *content.Provider
	Matcher   *highlight.Matcher

	// Storage
	FilesDir string

	// Optional external integrations
	Covers   CoverCache
	Metadata MetadataProvider

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool
	InvitesRepo    *invites.Repository

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
