package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(31536000))
	}

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Catalog, cfg.Assembler, cfg.Covers)
	sessionsController := NewSessionsController(cfg.Assembler)
	notesController := NewNotesController(cfg.NotesRepo)
	filesController := NewFilesController(cfg.Files, cfg.FilesDir)
	readController := NewReadController(cfg.Provider, cfg.NotesRepo, cfg.Matcher)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PATCH("/api/books/:id", booksController.UpdateBook)

	// Session endpoints
	router.POST("/api/books/:id/join", sessionsController.JoinSession)
	router.PUT("/api/books/:id/review", sessionsController.UpdateReview)
	router.PUT("/api/books/:id/progress", sessionsController.UpdateProgress)
	router.PATCH("/api/books/:id/session", sessionsController.UpdateBookSession)
	router.POST("/api/books/:id/initialize", sessionsController.InitializeBook)
	router.GET("/api/stats", sessionsController.Stats)

	// Notes endpoints
	router.GET("/api/books/:id/notes", notesController.ListNotes)
	router.POST("/api/books/:id/notes", notesController.CreateNote)

	// Reader endpoint
	router.GET("/api/books/:id/read/:page", readController.GetPage)

	// Cover images
	if cfg.Covers != nil {
		coversController := NewCoversController(cfg.Catalog, cfg.Covers)
		router.GET("/api/books/:id/cover", coversController.GetCover)
	}

	// Book metadata lookup for pre-filling the book form
	if cfg.Metadata != nil {
		metadataController := NewMetadataController(cfg.Metadata)
		router.GET("/api/metadata/search", metadataController.Search)
	}

	// File endpoints
	router.GET("/api/books/:id/files", filesController.ListFiles)
	router.POST("/api/books/:id/files", filesController.UploadFile)
	router.GET("/api/books/:id/files/:fileId", filesController.DownloadFile)
	router.PUT("/api/books/:id/files/:fileId/primary", filesController.SetPrimary)
	router.DELETE("/api/books/:id/files/:fileId", filesController.DeleteFile)

	// Admin endpoints
	if cfg.AuthService != nil && cfg.InvitesRepo != nil {
		invitesController := NewInvitesController(cfg.InvitesRepo, cfg.AuthService)
		admin := router.Group("/api/admin")
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
		}
		admin.POST("/invites", invitesController.CreateInvite)
		admin.GET("/invites", invitesController.ListInvites)
		admin.DELETE("/invites/:id", invitesController.DeleteInvite)
		admin.GET("/members", invitesController.ListMembers)

		admin.DELETE("/books/:id", booksController.DeleteBook)
	} else {
		router.DELETE("/api/books/:id", booksController.DeleteBook)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
