package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/auth"
	"github.com/Nawfay/bookclub/internal/club"
	"github.com/Nawfay/bookclub/internal/config"
	"github.com/Nawfay/bookclub/internal/content"
	"github.com/Nawfay/bookclub/internal/covers"
	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/database/invites"
	"github.com/Nawfay/bookclub/internal/database/notes"
	"github.com/Nawfay/bookclub/internal/highlight"
	http_controllers "github.com/Nawfay/bookclub/internal/http"
	"github.com/Nawfay/bookclub/internal/metadata"
	"github.com/Nawfay/bookclub/internal/scheduler"
	"github.com/Nawfay/bookclub/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	log.Printf("Checking files directory: %s\n", cfg.Storage.FilesDir)

	if cfg.Storage.FilesDir == "" {
		log.Fatalf("Files directory is not set")
		return
	}
	if err := os.MkdirAll(cfg.Storage.FilesDir, 0o755); err != nil {
		log.Fatalf("Could not create files directory %s: %v", cfg.Storage.FilesDir, err)
		return
	}

	// Check the files dir is writable by touching and removing an empty file
	probe := filepath.Join(cfg.Storage.FilesDir, ".bookclub")
	if _, err := os.Create(probe); err != nil {
		log.Fatalf("Files directory %s is not writable", cfg.Storage.FilesDir)
		return
	}
	defer func() {
		if err := os.Remove(probe); err != nil {
			log.Printf("Could not remove the test file from the files directory %s", cfg.Storage.FilesDir)
		}
	}()

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookclub v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	clubStore := database.NewClubStore(db.DB)
	assembler := club.NewAssembler(clubStore)
	notesRepo := notes.NewRepository(db.DB)
	invitesRepo := invites.NewRepository(db.DB)
	matcher := highlight.NewMatcher()
	provider := content.NewProvider(clubStore, cfg.Reader.ParagraphsPerPage)

	// Cover images are cached on disk next to the database
	coverCache, err := covers.NewCache(filepath.Join(filepath.Dir(cfg.Database.Path), "covers"))
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}

	openLibrary := metadata.NewOpenLibraryClient()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewRecalcPaceQueue(clubStore),
			tasks.NewReanchorNotesQueue(notesRepo, provider, matcher),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Start the nightly pace recalculation if enabled
	var paceScheduler *scheduler.PaceRecalcScheduler
	if cfg.Scheduler.PaceRecalcEnabled && taskClient != nil {
		paceScheduler = scheduler.NewPaceRecalcScheduler(taskClient, cfg.Scheduler.PaceRecalcSchedule)
		if err := paceScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start pace recalc scheduler: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, invitesRepo, cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No members found. The first signup becomes the super admin.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Assembler:      assembler,
		Catalog:        clubStore,
		NotesRepo:      notesRepo,
		Files:          clubStore,
		Provider:       provider,
		Matcher:        matcher,
		FilesDir:       cfg.Storage.FilesDir,
		Covers:         coverCache,
		Metadata:       openLibrary,
		AuthConfig:     cfg.Auth,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		InvitesRepo:    invitesRepo,
		TaskClient:     taskClient,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if paceScheduler != nil {
			paceScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
