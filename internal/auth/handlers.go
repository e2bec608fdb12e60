package auth

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/config"
	"github.com/Nawfay/bookclub/internal/entities"
)

// setupMutex serializes first-admin setup requests to prevent races.
var setupMutex sync.Mutex

// Controller handles authentication-related HTTP endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessionManager *SessionManager, cfg config.Auth) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
	router.POST("/api/auth/signup", ac.Signup)
	router.GET("/api/auth/session", ac.Session)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a member and starts a session.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the session.
func (ac *Controller) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type signupRequest struct {
	InviteCode string `json:"invite_code"`
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required"`
}

// Signup creates a new member account. The first account ever created
// becomes the super admin and needs no invite; every later signup must
// present a valid single-use invite code.
func (ac *Controller) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	setupMutex.Lock()
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		setupMutex.Unlock()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check existing members"})
		return
	}

	var user *entities.User
	if !hasUsers {
		user, err = ac.service.CreateUser(req.Username, req.Email, req.Password, entities.UserRoleSuper)
		setupMutex.Unlock()
	} else {
		setupMutex.Unlock()
		if req.InviteCode == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "an invite code is required"})
			return
		}
		user, err = ac.service.SignupWithInvite(c.Request.Context(), req.InviteCode, req.Username, req.Email, req.Password)
	}

	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrInvalidInvite):
			status = http.StatusForbidden
		case errors.Is(err, ErrUserExists):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if ac.sessionManager != nil {
		_ = ac.sessionManager.CreateSession(c.Request, user)
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Session returns the currently authenticated member, if any.
func (ac *Controller) Session(c *gin.Context) {
	if ac.config.Mode == config.AuthModeNone {
		c.JSON(http.StatusOK, gin.H{"authenticated": true, "auth_mode": config.AuthModeNone})
		return
	}

	if ac.sessionManager == nil || !ac.sessionManager.IsAuthenticated(c.Request) {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "auth_mode": ac.config.Mode})
		return
	}

	user, err := ac.service.GetUserByID(ac.sessionManager.GetUserID(c.Request))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "auth_mode": ac.config.Mode})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"auth_mode":     ac.config.Mode,
		"user":          user,
		"csrf_token":    GetCSRFToken(c),
	})
}
