package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/auth"
	"github.com/Nawfay/bookclub/internal/database/invites"
	"github.com/Nawfay/bookclub/internal/entities"
)

// InviteLister is the read/delete surface the invites controller uses
// directly; minting goes through the auth service so role rules live in
// one place.
type InviteLister interface {
	List(ctx context.Context) ([]entities.Invite, error)
	Delete(ctx context.Context, id uint) error
}

type InvitesController struct {
	repo    InviteLister
	service *auth.Service
}

func NewInvitesController(repo *invites.Repository, service *auth.Service) *InvitesController {
	return &InvitesController{repo: repo, service: service}
}

type createInviteRequest struct {
	Role string `json:"role"`
}

// CreateInvite mints a single-use invite code. Admin only.
func (ic *InvitesController) CreateInvite(c *gin.Context) {
	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondBadRequest(c, "invalid request body")
		return
	}

	role := entities.UserRole(req.Role)
	if req.Role == "" {
		role = entities.UserRoleUser
	}

	invite, err := ic.service.CreateInvite(c.Request.Context(), GetUserID(c), role)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, invite)
}

// ListInvites returns every invite, used and unused. Admin only.
func (ic *InvitesController) ListInvites(c *gin.Context) {
	records, err := ic.repo.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list invites")
		return
	}
	c.JSON(http.StatusOK, records)
}

// DeleteInvite revokes an invite code. Admin only.
func (ic *InvitesController) DeleteInvite(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ic.repo.Delete(c.Request.Context(), id); err != nil {
		respondNotFound(c, "invite")
		return
	}
	respondSuccess(c, "invite deleted")
}

// ListMembers returns every member of the club. Admin only.
func (ic *InvitesController) ListMembers(c *gin.Context) {
	users, err := ic.service.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list members")
		return
	}
	c.JSON(http.StatusOK, users)
}
