package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/auth"
)

// GetUserID returns the signed-in member's ID, or 0 when the server
// runs without auth.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// ErrorResponse is the shape every API error takes.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse carries a human-readable message and optional payload.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the underlying error and returns a generic
// 500 so internals never leak to clients.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError covers status codes without a dedicated helper, such as
// 409 for lifecycle conflicts.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// parseIDParam reads a uint route parameter. On a malformed value it
// writes the 400 itself and reports false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseIntParam reads a positive int route parameter, for values like
// page numbers where zero is not meaningful.
func parseIntParam(c *gin.Context, paramName string) (int, bool) {
	v, err := strconv.Atoi(c.Param(paramName))
	if err != nil || v < 1 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return v, true
}
