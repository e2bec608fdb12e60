package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/club"
	"github.com/Nawfay/bookclub/internal/entities"
)

// SessionMutator is the slice of the assembler the sessions controller
// uses. Mutators report success as a bool; failures are logged inside
// the assembler and surface here as a 404 or 409.
type SessionMutator interface {
	JoinSession(ctx context.Context, bookID, userID uint, bookTotalPages int) bool
	UpdateReview(ctx context.Context, bookID, userID uint, rating int, review string, status entities.ReaderStatus) bool
	UpdateProgress(ctx context.Context, bookID, userID uint, currentPage int) bool
	UpdateBookSession(ctx context.Context, bookID uint, upd club.BookSessionUpdate) bool
	InitializeBook(ctx context.Context, bookID uint, in club.InitializeInput) bool
	Stats(ctx context.Context, userID uint) club.UserStats
}

type SessionsController struct {
	assembler SessionMutator
}

func NewSessionsController(assembler SessionMutator) *SessionsController {
	return &SessionsController{assembler: assembler}
}

type joinRequest struct {
	BookTotalPages int `json:"book_total_pages"`
}

// JoinSession enrolls the current member in a book's reading session.
// The member may declare their own edition's page count; zero falls
// back to the book's canonical count.
func (sc *SessionsController) JoinSession(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.BookTotalPages < 0 {
		respondBadRequest(c, "book_total_pages must not be negative")
		return
	}

	if !sc.assembler.JoinSession(c.Request.Context(), bookID, GetUserID(c), req.BookTotalPages) {
		respondError(c, http.StatusConflict, "could not join session")
		return
	}
	respondSuccess(c, "joined session")
}

type reviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
	Status string `json:"status"`
}

// UpdateReview records the current member's rating, review text and
// optionally their reading status for a book.
func (sc *SessionsController) UpdateReview(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		respondBadRequest(c, "rating must be between 0 and 5")
		return
	}

	status := entities.ReaderStatus(req.Status)
	if req.Status != "" && !club.ValidReaderStatus(status) {
		respondBadRequest(c, "invalid status")
		return
	}

	if !sc.assembler.UpdateReview(c.Request.Context(), bookID, GetUserID(c), req.Rating, req.Review, status) {
		respondNotFound(c, "reader session")
		return
	}
	respondSuccess(c, "review updated")
}

type progressRequest struct {
	CurrentPage int `json:"current_page"`
}

// UpdateProgress records the current member's page position, expressed
// in their own edition's page numbers.
func (sc *SessionsController) UpdateProgress(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.CurrentPage < 0 {
		respondBadRequest(c, "current_page must not be negative")
		return
	}

	if !sc.assembler.UpdateProgress(c.Request.Context(), bookID, GetUserID(c), req.CurrentPage) {
		respondNotFound(c, "reader session")
		return
	}
	respondSuccess(c, "progress updated")
}

type bookSessionRequest struct {
	Status            *string    `json:"status"`
	CurrentPage       *int       `json:"current_page"`
	TargetPage        *int       `json:"target_page"`
	ReadingPacePerDay *int       `json:"reading_pace_per_day"`
	EstimatedEndDate  *time.Time `json:"estimated_end_date"`
}

// UpdateBookSession applies a partial update to the club-wide session
// of a book. Status changes must follow the session lifecycle.
func (sc *SessionsController) UpdateBookSession(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	upd := club.BookSessionUpdate{
		CurrentPage:       req.CurrentPage,
		TargetPage:        req.TargetPage,
		ReadingPacePerDay: req.ReadingPacePerDay,
		EstimatedEndDate:  req.EstimatedEndDate,
	}
	if req.Status != nil {
		status := entities.SessionStatus(*req.Status)
		upd.Status = &status
	}

	if !sc.assembler.UpdateBookSession(c.Request.Context(), bookID, upd) {
		respondError(c, http.StatusConflict, "could not update book session")
		return
	}
	respondSuccess(c, "book session updated")
}

type initializeRequest struct {
	Title             string    `json:"title" binding:"required"`
	Author            string    `json:"author" binding:"required"`
	TotalPages        int       `json:"total_pages"`
	TargetPage        int       `json:"target_page"`
	ReadingPacePerDay int       `json:"reading_pace_per_day"`
	EstimatedEndDate  time.Time `json:"estimated_end_date"`
}

// InitializeBook promotes an uninitialized book to an active club
// session. The book must already have a primary file attached.
func (sc *SessionsController) InitializeBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	in := club.InitializeInput{
		Title:             req.Title,
		Author:            req.Author,
		TotalPages:        req.TotalPages,
		TargetPage:        req.TargetPage,
		ReadingPacePerDay: req.ReadingPacePerDay,
		EstimatedEndDate:  req.EstimatedEndDate,
	}
	if !sc.assembler.InitializeBook(c.Request.Context(), bookID, in) {
		respondError(c, http.StatusConflict, "could not initialize book")
		return
	}
	respondSuccess(c, "book initialized")
}

// Stats returns the current member's aggregate reading statistics.
func (sc *SessionsController) Stats(c *gin.Context) {
	stats := sc.assembler.Stats(c.Request.Context(), GetUserID(c))
	c.JSON(http.StatusOK, stats)
}
