package http

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/database/notes"
	"github.com/Nawfay/bookclub/internal/entities"
)

// NoteStore is the persistence surface the notes controller needs.
type NoteStore interface {
	ListByBook(ctx context.Context, bookID uint, opts notes.ListOptions) (*notes.NotesPage, error)
	Create(ctx context.Context, note *entities.Note) error
}

type NotesController struct {
	store NoteStore
}

func NewNotesController(store NoteStore) *NotesController {
	return &NotesController{store: store}
}

// ListNotes returns a paginated list of a book's notes, ordered by page.
// A search query filters over note text and the highlighted excerpt.
func (nc *NotesController) ListNotes(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	opts := notes.ListOptions{
		Page:    1,
		PerPage: 50,
		Search:  strings.TrimSpace(c.Query("search")),
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		opts.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil && v > 0 && v <= 200 {
		opts.PerPage = v
	}

	page, err := nc.store.ListByBook(c.Request.Context(), bookID, opts)
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}
	c.JSON(200, page)
}

type createNoteRequest struct {
	Page     int    `json:"page"`
	BookText string `json:"book_text"`
	Note     string `json:"note" binding:"required"`
}

// CreateNote records a note the current member took while reading.
// BookText is the excerpt the note anchors to; notes created without a
// page land on the unmatched sentinel and get re-anchored later.
func (nc *NotesController) CreateNote(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "note text is required")
		return
	}
	if req.Page < 0 {
		respondBadRequest(c, "page must not be negative")
		return
	}

	page := req.Page
	if page == 0 {
		page = entities.UnmatchedPage
	}

	note := &entities.Note{
		BookID:   bookID,
		UserID:   GetUserID(c),
		Page:     page,
		BookText: req.BookText,
		Content:  req.Note,
	}
	if err := nc.store.Create(c.Request.Context(), note); err != nil {
		respondInternalError(c, err, "create note")
		return
	}
	respondCreated(c, note)
}
