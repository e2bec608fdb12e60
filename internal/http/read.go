package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/content"
	"github.com/Nawfay/bookclub/internal/entities"
	"github.com/Nawfay/bookclub/internal/highlight"
)

// PageProvider paginates a book's primary file.
type PageProvider interface {
	GetPage(ctx context.Context, bookID uint, page int) (*content.Page, error)
}

// PageNotes fetches the notes anchored to one page of a book.
type PageNotes interface {
	ByBookAndPage(ctx context.Context, bookID uint, page int) ([]entities.Note, error)
}

type ReadController struct {
	provider PageProvider
	notes    PageNotes
	matcher  *highlight.Matcher
}

func NewReadController(provider PageProvider, notes PageNotes, matcher *highlight.Matcher) *ReadController {
	return &ReadController{provider: provider, notes: notes, matcher: matcher}
}

// ReadPageResponse is one reader page with note markers applied.
type ReadPageResponse struct {
	Content    []string        `json:"content"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	Notes      []entities.Note `json:"notes"`
}

// GetPage serves one page of the book's primary file with each anchored
// note's excerpt wrapped in a highlight marker. Notes that cannot be
// located on the page are still returned in the notes list; the page
// text is simply left unmarked for them.
func (rc *ReadController) GetPage(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, ok := parseIntParam(c, "page")
	if !ok {
		return
	}

	pg, err := rc.provider.GetPage(c.Request.Context(), bookID, page)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotFound):
			respondNotFound(c, "page")
		case errors.Is(err, content.ErrEmpty):
			respondError(c, http.StatusConflict, "book has no readable content")
		default:
			respondInternalError(c, err, "read page")
		}
		return
	}

	pageNotes, err := rc.notes.ByBookAndPage(c.Request.Context(), bookID, page)
	if err != nil {
		respondInternalError(c, err, "read page notes")
		return
	}

	marked := rc.matcher.Overlay(pg.Paragraphs, matcherNotes(pageNotes))

	c.JSON(http.StatusOK, ReadPageResponse{
		Content:    marked,
		Page:       pg.Page,
		TotalPages: pg.TotalPages,
		Notes:      pageNotes,
	})
}

func matcherNotes(pageNotes []entities.Note) []highlight.Note {
	out := make([]highlight.Note, 0, len(pageNotes))
	for _, n := range pageNotes {
		out = append(out, highlight.Note{
			ID:      fmt.Sprintf("%d", n.ID),
			OwnerID: fmt.Sprintf("%d", n.UserID),
			Excerpt: n.BookText,
		})
	}
	return out
}
