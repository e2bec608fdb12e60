package http

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
)

// CoverCache serves locally cached cover images.
type CoverCache interface {
	GetCover(ctx context.Context, bookID uint, coverURL string) (string, error)
	InvalidateCover(bookID uint) error
}

type CoversController struct {
	catalog BookCatalog
	cache   CoverCache
}

func NewCoversController(catalog BookCatalog, cache CoverCache) *CoversController {
	return &CoversController{catalog: catalog, cache: cache}
}

// GetCover serves the cached cover image for a book, fetching it from the
// upstream URL on first request.
func (cc *CoversController) GetCover(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.catalog.GetBookByID(c.Request.Context(), bookID)
	if err != nil {
		respondInternalError(c, err, "get cover")
		return
	}
	if book == nil || book.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	path, err := cc.cache.GetCover(c.Request.Context(), bookID, book.CoverURL)
	if err != nil {
		log.Printf("Failed to fetch cover for book %d: %v", bookID, err)
		respondNotFound(c, "cover")
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
