package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/metadata"
)

// MetadataProvider looks up book details from an external catalogue.
type MetadataProvider interface {
	SearchByISBN(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
	SearchByTitle(ctx context.Context, title, author string) (*metadata.BookMetadata, error)
}

type MetadataController struct {
	provider MetadataProvider
}

func NewMetadataController(provider MetadataProvider) *MetadataController {
	return &MetadataController{provider: provider}
}

// Search looks up book metadata by ISBN, or by title and optional author.
// Used to pre-fill the book form before creating a book.
func (mc *MetadataController) Search(c *gin.Context) {
	isbn := c.Query("isbn")
	title := c.Query("title")
	if isbn == "" && title == "" {
		respondBadRequest(c, "isbn or title query parameter is required")
		return
	}

	var (
		meta *metadata.BookMetadata
		err  error
	)
	if isbn != "" {
		meta, err = mc.provider.SearchByISBN(c.Request.Context(), isbn)
	} else {
		meta, err = mc.provider.SearchByTitle(c.Request.Context(), title, c.Query("author"))
	}
	if err != nil {
		respondError(c, http.StatusNotFound, "no metadata found")
		return
	}

	c.JSON(http.StatusOK, meta)
}
