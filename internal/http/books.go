package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/club"
	"github.com/Nawfay/bookclub/internal/entities"
)

// BookCatalog is the persistence surface the books controller needs.
type BookCatalog interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	CreateBook(ctx context.Context, book *entities.Book) error
	UpdateBook(ctx context.Context, id uint, updates map[string]any) error
	DeleteBook(ctx context.Context, id uint) error
}

// BookAssembler produces the joined book aggregates served to clients.
type BookAssembler interface {
	AssembleAllBooks(ctx context.Context) []club.Book
	AssembleBook(ctx context.Context, bookID uint) *club.Book
}

type BooksController struct {
	catalog   BookCatalog
	assembler BookAssembler
	covers    CoverCache
}

func NewBooksController(catalog BookCatalog, assembler BookAssembler, covers CoverCache) *BooksController {
	return &BooksController{catalog: catalog, assembler: assembler, covers: covers}
}

// GetAllBooks returns every book with its club session and member
// progress attached. Books without a club session come back with a
// synthetic uninitialized one.
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books := bc.assembler.AssembleAllBooks(c.Request.Context())
	c.JSON(http.StatusOK, books)
}

// GetBook returns a single assembled book.
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book := bc.assembler.AssembleBook(c.Request.Context(), id)
	if book == nil {
		respondNotFound(c, "book")
		return
	}
	c.JSON(http.StatusOK, book)
}

type createBookRequest struct {
	Title      string `json:"title" binding:"required"`
	Author     string `json:"author" binding:"required"`
	CoverURL   string `json:"cover_url"`
	TotalPages int    `json:"total_pages"`
}

// CreateBook adds a book to the club shelf. It starts without a club
// session; reading begins when the book is initialized.
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}
	if req.TotalPages < 0 {
		respondBadRequest(c, "total_pages must not be negative")
		return
	}

	book := &entities.Book{
		Title:      req.Title,
		Author:     req.Author,
		CoverURL:   req.CoverURL,
		TotalPages: req.TotalPages,
		Status:     entities.BookStatusToRead,
		CreatedBy:  GetUserID(c),
	}
	if err := bc.catalog.CreateBook(c.Request.Context(), book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

type updateBookRequest struct {
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	CoverURL   *string `json:"cover_url"`
	TotalPages *int    `json:"total_pages"`
}

// UpdateBook applies a partial update to a book's metadata.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			respondBadRequest(c, "title must not be empty")
			return
		}
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		if *req.Author == "" {
			respondBadRequest(c, "author must not be empty")
			return
		}
		updates["author"] = *req.Author
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}
	if req.TotalPages != nil {
		if *req.TotalPages < 0 {
			respondBadRequest(c, "total_pages must not be negative")
			return
		}
		updates["total_pages"] = *req.TotalPages
	}
	if len(updates) == 0 {
		respondSuccess(c, "nothing to update")
		return
	}

	existing, err := bc.catalog.GetBookByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "update book")
		return
	}
	if existing == nil {
		respondNotFound(c, "book")
		return
	}

	if err := bc.catalog.UpdateBook(c.Request.Context(), id, updates); err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	if req.CoverURL != nil && bc.covers != nil {
		if err := bc.covers.InvalidateCover(id); err != nil {
			log.Printf("Failed to invalidate cover cache for book %d: %v", id, err)
		}
	}
	respondSuccess(c, "book updated")
}

// DeleteBook removes a book along with its sessions, notes and files.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	existing, err := bc.catalog.GetBookByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	if existing == nil {
		respondNotFound(c, "book")
		return
	}

	if err := bc.catalog.DeleteBook(c.Request.Context(), id); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	if bc.covers != nil {
		if err := bc.covers.InvalidateCover(id); err != nil {
			log.Printf("Failed to invalidate cover cache for book %d: %v", id, err)
		}
	}
	respondSuccess(c, "book deleted")
}
