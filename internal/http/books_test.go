package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nawfay/bookclub/internal/club"
	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/entities"
)

func setupBooksTest(t *testing.T) (*database.Database, *database.ClubStore, *club.Assembler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := database.NewClubStore(db.DB)
	return db, store, club.NewAssembler(store)
}

func booksRouter(controller *BooksController) *gin.Engine {
	router := gin.New()
	router.GET("/api/books", controller.GetAllBooks)
	router.GET("/api/books/:id", controller.GetBook)
	router.POST("/api/books", controller.CreateBook)
	router.PATCH("/api/books/:id", controller.UpdateBook)
	router.DELETE("/api/books/:id", controller.DeleteBook)
	return router
}

func TestBooksController_GetAllBooks(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var books []club.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
		assert.Empty(t, books)
	})

	t.Run("returns assembled books", func(t *testing.T) {
		ctx := context.Background()
		_, store, assembler := setupBooksTest(t)

		require.NoError(t, store.CreateBook(ctx, &entities.Book{Title: "Dune", Author: "Frank Herbert", TotalPages: 412}))
		require.NoError(t, store.CreateBook(ctx, &entities.Book{Title: "Hyperion", Author: "Dan Simmons", TotalPages: 482}))

		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var books []club.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
		require.Len(t, books, 2)

		// Books without a club session come back with the synthetic
		// uninitialized one.
		for _, b := range books {
			assert.Equal(t, string(entities.SessionStatusUninitialized), string(b.Session.Status))
			assert.True(t, strings.HasPrefix(b.Session.ID, "temp-"))
		}
	})
}

func TestBooksController_GetBook(t *testing.T) {
	t.Run("returns 400 for non-numeric id", func(t *testing.T) {
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 when book does not exist", func(t *testing.T) {
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "book not found")
	})

	t.Run("returns assembled book", func(t *testing.T) {
		ctx := context.Background()
		_, store, assembler := setupBooksTest(t)

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", TotalPages: 412}
		require.NoError(t, store.CreateBook(ctx, book))

		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got club.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Dune", got.Title)
		assert.Equal(t, "Frank Herbert", got.Author)
		assert.Equal(t, 412, got.TotalPages)
	})
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("requires title and author", func(t *testing.T) {
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(`{"title":"Dune"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title and author are required")
	})

	t.Run("rejects negative page count", func(t *testing.T) {
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		body := `{"title":"Dune","author":"Frank Herbert","total_pages":-1}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("creates book on the shelf", func(t *testing.T) {
		ctx := context.Background()
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		body := `{"title":"Dune","author":"Frank Herbert","total_pages":412,"cover_url":"https://covers.example/dune.jpg"}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, entities.BookStatusToRead, created.Status)

		saved, err := store.GetBookByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "https://covers.example/dune.jpg", saved.CoverURL)
	})
}

func TestBooksController_UpdateBook(t *testing.T) {
	t.Run("returns 404 when book does not exist", func(t *testing.T) {
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/42", strings.NewReader(`{"title":"New"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		ctx := context.Background()
		_, store, assembler := setupBooksTest(t)
		require.NoError(t, store.CreateBook(ctx, &entities.Book{Title: "Dune", Author: "Frank Herbert"}))

		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/1", strings.NewReader(`{"title":""}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title must not be empty")
	})

	t.Run("applies partial update", func(t *testing.T) {
		ctx := context.Background()
		_, store, assembler := setupBooksTest(t)
		require.NoError(t, store.CreateBook(ctx, &entities.Book{Title: "Dune", Author: "Frank Herbert", TotalPages: 412}))

		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/1", strings.NewReader(`{"total_pages":500}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		saved, err := store.GetBookByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, 500, saved.TotalPages)
		assert.Equal(t, "Dune", saved.Title)
	})

	t.Run("empty body is a no-op", func(t *testing.T) {
		ctx := context.Background()
		_, store, assembler := setupBooksTest(t)
		require.NoError(t, store.CreateBook(ctx, &entities.Book{Title: "Dune", Author: "Frank Herbert"}))

		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/1", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "nothing to update")
	})
}

func TestBooksController_DeleteBook(t *testing.T) {
	t.Run("returns 404 when book does not exist", func(t *testing.T) {
		_, store, assembler := setupBooksTest(t)
		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/42", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("removes the book", func(t *testing.T) {
		ctx := context.Background()
		_, store, assembler := setupBooksTest(t)
		require.NoError(t, store.CreateBook(ctx, &entities.Book{Title: "Dune", Author: "Frank Herbert"}))

		router := booksRouter(NewBooksController(store, assembler, nil))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		saved, err := store.GetBookByID(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, saved)
	})
}
