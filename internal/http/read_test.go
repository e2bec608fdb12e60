package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nawfay/bookclub/internal/content"
	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/database/notes"
	"github.com/Nawfay/bookclub/internal/entities"
	"github.com/Nawfay/bookclub/internal/highlight"
)

type readFixture struct {
	store *database.ClubStore
	notes *notes.Repository
	dir   string
}

func setupReadTest(t *testing.T, paragraphsPerPage int) (*readFixture, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := database.NewClubStore(db.DB)
	noteRepo := notes.NewRepository(db.DB)
	provider := content.NewProvider(store, paragraphsPerPage)
	controller := NewReadController(provider, noteRepo, highlight.NewMatcher())

	router := gin.New()
	router.GET("/api/books/:id/read/:page", controller.GetPage)
	return &readFixture{store: store, notes: noteRepo, dir: dir}, router
}

func (f *readFixture) addPrimaryFile(t *testing.T, bookID uint, text string) {
	t.Helper()
	path := filepath.Join(f.dir, "book.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	require.NoError(t, f.store.Create(context.Background(), &entities.BookFile{
		BookID:      bookID,
		FileName:    "book.txt",
		FilePath:    path,
		PrimaryFile: true,
	}))
}

func TestReadController_GetPage(t *testing.T) {
	t.Run("serves a page of paragraphs", func(t *testing.T) {
		f, router := setupReadTest(t, 2)
		f.addPrimaryFile(t, 1, "First paragraph.\n\nSecond paragraph.\n\nThird paragraph.")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/read/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ReadPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, resp.Content)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 2, resp.TotalPages)
		assert.Empty(t, resp.Notes)
	})

	t.Run("wraps anchored note excerpts in markers", func(t *testing.T) {
		f, router := setupReadTest(t, 2)
		f.addPrimaryFile(t, 1, "The spice must flow.\n\nFear is the mind-killer.")

		require.NoError(t, f.notes.Create(context.Background(), &entities.Note{
			BookID:   1,
			UserID:   3,
			Page:     1,
			BookText: "the mind-killer",
			Content:  "Litany of fear",
		}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/read/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ReadPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Notes, 1)
		require.Len(t, resp.Content, 2)
		assert.Equal(t, "The spice must flow.", resp.Content[0])
		assert.Contains(t, resp.Content[1], `<mark class="note-highlight `)
		assert.Contains(t, resp.Content[1], fmt.Sprintf(`data-note-id="%d"`, resp.Notes[0].ID))
		assert.Contains(t, resp.Content[1], "the mind-killer</mark>")
	})

	t.Run("unlocatable note is listed but leaves the text unmarked", func(t *testing.T) {
		f, router := setupReadTest(t, 2)
		f.addPrimaryFile(t, 1, "The spice must flow.")

		require.NoError(t, f.notes.Create(context.Background(), &entities.Note{
			BookID:   1,
			Page:     1,
			BookText: "completely absent excerpt wording",
			Content:  "stale anchor",
		}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/read/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ReadPageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Notes, 1)
		assert.Equal(t, []string{"The spice must flow."}, resp.Content)
	})

	t.Run("returns 404 for a page past the end", func(t *testing.T) {
		f, router := setupReadTest(t, 2)
		f.addPrimaryFile(t, 1, "Only paragraph.")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/read/5", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 404 without a primary file", func(t *testing.T) {
		_, router := setupReadTest(t, 2)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/read/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 409 when the primary file is empty", func(t *testing.T) {
		f, router := setupReadTest(t, 2)
		f.addPrimaryFile(t, 1, "   \n\n  ")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/read/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "no readable content")
	})

	t.Run("returns 400 for a non-positive page", func(t *testing.T) {
		_, router := setupReadTest(t, 2)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/1/read/0", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
