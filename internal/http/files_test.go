package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/database/files"
	"github.com/Nawfay/bookclub/internal/entities"
)

func setupFilesTest(t *testing.T) (*files.Repository, string, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := database.NewDatabase(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := files.NewRepository(db.DB)
	filesDir := filepath.Join(dir, "books")
	controller := NewFilesController(repo, filesDir)

	router := gin.New()
	router.GET("/api/books/:id/files", controller.ListFiles)
	router.POST("/api/books/:id/files", controller.UploadFile)
	router.PUT("/api/books/:id/files/:fileId/primary", controller.SetPrimary)
	router.GET("/api/books/:id/files/:fileId", controller.DownloadFile)
	router.DELETE("/api/books/:id/files/:fileId", controller.DeleteFile)
	return repo, filesDir, router
}

func uploadRequest(t *testing.T, url, filename, contents string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestFilesController_UploadFile(t *testing.T) {
	t.Run("first upload becomes the primary file", func(t *testing.T) {
		repo, filesDir, router := setupFilesTest(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/books/1/files", "dune.txt", "The spice must flow."))

		assert.Equal(t, http.StatusCreated, w.Code)

		var record entities.BookFile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.True(t, record.PrimaryFile)
		assert.Equal(t, "dune.txt", record.FileName)
		assert.Equal(t, "text/plain", record.FileType)

		saved, err := repo.GetPrimaryFile(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, saved)

		data, err := os.ReadFile(filepath.Join(filesDir, "1", "dune.txt"))
		require.NoError(t, err)
		assert.Equal(t, "The spice must flow.", string(data))
	})

	t.Run("second upload is not primary", func(t *testing.T) {
		_, _, router := setupFilesTest(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/books/1/files", "first.txt", "a"))
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/books/1/files", "second.txt", "b"))
		assert.Equal(t, http.StatusCreated, w.Code)

		var record entities.BookFile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.False(t, record.PrimaryFile)
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		_, _, router := setupFilesTest(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/books/1/files", "dune.exe", "MZ"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unsupported file type")
	})

	t.Run("requires a file part", func(t *testing.T) {
		_, _, router := setupFilesTest(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books/1/files", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("sanitizes hostile filenames", func(t *testing.T) {
		_, filesDir, router := setupFilesTest(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "/api/books/1/files", `..\evil<name>.txt`, "x"))

		assert.Equal(t, http.StatusCreated, w.Code)

		var record entities.BookFile
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.NotContains(t, record.FileName, "<")
		assert.NotContains(t, record.FileName, `\`)

		// Whatever name was chosen, the file must live inside the book's
		// own directory.
		entries, err := os.ReadDir(filepath.Join(filesDir, "1"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})
}

func TestFilesController_ListFiles(t *testing.T) {
	repo, _, router := setupFilesTest(t)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entities.BookFile{BookID: 1, FileName: "a.txt", FilePath: "/x/a.txt"}))
	require.NoError(t, repo.Create(ctx, &entities.BookFile{BookID: 1, FileName: "b.txt", FilePath: "/x/b.txt"}))
	require.NoError(t, repo.Create(ctx, &entities.BookFile{BookID: 2, FileName: "c.txt", FilePath: "/x/c.txt"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books/1/files", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var listed []entities.BookFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)
}

func TestFilesController_SetPrimary(t *testing.T) {
	t.Run("swaps the primary flag", func(t *testing.T) {
		repo, _, router := setupFilesTest(t)

		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, &entities.BookFile{BookID: 1, FileName: "a.txt", FilePath: "/x/a.txt", PrimaryFile: true}))
		require.NoError(t, repo.Create(ctx, &entities.BookFile{BookID: 1, FileName: "b.txt", FilePath: "/x/b.txt"}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/books/1/files/2/primary", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		primary, err := repo.GetPrimaryFile(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, primary)
		assert.Equal(t, "b.txt", primary.FileName)
	})

	t.Run("returns 404 for a file of another book", func(t *testing.T) {
		repo, _, router := setupFilesTest(t)

		require.NoError(t, repo.Create(context.Background(), &entities.BookFile{BookID: 2, FileName: "c.txt", FilePath: "/x/c.txt"}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/books/1/files/1/primary", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFilesController_DownloadFile(t *testing.T) {
	repo, _, router := setupFilesTest(t)

	path := filepath.Join(t.TempDir(), "dune.txt")
	require.NoError(t, os.WriteFile(path, []byte("The spice must flow."), 0o644))
	require.NoError(t, repo.Create(context.Background(), &entities.BookFile{BookID: 1, FileName: "dune.txt", FilePath: path}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books/1/files/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "The spice must flow.", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "dune.txt")
}

func TestFilesController_DeleteFile(t *testing.T) {
	t.Run("removes record and disk file", func(t *testing.T) {
		repo, _, router := setupFilesTest(t)

		path := filepath.Join(t.TempDir(), "dune.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		require.NoError(t, repo.Create(context.Background(), &entities.BookFile{BookID: 1, FileName: "dune.txt", FilePath: path}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/1/files/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		got, err := repo.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Nil(t, got)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("returns 404 for unknown file", func(t *testing.T) {
		_, _, router := setupFilesTest(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/1/files/9", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
