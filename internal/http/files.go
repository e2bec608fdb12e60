package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nawfay/bookclub/internal/entities"
	"github.com/Nawfay/bookclub/internal/utils"
)

// allowedFileTypes maps accepted upload extensions to stored file types.
var allowedFileTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".epub": "application/epub+zip",
	".pdf":  "application/pdf",
}

// maxUploadSize caps book uploads at 100 MB.
const maxUploadSize = 100 << 20

// FileStore is the persistence surface the files controller needs.
type FileStore interface {
	ByBook(ctx context.Context, bookID uint) ([]entities.BookFile, error)
	GetByID(ctx context.Context, id uint) (*entities.BookFile, error)
	Create(ctx context.Context, file *entities.BookFile) error
	SetPrimary(ctx context.Context, bookID, fileID uint) error
	Delete(ctx context.Context, id uint) error
}

type FilesController struct {
	store    FileStore
	filesDir string
}

func NewFilesController(store FileStore, filesDir string) *FilesController {
	return &FilesController{store: store, filesDir: filesDir}
}

// ListFiles returns every file uploaded for a book.
func (fc *FilesController) ListFiles(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	files, err := fc.store.ByBook(c.Request.Context(), bookID)
	if err != nil {
		respondInternalError(c, err, "list files")
		return
	}
	c.JSON(http.StatusOK, files)
}

// UploadFile stores an uploaded copy of the book under the files
// directory, one subdirectory per book. The first file uploaded for a
// book becomes its primary file.
func (fc *FilesController) UploadFile(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}
	if header.Size > maxUploadSize {
		respondError(c, http.StatusRequestEntityTooLarge, "file exceeds the 100MB upload limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	fileType, allowed := allowedFileTypes[ext]
	if !allowed {
		respondBadRequest(c, "unsupported file type: "+ext)
		return
	}

	bookDir := filepath.Join(fc.filesDir, fmt.Sprintf("%d", bookID))
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		respondInternalError(c, err, "upload file")
		return
	}

	// Keep only the base name so path segments in the upload cannot
	// escape the book directory, and sanitize what remains.
	base := filepath.Base(header.Filename)
	safeName := utils.SanitizeFilename(strings.TrimSuffix(base, ext)) + ext
	dest := filepath.Join(bookDir, safeName)
	if err := c.SaveUploadedFile(header, dest); err != nil {
		respondInternalError(c, err, "upload file")
		return
	}

	existing, err := fc.store.ByBook(c.Request.Context(), bookID)
	if err != nil {
		respondInternalError(c, err, "upload file")
		return
	}

	record := &entities.BookFile{
		BookID:      bookID,
		FileName:    safeName,
		FilePath:    dest,
		FileType:    fileType,
		FileSize:    header.Size,
		PrimaryFile: len(existing) == 0,
	}
	if err := fc.store.Create(c.Request.Context(), record); err != nil {
		respondInternalError(c, err, "upload file")
		return
	}
	respondCreated(c, record)
}

// SetPrimary marks one of a book's files as the copy the reader serves.
func (fc *FilesController) SetPrimary(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "fileId")
	if !ok {
		return
	}

	file, err := fc.store.GetByID(c.Request.Context(), fileID)
	if err != nil {
		respondInternalError(c, err, "set primary file")
		return
	}
	if file == nil || file.BookID != bookID {
		respondNotFound(c, "file")
		return
	}

	if err := fc.store.SetPrimary(c.Request.Context(), bookID, fileID); err != nil {
		respondInternalError(c, err, "set primary file")
		return
	}
	respondSuccess(c, "primary file updated")
}

// DownloadFile streams an uploaded file back to the member.
func (fc *FilesController) DownloadFile(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "fileId")
	if !ok {
		return
	}

	file, err := fc.store.GetByID(c.Request.Context(), fileID)
	if err != nil {
		respondInternalError(c, err, "download file")
		return
	}
	if file == nil || file.BookID != bookID {
		respondNotFound(c, "file")
		return
	}

	c.FileAttachment(file.FilePath, file.FileName)
}

// DeleteFile removes an uploaded file and its record.
func (fc *FilesController) DeleteFile(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	fileID, ok := parseIDParam(c, "fileId")
	if !ok {
		return
	}

	file, err := fc.store.GetByID(c.Request.Context(), fileID)
	if err != nil {
		respondInternalError(c, err, "delete file")
		return
	}
	if file == nil || file.BookID != bookID {
		respondNotFound(c, "file")
		return
	}

	if err := fc.store.Delete(c.Request.Context(), fileID); err != nil {
		respondInternalError(c, err, "delete file")
		return
	}
	if err := os.Remove(file.FilePath); err != nil && !os.IsNotExist(err) {
		// The record is gone; an orphaned file on disk only gets a log line.
		log.Printf("Failed to remove file %s: %v", file.FilePath, err)
	}
	respondSuccess(c, "file deleted")
}
