// Package covers caches book cover images on disk so the club does not
// hit the upstream image host on every page load.
package covers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const fetchTimeout = 30 * time.Second

// Cache stores fetched cover images under a single directory. Filenames
// embed a hash of the source URL, so a changed URL misses the stale
// entry without any explicit invalidation.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		cacheDir:   cacheDir,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}, nil
}

// GetCover returns the path of the cached cover image, downloading it
// on a miss. Books without a cover URL yield an empty path and no error.
func (c *Cache) GetCover(ctx context.Context, bookID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	path := filepath.Join(c.cacheDir, c.coverFilename(bookID, coverURL))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := c.download(ctx, coverURL, path); err != nil {
		return "", err
	}
	return path, nil
}

// InvalidateCover drops every cached image for a book, regardless of
// which URL it came from.
func (c *Cache) InvalidateCover(bookID uint) error {
	matches, err := filepath.Glob(filepath.Join(c.cacheDir, fmt.Sprintf("cover_%d_*", bookID)))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (c *Cache) coverFilename(bookID uint, coverURL string) string {
	sum := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%d_%x.jpg", bookID, sum[:8])
}

// download fetches the image into a temp file in the cache directory
// and renames it into place, so readers never see a partial file.
func (c *Cache) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Bookclub/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// CacheDir returns the directory covers are stored in.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
