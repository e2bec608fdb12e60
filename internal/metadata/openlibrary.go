// Package metadata looks up book details from external catalogues so a
// club admin can pre-fill title, author, page count and cover when
// adding a book.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const userAgent = "Bookclub/1.0 (https://github.com/Nawfay/bookclub)"

// BookMetadata is the subset of catalogue data useful when creating a book.
type BookMetadata struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	CoverURL        string `json:"cover_url,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	PageCount       int    `json:"page_count,omitempty"`
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a new OpenLibrary API client with rate limiting.
func NewOpenLibraryClient() *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     "https://openlibrary.org",
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

// SearchByISBN looks up a book by its ISBN and returns metadata.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	c.rateLimiter.wait()

	reqURL := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	edition, err := c.fetchJSON(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch ISBN data: %w", err)
	}

	meta := &BookMetadata{
		Title:           edition.Title,
		ISBN:            isbn,
		PageCount:       edition.NumberOfPages,
		PublicationYear: extractYear(edition.PublishDate),
		CoverURL:        fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn),
	}
	if len(edition.Publishers) > 0 {
		meta.Publisher = edition.Publishers[0]
	}
	return meta, nil
}

// SearchByTitle looks up a book by title and optional author, returning the
// best match. Page count is filled from the cover edition when the search
// result itself lacks one.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	c.rateLimiter.wait()

	q := url.QueryEscape(title)
	if author != "" {
		q = url.QueryEscape(fmt.Sprintf("%s %s", title, author))
	}

	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var searchResult openLibrarySearchResult
	if err := json.NewDecoder(resp.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(searchResult.Docs) == 0 {
		return nil, fmt.Errorf("no results found for: %s", title)
	}

	best := c.findBestMatch(searchResult.Docs, title, author)
	meta := docToMetadata(best)

	// Search results carry no page count. Fetch the cover edition for it.
	if best.CoverEditionKey != "" && (meta.PageCount == 0 || meta.ISBN == "") {
		edition, err := c.fetchJSON(ctx, fmt.Sprintf("%s/books/%s.json", c.baseURL, best.CoverEditionKey))
		if err == nil {
			enrichFromEdition(meta, edition)
		}
	}

	return meta, nil
}

func (c *OpenLibraryClient) findBestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	var bestMatch *openLibrarySearchDoc
	bestScore := -1

	for i := range docs {
		doc := &docs[i]
		score := 0

		if strings.ToLower(doc.Title) == titleLower {
			score += 10
		} else if strings.Contains(strings.ToLower(doc.Title), titleLower) {
			score += 5
		}

		if author != "" && len(doc.AuthorName) > 0 {
			for _, docAuthor := range doc.AuthorName {
				if strings.ToLower(docAuthor) == authorLower {
					score += 10
					break
				} else if strings.Contains(strings.ToLower(docAuthor), authorLower) {
					score += 5
					break
				}
			}
		}

		// Prefer entries that can fill more of the book form
		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score += 1
		}

		if score > bestScore {
			bestScore = score
			bestMatch = doc
		}
	}

	if bestMatch == nil && len(docs) > 0 {
		bestMatch = &docs[0]
	}

	return bestMatch
}

func (c *OpenLibraryClient) fetchJSON(ctx context.Context, reqURL string) (*openLibraryEdition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status: %d", resp.StatusCode)
	}

	var edition openLibraryEdition
	if err := json.NewDecoder(resp.Body).Decode(&edition); err != nil {
		return nil, err
	}
	return &edition, nil
}

func docToMetadata(doc *openLibrarySearchDoc) *BookMetadata {
	meta := &BookMetadata{
		Title:           doc.Title,
		PublicationYear: doc.FirstPublishYear,
	}

	if len(doc.AuthorName) > 0 {
		meta.Author = doc.AuthorName[0]
	}
	if len(doc.Publisher) > 0 {
		meta.Publisher = doc.Publisher[0]
	}
	if len(doc.ISBN) > 0 {
		meta.ISBN = doc.ISBN[0]
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", doc.ISBN[0])
	} else if doc.CoverI != 0 {
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI)
	}

	return meta
}

func enrichFromEdition(meta *BookMetadata, edition *openLibraryEdition) {
	if meta.ISBN == "" {
		if len(edition.ISBN13) > 0 {
			meta.ISBN = edition.ISBN13[0]
		} else if len(edition.ISBN10) > 0 {
			meta.ISBN = edition.ISBN10[0]
		}
	}
	if meta.ISBN != "" && meta.CoverURL == "" {
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", meta.ISBN)
	}
	if meta.Publisher == "" && len(edition.Publishers) > 0 {
		meta.Publisher = edition.Publishers[0]
	}
	if meta.PageCount == 0 && edition.NumberOfPages > 0 {
		meta.PageCount = edition.NumberOfPages
	}
	if meta.PublicationYear == 0 && edition.PublishDate != "" {
		meta.PublicationYear = extractYear(edition.PublishDate)
	}
}

// normalizeISBN removes hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	// Basic validation: ISBN-10 or ISBN-13
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}

	return isbn
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: find 4 consecutive digits
	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			var year int
			if _, err := fmt.Sscanf(dateStr[i:i+4], "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}

	return 0
}

// OpenLibrary API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	ISBN             []string `json:"isbn"`
	CoverI           int      `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
}

type openLibraryEdition struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date"`
	ISBN10        []string `json:"isbn_10"`
	ISBN13        []string `json:"isbn_13"`
	NumberOfPages int      `json:"number_of_pages"`
}
