// Package content paginates a book's stored primary file for the in-app
// reader. Files are treated as plain text: paragraphs are separated by
// blank lines and pages are fixed-size runs of paragraphs.
package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Nawfay/bookclub/internal/entities"
)

var (
	// ErrNotFound means the book has no readable content or the page is
	// out of range.
	ErrNotFound = errors.New("book content not found")

	// ErrEmpty means the primary file parsed to no paragraphs.
	ErrEmpty = errors.New("book content is empty")
)

// FileSource resolves a book's primary uploaded file.
type FileSource interface {
	GetPrimaryFile(ctx context.Context, bookID uint) (*entities.BookFile, error)
}

// Page is one reader page of a book.
type Page struct {
	Paragraphs []string `json:"content"`
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
}

// Provider serves paginated book content.
type Provider struct {
	files   FileSource
	perPage int
}

func NewProvider(files FileSource, paragraphsPerPage int) *Provider {
	if paragraphsPerPage <= 0 {
		paragraphsPerPage = 12
	}
	return &Provider{files: files, perPage: paragraphsPerPage}
}

// GetPage returns the paragraphs of the requested page, 1-based, along
// with the book's reader page count.
func (p *Provider) GetPage(ctx context.Context, bookID uint, page int) (*Page, error) {
	paragraphs, err := p.paragraphs(ctx, bookID)
	if err != nil {
		return nil, err
	}

	total := (len(paragraphs) + p.perPage - 1) / p.perPage
	if page < 1 || page > total {
		return nil, ErrNotFound
	}

	start := (page - 1) * p.perPage
	end := start + p.perPage
	if end > len(paragraphs) {
		end = len(paragraphs)
	}

	return &Page{
		Paragraphs: paragraphs[start:end],
		Page:       page,
		TotalPages: total,
	}, nil
}

// TotalPages returns the book's reader page count, or 0 with an error
// when the content is unavailable.
func (p *Provider) TotalPages(ctx context.Context, bookID uint) (int, error) {
	paragraphs, err := p.paragraphs(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return (len(paragraphs) + p.perPage - 1) / p.perPage, nil
}

func (p *Provider) paragraphs(ctx context.Context, bookID uint) ([]string, error) {
	file, err := p.files.GetPrimaryFile(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("resolve primary file: %w", err)
	}
	if file == nil {
		return nil, ErrNotFound
	}

	raw, err := os.ReadFile(file.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read book file: %w", err)
	}

	paragraphs := SplitParagraphs(string(raw))
	if len(paragraphs) == 0 {
		return nil, ErrEmpty
	}
	return paragraphs, nil
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
var innerWhitespace = regexp.MustCompile(`\s+`)

// SplitParagraphs splits raw book text into paragraphs on blank lines,
// collapsing internal line breaks and runs of whitespace to single
// spaces.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, part := range paragraphBreak.Split(text, -1) {
		part = strings.TrimSpace(innerWhitespace.ReplaceAllString(part, " "))
		if part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}
