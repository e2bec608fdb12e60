package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/Nawfay/bookclub/internal/content"
	"github.com/Nawfay/bookclub/internal/entities"
	"github.com/Nawfay/bookclub/internal/highlight"
)

// NoteAnchorStore is the notes surface re-anchoring needs.
type NoteAnchorStore interface {
	UnmatchedByBook(ctx context.Context, bookID uint) ([]entities.Note, error)
	SetPage(ctx context.Context, id uint, page int) error
}

// PageSource paginates a book's content for excerpt scanning.
type PageSource interface {
	GetPage(ctx context.Context, bookID uint, page int) (*content.Page, error)
	TotalPages(ctx context.Context, bookID uint) (int, error)
}

// ReanchorNotesTask walks a book's unmatched notes and scans the book's
// pages for each note's excerpt. Notes whose excerpt is found get their
// page updated; the rest keep the unmatched sentinel. Runs after a new
// primary file is uploaded, when every previous anchor may have moved.
type ReanchorNotesTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for note re-anchoring tasks.
func (t ReanchorNotesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reanchor_notes",
		MaxAttempts: 3,
		Backoff:     1 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReanchorNotesProcessor creates a processor function for ReanchorNotesTask.
func ReanchorNotesProcessor(notes NoteAnchorStore, pages PageSource, matcher *highlight.Matcher) backlite.QueueProcessor[ReanchorNotesTask] {
	return func(ctx context.Context, task ReanchorNotesTask) error {
		orphans, err := notes.UnmatchedByBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("fetch unmatched notes for book %d: %w", task.BookID, err)
		}
		if len(orphans) == 0 {
			return nil
		}

		total, err := pages.TotalPages(ctx, task.BookID)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrEmpty) {
				log.Printf("[TASK] Book %d has no readable content, keeping %d notes unmatched", task.BookID, len(orphans))
				return nil
			}
			return fmt.Errorf("paginate book %d: %w", task.BookID, err)
		}

		anchored := 0
		for _, note := range orphans {
			page, found, err := locateNote(ctx, pages, matcher, task.BookID, total, note.BookText)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			if err := notes.SetPage(ctx, note.ID, page); err != nil {
				return fmt.Errorf("anchor note %d to page %d: %w", note.ID, page, err)
			}
			anchored++
		}

		log.Printf("[TASK] Re-anchored %d of %d notes for book %d", anchored, len(orphans), task.BookID)
		return nil
	}
}

// locateNote scans pages in order and returns the first page containing
// the excerpt.
func locateNote(ctx context.Context, pages PageSource, matcher *highlight.Matcher, bookID uint, total int, excerpt string) (int, bool, error) {
	if excerpt == "" {
		return 0, false, nil
	}
	for page := 1; page <= total; page++ {
		pg, err := pages.GetPage(ctx, bookID, page)
		if err != nil {
			return 0, false, fmt.Errorf("read page %d of book %d: %w", page, bookID, err)
		}
		if matcher.Locate(pg.Paragraphs, excerpt) {
			return page, true, nil
		}
	}
	return 0, false, nil
}

// NewReanchorNotesQueue creates a backlite queue for note re-anchoring tasks.
func NewReanchorNotesQueue(notes NoteAnchorStore, pages PageSource, matcher *highlight.Matcher) backlite.Queue {
	return backlite.NewQueue(ReanchorNotesProcessor(notes, pages, matcher))
}
