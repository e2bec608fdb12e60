package tasks

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/Nawfay/bookclub/internal/club"
	"github.com/Nawfay/bookclub/internal/entities"
)

// PaceStore is the persistence surface pace recalculation needs.
type PaceStore interface {
	GetActiveBookSessions(ctx context.Context) ([]entities.BookSession, error)
	GetBookSessionByBook(ctx context.Context, bookID uint) (*entities.BookSession, error)
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	GetReaderSessionsByBook(ctx context.Context, bookID uint) ([]entities.ReaderSession, error)
	UpdateBookSessionByID(ctx context.Context, id uint, updates map[string]any) error
}

// RecalcPaceTask recomputes a club session's group position and the daily
// pace needed to reach the target page by the estimated end date.
// A zero BookID recalculates every active session.
type RecalcPaceTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for pace recalculation tasks.
func (t RecalcPaceTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recalc_pace",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RecalcPaceProcessor creates a processor function for RecalcPaceTask.
func RecalcPaceProcessor(store PaceStore) backlite.QueueProcessor[RecalcPaceTask] {
	return func(ctx context.Context, task RecalcPaceTask) error {
		var sessions []entities.BookSession
		if task.BookID != 0 {
			session, err := store.GetBookSessionByBook(ctx, task.BookID)
			if err != nil {
				return fmt.Errorf("fetch session for book %d: %w", task.BookID, err)
			}
			if session == nil || session.Status != entities.SessionStatusActive {
				log.Printf("[TASK] No active session for book %d, nothing to recalculate", task.BookID)
				return nil
			}
			sessions = []entities.BookSession{*session}
		} else {
			var err error
			sessions, err = store.GetActiveBookSessions(ctx)
			if err != nil {
				return fmt.Errorf("fetch active sessions: %w", err)
			}
		}

		for _, session := range sessions {
			if err := recalcSession(ctx, store, session); err != nil {
				return err
			}
		}
		return nil
	}
}

// recalcSession moves the session's group position to the average of the
// members' normalized pages and rederives the daily pace from the pages
// remaining and the days left until the estimated end date.
func recalcSession(ctx context.Context, store PaceStore, session entities.BookSession) error {
	book, err := store.GetBookByID(ctx, session.BookID)
	if err != nil {
		return fmt.Errorf("fetch book %d: %w", session.BookID, err)
	}
	if book == nil {
		log.Printf("[TASK] Book %d is gone, skipping pace recalculation", session.BookID)
		return nil
	}

	readers, err := store.GetReaderSessionsByBook(ctx, session.BookID)
	if err != nil {
		return fmt.Errorf("fetch readers for book %d: %w", session.BookID, err)
	}

	updates := map[string]any{}

	if len(readers) > 0 {
		sum := 0
		for _, r := range readers {
			total := r.BookTotalPages
			if total == 0 {
				total = book.TotalPages
			}
			sum += club.Normalize(r.CurrentPage, total, book.TotalPages).CanonicalPage
		}
		groupPage := int(math.Round(float64(sum) / float64(len(readers))))
		if groupPage != session.CurrentPage {
			updates["current_page"] = groupPage
			session.CurrentPage = groupPage
		}
	}

	remaining := session.TargetPage - session.CurrentPage
	if remaining > 0 && !session.EstimatedEndDate.IsZero() {
		days := int(math.Ceil(time.Until(session.EstimatedEndDate).Hours() / 24))
		if days < 1 {
			days = 1
		}
		pace := (remaining + days - 1) / days
		if pace != session.ReadingPacePerDay {
			updates["reading_pace_per_day"] = pace
		}
	}

	if len(updates) == 0 {
		return nil
	}
	if err := store.UpdateBookSessionByID(ctx, session.ID, updates); err != nil {
		return fmt.Errorf("update session %d: %w", session.ID, err)
	}
	log.Printf("[TASK] Recalculated pace for book %d: %v", session.BookID, updates)
	return nil
}

// NewRecalcPaceQueue creates a backlite queue for pace recalculation tasks.
func NewRecalcPaceQueue(store PaceStore) backlite.Queue {
	return backlite.NewQueue(RecalcPaceProcessor(store))
}
