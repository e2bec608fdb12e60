// Package club implements the reading-club core: progress normalization,
// the session lifecycle and the denormalized book aggregate the UI reads.
//
// The assembler is a read-mostly joiner. Every read degrades to a nil or
// empty result on failure so the UI always has something well-typed to
// render; every mutation reports success as a boolean. Nothing in this
// package panics or propagates errors past its boundary.
package club

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nawfay/bookclub/internal/entities"
)

// Store is the persistence capability the assembler works through. It is
// injected so tests can substitute an in-memory fake. Single-row lookups
// return (nil, nil) when no row exists; errors are reserved for actual
// store failures.
type Store interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	GetAllBooks(ctx context.Context) ([]entities.Book, error)
	UpdateBook(ctx context.Context, id uint, updates map[string]any) error

	GetAllBookSessions(ctx context.Context) ([]entities.BookSession, error)
	GetBookSessionByBook(ctx context.Context, bookID uint) (*entities.BookSession, error)
	CreateBookSession(ctx context.Context, s *entities.BookSession) error
	UpdateBookSessionByID(ctx context.Context, id uint, updates map[string]any) error

	GetAllReaderSessions(ctx context.Context) ([]entities.ReaderSession, error)
	GetReaderSessionsByBook(ctx context.Context, bookID uint) ([]entities.ReaderSession, error)
	GetReaderSessionsByUser(ctx context.Context, userID uint) ([]entities.ReaderSession, error)
	GetReaderSessionByBookAndUser(ctx context.Context, bookID, userID uint) (*entities.ReaderSession, error)
	CreateReaderSession(ctx context.Context, s *entities.ReaderSession) error
	UpdateReaderSessionByID(ctx context.Context, id uint, updates map[string]any) error

	GetPrimaryFile(ctx context.Context, bookID uint) (*entities.BookFile, error)
}

// Assembler joins books, club sessions and reader sessions into the
// aggregates the UI consumes, and hosts the mutating helpers alongside.
type Assembler struct {
	store Store
	now   func() time.Time
}

func NewAssembler(store Store) *Assembler {
	return &Assembler{store: store, now: time.Now}
}

// AssembleAllBooks fetches the three collections once, concurrently, and
// joins them in memory keyed by book id. Any fetch failure aborts the
// whole call and degrades to an empty list; the error is logged, never
// returned, because this is a read path feeding a UI that must render.
func (a *Assembler) AssembleAllBooks(ctx context.Context) []Book {
	var (
		records  []entities.Book
		sessions []entities.BookSession
		readers  []entities.ReaderSession
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = a.store.GetAllBooks(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = a.store.GetAllBookSessions(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		readers, err = a.store.GetAllReaderSessions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("Error assembling books: %v", err)
		return []Book{}
	}

	sessionByBook := make(map[uint]*entities.BookSession, len(sessions))
	for i := range sessions {
		sessionByBook[sessions[i].BookID] = &sessions[i]
	}

	readersByBook := make(map[uint][]entities.ReaderSession)
	for _, r := range readers {
		readersByBook[r.BookID] = append(readersByBook[r.BookID], r)
	}

	out := make([]Book, 0, len(records))
	for i := range records {
		out = append(out, a.buildBook(&records[i], sessionByBook[records[i].ID], readersByBook[records[i].ID]))
	}
	return out
}

// AssembleBook builds the aggregate for a single book. The three fetches
// run concurrently. Returns nil when the book does not exist or any
// fetch fails; errors are logged, not propagated.
func (a *Assembler) AssembleBook(ctx context.Context, bookID uint) *Book {
	var (
		record  *entities.Book
		session *entities.BookSession
		readers []entities.ReaderSession
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = a.store.GetBookByID(ctx, bookID)
		return err
	})
	g.Go(func() error {
		var err error
		session, err = a.store.GetBookSessionByBook(ctx, bookID)
		return err
	})
	g.Go(func() error {
		var err error
		readers, err = a.store.GetReaderSessionsByBook(ctx, bookID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("Error assembling book %d: %v", bookID, err)
		return nil
	}
	if record == nil {
		return nil
	}

	book := a.buildBook(record, session, readers)
	return &book
}

func (a *Assembler) buildBook(record *entities.Book, session *entities.BookSession, readers []entities.ReaderSession) Book {
	state := UninitializedSession()
	if session != nil {
		state = RealSession(session)
	}

	members := make([]Member, 0, len(readers))
	for i := range readers {
		members = append(members, a.buildMember(&readers[i], record.TotalPages))
	}

	status := record.Status
	if status == "" {
		status = entities.BookStatusToRead
	}

	return Book{
		ID:          fmt.Sprintf("%d", record.ID),
		Title:       record.Title,
		Author:      record.Author,
		Cover:       record.CoverURL,
		TotalPages:  record.TotalPages,
		Status:      string(status),
		Session:     state.View(record.ID, record.TotalPages, a.now()),
		Members:     members,
		AvgProgress: 0,
		AvgRating:   0,
	}.withAverages()
}

func (b Book) withAverages() Book {
	b.AvgProgress = avgProgress(b.Members)
	b.AvgRating = avgRating(b.Members)
	return b
}

func (a *Assembler) buildMember(r *entities.ReaderSession, canonicalTotal int) Member {
	// A member's own edition length may be unset; fall back to the
	// canonical count so normalization is the identity mapping.
	editionTotal := r.BookTotalPages
	if editionTotal == 0 {
		editionTotal = canonicalTotal
	}
	progress := Normalize(r.CurrentPage, editionTotal, canonicalTotal)

	status := r.Status
	if status == "" {
		status = entities.ReaderStatusActive
	}

	// The user may have been deleted; fall back to the session id so the
	// row is still renderable.
	id := fmt.Sprintf("%d", r.UserID)
	name := r.User.DisplayName()
	if r.User.ID == 0 && r.UserID == 0 {
		id = fmt.Sprintf("%d", r.ID)
	}
	if name == "" {
		name = "Unknown Member"
	}

	return Member{
		ID:     id,
		Name:   name,
		Avatar: r.User.Avatar,
		ReadingSession: ReadingSession{
			CurrentPage:    r.CurrentPage,
			BookTotalPages: editionTotal,
			ReadingPace:    r.ReadingPace,
			Rating:         r.Rating,
			Review:         r.Review,
			NormalizedPage: progress.CanonicalPage,
			NormalizedPerc: progress.Percent,
			Status:         string(status),
		},
	}
}

// JoinSession enrolls a member into a book's reading, capturing the page
// count of their own edition. Progress starts at zero with status active.
func (a *Assembler) JoinSession(ctx context.Context, bookID, userID uint, bookTotalPages int) bool {
	session := &entities.ReaderSession{
		BookID:         bookID,
		UserID:         userID,
		CurrentPage:    0,
		BookTotalPages: bookTotalPages,
		ReadingPace:    0,
		Rating:         0,
		Review:         "",
		Status:         entities.ReaderStatusActive,
	}
	if err := a.store.CreateReaderSession(ctx, session); err != nil {
		log.Printf("Error joining reading session for book %d user %d: %v", bookID, userID, err)
		return false
	}
	return true
}

// UpdateReview records a member's rating, review text and optionally a
// new personal status. A member with no reader session for the book gets
// false, never an implicit create.
func (a *Assembler) UpdateReview(ctx context.Context, bookID, userID uint, rating int, review string, status entities.ReaderStatus) bool {
	session, err := a.store.GetReaderSessionByBookAndUser(ctx, bookID, userID)
	if err != nil {
		log.Printf("Error updating review for book %d user %d: %v", bookID, userID, err)
		return false
	}
	if session == nil {
		log.Printf("No reader session found for book %d user %d", bookID, userID)
		return false
	}

	updates := map[string]any{
		"rating": rating,
		"review": review,
	}
	if status != "" {
		if !ValidReaderStatus(status) {
			log.Printf("Invalid reader status %q for book %d user %d", status, bookID, userID)
			return false
		}
		updates["status"] = status
	}

	if err := a.store.UpdateReaderSessionByID(ctx, session.ID, updates); err != nil {
		log.Printf("Error updating review for book %d user %d: %v", bookID, userID, err)
		return false
	}
	return true
}

// UpdateProgress records a member's new page position in their own
// edition. Lookup-then-update; a missing session is a failure.
func (a *Assembler) UpdateProgress(ctx context.Context, bookID, userID uint, currentPage int) bool {
	session, err := a.store.GetReaderSessionByBookAndUser(ctx, bookID, userID)
	if err != nil || session == nil {
		log.Printf("No reader session to update for book %d user %d (err=%v)", bookID, userID, err)
		return false
	}
	if err := a.store.UpdateReaderSessionByID(ctx, session.ID, map[string]any{"current_page": currentPage}); err != nil {
		log.Printf("Error updating progress for book %d user %d: %v", bookID, userID, err)
		return false
	}
	return true
}

// BookSessionUpdate carries a partial update to a club session. Nil
// fields are left untouched.
type BookSessionUpdate struct {
	Status            *entities.SessionStatus
	CurrentPage       *int
	TargetPage        *int
	ReadingPacePerDay *int
	EstimatedEndDate  *time.Time
}

// UpdateBookSession applies a partial update to a book's club session.
// Fails when no session exists (creation belongs to initialization) or
// when a requested status change is not a legal transition.
func (a *Assembler) UpdateBookSession(ctx context.Context, bookID uint, upd BookSessionUpdate) bool {
	session, err := a.store.GetBookSessionByBook(ctx, bookID)
	if err != nil {
		log.Printf("Error updating book session for book %d: %v", bookID, err)
		return false
	}
	if session == nil {
		log.Printf("No book session found for book %d", bookID)
		return false
	}

	updates := map[string]any{}
	if upd.Status != nil {
		if !CanTransition(session.Status, *upd.Status) {
			log.Printf("Illegal session transition %s -> %s for book %d", session.Status, *upd.Status, bookID)
			return false
		}
		updates["status"] = *upd.Status
	}
	if upd.CurrentPage != nil {
		updates["current_page"] = *upd.CurrentPage
	}
	if upd.TargetPage != nil {
		updates["target_page"] = *upd.TargetPage
	}
	if upd.ReadingPacePerDay != nil {
		updates["reading_pace_per_day"] = *upd.ReadingPacePerDay
	}
	if upd.EstimatedEndDate != nil {
		updates["estimated_end_date"] = *upd.EstimatedEndDate
	}
	if len(updates) == 0 {
		return true
	}

	if err := a.store.UpdateBookSessionByID(ctx, session.ID, updates); err != nil {
		log.Printf("Error updating book session for book %d: %v", bookID, err)
		return false
	}
	return true
}

// InitializeInput is what the initialization operation needs to promote
// a book from uninitialized to an active club session.
type InitializeInput struct {
	Title             string
	Author            string
	TotalPages        int
	TargetPage        int
	ReadingPacePerDay int
	EstimatedEndDate  time.Time
}

// InitializeBook promotes an uninitialized book to an active club
// session. Requires a non-empty title and author and an attached primary
// book file. Creates the session, or re-activates an existing one.
func (a *Assembler) InitializeBook(ctx context.Context, bookID uint, in InitializeInput) bool {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" || author == "" {
		log.Printf("Cannot initialize book %d: title and author are required", bookID)
		return false
	}

	record, err := a.store.GetBookByID(ctx, bookID)
	if err != nil || record == nil {
		log.Printf("Cannot initialize book %d: not found (err=%v)", bookID, err)
		return false
	}

	primary, err := a.store.GetPrimaryFile(ctx, bookID)
	if err != nil {
		log.Printf("Cannot initialize book %d: %v", bookID, err)
		return false
	}
	if primary == nil {
		log.Printf("Cannot initialize book %d: no primary file attached", bookID)
		return false
	}

	bookUpdates := map[string]any{
		"title":  title,
		"author": author,
		"status": entities.BookStatusReading,
	}
	if in.TotalPages > 0 {
		bookUpdates["total_pages"] = in.TotalPages
	}
	if err := a.store.UpdateBook(ctx, bookID, bookUpdates); err != nil {
		log.Printf("Error initializing book %d: %v", bookID, err)
		return false
	}

	totalPages := record.TotalPages
	if in.TotalPages > 0 {
		totalPages = in.TotalPages
	}
	targetPage := in.TargetPage
	if targetPage == 0 {
		targetPage = totalPages
	}
	endDate := in.EstimatedEndDate
	if endDate.IsZero() {
		endDate = a.estimateEndDate(0, targetPage, in.ReadingPacePerDay)
	}

	session, err := a.store.GetBookSessionByBook(ctx, bookID)
	if err != nil {
		log.Printf("Error initializing book %d: %v", bookID, err)
		return false
	}

	if session == nil {
		err = a.store.CreateBookSession(ctx, &entities.BookSession{
			BookID:            bookID,
			Status:            entities.SessionStatusActive,
			CurrentPage:       0,
			TargetPage:        targetPage,
			ReadingPacePerDay: in.ReadingPacePerDay,
			EstimatedEndDate:  endDate,
		})
	} else {
		err = a.store.UpdateBookSessionByID(ctx, session.ID, map[string]any{
			"status":               entities.SessionStatusActive,
			"target_page":          targetPage,
			"reading_pace_per_day": in.ReadingPacePerDay,
			"estimated_end_date":   endDate,
		})
	}
	if err != nil {
		log.Printf("Error initializing book %d: %v", bookID, err)
		return false
	}
	return true
}

// estimateEndDate projects when the club finishes the remaining pages at
// the given daily pace. A zero pace means no projection; "now" is used,
// matching the uninitialized sentinel.
func (a *Assembler) estimateEndDate(currentPage, targetPage, pacePerDay int) time.Time {
	if pacePerDay <= 0 || targetPage <= currentPage {
		return a.now()
	}
	days := (targetPage - currentPage + pacePerDay - 1) / pacePerDay
	return a.now().AddDate(0, 0, days)
}

// UserStats summarizes one member's reading across all books.
type UserStats struct {
	BooksRead        int `json:"booksRead"`
	CurrentlyReading int `json:"currentlyReading"`
	TotalPagesRead   int `json:"totalPagesRead"`
}

// Stats aggregates a member's reader sessions. Dropped books count
// toward pages read but not toward books read. Failures degrade to zero
// stats.
func (a *Assembler) Stats(ctx context.Context, userID uint) UserStats {
	sessions, err := a.store.GetReaderSessionsByUser(ctx, userID)
	if err != nil {
		log.Printf("Error fetching stats for user %d: %v", userID, err)
		return UserStats{}
	}

	var stats UserStats
	for _, s := range sessions {
		stats.TotalPagesRead += s.CurrentPage

		status := s.Status
		if status == "" {
			status = entities.ReaderStatusActive
		}
		switch status {
		case entities.ReaderStatusCompleted:
			stats.BooksRead++
		case entities.ReaderStatusActive:
			stats.CurrentlyReading++
		}
	}
	return stats
}
