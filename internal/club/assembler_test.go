package club

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nawfay/bookclub/internal/entities"
)

// fakeStore is an in-memory Store. Per-call error hooks let tests force
// individual fetches to fail.
type fakeStore struct {
	books          map[uint]*entities.Book
	bookSessions   map[uint]*entities.BookSession // keyed by book id
	readerSessions []entities.ReaderSession
	primaryFiles   map[uint]*entities.BookFile

	failBooks    error
	failSessions error
	failReaders  error

	bookUpdates          map[uint]map[string]any
	sessionUpdates       map[uint]map[string]any
	readerUpdates        map[uint]map[string]any
	createdBookSessions  []entities.BookSession
	createdReaderErrs    error
	nextReaderSessionID  uint
	nextBookSessionID    uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:               map[uint]*entities.Book{},
		bookSessions:        map[uint]*entities.BookSession{},
		primaryFiles:        map[uint]*entities.BookFile{},
		bookUpdates:         map[uint]map[string]any{},
		sessionUpdates:      map[uint]map[string]any{},
		readerUpdates:       map[uint]map[string]any{},
		nextReaderSessionID: 100,
		nextBookSessionID:   200,
	}
}

func (f *fakeStore) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	if f.failBooks != nil {
		return nil, f.failBooks
	}
	return f.books[id], nil
}

func (f *fakeStore) GetAllBooks(ctx context.Context) ([]entities.Book, error) {
	if f.failBooks != nil {
		return nil, f.failBooks
	}
	out := make([]entities.Book, 0, len(f.books))
	for _, b := range f.books {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) UpdateBook(ctx context.Context, id uint, updates map[string]any) error {
	f.bookUpdates[id] = updates
	return nil
}

func (f *fakeStore) GetAllBookSessions(ctx context.Context) ([]entities.BookSession, error) {
	if f.failSessions != nil {
		return nil, f.failSessions
	}
	out := make([]entities.BookSession, 0, len(f.bookSessions))
	for _, s := range f.bookSessions {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStore) GetBookSessionByBook(ctx context.Context, bookID uint) (*entities.BookSession, error) {
	if f.failSessions != nil {
		return nil, f.failSessions
	}
	return f.bookSessions[bookID], nil
}

func (f *fakeStore) CreateBookSession(ctx context.Context, s *entities.BookSession) error {
	f.nextBookSessionID++
	s.ID = f.nextBookSessionID
	f.bookSessions[s.BookID] = s
	f.createdBookSessions = append(f.createdBookSessions, *s)
	return nil
}

func (f *fakeStore) UpdateBookSessionByID(ctx context.Context, id uint, updates map[string]any) error {
	f.sessionUpdates[id] = updates
	return nil
}

func (f *fakeStore) GetAllReaderSessions(ctx context.Context) ([]entities.ReaderSession, error) {
	if f.failReaders != nil {
		return nil, f.failReaders
	}
	return f.readerSessions, nil
}

func (f *fakeStore) GetReaderSessionsByBook(ctx context.Context, bookID uint) ([]entities.ReaderSession, error) {
	if f.failReaders != nil {
		return nil, f.failReaders
	}
	var out []entities.ReaderSession
	for _, r := range f.readerSessions {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetReaderSessionsByUser(ctx context.Context, userID uint) ([]entities.ReaderSession, error) {
	if f.failReaders != nil {
		return nil, f.failReaders
	}
	var out []entities.ReaderSession
	for _, r := range f.readerSessions {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetReaderSessionByBookAndUser(ctx context.Context, bookID, userID uint) (*entities.ReaderSession, error) {
	for i := range f.readerSessions {
		if f.readerSessions[i].BookID == bookID && f.readerSessions[i].UserID == userID {
			return &f.readerSessions[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateReaderSession(ctx context.Context, s *entities.ReaderSession) error {
	if f.createdReaderErrs != nil {
		return f.createdReaderErrs
	}
	f.nextReaderSessionID++
	s.ID = f.nextReaderSessionID
	f.readerSessions = append(f.readerSessions, *s)
	return nil
}

func (f *fakeStore) UpdateReaderSessionByID(ctx context.Context, id uint, updates map[string]any) error {
	f.readerUpdates[id] = updates
	return nil
}

func (f *fakeStore) GetPrimaryFile(ctx context.Context, bookID uint) (*entities.BookFile, error) {
	return f.primaryFiles[bookID], nil
}

func testAssembler(store *fakeStore) *Assembler {
	a := NewAssembler(store)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestAssembleBookJoinsSessionAndMembers(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, Title: "Meditations", Author: "Marcus Aurelius", TotalPages: 200, Status: entities.BookStatusReading}
	store.bookSessions[1] = &entities.BookSession{ID: 10, BookID: 1, Status: entities.SessionStatusActive, CurrentPage: 80, TargetPage: 200}
	store.readerSessions = []entities.ReaderSession{
		{ID: 1, BookID: 1, UserID: 1, CurrentPage: 40, BookTotalPages: 200, User: entities.User{ID: 1, Username: "ada"}},
		{ID: 2, BookID: 1, UserID: 2, CurrentPage: 76, BookTotalPages: 152, User: entities.User{ID: 2, Username: "grace"}},
	}

	book := testAssembler(store).AssembleBook(context.Background(), 1)
	require.NotNil(t, book)

	assert.Equal(t, "1", book.ID)
	assert.Equal(t, "10", book.Session.ID)
	assert.Equal(t, string(entities.SessionStatusActive), book.Session.Status)
	require.Len(t, book.Members, 2)

	// The 152-page edition at page 76 is halfway, like page 40 of 200 is a fifth
	assert.Equal(t, 40, book.Members[0].ReadingSession.NormalizedPage)
	assert.InDelta(t, 20.0, book.Members[0].ReadingSession.NormalizedPerc, 0.001)
	assert.Equal(t, 100, book.Members[1].ReadingSession.NormalizedPage)
	assert.InDelta(t, 50.0, book.Members[1].ReadingSession.NormalizedPerc, 0.001)

	assert.InDelta(t, 35.0, book.AvgProgress, 0.001)
}

func TestAssembleBookMissingReturnsNil(t *testing.T) {
	store := newFakeStore()
	assert.Nil(t, testAssembler(store).AssembleBook(context.Background(), 99))
}

func TestAssembleBookWithoutSessionSynthesizesSentinel(t *testing.T) {
	store := newFakeStore()
	store.books[3] = &entities.Book{ID: 3, Title: "The Art of War", Author: "Sun Tzu", TotalPages: 120}

	book := testAssembler(store).AssembleBook(context.Background(), 3)
	require.NotNil(t, book)

	assert.Equal(t, "temp-3", book.Session.ID)
	assert.Equal(t, string(entities.SessionStatusUninitialized), book.Session.Status)
	assert.Equal(t, 120, book.Session.TargetPage)
	assert.True(t, IsUninitialized(book))
}

func TestAssembleAllBooksDegradesToEmptyOnFailure(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, Title: "Meditations", Author: "Marcus Aurelius"}
	store.failReaders = errors.New("db gone")

	books := testAssembler(store).AssembleAllBooks(context.Background())
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestAssembleAllBooks(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, Title: "Meditations", Author: "Marcus Aurelius", TotalPages: 200}
	store.books[2] = &entities.Book{ID: 2, Title: "The Art of War", Author: "Sun Tzu", TotalPages: 120}
	store.bookSessions[1] = &entities.BookSession{ID: 10, BookID: 1, Status: entities.SessionStatusActive}
	store.readerSessions = []entities.ReaderSession{
		{ID: 1, BookID: 1, UserID: 1, CurrentPage: 100, BookTotalPages: 200},
	}

	books := testAssembler(store).AssembleAllBooks(context.Background())
	require.Len(t, books, 2)

	byID := map[string]Book{}
	for _, b := range books {
		byID[b.ID] = b
	}
	assert.Len(t, byID["1"].Members, 1)
	assert.Equal(t, "10", byID["1"].Session.ID)
	assert.Empty(t, byID["2"].Members)
	assert.Equal(t, "temp-2", byID["2"].Session.ID)
}

func TestBuildMemberFallsBackToCanonicalTotal(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, Title: "Meditations", Author: "Marcus Aurelius", TotalPages: 200}
	store.readerSessions = []entities.ReaderSession{
		{ID: 1, BookID: 1, UserID: 1, CurrentPage: 50, BookTotalPages: 0},
	}

	book := testAssembler(store).AssembleBook(context.Background(), 1)
	require.NotNil(t, book)
	require.Len(t, book.Members, 1)

	assert.Equal(t, 200, book.Members[0].ReadingSession.BookTotalPages)
	assert.Equal(t, 50, book.Members[0].ReadingSession.NormalizedPage)
	assert.InDelta(t, 25.0, book.Members[0].ReadingSession.NormalizedPerc, 0.001)
}

func TestJoinSession(t *testing.T) {
	store := newFakeStore()

	ok := testAssembler(store).JoinSession(context.Background(), 1, 7, 152)
	require.True(t, ok)
	require.Len(t, store.readerSessions, 1)

	created := store.readerSessions[0]
	assert.Equal(t, uint(1), created.BookID)
	assert.Equal(t, uint(7), created.UserID)
	assert.Equal(t, 152, created.BookTotalPages)
	assert.Equal(t, 0, created.CurrentPage)
	assert.Equal(t, entities.ReaderStatusActive, created.Status)
}

func TestJoinSessionFailure(t *testing.T) {
	store := newFakeStore()
	store.createdReaderErrs = errors.New("unique constraint")
	assert.False(t, testAssembler(store).JoinSession(context.Background(), 1, 7, 0))
}

func TestUpdateProgress(t *testing.T) {
	store := newFakeStore()
	store.readerSessions = []entities.ReaderSession{{ID: 5, BookID: 1, UserID: 7}}

	assert.True(t, testAssembler(store).UpdateProgress(context.Background(), 1, 7, 42))
	assert.Equal(t, map[string]any{"current_page": 42}, store.readerUpdates[5])
}

func TestUpdateProgressMissingSession(t *testing.T) {
	store := newFakeStore()
	assert.False(t, testAssembler(store).UpdateProgress(context.Background(), 1, 7, 42))
}

func TestUpdateReview(t *testing.T) {
	store := newFakeStore()
	store.readerSessions = []entities.ReaderSession{{ID: 5, BookID: 1, UserID: 7}}

	ok := testAssembler(store).UpdateReview(context.Background(), 1, 7, 4, "solid", entities.ReaderStatusCompleted)
	require.True(t, ok)
	assert.Equal(t, 4, store.readerUpdates[5]["rating"])
	assert.Equal(t, "solid", store.readerUpdates[5]["review"])
	assert.Equal(t, entities.ReaderStatusCompleted, store.readerUpdates[5]["status"])
}

func TestUpdateReviewRejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	store.readerSessions = []entities.ReaderSession{{ID: 5, BookID: 1, UserID: 7}}

	assert.False(t, testAssembler(store).UpdateReview(context.Background(), 1, 7, 4, "", entities.ReaderStatus("paused")))
	assert.Empty(t, store.readerUpdates)
}

func TestUpdateBookSessionTransitions(t *testing.T) {
	store := newFakeStore()
	store.bookSessions[1] = &entities.BookSession{ID: 10, BookID: 1, Status: entities.SessionStatusActive}

	completed := entities.SessionStatusCompleted
	ok := testAssembler(store).UpdateBookSession(context.Background(), 1, BookSessionUpdate{Status: &completed})
	require.True(t, ok)
	assert.Equal(t, completed, store.sessionUpdates[10]["status"])
}

func TestUpdateBookSessionRejectsIllegalTransition(t *testing.T) {
	store := newFakeStore()
	store.bookSessions[1] = &entities.BookSession{ID: 10, BookID: 1, Status: entities.SessionStatusCompleted}

	dropped := entities.SessionStatusDropped
	assert.False(t, testAssembler(store).UpdateBookSession(context.Background(), 1, BookSessionUpdate{Status: &dropped}))
	assert.Empty(t, store.sessionUpdates)
}

func TestUpdateBookSessionMissing(t *testing.T) {
	store := newFakeStore()
	page := 50
	assert.False(t, testAssembler(store).UpdateBookSession(context.Background(), 1, BookSessionUpdate{CurrentPage: &page}))
}

func TestInitializeBookCreatesSession(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, Title: "meditations", Author: "unknown", TotalPages: 200}
	store.primaryFiles[1] = &entities.BookFile{ID: 1, BookID: 1, PrimaryFile: true}

	ok := testAssembler(store).InitializeBook(context.Background(), 1, InitializeInput{
		Title:             "Meditations",
		Author:            "Marcus Aurelius",
		ReadingPacePerDay: 10,
	})
	require.True(t, ok)

	assert.Equal(t, "Meditations", store.bookUpdates[1]["title"])
	assert.Equal(t, entities.BookStatusReading, store.bookUpdates[1]["status"])

	require.Len(t, store.createdBookSessions, 1)
	created := store.createdBookSessions[0]
	assert.Equal(t, entities.SessionStatusActive, created.Status)
	assert.Equal(t, 200, created.TargetPage)
	assert.Equal(t, 10, created.ReadingPacePerDay)
	// 200 pages at 10/day from the fixed clock
	assert.Equal(t, time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC), created.EstimatedEndDate)
}

func TestInitializeBookRequiresTitleAndAuthor(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, TotalPages: 200}
	store.primaryFiles[1] = &entities.BookFile{ID: 1, BookID: 1}

	assert.False(t, testAssembler(store).InitializeBook(context.Background(), 1, InitializeInput{Title: "  ", Author: "A"}))
}

func TestInitializeBookRequiresPrimaryFile(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, Title: "T", Author: "A", TotalPages: 200}

	assert.False(t, testAssembler(store).InitializeBook(context.Background(), 1, InitializeInput{Title: "T", Author: "A"}))
	assert.Empty(t, store.createdBookSessions)
}

func TestInitializeBookReactivatesExistingSession(t *testing.T) {
	store := newFakeStore()
	store.books[1] = &entities.Book{ID: 1, Title: "T", Author: "A", TotalPages: 200}
	store.primaryFiles[1] = &entities.BookFile{ID: 1, BookID: 1}
	store.bookSessions[1] = &entities.BookSession{ID: 10, BookID: 1, Status: entities.SessionStatusDropped}

	ok := testAssembler(store).InitializeBook(context.Background(), 1, InitializeInput{Title: "T", Author: "A", TargetPage: 150})
	require.True(t, ok)

	assert.Empty(t, store.createdBookSessions)
	assert.Equal(t, entities.SessionStatusActive, store.sessionUpdates[10]["status"])
	assert.Equal(t, 150, store.sessionUpdates[10]["target_page"])
}

func TestStats(t *testing.T) {
	store := newFakeStore()
	store.readerSessions = []entities.ReaderSession{
		{ID: 1, BookID: 1, UserID: 7, CurrentPage: 200, Status: entities.ReaderStatusCompleted},
		{ID: 2, BookID: 2, UserID: 7, CurrentPage: 50, Status: entities.ReaderStatusActive},
		{ID: 3, BookID: 3, UserID: 7, CurrentPage: 30, Status: entities.ReaderStatusDropped},
		{ID: 4, BookID: 1, UserID: 8, CurrentPage: 10, Status: entities.ReaderStatusActive},
	}

	stats := testAssembler(store).Stats(context.Background(), 7)
	assert.Equal(t, UserStats{BooksRead: 1, CurrentlyReading: 1, TotalPagesRead: 280}, stats)
}

func TestStatsFailureDegradesToZero(t *testing.T) {
	store := newFakeStore()
	store.failReaders = errors.New("db gone")
	assert.Equal(t, UserStats{}, testAssembler(store).Stats(context.Background(), 7))
}
