package notes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nawfay/bookclub/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test_notes.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.Note{})
	require.NoError(t, err)

	return NewRepository(db), db
}

func seedNotes(t *testing.T, repo *Repository, notes ...entities.Note) {
	t.Helper()
	for i := range notes {
		require.NoError(t, repo.Create(context.Background(), &notes[i]))
	}
}

func TestRepository_ListByBook_OrdersByPage(t *testing.T) {
	repo, _ := setupTestDB(t)
	seedNotes(t, repo,
		entities.Note{BookID: 1, UserID: 1, Page: 5, BookText: "later", Content: "second"},
		entities.Note{BookID: 1, UserID: 1, Page: 2, BookText: "earlier", Content: "first"},
		entities.Note{BookID: 2, UserID: 1, Page: 1, BookText: "other book", Content: "ignored"},
	)

	page, err := repo.ListByBook(context.Background(), 1, ListOptions{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 2, page.Items[0].Page)
	assert.Equal(t, 5, page.Items[1].Page)
}

func TestRepository_ListByBook_Paginates(t *testing.T) {
	repo, _ := setupTestDB(t)
	for i := 1; i <= 5; i++ {
		seedNotes(t, repo, entities.Note{BookID: 1, UserID: 1, Page: i, BookText: "t", Content: "n"})
	}

	page, err := repo.ListByBook(context.Background(), 1, ListOptions{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Items[0].Page)
}

func TestRepository_ListByBook_Search(t *testing.T) {
	repo, _ := setupTestDB(t)
	seedNotes(t, repo,
		entities.Note{BookID: 1, UserID: 1, Page: 1, BookText: "the quick brown fox", Content: "about animals"},
		entities.Note{BookID: 1, UserID: 1, Page: 2, BookText: "lorem ipsum", Content: "about Foxes too"},
		entities.Note{BookID: 1, UserID: 1, Page: 3, BookText: "unrelated", Content: "nothing"},
	)

	page, err := repo.ListByBook(context.Background(), 1, ListOptions{Search: "fox"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)
}

func TestRepository_ListByBook_DefaultsPagination(t *testing.T) {
	repo, _ := setupTestDB(t)

	page, err := repo.ListByBook(context.Background(), 1, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Empty(t, page.Items)
}

func TestRepository_ByBookAndPage(t *testing.T) {
	repo, db := setupTestDB(t)
	require.NoError(t, db.Create(&entities.User{Username: "ada", Name: "Ada"}).Error)
	seedNotes(t, repo,
		entities.Note{BookID: 1, UserID: 1, Page: 3, BookText: "a", Content: "x"},
		entities.Note{BookID: 1, UserID: 1, Page: 4, BookText: "b", Content: "y"},
	)

	items, err := repo.ByBookAndPage(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].BookText)
	assert.Equal(t, "ada", items[0].User.Username)
}

func TestRepository_UnmatchedByBookAndSetPage(t *testing.T) {
	repo, _ := setupTestDB(t)
	seedNotes(t, repo,
		entities.Note{BookID: 1, UserID: 1, Page: entities.UnmatchedPage, BookText: "orphan", Content: "x"},
		entities.Note{BookID: 1, UserID: 1, Page: 2, BookText: "anchored", Content: "y"},
	)

	orphans, err := repo.UnmatchedByBook(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.True(t, orphans[0].Unmatched())

	require.NoError(t, repo.SetPage(context.Background(), orphans[0].ID, 7))

	orphans, err = repo.UnmatchedByBook(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	items, err := repo.ByBookAndPage(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRepository_SetPage_NotFound(t *testing.T) {
	repo, _ := setupTestDB(t)
	assert.Error(t, repo.SetPage(context.Background(), 999, 1))
}
