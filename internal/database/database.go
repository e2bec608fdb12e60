// Package database owns the GORM connection and migration for the club's
// record collections. Per-collection query code lives in the
// subpackages; NewClubStore bundles them into the capability the
// aggregate assembler consumes.
package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nawfay/bookclub/internal/database/books"
	"github.com/Nawfay/bookclub/internal/database/files"
	"github.com/Nawfay/bookclub/internal/database/sessions"
	"github.com/Nawfay/bookclub/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.BookSession{},
		&entities.ReaderSession{},
		&entities.Note{},
		&entities.BookFile{},
		&entities.Invite{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Aliases so the three repositories can be embedded side by side.
type (
	booksRepo    = books.Repository
	sessionsRepo = sessions.Repository
	filesRepo    = files.Repository
)

// ClubStore bundles the books, sessions and files repositories into the
// single persistence capability the aggregate assembler is built
// against.
//
//	var _ club.Store = (*ClubStore)(nil)  // asserted in internal/interfaces
type ClubStore struct {
	*booksRepo
	*sessionsRepo
	*filesRepo
}

func NewClubStore(db *gorm.DB) *ClubStore {
	return &ClubStore{
		booksRepo:    books.NewRepository(db),
		sessionsRepo: sessions.NewRepository(db),
		filesRepo:    files.NewRepository(db),
	}
}
