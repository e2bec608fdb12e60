// Command seed_demo creates a demo database with sample club data built
// from public domain books.
// Usage: go run cmd/seed_demo/main.go [-db path/to/demo.db] [-files path/to/files]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Nawfay/bookclub/internal/database"
	"github.com/Nawfay/bookclub/internal/entities"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	defaultDemoFilesDir     = "./demo/files"
)

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	filesDir := flag.String("files", defaultDemoFilesDir, "directory for demo book files")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	store := database.NewClubStore(db.DB)

	users := createUsers(db)
	now := time.Now()

	for _, cfg := range demoBooks() {
		book := cfg.Book
		if err := store.CreateBook(ctx, &book); err != nil {
			log.Printf("Failed to save book %s: %v", book.Title, err)
			continue
		}

		if path, err := writeBookFile(*filesDir, book.ID, cfg.FileName, cfg.Text); err != nil {
			log.Printf("Failed to write file for %s: %v", book.Title, err)
		} else {
			record := &entities.BookFile{
				BookID:      book.ID,
				FileName:    cfg.FileName,
				FilePath:    path,
				FileType:    "text/plain",
				FileSize:    int64(len(cfg.Text)),
				PrimaryFile: true,
			}
			if err := store.Create(ctx, record); err != nil {
				log.Printf("Failed to register file for %s: %v", book.Title, err)
			}
		}

		if cfg.Session != nil {
			session := *cfg.Session
			session.BookID = book.ID
			if err := store.CreateBookSession(ctx, &session); err != nil {
				log.Printf("Failed to create session for %s: %v", book.Title, err)
			}
		}

		for i, reader := range cfg.Readers {
			if i >= len(users) {
				break
			}
			reader.BookID = book.ID
			reader.UserID = users[i].ID
			if err := store.CreateReaderSession(ctx, &reader); err != nil {
				log.Printf("Failed to create reader session for %s: %v", book.Title, err)
			}
		}

		for i, note := range cfg.Notes {
			note.BookID = book.ID
			note.UserID = users[i%len(users)].ID
			note.CreatedAt = now
			if err := db.DB.Create(&note).Error; err != nil {
				log.Printf("Failed to create note for %s: %v", book.Title, err)
			}
		}

		log.Printf("Saved: %s by %s (%d readers, %d notes)",
			book.Title, book.Author, len(cfg.Readers), len(cfg.Notes))
	}

	log.Println("Demo database generated successfully!")
}

func createUsers(db *database.Database) []entities.User {
	users := []entities.User{
		{Username: "ada", Name: "Ada Byron", Role: entities.UserRoleSuper},
		{Username: "charles", Name: "Charles Babbage", Role: entities.UserRoleAdmin},
		{Username: "grace", Name: "Grace Hopper", Role: entities.UserRoleUser},
	}
	for i := range users {
		if err := db.DB.Create(&users[i]).Error; err != nil {
			log.Printf("Failed to create user %s: %v", users[i].Username, err)
		}
	}
	return users
}

func writeBookFile(filesDir string, bookID uint, name, text string) (string, error) {
	dir := filepath.Join(filesDir, fmt.Sprintf("%d", bookID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// DemoBook holds a book plus the club data seeded around it.
type DemoBook struct {
	Book     entities.Book
	FileName string
	Text     string
	Session  *entities.BookSession
	Readers  []entities.ReaderSession
	Notes    []entities.Note
}

func demoBooks() []DemoBook {
	endDate := time.Now().AddDate(0, 0, 21)

	return []DemoBook{
		{
			Book: entities.Book{
				Title:      "Meditations",
				Author:     "Marcus Aurelius",
				TotalPages: 304,
				Status:     entities.BookStatusReading,
			},
			FileName: "meditations.txt",
			Text: "You have power over your mind, not outside events. Realize this, and you will find strength.\n\n" +
				"The happiness of your life depends upon the quality of your thoughts.\n\n" +
				"Waste no more time arguing about what a good man should be. Be one.\n\n" +
				"Very little is needed to make a happy life; it is all within yourself, in your way of thinking.\n\n" +
				"When you arise in the morning think of what a privilege it is to be alive, to think, to enjoy, to love.\n",
			Session: &entities.BookSession{
				Status:            entities.SessionStatusActive,
				CurrentPage:       120,
				TargetPage:        304,
				ReadingPacePerDay: 10,
				EstimatedEndDate:  endDate,
			},
			Readers: []entities.ReaderSession{
				{CurrentPage: 150, BookTotalPages: 304, Status: entities.ReaderStatusActive},
				{CurrentPage: 60, BookTotalPages: 152, Status: entities.ReaderStatusActive},
				{CurrentPage: 304, BookTotalPages: 304, Rating: 5, Review: "Timeless.", Status: entities.ReaderStatusCompleted},
			},
			Notes: []entities.Note{
				{Page: 1, BookText: "The happiness of your life depends upon the quality of your thoughts.", Content: "Worth rereading weekly."},
				{Page: entities.UnmatchedPage, BookText: "privilege it is to be alive", Content: "Morning pages material."},
			},
		},
		{
			Book: entities.Book{
				Title:      "The Art of War",
				Author:     "Sun Tzu",
				TotalPages: 112,
				Status:     entities.BookStatusToRead,
			},
			FileName: "art-of-war.txt",
			Text: "The supreme art of war is to subdue the enemy without fighting.\n\n" +
				"In the midst of chaos, there is also opportunity.\n\n" +
				"Victorious warriors win first and then go to war, while defeated warriors go to war first and then seek to win.\n",
		},
	}
}
