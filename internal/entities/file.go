package entities

import "time"

// BookFile is an uploaded copy of a book (epub, pdf, txt). The primary
// file is the one paginated for the in-app reader; session initialization
// requires one.
type BookFile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BookID      uint      `gorm:"index" json:"book_id"`
	FileName    string    `gorm:"size:512" json:"file_name"`
	FilePath    string    `gorm:"size:1024" json:"-"`
	FileType    string    `gorm:"size:100" json:"file_type"`
	FileSize    int64     `json:"file_size"`
	PrimaryFile bool      `gorm:"default:false" json:"primary_file"`
	CreatedAt   time.Time `json:"created"`
}

func (BookFile) TableName() string {
	return "book_files"
}
