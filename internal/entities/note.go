package entities

import "time"

// UnmatchedPage is the page value given to a note whose excerpt could not
// be located on any page of the book's content.
const UnmatchedPage = 999

// Note is a page-anchored annotation. BookText holds the verbatim excerpt
// of book text the note refers to; Content holds the member's commentary.
// Notes are immutable after creation.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"index" json:"book_id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Page      int       `gorm:"index" json:"page"`
	BookText  string    `gorm:"type:text" json:"book_text"`
	Content   string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"index" json:"created"`
}

// Unmatched reports whether the note still carries the sentinel page.
func (n *Note) Unmatched() bool {
	return n.Page == UnmatchedPage
}
