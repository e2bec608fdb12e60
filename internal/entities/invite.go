package entities

import "time"

// Invite is a single-use membership code. Signup consumes the code and
// grants the role it carries.
type Invite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"uniqueIndex;size:64" json:"code"`
	Role      UserRole  `gorm:"size:20;default:'user'" json:"role"`
	InviterID uint      `gorm:"index" json:"inviter"`
	UsedByID  *uint     `json:"used_by,omitempty"`
	IsUsed    bool      `gorm:"default:false" json:"is_used"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

func (Invite) TableName() string {
	return "invites"
}
