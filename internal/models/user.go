package models

import (
	"time"

	"github.com/lib/pq"
)

// User представляє обліковий запис у системі.
// Пароль зберігається лише як bcrypt-хеш і ніколи не потрапляє в JSON.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName  string         `json:"display_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Bio          string         `json:"bio,omitempty"`
	AvatarURL    string         `json:"avatar_url,omitempty"`
	Interests    pq.StringArray `gorm:"type:text[]" json:"interests,omitempty"`
	Verified     bool           `json:"verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"-"`
}

// PeerDescriptor is the subset of User fields shipped inside realtime
// friendship notifications.
type PeerDescriptor struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Peer returns the short descriptor used in realtime events.
func (u *User) Peer() PeerDescriptor {
	return PeerDescriptor{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}
