package models

import (
	"time"

	"gorm.io/gorm"
)

// FriendshipStatus is the status column of a Friendship row. Transitions are
// PENDING -> ACCEPTED, or deletion on reject/cancel. There is deliberately no
// REJECTED state: a rejected or cancelled request is removed, which lets the
// pair re-request later.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is a directional friend request that becomes a symmetric edge
// once accepted. UserLowID/UserHighID hold the normalized pair (low < high)
// under a unique index, so at most one row can exist for any unordered pair
// no matter which side requested.
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;index" json:"requester_id"`
	AddresseeID uint             `gorm:"not null;index" json:"addressee_id"`
	UserLowID   uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	UserHighID  uint             `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"-"`
	Status      FriendshipStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"-"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee *User `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}

// BeforeCreate — GORM hook, нормалізує пару перед вставкою, щоб унікальний
// індекс спрацьовував незалежно від напрямку запиту.
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	f.UserLowID, f.UserHighID = f.RequesterID, f.AddresseeID
	if f.UserLowID > f.UserHighID {
		f.UserLowID, f.UserHighID = f.UserHighID, f.UserLowID
	}
	if f.Status == "" {
		f.Status = FriendshipPending
	}
	return nil
}

// OtherParty returns the ID of the participant that is not userID.
func (f *Friendship) OtherParty(userID uint) uint {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// FriendshipChange is the payload of a friendship_changed realtime event.
// State is one of "pending", "accepted", "removed".
type FriendshipChange struct {
	RequestID uint           `json:"request_id"`
	State     string         `json:"state"`
	Peer      PeerDescriptor `json:"peer"`
}

const (
	FriendshipStatePending  = "pending"
	FriendshipStateAccepted = "accepted"
	FriendshipStateRemoved  = "removed"
)
