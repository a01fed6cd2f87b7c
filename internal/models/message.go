package models

import "time"

// Message is a direct message between two users, immutable once persisted.
// The embedded PairKey is the canonical room key of the two participants
// (see DirectRoomKey) and lets history queries hit a single index.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	PairKey    string    `gorm:"type:text;not null;index:idx_pair_created" json:"-"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"index:idx_pair_created" json:"created_at"`
}

// GroupMessage is a message inside a group conversation.
type GroupMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;index:idx_group_created" json:"group_id"`
	SenderID  uint      `gorm:"not null;index" json:"sender_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_group_created" json:"created_at"`
}

// MessageDescriptor is the wire form of a persisted message. It always
// carries the durable ID and timestamp assigned by the database so clients
// can reconcile an optimistic local echo against the broadcast copy.
type MessageDescriptor struct {
	ID         uint      `json:"id"`
	RoomKey    string    `json:"room_key"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id,omitempty"`
	GroupID    uint      `json:"group_id,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Descriptor converts a persisted direct message to its wire form.
func (m *Message) Descriptor() *MessageDescriptor {
	return &MessageDescriptor{
		ID:         m.ID,
		RoomKey:    DirectRoomKey(m.SenderID, m.ReceiverID),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

// Descriptor converts a persisted group message to its wire form.
func (m *GroupMessage) Descriptor() *MessageDescriptor {
	return &MessageDescriptor{
		ID:        m.ID,
		RoomKey:   GroupRoomKey(m.GroupID),
		SenderID:  m.SenderID,
		GroupID:   m.GroupID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}
