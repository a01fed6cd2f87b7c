package models_test

import (
	"testing"

	"sociogo/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFriendshipBeforeCreate_NormalizesPair verifies the hook orders the
// pair columns so the unique index collapses both request directions.
func TestFriendshipBeforeCreate_NormalizesPair(t *testing.T) {
	f := &models.Friendship{RequesterID: 20, AddresseeID: 10}

	// nil *gorm.DB is acceptable for this hook
	require.NoError(t, f.BeforeCreate(nil))

	assert.Equal(t, uint(10), f.UserLowID)
	assert.Equal(t, uint(20), f.UserHighID)
	assert.Equal(t, models.FriendshipPending, f.Status, "status defaults to pending")

	reversed := &models.Friendship{RequesterID: 10, AddresseeID: 20}
	require.NoError(t, reversed.BeforeCreate(nil))
	assert.Equal(t, f.UserLowID, reversed.UserLowID)
	assert.Equal(t, f.UserHighID, reversed.UserHighID)
}

func TestFriendshipOtherParty(t *testing.T) {
	f := &models.Friendship{RequesterID: 10, AddresseeID: 20}
	assert.Equal(t, uint(20), f.OtherParty(10))
	assert.Equal(t, uint(10), f.OtherParty(20))
}

func TestMessageDescriptor_CarriesDurableFields(t *testing.T) {
	msg := &models.Message{ID: 101, SenderID: 20, ReceiverID: 10, Text: "hello"}
	desc := msg.Descriptor()

	assert.Equal(t, uint(101), desc.ID)
	assert.Equal(t, "10:20", desc.RoomKey)
	assert.Equal(t, uint(20), desc.SenderID)

	gm := &models.GroupMessage{ID: 55, GroupID: 3, SenderID: 20, Text: "hi"}
	gdesc := gm.Descriptor()
	assert.Equal(t, "group:3", gdesc.RoomKey)
	assert.Equal(t, uint(3), gdesc.GroupID)
}
