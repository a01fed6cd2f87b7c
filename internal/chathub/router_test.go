package chathub_test

import (
	"fmt"
	"sync"
	"testing"

	"sociogo/backend/internal/chathub"
	"sociogo/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRouter_JoinIdempotent(t *testing.T) {
	router := chathub.NewRoomRouter()
	c := newMockClient(10, "conn-1")

	router.Join("10:20", c)
	router.Join("10:20", c)

	assert.Equal(t, 1, router.SubscriberCount("10:20"))
}

func TestRouter_EmptyRoomIsReclaimed(t *testing.T) {
	router := chathub.NewRoomRouter()
	c1 := newMockClient(10, "conn-1")
	c2 := newMockClient(20, "conn-2")

	router.Join("10:20", c1)
	router.Join("10:20", c2)
	assert.True(t, router.HasRoom("10:20"))

	router.Leave("10:20", c1)
	assert.True(t, router.HasRoom("10:20"))

	router.Leave("10:20", c2)
	assert.False(t, router.HasRoom("10:20"), "room must not occupy routing memory after last leave")
}

func TestRouter_DropLeavesAllRooms(t *testing.T) {
	router := chathub.NewRoomRouter()
	c := newMockClient(10, "conn-1")
	peer := newMockClient(20, "conn-2")

	router.Join("10:20", c)
	router.Join("group:3", c)
	router.Join("group:3", peer)

	router.Drop(c)

	assert.False(t, router.HasRoom("10:20"))
	assert.Equal(t, 1, router.SubscriberCount("group:3"))
}

func TestRouter_LeaveUnknownRoomIsNoOp(t *testing.T) {
	router := chathub.NewRoomRouter()
	c := newMockClient(10, "conn-1")

	router.Leave("10:20", c)
	router.Drop(c)

	assert.False(t, router.HasRoom("10:20"))
}

func TestRouter_Broadcast(t *testing.T) {
	router := chathub.NewRoomRouter()
	c1 := newMockClient(10, "conn-1")
	c2 := newMockClient(20, "conn-2")
	outsider := newMockClient(30, "conn-3")

	router.Join("10:20", c1)
	router.Join("10:20", c2)
	router.Join("group:3", outsider)

	ev := models.Event{Type: models.EventMessage, RoomKey: "10:20"}
	router.Broadcast("10:20", ev, nil)

	assert.Len(t, c1.received(), 1)
	assert.Len(t, c2.received(), 1)
	assert.Empty(t, outsider.received())
}

func TestRouter_BroadcastExclude(t *testing.T) {
	router := chathub.NewRoomRouter()
	sender := newMockClient(10, "conn-1")
	receiver := newMockClient(20, "conn-2")

	router.Join("10:20", sender)
	router.Join("10:20", receiver)

	router.Broadcast("10:20", models.Event{Type: models.EventMessage}, sender)

	assert.Empty(t, sender.received())
	assert.Len(t, receiver.received(), 1)
}

func TestRouter_BroadcastToUnknownRoomIsNoOp(t *testing.T) {
	router := chathub.NewRoomRouter()
	router.Broadcast("10:20", models.Event{Type: models.EventMessage}, nil)
}

// Joins, leaves and broadcasts from many goroutines across unrelated rooms
// must not corrupt routing state.
func TestRouter_ConcurrentRooms(t *testing.T) {
	router := chathub.NewRoomRouter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			roomKey := fmt.Sprintf("group:%d", i%5)
			c := newMockClient(uint(i+1), fmt.Sprintf("conn-%d", i))
			router.Join(roomKey, c)
			router.Broadcast(roomKey, models.Event{Type: models.EventMessage, RoomKey: roomKey}, nil)
			router.Leave(roomKey, c)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.False(t, router.HasRoom(fmt.Sprintf("group:%d", i)))
	}
}
