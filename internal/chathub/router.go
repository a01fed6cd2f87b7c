package chathub

import (
	"log"
	"sync"

	"sociogo/backend/internal/models"
)

// room is one active subscriber set. Its mutex serializes broadcasts for
// this key only, so unrelated rooms deliver concurrently.
type room struct {
	mu   sync.Mutex
	subs map[string]Client // connID -> client
}

// RoomRouter maintains per-conversation subscriber sets and routes events to
// them. Rooms are created lazily on first join and deleted as soon as the
// last subscriber leaves, so short-lived direct-chat rooms cannot accumulate
// across the process lifetime.
type RoomRouter struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	joined map[string]map[string]struct{} // connID -> set of room keys
}

func NewRoomRouter() *RoomRouter {
	return &RoomRouter{
		rooms:  make(map[string]*room),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join subscribes a connection to a room, creating the room if absent.
// Re-joining is idempotent: the subscriber set has set semantics.
func (r *RoomRouter) Join(roomKey string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomKey]
	if !ok {
		rm = &room{subs: make(map[string]Client)}
		r.rooms[roomKey] = rm
	}
	rm.mu.Lock()
	rm.subs[c.GetConnID()] = c
	rm.mu.Unlock()

	keys, ok := r.joined[c.GetConnID()]
	if !ok {
		keys = make(map[string]struct{})
		r.joined[c.GetConnID()] = keys
	}
	keys[roomKey] = struct{}{}
}

// Leave unsubscribes a connection. Leaving a room it never joined is a
// benign no-op. The room entry is reclaimed once its subscriber set is
// empty.
func (r *RoomRouter) Leave(roomKey string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(roomKey, c)
}

func (r *RoomRouter) leaveLocked(roomKey string, c Client) {
	rm, ok := r.rooms[roomKey]
	if ok {
		rm.mu.Lock()
		delete(rm.subs, c.GetConnID())
		empty := len(rm.subs) == 0
		rm.mu.Unlock()
		if empty {
			delete(r.rooms, roomKey)
		}
	}

	if keys, ok := r.joined[c.GetConnID()]; ok {
		delete(keys, roomKey)
		if len(keys) == 0 {
			delete(r.joined, c.GetConnID())
		}
	}
}

// Drop removes a connection from every room it had joined. Called on
// disconnect for any reason.
func (r *RoomRouter) Drop(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomKey := range r.joined[c.GetConnID()] {
		r.leaveLocked(roomKey, c)
	}
}

// Broadcast delivers an event to every current subscriber of the room,
// except the optionally excluded connection. Delivery within one room is
// serialized by the room mutex; a room that does not exist is a no-op since
// routing state is ephemeral and races with disconnects are expected.
func (r *RoomRouter) Broadcast(roomKey string, ev models.Event, exclude Client) {
	r.mu.RLock()
	rm, ok := r.rooms[roomKey]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for connID, c := range rm.subs {
		if exclude != nil && connID == exclude.GetConnID() {
			continue
		}
		select {
		case c.GetSendChannel() <- ev:
		default:
			// Повільний клієнт: кадр втрачено, історія відновить його після
			// перепідключення.
			log.Printf("WARNING: dropping event for slow connection %s in room %s", connID, roomKey)
		}
	}
}

// HasRoom reports whether the room currently occupies routing memory.
func (r *RoomRouter) HasRoom(roomKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomKey]
	return ok
}

// SubscriberCount returns the size of a room's subscriber set.
func (r *RoomRouter) SubscriberCount(roomKey string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[roomKey]
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.subs)
}
