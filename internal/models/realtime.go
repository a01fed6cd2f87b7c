package models

// EventType discriminates the closed set of realtime events exchanged over a
// connection. Inbound (client -> server): join, leave, send. Outbound
// (server -> client): message, group_message, friendship_changed, error.
type EventType string

const (
	EventJoin              EventType = "join"
	EventLeave             EventType = "leave"
	EventSend              EventType = "send"
	EventMessage           EventType = "message"
	EventGroupMessage      EventType = "group_message"
	EventFriendshipChanged EventType = "friendship_changed"
	EventError             EventType = "error"
)

// Event is the single envelope for all realtime traffic. Only the fields
// relevant to Type are populated; everything else stays omitted from JSON.
type Event struct {
	Type    EventType `json:"type"`
	RoomKey string    `json:"room_key,omitempty"`

	// Text carries the body of an inbound send.
	Text string `json:"text,omitempty"`

	// Message is set on outbound message / group_message events.
	Message *MessageDescriptor `json:"message,omitempty"`

	// Friendship is set on outbound friendship_changed events.
	Friendship *FriendshipChange `json:"friendship,omitempty"`

	// Error is set on outbound error events.
	Error string `json:"error,omitempty"`

	// Origin identifies the server instance that produced the event. Used to
	// drop our own events when they come back through the pub/sub bridge.
	Origin string `json:"origin,omitempty"`
}
