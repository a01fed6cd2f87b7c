package chathub

import "sociogo/backend/internal/models"

// Client is the interface for any type of connection. It abstracts the
// underlying transport, allowing the hub to manage different client types
// uniformly; WebSocketClient is the only production implementation today,
// but the seam keeps a second transport pluggable.
type Client interface {
	// GetUserID returns the authenticated user the connection is bound to.
	GetUserID() uint
	// GetConnID returns the unique identifier of this connection instance.
	// One user may own several concurrent connections (multi-device).
	GetConnID() string

	// GetSendChannel returns the channel through which the hub delivers
	// events to this specific client. It is a send-only channel.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel. Safe to call more than
	// once: disconnect can race with explicit logout.
	Close()
}
