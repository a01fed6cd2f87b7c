package chathub

import "sync"

// SessionRegistry maps an authenticated user to their live connections.
// Purely in-memory: the registry is rebuilt from live sockets, so losing it
// on restart only drops realtime routing, never durable state.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uint]map[string]Client // userID -> connID -> client
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uint]map[string]Client),
	}
}

// Register adds a connection under its user. Idempotent per connection
// instance.
func (r *SessionRegistry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.sessions[c.GetUserID()]
	if !ok {
		conns = make(map[string]Client)
		r.sessions[c.GetUserID()] = conns
	}
	conns[c.GetConnID()] = c
}

// Unregister removes a connection. Unknown connections are a no-op, not an
// error: disconnect races with explicit logout and both paths call this.
func (r *SessionRegistry) Unregister(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.sessions[c.GetUserID()]
	if !ok {
		return
	}
	delete(conns, c.GetConnID())
	if len(conns) == 0 {
		delete(r.sessions, c.GetUserID())
	}
}

// ConnectionsFor returns the user's live connections. Empty means offline.
func (r *SessionRegistry) ConnectionsFor(userID uint) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.sessions[userID]
	out := make([]Client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// Online reports whether the user has at least one live connection.
func (r *SessionRegistry) Online(userID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID]) > 0
}
