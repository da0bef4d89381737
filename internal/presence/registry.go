// Package presence tracks which users currently hold a live connection.
//
// The Registry is the single piece of mutable state shared by all
// connection goroutines. It maps a user identity to a non-owning
// reference to the connection currently representing that user; the
// transport layer owns the connection itself.
package presence

import "sync"

// Conn is a non-owning reference to a live connection. Implementations
// only need a stable connection identifier.
type Conn interface {
	ID() string
}

// Registry is a concurrency-safe identity -> connection mapping with
// single-connection-per-user semantics: a later registration for the
// same identity overwrites the earlier one.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register inserts or overwrites the mapping for userID. Last writer
// wins; the call always succeeds.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = conn
}

// Lookup returns the connection currently mapped for userID, if any.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

// Unregister removes the mapping for userID only if the stored
// connection is the one being removed, and reports whether a removal
// happened. A stale disconnect racing a newer registration for the same
// identity is therefore a no-op.
func (r *Registry) Unregister(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.conns[userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}
	delete(r.conns, userID)
	return true
}

// OnlineUsers returns the identities with an active connection.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	return users
}

// Len returns the number of active mappings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
