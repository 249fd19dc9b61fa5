// Package live pushes card and comment events to connected viewers.
package live

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

// Conn is one live-update subscriber. Implementations must tolerate Send and
// Close from any goroutine.
type Conn interface {
	// Send writes one message, giving up at the deadline.
	Send(message []byte, deadline time.Time) error
	Close() error
}

// Registry tracks currently connected subscribers. Entries exist only in
// process memory for the lifetime of their transport session.
type Registry struct {
	logger logger.Interface

	mu    sync.Mutex
	conns map[uuid.UUID]Conn
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Interface) *Registry {
	return &Registry{
		logger: log.WithComponent("live"),
		conns:  make(map[uuid.UUID]Conn),
	}
}

// Add registers a connection and returns its handle.
func (r *Registry) Add(conn Conn) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	r.conns[id] = conn
	count := len(r.conns)
	r.mu.Unlock()

	r.logger.Debug("Client connected", "id", id, "clients", count)
	return id
}

// Remove drops a connection. Removing an absent handle is a no-op, so
// disconnect and send-failure cleanup can race safely.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	_, present := r.conns[id]
	delete(r.conns, id)
	count := len(r.conns)
	r.mu.Unlock()

	if present {
		r.logger.Debug("Client disconnected", "id", id, "clients", count)
	}
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// snapshot copies the current membership so broadcasts never write while
// holding the lock.
func (r *Registry) snapshot() map[uuid.UUID]Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make(map[uuid.UUID]Conn, len(r.conns))
	for id, conn := range r.conns {
		conns[id] = conn
	}
	return conns
}
