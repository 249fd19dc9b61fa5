package live

import (
	"encoding/json"
	"time"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

// writeTimeout bounds how long one slow client can hold up a broadcast.
const writeTimeout = 5 * time.Second

// Event names a change pushed to viewers. The strings are part of the client
// protocol.
type Event string

// Events emitted after each successful mutation.
const (
	EventCardCreated    Event = "card created"
	EventCardEdited     Event = "card edited"
	EventCardDeleted    Event = "card deleted"
	EventCommentCreated Event = "comment created"
)

// message is the wire payload for one event.
type message struct {
	Event  Event `json:"event"`
	CardID int64 `json:"card_id"`
}

// Notifier fans events out to every registered connection. Broadcast runs on
// the caller's goroutine, synchronously, after the mutation has committed.
type Notifier struct {
	logger   logger.Interface
	registry *Registry
}

// NewNotifier creates a notifier over the given registry.
func NewNotifier(log logger.Interface, registry *Registry) *Notifier {
	return &Notifier{
		logger:   log.WithComponent("live"),
		registry: registry,
	}
}

// Broadcast pushes one event to every current connection. A connection that
// fails to accept the write is closed and dropped; delivery to the others
// continues and no error escapes to the mutation path.
func (n *Notifier) Broadcast(event Event, cardID int64) {
	payload, err := json.Marshal(message{Event: event, CardID: cardID})
	if err != nil {
		n.logger.Error("Failed to encode event", "event", event, "error", err)
		return
	}

	deadline := time.Now().Add(writeTimeout)

	for id, conn := range n.registry.snapshot() {
		if err := conn.Send(payload, deadline); err != nil {
			n.logger.Warn("Dropping unresponsive client",
				"id", id,
				"event", event,
				"error", err,
			)
			n.registry.Remove(id)
			_ = conn.Close()
		}
	}
}
