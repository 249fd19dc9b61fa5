package live_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerfoodies/gofoodies/internal/live"
	"github.com/tigerfoodies/gofoodies/internal/logger"
)

// fakeConn records every message it accepts; a broken conn rejects all sends.
type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	broken   bool
	closed   bool
}

func (c *fakeConn) Send(message []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return errors.New("write: broken pipe")
	}
	c.messages = append(c.messages, message)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages
}

func (c *fakeConn) wasClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestNotifier_BroadcastReachesAllClients(t *testing.T) {
	t.Parallel()

	registry := live.NewRegistry(logger.NewNoOp())
	notifier := live.NewNotifier(logger.NewNoOp(), registry)

	a, b := &fakeConn{}, &fakeConn{}
	registry.Add(a)
	registry.Add(b)

	notifier.Broadcast(live.EventCardCreated, 42)

	for _, conn := range []*fakeConn{a, b} {
		msgs := conn.received()
		require.Len(t, msgs, 1)

		var got struct {
			Event  string `json:"event"`
			CardID int64  `json:"card_id"`
		}
		require.NoError(t, json.Unmarshal(msgs[0], &got))
		assert.Equal(t, "card created", got.Event)
		assert.Equal(t, int64(42), got.CardID)
	}
}

func TestNotifier_BrokenClientIsDroppedNotFatal(t *testing.T) {
	t.Parallel()

	registry := live.NewRegistry(logger.NewNoOp())
	notifier := live.NewNotifier(logger.NewNoOp(), registry)

	healthy1, broken, healthy2 := &fakeConn{}, &fakeConn{broken: true}, &fakeConn{}
	registry.Add(healthy1)
	registry.Add(broken)
	registry.Add(healthy2)

	notifier.Broadcast(live.EventCardCreated, 7)

	assert.Len(t, healthy1.received(), 1)
	assert.Len(t, healthy2.received(), 1)
	assert.True(t, broken.wasClosed())
	assert.Equal(t, 2, registry.Len())

	// Later broadcasts no longer see the dropped connection.
	notifier.Broadcast(live.EventCardDeleted, 7)
	assert.Len(t, healthy1.received(), 2)
	assert.Empty(t, broken.received())
}

func TestNotifier_BroadcastWithNoClients(t *testing.T) {
	t.Parallel()

	registry := live.NewRegistry(logger.NewNoOp())
	notifier := live.NewNotifier(logger.NewNoOp(), registry)

	// Must not panic or block.
	notifier.Broadcast(live.EventCommentCreated, 1)
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	registry := live.NewRegistry(logger.NewNoOp())
	id := registry.Add(&fakeConn{})

	registry.Remove(id)
	registry.Remove(id)

	assert.Zero(t, registry.Len())
}

func TestRegistry_ConcurrentAddRemove(t *testing.T) {
	t.Parallel()

	registry := live.NewRegistry(logger.NewNoOp())
	notifier := live.NewNotifier(logger.NewNoOp(), registry)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := registry.Add(&fakeConn{})
			notifier.Broadcast(live.EventCardEdited, 1)
			registry.Remove(id)
		}()
	}
	wg.Wait()

	assert.Zero(t, registry.Len())
}
