package live

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn adapts a websocket connection to the registry's Conn interface.
// gorilla allows only one concurrent writer per connection, and broadcasts
// for separate mutations run on separate request goroutines, so writes are
// serialized here.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSConn wraps an upgraded websocket connection.
func NewWSConn(conn *websocket.Conn) Conn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Send(message []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
