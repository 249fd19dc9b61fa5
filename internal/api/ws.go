package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tigerfoodies/gofoodies/internal/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The socket carries no client-to-server protocol; origin checks add
	// nothing over the session-less public card list.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleSocket upgrades the connection and registers it for event fanout.
// The read loop exists only to observe disconnects.
func (s *Server) handleSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Socket upgrade failed", "error", err)
		return
	}

	id := s.opts.Registry.Add(live.NewWSConn(conn))

	go func() {
		defer func() {
			s.opts.Registry.Remove(id)
			_ = conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
