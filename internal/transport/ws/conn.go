package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsConn adapts one gorilla connection to the room's transport interface.
// Send never blocks: outbound messages queue on a buffered channel drained
// by the write pump, and a full buffer counts as a dead connection.
type wsConn struct {
	id   string
	sock *websocket.Conn
	send chan []byte

	closeOnce   sync.Once
	closed      chan struct{}
	closeReason string
}

func newWSConn(sock *websocket.Conn) *wsConn {
	return &wsConn{
		id:     uuid.New().String(),
		sock:   sock,
		send:   make(chan []byte, 256),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *wsConn) Close(reason string) {
	c.closeOnce.Do(func() {
		c.closeReason = reason
		close(c.closed)
	})
}

// writePump drains the send buffer onto the socket and keeps the connection
// alive with pings. Exactly one per connection; it owns all writes.
func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sock.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			// Flush anything already queued before saying goodbye.
			for {
				select {
				case message := <-c.send:
					c.sock.SetWriteDeadline(time.Now().Add(writeWait))
					if c.sock.WriteMessage(websocket.TextMessage, message) != nil {
						return
					}
				default:
					c.sock.SetWriteDeadline(time.Now().Add(writeWait))
					c.sock.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.closeReason))
					return
				}
			}
		}
	}
}
