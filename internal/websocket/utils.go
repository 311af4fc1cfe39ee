package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SafeConn serializes writes to a gorilla connection. The session stream has
// two writers (the read-loop responses and the time-sync ticker) and gorilla
// permits only one concurrent writer.
type SafeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewSafeConn wraps an upgraded connection.
func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *SafeConn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *SafeConn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline. Reads have a single owner so no lock is needed.
func (c *SafeConn) ReadJSON(v interface{}) error {
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return c.conn.ReadJSON(v)
}

// Close closes the underlying connection.
func (c *SafeConn) Close() error {
	return c.conn.Close()
}
