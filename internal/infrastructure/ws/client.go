package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client wraps a websocket connection as a hub Subscriber. Writes are
// serialized with a mutex because the hub and ping loops share the conn.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	log  zerolog.Logger
}

// NewClient constructs a client wrapper.
func NewClient(conn *websocket.Conn, log zerolog.Logger) *Client {
	return &Client{conn: conn, log: log}
}

// Send writes a text message to the connection.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.log.Warn().Err(err).Msg("websocket send failed")
		_ = c.conn.Close()
		return err
	}
	return nil
}

// Close terminates the connection.
func (c *Client) Close() {
	_ = c.conn.Close()
}
