package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// WriteTyped sends a strongly-typed payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorEvent over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorEvent{Event: EventError, Error: errMsg})
}
