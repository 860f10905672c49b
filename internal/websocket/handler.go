package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs wires one upgraded connection into the hub. The connection
// starts unregistered; identity arrives via the register frame.
func ServeWs(hub *Hub, c *websocket.Conn) {
	client := &Client{
		Hub:  hub,
		Conn: c,
		ID:   uuid.New(),
		Send: make(chan []byte, 256),
		done: make(chan struct{}),
	}

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
