package websocket

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // SDP offers run a few KB
)

// Client is a middleman between one websocket connection and the hub.
// It starts unbound; a register frame binds it to an identity.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// ID names this connection handle in logs.
	ID uuid.UUID

	// Identity bound via the register event. Written only by readPump;
	// the hub reads it after the register channel handoff.
	Identity string

	// Buffered channel of outbound frames. Never closed: relays may
	// hold a snapshot of this connection after teardown started, and a
	// send on a closed channel would panic the sender's goroutine.
	Send chan []byte

	// done is closed by the hub on unregister. writePump and relay
	// delivery observe it instead of a close on Send.
	done chan struct{}
}

// readPump pumps signaling frames from the websocket connection into
// the hub. The deferred unregister runs exactly once per connection,
// registered or not.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{
					"connection_id": c.ID,
					"error":         err,
				})
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.Hub.logger.Warn("Client", "Malformed frame dropped", map[string]interface{}{
				"connection_id": c.ID,
				"error":         err,
			})
			continue
		}

		switch {
		case env.Event == EventRegister:
			identity := strings.TrimSpace(env.Identity)
			if identity == "" {
				c.Hub.logger.Warn("Client", "Register event without identity", map[string]interface{}{
					"connection_id": c.ID,
				})
				continue
			}
			c.Identity = identity
			c.Hub.register <- c

		case isSignalEvent(env.Event):
			if env.TargetIdentity == "" {
				c.Hub.logger.Warn("Client", "Signal event without target identity", map[string]interface{}{
					"connection_id": c.ID,
					"event":         env.Event,
				})
				continue
			}
			c.Hub.Relay(env.Event, env.TargetIdentity, env.Payload, c)

		default:
			c.Hub.logger.Warn("Client", "Unknown event dropped", map[string]interface{}{
				"connection_id": c.ID,
				"event":         env.Event,
			})
		}
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
