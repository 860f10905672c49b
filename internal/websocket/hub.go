package websocket

import (
	"context"
	"encoding/json"

	"peermatch-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const signalChannel = "signal_events"

// Announcer receives presence transitions. Implementations must not
// block: the hub's run loop calls them inline.
type Announcer interface {
	IdentityOnline(identity string)
	IdentityOffline(identity string)
}

type Hub struct {
	registry *Registry

	// Register requests from the clients (identity already set).
	register chan *Client

	// Unregister requests from clients. Exactly one per connection.
	unregister chan *Client

	// Redis connection for cross-instance signaling, may be nil.
	rdb *redis.Client

	// instanceID lets the Redis subscriber skip messages this
	// instance published itself.
	instanceID string

	announcer Announcer
	logger    logger.ILogger
}

func NewHub(rdb *redis.Client, announcer Announcer, log logger.ILogger) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		announcer:  announcer,
		logger:     log,
	}
}

// Registry exposes the presence map for the match orchestrator.
func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			cameOnline, released := h.registry.Register(client.Identity, client)
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"identity":      client.Identity,
				"connection_id": client.ID,
			})
			if released != "" {
				h.announceOffline(released)
			}
			if cameOnline {
				h.announceOnline(client.Identity)
			}
			h.logger.Debug("Hub", "Online identities", map[string]interface{}{
				"identities": h.registry.OnlineIdentities(),
			})

		case client := <-h.unregister:
			identity, wentOffline := h.registry.Unregister(client)
			close(client.done)
			if wentOffline {
				h.logger.Info("Hub", "Identity is now offline", map[string]interface{}{
					"identity":  identity,
					"remaining": h.registry.OnlineIdentities(),
				})
				h.announceOffline(identity)
			}
		}
	}
}

// Relay fans a signaling message out to every live connection of the
// target identity, excluding the sender's own connection. Best-effort:
// no live connection means the message is silently dropped.
func (h *Hub) Relay(kind, targetIdentity string, payload json.RawMessage, sender *Client) {
	if targetIdentity == "" {
		h.logger.Warn("Hub", "Relay without target identity", map[string]interface{}{"event": kind})
		return
	}

	data, err := json.Marshal(Envelope{
		Event:          kind,
		SenderIdentity: sender.Identity,
		Payload:        payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode relay frame", map[string]interface{}{"error": err})
		return
	}

	delivered := h.deliverLocal(targetIdentity, data, sender)
	h.logger.Debug("Hub", "Relayed signal", map[string]interface{}{
		"event":     kind,
		"target":    targetIdentity,
		"delivered": delivered,
	})

	// Other instances may hold connections for the same identity.
	if h.rdb != nil {
		bridged, _ := json.Marshal(map[string]interface{}{
			"origin":          h.instanceID,
			"target_identity": targetIdentity,
			"message":         json.RawMessage(data),
		})
		if err := h.rdb.Publish(context.Background(), signalChannel, bridged).Err(); err != nil {
			h.logger.Warn("Hub", "Redis signal publish failed", map[string]interface{}{"error": err})
		}
	}
}

// deliverLocal writes data to each live connection of target. The
// registry snapshot can contain connections the run loop has since
// torn down; the done channel skips those without touching Send. A
// full send buffer drops the frame for that connection only; the slow
// client is reaped by its write deadline, delivery to the rest
// proceeds.
func (h *Hub) deliverLocal(target string, data []byte, exclude *Client) int {
	delivered := 0
	for _, c := range h.registry.ConnectionsFor(target) {
		if c == exclude {
			continue
		}
		select {
		case <-c.done:
		case c.Send <- data:
			delivered++
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping frame", map[string]interface{}{
				"identity":      c.Identity,
				"connection_id": c.ID,
			})
		}
	}
	return delivered
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, signalChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin         string          `json:"origin"`
			TargetIdentity string          `json:"target_identity"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis signal parse error", map[string]interface{}{"error": err})
			continue
		}
		if payload.Origin == h.instanceID {
			continue
		}
		h.deliverLocal(payload.TargetIdentity, payload.Message, nil)
	}
}

func (h *Hub) announceOnline(identity string) {
	if h.announcer != nil {
		h.announcer.IdentityOnline(identity)
	}
}

func (h *Hub) announceOffline(identity string) {
	if h.announcer != nil {
		h.announcer.IdentityOffline(identity)
	}
}
