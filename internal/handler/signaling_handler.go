package handler

import (
	"peermatch-be/internal/pkg/logger"
	internalWS "peermatch-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type SignalingHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSignalingHandler(hub *internalWS.Hub, log logger.ILogger) *SignalingHandler {
	return &SignalingHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the request and hands the connection to the hub.
// Registration happens in-band, so the handshake itself carries no
// identity.
func (h *SignalingHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SignalingHandler", "Starting WebSocket session", map[string]interface{}{
				"remote": conn.RemoteAddr().String(),
			})
			internalWS.ServeWs(h.hub, conn)
			h.logger.Info("SignalingHandler", "WebSocket session ended", map[string]interface{}{
				"remote": conn.RemoteAddr().String(),
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *SignalingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
