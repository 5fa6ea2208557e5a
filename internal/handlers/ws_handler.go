package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Aman121K/social-backend/internal/relay"
	"github.com/Aman121K/social-backend/internal/token"
)

// WSHandler is the real-time relay endpoint. Frames pushed here are
// at-most-once notifications; chat persistence goes through the REST API.
type WSHandler struct {
	tokens *token.Manager
	hub    *relay.Hub
	bridge *relay.Bridge
	logger *zap.SugaredLogger
}

func NewWSHandler(tokens *token.Manager, hub *relay.Hub, bridge *relay.Bridge, logger *zap.SugaredLogger) *WSHandler {
	return &WSHandler{tokens: tokens, hub: hub, bridge: bridge, logger: logger}
}

// Upgrade gates the websocket upgrade on a valid session token in the
// query string.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	sub, err := h.tokens.Validate(c.Query("token"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	c.Locals("user_id", sub)
	return c.Next()
}

type relayFrame struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (h *WSHandler) Serve(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	client := relay.NewClient(userID)
	h.hub.Register(userID, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.hub.Unregister(userID, client)
		_ = conn.Close()
	}()

	// hub -> socket; the bridge runner feeds the hub from redis
	go func() {
		for payload := range client.Outbound() {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	conn.SetReadLimit(64 * 1024)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame relayFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Type != "send-message" || frame.ReceiverID == "" {
			continue
		}
		payload, _ := json.Marshal(map[string]any{
			"type":      "receive-message",
			"senderId":  userID,
			"message":   frame.Message,
			"timestamp": time.Now().UTC(),
		})
		if err := h.bridge.Publish(ctx, frame.ReceiverID, payload); err != nil {
			h.logger.Warnw("relay publish failed", "user", frame.ReceiverID, "err", err)
		}
	}
}
