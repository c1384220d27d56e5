package handlers

import (
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/ecodex/backend/internal/identify"
	"github.com/ecodex/backend/pkg/logger"
)

// StreamHandler pushes each newly persisted observation to connected
// clients, the live discovery feed of the app.
type StreamHandler struct {
	hub *identify.Hub
}

func NewStreamHandler(hub *identify.Hub) *StreamHandler {
	return &StreamHandler{
		hub: hub,
	}
}

func (h *StreamHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("Observation stream connected")

	ch := h.hub.Subscribe()

	defer func() {
		h.hub.Unsubscribe(ch)
		c.Close()
		logger.Info("Observation stream disconnected")
	}()

	// Drain the read side so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case obs, ok := <-ch:
			if !ok {
				return
			}
			msg := map[string]interface{}{
				"type":        "observation",
				"observation": obs,
			}
			if err := c.WriteJSON(msg); err != nil {
				logger.Debug("Failed to write to observation stream", zap.Error(err))
				return
			}
		}
	}
}
