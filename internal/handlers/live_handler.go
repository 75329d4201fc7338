package handlers

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"elevateu/hr-coach/internal/live"
)

type LiveHandler struct {
	manager      *live.Manager
	maxFrameSize int64
}

// NewLiveHandler serves the live interview socket. maxFrameSize bounds one
// inbound frame and must leave room for a base64 encoded resume.
func NewLiveHandler(manager *live.Manager, maxFrameSize int64) *LiveHandler {
	return &LiveHandler{
		manager:      manager,
		maxFrameSize: maxFrameSize,
	}
}

// HandleUpgrade rejects plain HTTP requests to the socket endpoint.
func (h *LiveHandler) HandleUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleSocket handles GET /live/ws
func (h *LiveHandler) HandleSocket() fiber.Handler {
	return websocket.New(h.serve)
}

func (h *LiveHandler) serve(conn *websocket.Conn) {
	connID := uuid.NewString()

	writer := live.NewConnWriter(conn, 64)
	session := h.manager.Connect(connID, writer)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := writer.Run(session.Context()); err != nil {
			log.Printf("⚠️ Live writer for %s stopped: %v", connID, err)
		}
	}()

	defer func() {
		h.manager.Disconnect(connID)
		<-writerDone
	}()

	if h.maxFrameSize > 0 {
		conn.SetReadLimit(h.maxFrameSize)
	}

	for {
		messageType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Live connection %s closed unexpectedly: %v", connID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := h.manager.Handle(connID, msg); err != nil {
			log.Printf("❌ Live connection %s: %v", connID, err)
			return
		}
	}
}
