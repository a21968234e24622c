package handler

import (
	"anonpair/backend/internal/chathub"
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену. У продакшені налаштувати!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket і пересилає події черги
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID := anonID(c)
	ctx, cancel := context.WithCancel(c.Request.Context())

	events, err := h.Hub.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		h.fail(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		cancel()
		log.Printf("WARN: WebSocket upgrade for %s failed: %v", userID, err)
		return
	}

	chathub.NewWebSocketClient(userID, conn).Serve(events, cancel)
}
