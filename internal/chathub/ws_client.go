package chathub

import (
	"anonpair/backend/internal/models"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketClient pushes one user's queue events over a WebSocket. The socket
// is notify-only: clients act through the HTTP endpoints and re-poll status.
type WebSocketClient struct {
	UserID string
	Conn   *websocket.Conn
}

func NewWebSocketClient(userID string, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{UserID: userID, Conn: conn}
}

// Serve writes events to the socket until the peer disconnects or events is
// closed. cancel is called when the read side ends so the subscription
// feeding events is released.
func (c *WebSocketClient) Serve(events <-chan models.QueueEvent, cancel context.CancelFunc) {
	go c.writePump(events)
	c.readPump()
	cancel()
}

// readPump only drains control frames and detects disconnects.
func (c *WebSocketClient) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARN: WebSocket for %s closed: %v", c.UserID, err)
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump(events <-chan models.QueueEvent) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-events:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Error encoding JSON for client %s: %v", c.UserID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
