package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"hoopbot/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену. У продакшені налаштувати!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeEvents streams room lifecycle events over WebSocket. Each connection
// gets its own Redis subscription; the write loop mirrors the Pub/Sub channel.
func (h *Handler) ServeEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	pubsub := h.Storage.SubscribeRoomEvents()

	go func() {
		defer conn.Close()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Error unmarshalling room event: %v", err)
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}()

	// Read loop only detects the client going away; closing the subscription
	// drains the write loop and closes the connection with it.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				pubsub.Close()
				return
			}
		}
	}()
}
