package handler

import (
	"log"
	"net/http"

	"hoopbot/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListRooms returns every room currently indexed as active.
func (h *Handler) ListRooms(c *gin.Context) {
	ids, err := h.Storage.GetActiveRoomIDs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	rooms := make([]*models.GameRoom, 0, len(ids))
	for _, id := range ids {
		room, err := h.Storage.GetRoomByChatID(id)
		if err != nil {
			log.Printf("ERROR: Failed to load room %s: %v", id, err)
			continue
		}
		if room == nil {
			// Індекс відстає від бази; кімната вже зникла.
			continue
		}
		rooms = append(rooms, room)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom returns the room of one chat.
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.Storage.GetRoomByChatID(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}
	if room == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	c.JSON(http.StatusOK, room)
}
