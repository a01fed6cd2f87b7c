package handler

import (
	"net/http"

	"sociogo/backend/internal/chathub"
	"sociogo/backend/internal/config"
	"sociogo/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену. У продакшені налаштувати!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket та реєструє клієнта в
// хабі. Ідентичність вже перевірена middleware'ом AuthRequired.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID := currentUserID(c)

	if h.Hub.IsBanned(userID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		Hub:    h.Hub,
		UserID: userID,
		ConnID: uuid.New().String(),
		Conn:   conn,
		Send:   make(chan models.Event, config.SendBufferSize),
	}

	// Реєстрація клієнта в хабі, потім запуск pumps.
	h.Hub.RegisterCh <- client
	client.Run()
}
