package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devhub/internal/services"
)

// MessageHandler serves the /messages endpoints.
type MessageHandler struct {
	svc *services.ChatService
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(svc *services.ChatService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// SendMessage stores a message; the relay broadcast happens inside the service.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		ChatID  int    `json:"chatId"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "chatId and content are required"})
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), req.ChatID, c.GetInt("userID"), req.Content)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetMessages returns a chat's history in ascending creation order.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	chatID, ok := pathID(c, "chatId", "chat")
	if !ok {
		return
	}
	msgs, err := h.svc.GetMessages(c.Request.Context(), chatID, c.GetInt("userID"))
	if err != nil {
		respondError(c, err, "Failed to get messages")
		return
	}
	c.JSON(http.StatusOK, msgs)
}
