package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devhub/internal/services"
)

// ChatHandler manages private chat endpoints.
type ChatHandler struct {
	svc *services.ChatService
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(svc *services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ListChats returns the chats of the authenticated user, most recent first.
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.svc.ListMyChats(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		respondError(c, err, "Failed to fetch chats")
		return
	}
	c.JSON(http.StatusOK, chats)
}

// StartChat returns the private chat with another user, creating it on first contact.
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req struct {
		UserID int `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID is required"})
		return
	}

	chat, created, err := h.svc.AccessOrCreateChat(c.Request.Context(), c.GetInt("userID"), req.UserID)
	if err != nil {
		respondError(c, err, "Failed to access or create chat")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, chat)
}
