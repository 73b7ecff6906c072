package handler

import (
	"Chattr/internal/middleware"
	"Chattr/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChatHandler interface {
	AccessChat(c *gin.Context)
	ListChats(c *gin.Context)
	ListMessages(c *gin.Context)
}

type chatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) ChatHandler {
	return &chatHandler{
		service: service,
	}
}

type accessChatRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// AccessChat finds or creates the chat between the caller and another user.
func (h *chatHandler) AccessChat(c *gin.Context) {
	var req accessChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	chat, created, err := h.service.AccessChat(c.Request.Context(), middleware.UserID(c), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"chat": chat})
}

func (h *chatHandler) ListChats(c *gin.Context) {
	chats, err := h.service.ListChats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (h *chatHandler) ListMessages(c *gin.Context) {
	chatID := c.Param("chatId")
	page := c.DefaultQuery("page", "1")
	pageNumber, err := strconv.ParseInt(page, 10, 64)
	if err != nil || pageNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page number"})
		return
	}

	msgs, err := h.service.ListMessages(c.Request.Context(), chatID, pageNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
